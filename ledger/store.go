package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// ErrAccountNotFound is returned when the store has no requested account.
var ErrAccountNotFound = errors.New("account not found")

var accountsBucket = []byte("accounts")

// BoltStore keeps accounts in the local BoltDB file. Values are canonical
// account encodings keyed by the account address.
type BoltStore struct {
	log *zap.Logger
	db  *bbolt.DB
}

// OpenBoltStore opens (creating if needed) the store file at path.
func OpenBoltStore(path string, log *zap.Logger) (*BoltStore, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open BoltDB file %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(accountsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init accounts bucket: %w", err)
	}

	log.Debug("account store opened", zap.String("path", path))

	return &BoltStore{
		log: log,
		db:  db,
	}, nil
}

// Put saves the account overwriting the previous state.
func (s *BoltStore) Put(a *Account) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(accountsBucket).Put(a.Address.BytesBE(), a.Bytes())
	})
	if err != nil {
		return fmt.Errorf("save account %s: %w", a.Address.StringLE(), err)
	}

	s.log.Debug("account saved",
		zap.Stringer("address", a.Address),
		zap.Int("channels", len(a.channels)))

	return nil
}

// Get reads the account. Returns ErrAccountNotFound if there is no such
// account.
func (s *BoltStore) Get(addr util.Uint160) (*Account, error) {
	var res *Account

	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(accountsBucket).Get(addr.BytesBE())
		if v == nil {
			return ErrAccountNotFound
		}

		var err error
		res, err = Unmarshal(v)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read account %s: %w", addr.StringLE(), err)
	}

	return res, nil
}

// Delete removes the account. Missing account is not an error.
func (s *BoltStore) Delete(addr util.Uint160) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(accountsBucket).Delete(addr.BytesBE())
	})
	if err != nil {
		return fmt.Errorf("delete account %s: %w", addr.StringLE(), err)
	}
	return nil
}

// List returns all stored accounts. Undecodable records are skipped with a
// warning.
func (s *BoltStore) List() ([]*Account, error) {
	var res []*Account

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(accountsBucket).ForEach(func(k, v []byte) error {
			a, err := Unmarshal(v)
			if err != nil {
				s.log.Warn("skip broken account record",
					zap.Binary("key", k), zap.Error(err))
				return nil
			}

			res = append(res, a)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return res, nil
}

// Close closes the underlying file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
