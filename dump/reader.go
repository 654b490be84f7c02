package dump

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/paychan/state"
)

// ErrAccountNotFound is returned by Reader.Snapshot for accounts missing in
// the dump.
var ErrAccountNotFound = errors.New("account is not dumped")

// Open reads dump with the given ID from the directory.
func Open(dir string, id ID) (*Reader, error) {
	var r Reader

	err := readFile(id.accountsPath(dir), r.readAccounts)
	if err != nil {
		return nil, fmt.Errorf("read accounts of dump %s: %w", id, err)
	}

	err = readFile(id.storagePath(dir), r.readStorage)
	if err != nil {
		return nil, fmt.Errorf("read storage of dump %s: %w", id, err)
	}

	return &r, nil
}

// IterateDumps opens all dumps in the specified directory and passes ID and
// Reader of each dump into f. Missing directory has no dumps.
func IterateDumps(dir string, f func(ID, *Reader)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read dump dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		id, ok := idFromAccountsFile(e.Name())
		if !ok {
			continue
		}

		r, err := Open(dir, id)
		if err != nil {
			return err
		}

		f(id, r)
	}

	return nil
}

func readFile(path string, f func(io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}

	defer file.Close()

	return f(file)
}

// Reader provides access to accounts collected in the dump.
type Reader struct {
	accounts []Account
	storages map[util.Uint160]*state.Snapshot
}

func (x *Reader) readAccounts(r io.Reader) error {
	return json.NewDecoder(r).Decode(&x.accounts)
}

func (x *Reader) readStorage(r io.Reader) error {
	x.storages = make(map[util.Uint160]*state.Snapshot)

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.ReuseRecord = true

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read next CSV record: %w", err)
		}

		addr, err := util.Uint160DecodeStringLE(rec[0])
		if err != nil {
			return fmt.Errorf("decode account address: %w", err)
		}

		k, err := valueEncoding.DecodeString(rec[1])
		if err != nil {
			return fmt.Errorf("decode storage item key: %w", err)
		}

		v, err := valueEncoding.DecodeString(rec[2])
		if err != nil {
			return fmt.Errorf("decode storage item value: %w", err)
		}

		s, ok := x.storages[addr]
		if !ok {
			s = state.NewSnapshot()
			x.storages[addr] = s
		}

		s.Put(k, v)
	}
}

// Accounts returns all accounts from the dump.
func (x *Reader) Accounts() []Account {
	return slices.Clone(x.accounts)
}

// Snapshot returns storage of the dumped account. Accounts listed in the dump
// without storage items have empty Snapshot.
func (x *Reader) Snapshot(addr util.Uint160) (*state.Snapshot, error) {
	if s, ok := x.storages[addr]; ok {
		return s, nil
	}

	if slices.ContainsFunc(x.accounts, func(a Account) bool { return a.Address.Equals(addr) }) {
		return state.NewSnapshot(), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr.StringLE())
}
