package dump

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/paychan/state"
)

// Creator collects account states in memory and writes them on Flush. Output
// file format:
//
//	'<label>-<block>-accounts.json': JSON array of dumped accounts
//	'<label>-<block>-storage.csv': 'address,key,value' storage items
//
// Storage items are grouped by account in the order of AddAccount calls and
// sorted by key within the account. Address is LE hex, binary key and value
// are base64-encoded.
//
// Use Open or IterateDumps to access existing dumps.
type Creator struct {
	dir string
	id  ID

	accounts []Account
	storages []*state.Snapshot
}

// NewCreator returns Creator which dumps accounts into given directory under
// the given ID. NewCreator fails if such dump already exists.
func NewCreator(dir string, id ID) (*Creator, error) {
	if err := checkAbsent(dir, id); err != nil {
		return nil, err
	}

	return &Creator{dir: dir, id: id}, nil
}

// AddAccount adds named account to the dump and returns Snapshot to be
// filled with the account storage before Flush.
func (x *Creator) AddAccount(name string, addr util.Uint160) *state.Snapshot {
	s := state.NewSnapshot()

	x.accounts = append(x.accounts, Account{Name: name, Address: addr})
	x.storages = append(x.storages, s)

	return s
}

// Flush writes collected accounts to the file system. Existing files are
// never overwritten.
func (x *Creator) Flush() error {
	err := writeNew(x.id.accountsPath(x.dir), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", " ")
		return enc.Encode(x.accounts)
	})
	if err != nil {
		return fmt.Errorf("write accounts: %w", err)
	}

	err = writeNew(x.id.storagePath(x.dir), x.writeStorage)
	if err != nil {
		return fmt.Errorf("write storage items: %w", err)
	}

	return nil
}

func (x *Creator) writeStorage(f *os.File) error {
	w := csv.NewWriter(f)

	var err error

	for i := range x.accounts {
		addr := x.accounts[i].Address.StringLE()

		x.storages[i].Iterate(func(k, v []byte) bool {
			err = w.Write([]string{addr, valueEncoding.EncodeToString(k), valueEncoding.EncodeToString(v)})
			return err == nil
		})
		if err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

func writeNew(path string, f func(*os.File) error) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}

	err = f(file)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	return err
}
