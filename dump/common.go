package dump

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/util"
)

// ID is a unique identifier of the account dump.
type ID struct {
	// Label of the dump source (e.g. testnet, mainnet).
	Label string
	// Blockchain height at which the state was pulled.
	Block uint32
}

// String returns hyphen-separated ID fields.
func (x ID) String() string {
	return x.Label + "-" + strconv.FormatUint(uint64(x.Block), 10)
}

// Account describes the dumped account.
type Account struct {
	Name    string       `json:"name"`
	Address util.Uint160 `json:"address"`
}

// Dump consists of two files sharing the ID prefix.
const (
	accountsFileSuffix = "-accounts.json"
	storageFileSuffix  = "-storage.csv"
)

// storage keys and values are base64 in CSV.
var valueEncoding = base64.StdEncoding

func (x ID) accountsPath(dir string) string {
	return filepath.Join(dir, x.String()+accountsFileSuffix)
}

func (x ID) storagePath(dir string) string {
	return filepath.Join(dir, x.String()+storageFileSuffix)
}

// idFromAccountsFile parses ID from the name of the accounts file. Label may
// contain hyphens, block is the last hyphen-separated item.
func idFromAccountsFile(name string) (ID, bool) {
	prefix, ok := strings.CutSuffix(name, accountsFileSuffix)
	if !ok {
		return ID{}, false
	}

	i := strings.LastIndexByte(prefix, '-')
	if i <= 0 {
		return ID{}, false
	}

	n, err := strconv.ParseUint(prefix[i+1:], 10, 32)
	if err != nil {
		return ID{}, false
	}

	return ID{Label: prefix[:i], Block: uint32(n)}, true
}

// checkAbsent returns error wrapping fs.ErrExist if any dump file exists.
func checkAbsent(dir string, id ID) error {
	for _, p := range []string{id.accountsPath(dir), id.storagePath(dir)} {
		_, err := os.Stat(p)
		switch {
		case err == nil:
			return fmt.Errorf("dump file %s: %w", p, fs.ErrExist)
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("check dump file %s: %w", p, err)
		}
	}
	return nil
}
