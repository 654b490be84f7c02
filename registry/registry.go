/*
Package registry keeps track of deployed client modules: which account owns
the definition of each module known under a symbolic name.

Entries come either from the static configuration or from the NNS contract
which binds '<name>.<zone>' domains to module owner addresses.
*/
package registry

import (
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Entry binds symbolic module name to the address of the account owning the
// module definition.
type Entry struct {
	Name    string
	Address util.Uint160
}

// Registry is an ordered list of module entries with unique names. The zero
// value is an empty registry ready to use.
type Registry struct {
	entries []Entry
}

// New returns Registry filled with given entries. Later entries override
// earlier ones with the same name.
func New(entries ...Entry) *Registry {
	var r Registry
	for i := range entries {
		r.Add(entries[i].Name, entries[i].Address)
	}
	return &r
}

// Add registers module owned by addr under the name. Existing entry with the
// same name is replaced in place.
func (r *Registry) Add(name string, addr util.Uint160) {
	for i := range r.entries {
		if r.entries[i].Name == name {
			r.entries[i].Address = addr
			return
		}
	}

	r.entries = append(r.entries, Entry{Name: name, Address: addr})
}

// Get returns owner address of the named module.
func (r *Registry) Get(name string) (util.Uint160, bool) {
	for i := range r.entries {
		if r.entries[i].Name == name {
			return r.entries[i].Address, true
		}
	}
	return util.Uint160{}, false
}

// Exists checks whether the named module is registered.
func (r *Registry) Exists(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Entries returns registered modules in registration order.
func (r *Registry) Entries() []Entry {
	res := make([]Entry, len(r.entries))
	copy(res, r.entries)
	return res
}

// Len returns number of registered modules.
func (r *Registry) Len() int {
	return len(r.entries)
}

// ParseAddress decodes account address from either Neo address or
// little-endian HEX string (optionally 0x-prefixed).
func ParseAddress(s string) (util.Uint160, error) {
	if addr, err := address.StringToUint160(s); err == nil {
		return addr, nil
	}

	addr, err := util.Uint160DecodeStringLE(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return util.Uint160{}, fmt.Errorf("'%s' is neither Neo address nor LE HEX string", s)
	}

	return addr, nil
}
