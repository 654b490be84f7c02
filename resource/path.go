package resource

import (
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/paychan/internal/canonical"
	"golang.org/x/crypto/sha3"
)

// Leading byte of the account state keys.
const (
	CodeTag     byte = 0
	ResourceTag byte = 1
)

// hashing salt of the struct tags.
const structTagSalt = "StructTag::"

// StructTag identifies resource type: module deployed by Address, struct
// Name declared in Module.
type StructTag struct {
	Address util.Uint160
	Module  string
	Name    string
}

// Fields implements canonical.Record. Type parameters are not supported, they
// are encoded as an always-empty vector.
func (x *StructTag) Fields() []canonical.Field {
	return []canonical.Field{
		canonical.Address("address", &x.Address),
		canonical.String("module", &x.Module),
		canonical.String("name", &x.Name),
		canonical.Custom("type_params",
			func(e *canonical.Encoder) { e.Count(0) },
			func(d *canonical.Decoder) { d.Count() },
		),
	}
}

// Hash returns salted SHA3-256 of the canonical struct tag.
func (x StructTag) Hash() [32]byte {
	h := sha3.New256()
	_, _ = h.Write([]byte(structTagSalt))
	_, _ = h.Write(canonical.Encode(&x))

	var res [32]byte
	h.Sum(res[:0])
	return res
}

// Path returns account state key of the resource declared in the named module
// owned by moduleOwner. The key does not depend on the account holding the
// resource: it is the same for all holders.
func Path(moduleOwner util.Uint160, module, name string) []byte {
	h := StructTag{
		Address: moduleOwner,
		Module:  module,
		Name:    name,
	}.Hash()

	// empty accesses add nothing
	return append([]byte{ResourceTag}, h[:]...)
}

// PathOf returns account state key of the given resource kind defined by the
// module owned by moduleOwner.
func PathOf(k Kind, moduleOwner util.Uint160) []byte {
	module, name := k.Tag()
	return Path(moduleOwner, module, name)
}

// CodePath returns account state key of the module code.
func CodePath(moduleOwner util.Uint160, module string) []byte {
	h := sha3.New256()
	_, _ = h.Write(moduleOwner[:])
	_, _ = h.Write([]byte(module))

	return h.Sum([]byte{CodeTag})
}

// IsResourceKey checks whether account state key is tagged as resource one.
// The tag is informational only.
func IsResourceKey(key []byte) bool {
	return len(key) > 0 && key[0] == ResourceTag
}

// IsCodeKey checks whether account state key is tagged as module code one.
func IsCodeKey(key []byte) bool {
	return len(key) > 0 && key[0] == CodeTag
}
