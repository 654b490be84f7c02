package resource

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/util"
)

// ErrNotFound is returned when the account state has no value under the
// resource path. Callers treat it as absence of the resource.
var ErrNotFound = errors.New("resource not found")

// Getter provides read access to the account state.
type Getter interface {
	// Get returns value stored by the key and presence flag.
	Get(key []byte) ([]byte, bool)
}

// Decode looks up resource of the given kind defined by the module owned by
// moduleOwner in the account state and decodes it.
func Decode(k Kind, moduleOwner util.Uint160, st Getter) (Resource, error) {
	path := PathOf(k, moduleOwner)

	b, ok := st.Get(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s of module owner %s", ErrNotFound, k, moduleOwner.StringLE())
	}

	return Unmarshal(k, b)
}

// Symbolic names of the client modules.
const (
	ModuleToken   = "etoken"
	ModuleChannel = "channel"
)

var moduleKinds = map[string][]Kind{
	ModuleToken:   {KindToken},
	ModuleChannel: {KindChannelBalance, KindClosedChannel, KindProof},
}

// ModuleKinds returns resource kinds declared by the module known under the
// symbolic name. Returns nil for unknown modules.
func ModuleKinds(name string) []Kind {
	return moduleKinds[name]
}
