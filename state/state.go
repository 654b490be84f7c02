/*
Package state resolves typed resources present in the raw account state.

Every registered module is looked up independently: absence or corruption of
one resource never prevents decoding of the others.
*/
package state

import (
	"errors"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/paychan/registry"
	"github.com/nspcc-dev/paychan/resource"
	"go.uber.org/zap"
)

// AccountState groups resources decoded from the account snapshot.
type AccountState struct {
	modules   []string
	resources map[string][]resource.Resource
}

// Decoder decodes account snapshots using the module registry.
type Decoder struct {
	log      *zap.Logger
	registry *registry.Registry
}

// NewDecoder returns Decoder resolving modules listed in r. Nil logger
// disables logging.
func NewDecoder(log *zap.Logger, r *registry.Registry) *Decoder {
	if log == nil {
		log = zap.NewNop()
	}

	return &Decoder{
		log:      log,
		registry: r,
	}
}

// Decode resolves resources of all registered modules in the snapshot. It
// never fails: missing and malformed resources are skipped.
func (x *Decoder) Decode(s resource.Getter) *AccountState {
	entries := x.registry.Entries()

	res := &AccountState{
		modules:   make([]string, 0, len(entries)),
		resources: make(map[string][]resource.Resource, len(entries)),
	}

	for _, e := range entries {
		kinds := resource.ModuleKinds(e.Name)
		if len(kinds) == 0 {
			x.log.Debug("module declares no known resources, skip", zap.String("module", e.Name))
			continue
		}

		res.modules = append(res.modules, e.Name)

		for _, k := range kinds {
			r, err := resource.Decode(k, e.Address, s)
			if err != nil {
				if !errors.Is(err, resource.ErrNotFound) {
					x.log.Debug("failed to decode resource, treat as absent",
						zap.String("module", e.Name), zap.Stringer("kind", k), zap.Error(err))
				}
				continue
			}

			res.resources[e.Name] = append(res.resources[e.Name], r)
		}
	}

	return res
}

// DecodeAccountResources decodes resources of all modules from r present in
// the snapshot.
func DecodeAccountResources(s resource.Getter, r *registry.Registry) *AccountState {
	return NewDecoder(nil, r).Decode(s)
}

// Resources returns resources of the named module in declaration order.
func (x *AccountState) Resources(module string) []resource.Resource {
	return x.resources[module]
}

// All returns all decoded resources ordered by module registration.
func (x *AccountState) All() []resource.Resource {
	var res []resource.Resource
	for _, m := range x.modules {
		res = append(res, x.resources[m]...)
	}
	return res
}

// Find returns the first resource matching f in the order of All.
func (x *AccountState) Find(f func(resource.Resource) bool) (resource.Resource, bool) {
	for _, m := range x.modules {
		for _, r := range x.resources[m] {
			if f(r) {
				return r, true
			}
		}
	}
	return nil, false
}

// Token returns token balance of the account if any.
func (x *AccountState) Token() (*resource.Token, bool) {
	r, ok := x.Find(func(r resource.Resource) bool {
		return r.Kind() == resource.KindToken
	})
	if !ok {
		return nil, false
	}
	return r.(*resource.Token), true
}

// Channel returns open channel side referencing the counterparty if any.
func (x *AccountState) Channel(counterparty util.Uint160) (*resource.ChannelBalance, bool) {
	r, ok := x.Find(func(r resource.Resource) bool {
		c, ok := r.(*resource.ChannelBalance)
		return ok && c.Other.Equals(counterparty)
	})
	if !ok {
		return nil, false
	}
	return r.(*resource.ChannelBalance), true
}

// ClosedChannel returns closed channel side referencing the counterparty if
// any.
func (x *AccountState) ClosedChannel(counterparty util.Uint160) (*resource.ClosedChannel, bool) {
	r, ok := x.Find(func(r resource.Resource) bool {
		c, ok := r.(*resource.ClosedChannel)
		return ok && c.Other.Equals(counterparty)
	})
	if !ok {
		return nil, false
	}
	return r.(*resource.ClosedChannel), true
}

// ChannelSide returns channel resource referencing the counterparty
// preferring the closed record over the open one.
func (x *AccountState) ChannelSide(counterparty util.Uint160) (resource.Resource, bool) {
	if c, ok := x.ClosedChannel(counterparty); ok {
		return c, true
	}
	if c, ok := x.Channel(counterparty); ok {
		return c, true
	}
	return nil, false
}

// Proof returns the channel proof submitted by the account if any.
func (x *AccountState) Proof() (*resource.Proof, bool) {
	r, ok := x.Find(func(r resource.Resource) bool {
		return r.Kind() == resource.KindProof
	})
	if !ok {
		return nil, false
	}
	return r.(*resource.Proof), true
}
