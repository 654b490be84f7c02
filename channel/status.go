package channel

import (
	"fmt"

	"github.com/nspcc-dev/paychan/resource"
)

// StatusKind is the on-chain state of one channel side.
type StatusKind uint8

const (
	// Unestablished means no channel resource has been observed yet.
	Unestablished StatusKind = iota
	// Open means the side holds funds in escrow.
	Open
	// Closed means the side has been closed on-chain.
	Closed
)

// String implements fmt.Stringer.
func (k StatusKind) String() string {
	switch k {
	case Unestablished:
		return "unestablished"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("StatusKind(%d)", uint8(k))
	}
}

// Status is the last known on-chain fact about one channel side.
type Status struct {
	Kind StatusKind

	// Resource is *resource.ChannelBalance for Open, *resource.ChannelBalance
	// or *resource.ClosedChannel for Closed, nil otherwise.
	Resource resource.Resource

	// Proof submitted on close, if any.
	Proof *resource.Proof
}

// OpenStatus returns Status of the open side.
func OpenStatus(r *resource.ChannelBalance) Status {
	return Status{Kind: Open, Resource: r}
}

// ClosedStatus returns Status of the closed side. Proof is optional.
func ClosedStatus(r resource.Resource, proof *resource.Proof) Status {
	return Status{Kind: Closed, Resource: r, Proof: proof}
}

// IsOpen checks whether the side is open.
func (s Status) IsOpen() bool {
	return s.Kind == Open
}

// Coin returns amount held in escrow by the open side.
func (s Status) Coin() (uint64, bool) {
	if s.Kind != Open {
		return 0, false
	}

	r, ok := s.Resource.(*resource.ChannelBalance)
	if !ok {
		return 0, false
	}

	return r.Coin, true
}
