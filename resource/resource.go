package resource

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/paychan/internal/canonical"
)

// Kind enumerates resource variants known to the client.
type Kind uint8

const (
	KindToken Kind = iota + 1
	KindChannelBalance
	KindClosedChannel
	KindProof
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindToken:
		return "Token"
	case KindChannelBalance:
		return "ChannelBalance"
	case KindClosedChannel:
		return "ClosedChannel"
	case KindProof:
		return "Proof"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Module and struct names of the on-chain definitions.
const (
	TokenModuleName   = "EToken"
	ChannelModuleName = "Channel"

	DefaultStructName       = "T"
	ClosedChannelStructName = "Closed"
	ProofStructName         = "Proof"
)

// Tag returns module and struct names the resource type is declared under.
func (k Kind) Tag() (module, name string) {
	switch k {
	case KindToken:
		return TokenModuleName, DefaultStructName
	case KindChannelBalance:
		return ChannelModuleName, DefaultStructName
	case KindClosedChannel:
		return ChannelModuleName, ClosedChannelStructName
	case KindProof:
		return ChannelModuleName, ProofStructName
	default:
		panic(fmt.Sprintf("unsupported resource kind %d", k))
	}
}

// New returns zero resource of the given kind.
func (k Kind) New() Resource {
	switch k {
	case KindToken:
		return new(Token)
	case KindChannelBalance:
		return new(ChannelBalance)
	case KindClosedChannel:
		return new(ClosedChannel)
	case KindProof:
		return new(Proof)
	default:
		return nil
	}
}

// Resource is a typed value decoded from the account state. The set of
// implementations is closed: Token, ChannelBalance, ClosedChannel and Proof.
type Resource interface {
	canonical.Record
	Kind() Kind
}

// Token is a fungible token balance held by an account.
type Token struct {
	Value uint64
}

// Kind implements Resource.
func (*Token) Kind() Kind { return KindToken }

// Fields implements canonical.Record.
func (x *Token) Fields() []canonical.Field {
	return []canonical.Field{
		canonical.U64("value", &x.Value),
	}
}

// ChannelBalance is the on-chain escrow of an open channel. It is stored in
// the account of one channel side and references the opposite one.
type ChannelBalance struct {
	Other util.Uint160
	Coin  uint64
}

// Kind implements Resource.
func (*ChannelBalance) Kind() Kind { return KindChannelBalance }

// Fields implements canonical.Record.
func (x *ChannelBalance) Fields() []canonical.Field {
	return []canonical.Field{
		canonical.Address("other", &x.Other),
		canonical.U64("coin", &x.Coin),
	}
}

// ClosedChannel is the on-chain record left after the channel side is closed
// at the given block height.
type ClosedChannel struct {
	Other  util.Uint160
	Coin   uint64
	Height uint64
}

// Kind implements Resource.
func (*ClosedChannel) Kind() Kind { return KindClosedChannel }

// Fields implements canonical.Record.
func (x *ClosedChannel) Fields() []canonical.Field {
	return []canonical.Field{
		canonical.Address("other", &x.Other),
		canonical.U64("coin", &x.Coin),
		canonical.U64("height", &x.Height),
	}
}

// Proof is the latest off-chain state submitted on-chain on close.
type Proof struct {
	Version        uint64
	SelfBalance    uint64
	OtherBalance   uint64
	SelfSignature  []byte
	OtherSignature []byte
}

// Kind implements Resource.
func (*Proof) Kind() Kind { return KindProof }

// Fields implements canonical.Record.
func (x *Proof) Fields() []canonical.Field {
	return []canonical.Field{
		canonical.U64("version", &x.Version),
		canonical.U64("self_balance", &x.SelfBalance),
		canonical.U64("other_balance", &x.OtherBalance),
		canonical.Bytes("self_signature", &x.SelfSignature),
		canonical.Bytes("other_signature", &x.OtherSignature),
	}
}

// Counterparty returns address referenced by the channel resource. Returns
// false for nil resources and resources not describing a channel side.
func Counterparty(r Resource) (util.Uint160, bool) {
	switch v := r.(type) {
	case *ChannelBalance:
		if v != nil {
			return v.Other, true
		}
	case *ClosedChannel:
		if v != nil {
			return v.Other, true
		}
	}
	return util.Uint160{}, false
}

// Encode returns canonical encoding of the resource.
func Encode(r Resource) []byte {
	return canonical.Encode(r)
}

// Unmarshal decodes resource of the given kind from b.
func Unmarshal(k Kind, b []byte) (Resource, error) {
	r := k.New()
	if r == nil {
		return nil, fmt.Errorf("%w: unsupported resource kind %d", canonical.ErrDecode, k)
	}

	err := canonical.Decode(b, r)
	if err != nil {
		return nil, fmt.Errorf("decode %s resource: %w", k, err)
	}

	return r, nil
}
