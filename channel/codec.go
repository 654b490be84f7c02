package channel

import (
	"fmt"

	"github.com/nspcc-dev/paychan/internal/canonical"
	"github.com/nspcc-dev/paychan/resource"
)

// Fields implements canonical.Record.
func (x *LocalData) Fields() []canonical.Field {
	return []canonical.Field{
		canonical.U64("version", &x.Version),
		canonical.U64("self_balance", &x.SelfBalance),
		canonical.U64("other_balance", &x.OtherBalance),
		canonical.Bytes("self_signature", &x.SelfSignature),
		canonical.Bytes("other_signature", &x.OtherSignature),
	}
}

// Fields implements canonical.Record. It allows to store the channel locally
// and restore it into zero Channel.
func (c *Channel) Fields() []canonical.Field {
	return []canonical.Field{
		canonical.Address("self", &c.self),
		canonical.Address("other", &c.other),
		statusField("self_status", &c.selfStatus),
		statusField("other_status", &c.otherStatus),
		canonical.Custom("data",
			func(e *canonical.Encoder) {
				e.Option(c.data != nil, func() { e.Record(c.data) })
			},
			func(d *canonical.Decoder) {
				var data LocalData
				if d.Option(func() { d.Record(&data) }) {
					c.data = &data
				} else {
					c.data = nil
				}
			},
		),
	}
}

func statusField(name string, s *Status) canonical.Field {
	return canonical.Custom(name,
		func(e *canonical.Encoder) {
			e.Variant(uint32(s.Kind))
			if s.Kind == Unestablished {
				return
			}

			e.Variant(uint32(s.Resource.Kind()))
			e.Record(s.Resource)

			if s.Kind == Closed {
				e.Option(s.Proof != nil, func() { e.Record(s.Proof) })
			}
		},
		func(d *canonical.Decoder) {
			*s = Status{}

			kind := StatusKind(d.Variant(uint32(Unestablished), uint32(Open), uint32(Closed)))
			if d.Err() != nil || kind == Unestablished {
				return
			}

			known := []uint32{uint32(resource.KindChannelBalance)}
			if kind == Closed {
				known = append(known, uint32(resource.KindClosedChannel))
			}

			r := resource.Kind(d.Variant(known...)).New()
			if r == nil {
				d.Fail(fmt.Errorf("missing resource of %s channel side", kind))
				return
			}

			d.Record(r)

			s.Kind = kind
			s.Resource = r

			if kind == Closed {
				var proof resource.Proof
				if d.Option(func() { d.Record(&proof) }) {
					s.Proof = &proof
				}
			}
		},
	)
}
