package ledger

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/paychan/channel"
	"github.com/nspcc-dev/paychan/internal/canonical"
)

// Fields implements canonical.Record.
func (a *Account) Fields() []canonical.Field {
	return []canonical.Field{
		canonical.Address("address", &a.Address),
		canonical.U64("sequence_number", &a.SequenceNumber),
		canonical.Custom("key", a.encodeKey, a.decodeKey),
		canonical.Custom("status",
			func(e *canonical.Encoder) { e.Variant(uint32(a.Status)) },
			func(d *canonical.Decoder) {
				a.Status = Status(d.Variant(uint32(StatusLocal), uint32(StatusPersisted), uint32(StatusUnknown)))
			},
		),
		canonical.Custom("channels", a.encodeChannels, a.decodeChannels),
		canonical.Custom("transfer_requests", a.encodeRequests, a.decodeRequests),
		canonical.Custom("transfer_conforms", a.encodeConforms, a.decodeConforms),
	}
}

func (a *Account) encodeKey(e *canonical.Encoder) {
	e.Option(a.Key != nil, func() { e.ByteArray(a.Key.Bytes()) })
}

func (a *Account) decodeKey(d *canonical.Decoder) {
	a.Key = nil

	var b []byte
	if !d.Option(func() { b = d.ByteArray() }) {
		return
	}

	key, err := keys.NewPrivateKeyFromBytes(b)
	if err != nil {
		d.Fail(fmt.Errorf("invalid private key: %w", err))
		return
	}

	a.Key = key
}

func (a *Account) encodeChannels(e *canonical.Encoder) {
	chs := a.Channels()

	e.Count(len(chs))
	for i := range chs {
		e.Record(chs[i])
	}
}

func (a *Account) decodeChannels(d *canonical.Decoder) {
	n := d.Count()

	a.channels = make(map[util.Uint160]*channel.Channel, n)

	for range n {
		ch := new(channel.Channel)
		d.Record(ch)
		if d.Err() != nil {
			return
		}

		if _, ok := a.channels[ch.Other()]; ok {
			d.Fail(fmt.Errorf("duplicated channel with %s", ch.Other().StringLE()))
			return
		}

		a.channels[ch.Other()] = ch
	}
}

func (a *Account) encodeRequests(e *canonical.Encoder) {
	e.Count(len(a.requests))
	for i := range a.requests {
		e.ByteArray(a.requests[i].Bytes())
	}
}

func (a *Account) decodeRequests(d *canonical.Decoder) {
	a.requests = nil

	for range d.Count() {
		req, err := channel.UnmarshalRequest(d.ByteArray())
		if d.Err() != nil {
			return
		}
		if err != nil {
			d.Fail(err)
			return
		}

		a.requests = append(a.requests, req)
	}
}

func (a *Account) encodeConforms(e *canonical.Encoder) {
	e.Count(len(a.conforms))
	for i := range a.conforms {
		e.ByteArray(a.conforms[i].Bytes())
	}
}

func (a *Account) decodeConforms(d *canonical.Decoder) {
	a.conforms = nil

	for range d.Count() {
		conf, err := channel.UnmarshalConform(d.ByteArray())
		if d.Err() != nil {
			return
		}
		if err != nil {
			d.Fail(err)
			return
		}

		a.conforms = append(a.conforms, conf)
	}
}

// Bytes returns canonical encoding of the account.
func (a *Account) Bytes() []byte {
	return canonical.Encode(a)
}

// Unmarshal decodes account encoded by Bytes.
func Unmarshal(b []byte) (*Account, error) {
	a := new(Account)
	if err := canonical.Decode(b, a); err != nil {
		return nil, err
	}
	return a, nil
}
