package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/paychan/channel"
	"github.com/nspcc-dev/paychan/resource"
	"github.com/nspcc-dev/paychan/state"
)

// ErrChannelNotFound is returned when account has no channel with the
// requested counterparty.
var ErrChannelNotFound = errors.New("channel not found")

// Status describes whether the account exists on-chain.
type Status uint8

const (
	// StatusLocal means account exists only in the local wallet.
	StatusLocal Status = iota
	// StatusPersisted means account has been created on-chain.
	StatusPersisted
	// StatusUnknown means on-chain state could not be checked.
	StatusUnknown
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusLocal:
		return "local"
	case StatusPersisted:
		return "persisted"
	case StatusUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Account is the local account together with its off-chain channels. Account
// exclusively owns the channels: there is at most one channel per
// counterparty, and channels are addressed by the counterparty only.
//
// Account is not safe for concurrent use.
type Account struct {
	Address util.Uint160
	// Key is nil for accounts managed outside of the wallet.
	Key            *keys.PrivateKey
	SequenceNumber uint64
	Status         Status

	channels map[util.Uint160]*channel.Channel

	requests []channel.TransferRequest
	conforms []channel.TransferConform
}

// NewAccount returns Account without channels.
func NewAccount(addr util.Uint160, key *keys.PrivateKey, seq uint64, status Status) *Account {
	return &Account{
		Address:        addr,
		Key:            key,
		SequenceNumber: seq,
		Status:         status,
		channels:       make(map[util.Uint160]*channel.Channel),
	}
}

// NewAccountFromKey returns local Account addressed by the key's script hash.
func NewAccountFromKey(key *keys.PrivateKey) *Account {
	return NewAccount(key.GetScriptHash(), key, 0, StatusLocal)
}

// Channel returns channel with the counterparty, if any. Returned channel
// must not be retained across calls, see WithChannel.
func (a *Account) Channel(counterparty util.Uint160) (*channel.Channel, bool) {
	ch, ok := a.channels[counterparty]
	return ch, ok
}

// WithChannel calls f on the channel with the counterparty and returns its
// error. ErrChannelNotFound is returned if there is no such channel.
func (a *Account) WithChannel(counterparty util.Uint160, f func(*channel.Channel) error) error {
	ch, ok := a.channels[counterparty]
	if !ok {
		return fmt.Errorf("%w: %s", ErrChannelNotFound, counterparty.StringLE())
	}
	return f(ch)
}

// InsertChannel adds channel replacing the existing one with the same
// counterparty.
func (a *Account) InsertChannel(ch *channel.Channel) {
	if a.channels == nil {
		a.channels = make(map[util.Uint160]*channel.Channel)
	}
	a.channels[ch.Other()] = ch
}

// RemoveChannel drops channel with the counterparty. Returns false if there
// was no such channel.
func (a *Account) RemoveChannel(counterparty util.Uint160) bool {
	_, ok := a.channels[counterparty]
	delete(a.channels, counterparty)
	return ok
}

// Channels returns all channels sorted by counterparty.
func (a *Account) Channels() []*channel.Channel {
	res := make([]*channel.Channel, 0, len(a.channels))
	for _, ch := range a.channels {
		res = append(res, ch)
	}

	slices.SortFunc(res, func(x, y *channel.Channel) int {
		xo, yo := x.Other(), y.Other()
		return bytes.Compare(xo[:], yo[:])
	})

	return res
}

// AppendRequest records issued or received request.
func (a *Account) AppendRequest(req channel.TransferRequest) {
	a.requests = append(a.requests, req)
}

// AppendConform records issued or received conform.
func (a *Account) AppendConform(c channel.TransferConform) {
	a.conforms = append(a.conforms, c)
}

// Requests returns history of requests in order of appending.
func (a *Account) Requests() []channel.TransferRequest {
	return slices.Clone(a.requests)
}

// Conforms returns history of conforms in order of appending.
func (a *Account) Conforms() []channel.TransferConform {
	return slices.Clone(a.conforms)
}

// Signer returns signer of the account messages. Accounts without key sign
// nothing.
func (a *Account) Signer() channel.Signer {
	if a.Key == nil {
		return nil
	}
	return channel.KeySigner{Key: a.Key}
}

// Transfer issues request to move amount to the counterparty and records it.
func (a *Account) Transfer(counterparty util.Uint160, amount uint64) (channel.TransferRequest, error) {
	var req channel.TransferRequest

	err := a.WithChannel(counterparty, func(ch *channel.Channel) error {
		var err error
		req, err = ch.Transfer(amount, a.Signer())
		return err
	})
	if err != nil {
		return channel.TransferRequest{}, err
	}

	a.AppendRequest(req)

	return req, nil
}

// Conform accepts request received from its sender. Both request and issued
// conform are recorded.
func (a *Account) Conform(req channel.TransferRequest) (channel.TransferConform, error) {
	var conf channel.TransferConform

	err := a.WithChannel(req.Sender, func(ch *channel.Channel) error {
		var err error
		conf, err = ch.Conform(req, a.Signer())
		return err
	})
	if err != nil {
		return channel.TransferConform{}, err
	}

	a.AppendRequest(req)
	a.AppendConform(conf)

	return conf, nil
}

// ProcessConform applies conform received from its sender and records it.
func (a *Account) ProcessConform(conf channel.TransferConform) error {
	err := a.WithChannel(conf.Sender, func(ch *channel.Channel) error {
		return ch.ProcessTransferConform(conf)
	})
	if err != nil {
		return err
	}

	a.AppendConform(conf)

	return nil
}

// Sync updates channel with freshly fetched on-chain resource. Proof is
// optional.
func Sync(ch *channel.Channel, r resource.Resource, proof *resource.Proof) {
	ch.UpdateWithResource(r, proof)
}

// Reconcile syncs channel with the counterparty using decoded account states
// of both sides. Channel is created once any side's channel resource is
// observed. ErrChannelNotFound is returned if there is neither channel nor
// channel resources.
func (a *Account) Reconcile(counterparty util.Uint160, self, other *state.AccountState) (*channel.Channel, error) {
	selfRes, selfOK := self.ChannelSide(counterparty)
	otherRes, otherOK := other.ChannelSide(a.Address)

	ch, ok := a.channels[counterparty]
	if !ok {
		if !selfOK && !otherOK {
			return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, counterparty.StringLE())
		}

		ch = channel.New(a.Address, counterparty)
		a.InsertChannel(ch)
	}

	if selfOK {
		Sync(ch, selfRes, proofOf(self))
	}

	if otherOK {
		Sync(ch, otherRes, proofOf(other))
	}

	return ch, nil
}

func proofOf(s *state.AccountState) *resource.Proof {
	p, ok := s.Proof()
	if !ok {
		return nil
	}
	return p
}
