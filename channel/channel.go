package channel

import (
	"bytes"
	"fmt"
	"math"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/paychan/resource"
)

// LocalData is the off-chain state both parties agreed on. Balances are given
// from the local point of view.
type LocalData struct {
	Version        uint64
	SelfBalance    uint64
	OtherBalance   uint64
	SelfSignature  []byte
	OtherSignature []byte
}

// TotalBalance returns sum of both balances. The flag is false on overflow.
func (x LocalData) TotalBalance() (uint64, bool) {
	return add(x.SelfBalance, x.OtherBalance)
}

func (x LocalData) clone() LocalData {
	x.SelfSignature = bytes.Clone(x.SelfSignature)
	x.OtherSignature = bytes.Clone(x.OtherSignature)
	return x
}

// Channel is the local account's view of the channel with the counterparty.
type Channel struct {
	self  util.Uint160
	other util.Uint160

	selfStatus  Status
	otherStatus Status

	data *LocalData
}

// New returns Channel between local account and the counterparty with both
// sides unestablished.
func New(self, other util.Uint160) *Channel {
	return &Channel{
		self:  self,
		other: other,
	}
}

// Self returns local account address.
func (c *Channel) Self() util.Uint160 {
	return c.self
}

// Other returns counterparty address.
func (c *Channel) Other() util.Uint160 {
	return c.other
}

// SelfStatus returns on-chain status of the local side.
func (c *Channel) SelfStatus() Status {
	return c.selfStatus
}

// OtherStatus returns on-chain status of the counterparty side.
func (c *Channel) OtherStatus() Status {
	return c.otherStatus
}

// Data returns copy of the agreed off-chain state. The flag is false until
// the first transfer completes.
func (c *Channel) Data() (LocalData, bool) {
	if c.data == nil {
		return LocalData{}, false
	}
	return c.data.clone(), true
}

// IsReady checks whether both sides are open.
func (c *Channel) IsReady() bool {
	return c.selfStatus.IsOpen() && c.otherStatus.IsOpen()
}

// UpdateWithResource syncs side status with the on-chain channel resource.
// Resource referencing the counterparty belongs to the local side, resource
// referencing the local account belongs to the counterparty side. Proof is
// recorded for closed sides only. Unrelated resources are ignored.
func (c *Channel) UpdateWithResource(r resource.Resource, proof *resource.Proof) {
	ref, ok := resource.Counterparty(r)
	if !ok {
		return
	}

	var st Status
	switch v := r.(type) {
	case *resource.ClosedChannel:
		st = ClosedStatus(v, proof)
	case *resource.ChannelBalance:
		st = OpenStatus(v)
	}

	switch {
	case ref.Equals(c.other):
		c.selfStatus = st
	case ref.Equals(c.self):
		c.otherStatus = st
	}
}

// Transfer proposes to move amount from the local side to the counterparty.
// The channel is not modified: local state changes after the counterparty
// conforms, see ProcessTransferConform.
func (c *Channel) Transfer(amount uint64, signer Signer) (TransferRequest, error) {
	if !c.IsReady() {
		return TransferRequest{}, ErrNotReady
	}

	req := TransferRequest{
		Sender: c.self,
		Amount: amount,
	}

	var selfBalance, otherBalance uint64

	if c.data != nil {
		if c.data.Version == math.MaxUint64 {
			return TransferRequest{}, fmt.Errorf("%w: version %d can not be incremented", ErrVersionMismatch, c.data.Version)
		}

		req.Version = c.data.Version + 1
		selfBalance, otherBalance = c.data.SelfBalance, c.data.OtherBalance
	} else {
		req.Version = 1
		selfBalance, _ = c.selfStatus.Coin()
		otherBalance, _ = c.otherStatus.Coin()
	}

	if selfBalance < amount {
		return TransferRequest{}, fmt.Errorf("%w: have %d, transfer %d", ErrInsufficientBalance, selfBalance, amount)
	}

	// counterparty is credited in both branches: Conform rejects any other
	// claim
	credited, ok := add(otherBalance, amount)
	if !ok {
		return TransferRequest{}, fmt.Errorf("%w: counterparty balance overflow", ErrBalanceMismatch)
	}

	req.SelfBalance = selfBalance - amount
	req.OtherBalance = credited
	req.Signature = sign(signer, req.signedData())

	return req, nil
}

// Conform validates the counterparty's request against the local state,
// applies it and returns acceptance to be sent back. On the first transfer
// the initial local state is created from on-chain balances.
func (c *Channel) Conform(req TransferRequest, signer Signer) (TransferConform, error) {
	if !c.IsReady() {
		return TransferConform{}, ErrNotReady
	}

	reqTotal, ok := req.TotalBalance()
	if !ok {
		return TransferConform{}, fmt.Errorf("%w: request total overflows", ErrBalanceMismatch)
	}

	var next LocalData

	if c.data != nil {
		if c.data.Version == math.MaxUint64 || req.Version != c.data.Version+1 {
			return TransferConform{}, fmt.Errorf("%w: local %d, requested %d", ErrVersionMismatch, c.data.Version, req.Version)
		}

		expected, ok := add(c.data.SelfBalance, req.Amount)
		if !ok || expected != req.OtherBalance {
			return TransferConform{}, fmt.Errorf("%w: local balance %d plus amount %d does not match claimed %d",
				ErrBalanceMismatch, c.data.SelfBalance, req.Amount, req.OtherBalance)
		}

		total, ok := c.data.TotalBalance()
		if !ok || total != reqTotal {
			return TransferConform{}, fmt.Errorf("%w: local total %d, requested total %d", ErrBalanceMismatch, total, reqTotal)
		}

		next = c.data.clone()
	} else {
		if req.Version != 1 {
			return TransferConform{}, fmt.Errorf("%w: first transfer must have version 1, got %d", ErrVersionMismatch, req.Version)
		}

		selfCoin, _ := c.selfStatus.Coin()
		otherCoin, _ := c.otherStatus.Coin()

		if otherCoin < req.Amount {
			return TransferConform{}, fmt.Errorf("%w: counterparty has %d, transfer %d", ErrInsufficientBalance, otherCoin, req.Amount)
		}

		total, ok := add(selfCoin, otherCoin)
		if !ok || total != reqTotal {
			return TransferConform{}, fmt.Errorf("%w: on-chain total %d, requested total %d", ErrBalanceMismatch, total, reqTotal)
		}

		expected, ok := add(selfCoin, req.Amount)
		if !ok || expected != req.OtherBalance {
			return TransferConform{}, fmt.Errorf("%w: on-chain balance %d plus amount %d does not match claimed %d",
				ErrBalanceMismatch, selfCoin, req.Amount, req.OtherBalance)
		}
	}

	sig := sign(signer, req.Bytes())

	next.Version = req.Version
	next.SelfBalance = req.OtherBalance
	next.OtherBalance = req.SelfBalance
	next.OtherSignature = bytes.Clone(req.Signature)
	next.SelfSignature = sig

	c.data = &next

	return TransferConform{
		Sender:    c.self,
		Signature: bytes.Clone(sig),
		Request:   req,
	}, nil
}

// ProcessTransferConform applies the state accepted by the counterparty.
func (c *Channel) ProcessTransferConform(conform TransferConform) error {
	if !c.IsReady() {
		return ErrNotReady
	}

	// TODO: compare conform.Request with the last request issued by Transfer
	c.data = &LocalData{
		Version:        conform.Request.Version,
		SelfBalance:    conform.Request.SelfBalance,
		OtherBalance:   conform.Request.OtherBalance,
		SelfSignature:  bytes.Clone(conform.Request.Signature),
		OtherSignature: bytes.Clone(conform.Signature),
	}

	return nil
}

// CloseArgs returns agreed state to be submitted on-chain as a proof when the
// channel is closed. The flag is false if no off-chain transfer happened, in
// this case the channel is closed without proof.
func (c *Channel) CloseArgs() (LocalData, bool) {
	return c.Data()
}
