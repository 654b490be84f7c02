package channel

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"math/bits"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// MaxSignatureSize limits signatures carried by the protocol messages.
const MaxSignatureSize = 1024

// TransferRequest is the balance update proposed by the paying side. Balances
// are given from the requester's point of view.
type TransferRequest struct {
	Sender       util.Uint160
	Version      uint64
	Amount       uint64
	SelfBalance  uint64
	OtherBalance uint64
	Signature    []byte
}

// TotalBalance returns sum of both balances. The flag is false on overflow.
func (x TransferRequest) TotalBalance() (uint64, bool) {
	return add(x.SelfBalance, x.OtherBalance)
}

// EncodeBinary implements io.Serializable.
func (x *TransferRequest) EncodeBinary(w *io.BinWriter) {
	x.encodeUnsigned(w)
	w.WriteVarBytes(x.Signature)
}

func (x *TransferRequest) encodeUnsigned(w *io.BinWriter) {
	x.Sender.EncodeBinary(w)
	w.WriteU64LE(x.Version)
	w.WriteU64LE(x.Amount)
	w.WriteU64LE(x.SelfBalance)
	w.WriteU64LE(x.OtherBalance)
}

// DecodeBinary implements io.Serializable.
func (x *TransferRequest) DecodeBinary(r *io.BinReader) {
	x.Sender.DecodeBinary(r)
	x.Version = r.ReadU64LE()
	x.Amount = r.ReadU64LE()
	x.SelfBalance = r.ReadU64LE()
	x.OtherBalance = r.ReadU64LE()
	x.Signature = readSignature(r)
}

// signedData returns data covered by the requester's signature.
func (x *TransferRequest) signedData() []byte {
	w := io.NewBufBinWriter()
	x.encodeUnsigned(w.BinWriter)
	return w.Bytes()
}

// Bytes returns binary message encoding.
func (x *TransferRequest) Bytes() []byte {
	return toBytes(x)
}

// TransferConform is the responder's acceptance of the TransferRequest.
type TransferConform struct {
	// Sender is the responder.
	Sender    util.Uint160
	Signature []byte
	Request   TransferRequest
}

// EncodeBinary implements io.Serializable.
func (x *TransferConform) EncodeBinary(w *io.BinWriter) {
	x.Sender.EncodeBinary(w)
	w.WriteVarBytes(x.Signature)
	x.Request.EncodeBinary(w)
}

// DecodeBinary implements io.Serializable.
func (x *TransferConform) DecodeBinary(r *io.BinReader) {
	x.Sender.DecodeBinary(r)
	x.Signature = readSignature(r)
	x.Request.DecodeBinary(r)
}

// Bytes returns binary message encoding.
func (x *TransferConform) Bytes() []byte {
	return toBytes(x)
}

// EncodeRequest returns HEX text of the request to be passed to the
// counterparty.
func EncodeRequest(req TransferRequest) string {
	return hex.EncodeToString(req.Bytes())
}

// DecodeRequest parses HEX text produced by EncodeRequest.
func DecodeRequest(s string) (TransferRequest, error) {
	var res TransferRequest
	return res, fromHex(s, &res)
}

// EncodeConform returns HEX text of the conform to be passed to the
// counterparty.
func EncodeConform(c TransferConform) string {
	return hex.EncodeToString(c.Bytes())
}

// DecodeConform parses HEX text produced by EncodeConform.
func DecodeConform(s string) (TransferConform, error) {
	var res TransferConform
	return res, fromHex(s, &res)
}

// UnmarshalRequest decodes binary request produced by TransferRequest.Bytes.
func UnmarshalRequest(b []byte) (TransferRequest, error) {
	var res TransferRequest
	return res, fromBytes(b, &res)
}

// UnmarshalConform decodes binary conform produced by TransferConform.Bytes.
func UnmarshalConform(b []byte) (TransferConform, error) {
	var res TransferConform
	return res, fromBytes(b, &res)
}

func toBytes(s io.Serializable) []byte {
	w := io.NewBufBinWriter()
	s.EncodeBinary(w.BinWriter)
	return w.Bytes()
}

func fromHex(s string, dst io.Serializable) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("decode HEX: %w", err)
	}

	return fromBytes(b, dst)
}

func fromBytes(b []byte, dst io.Serializable) error {
	buf := bytes.NewReader(b)
	r := io.NewBinReaderFromIO(buf)

	dst.DecodeBinary(r)
	if r.Err != nil {
		return fmt.Errorf("decode binary message: %w", r.Err)
	}

	if buf.Len() > 0 {
		return errors.New("trailing bytes after message")
	}

	// var-int prefixes may be non-minimal
	if !bytes.Equal(toBytes(dst), b) {
		return errors.New("non-canonical message encoding")
	}

	return nil
}

func readSignature(r *io.BinReader) []byte {
	b := r.ReadVarBytes(MaxSignatureSize)
	if len(b) == 0 {
		return nil
	}
	return b
}

func add(a, b uint64) (uint64, bool) {
	s, carry := bits.Add64(a, b, 0)
	return s, carry == 0
}
