package canonical

import (
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Encoder writes values in canonical form. The zero value is not usable, use
// NewEncoder.
type Encoder struct {
	w *io.BufBinWriter
}

// NewEncoder returns empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{w: io.NewBufBinWriter()}
}

// Encode returns canonical encoding of the given record.
func Encode(r Record) []byte {
	e := NewEncoder()
	e.Record(r)
	return e.Bytes()
}

// Bytes returns everything written so far. Encoder must not be used after.
func (e *Encoder) Bytes() []byte {
	return e.w.Bytes()
}

// U64 writes 8-byte little-endian integer.
func (e *Encoder) U64(v uint64) {
	e.w.WriteU64LE(v)
}

// U32 writes 4-byte little-endian integer.
func (e *Encoder) U32(v uint32) {
	e.w.WriteU32LE(v)
}

// ByteArray writes length-prefixed byte array.
func (e *Encoder) ByteArray(b []byte) {
	e.w.WriteU32LE(uint32(len(b)))
	e.w.WriteBytes(b)
}

// String writes length-prefixed UTF-8 string.
func (e *Encoder) String(s string) {
	e.ByteArray([]byte(s))
}

// Address writes fixed-width account address.
func (e *Encoder) Address(a util.Uint160) {
	e.w.WriteBytes(a[:])
}

// Bool writes single 0/1 byte.
func (e *Encoder) Bool(v bool) {
	e.w.WriteBool(v)
}

// Option writes presence tag and, if present, calls f to write the value.
func (e *Encoder) Option(present bool, f func()) {
	e.Bool(present)
	if present {
		f()
	}
}

// Count writes number of the following vector elements.
func (e *Encoder) Count(n int) {
	e.w.WriteU32LE(uint32(n))
}

// Variant writes discriminant of the tagged value that follows.
func (e *Encoder) Variant(tag uint32) {
	e.w.WriteU32LE(tag)
}

// Record writes fields of r in ascending order of their names.
func (e *Encoder) Record(r Record) {
	for _, f := range sortedFields(r) {
		f.enc(e)
	}
}
