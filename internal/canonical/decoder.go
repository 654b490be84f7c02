package canonical

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// ErrDecode is returned (wrapped) on any malformed input: truncated data,
// trailing bytes, length prefix exceeding the rest of the buffer or unknown
// discriminant.
var ErrDecode = errors.New("malformed canonical data")

// Decoder reads values in canonical form. The first failure is sticky: all
// subsequent reads return zero values and Err reports the failure.
type Decoder struct {
	buf *bytes.Reader
	r   *io.BinReader
}

// NewDecoder returns Decoder reading b.
func NewDecoder(b []byte) *Decoder {
	buf := bytes.NewReader(b)
	return &Decoder{
		buf: buf,
		r:   io.NewBinReaderFromIO(buf),
	}
}

// Decode reads r from b. All bytes of b must be consumed.
func Decode(b []byte, r Record) error {
	d := NewDecoder(b)
	d.Record(r)
	return d.Finish()
}

// Err returns the first failure, if any.
func (d *Decoder) Err() error {
	if d.r.Err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrDecode, d.r.Err)
}

// Finish checks that the whole input is consumed and returns Err.
func (d *Decoder) Finish() error {
	if d.r.Err == nil && d.buf.Len() > 0 {
		d.fail(fmt.Errorf("%d trailing bytes", d.buf.Len()))
	}
	return d.Err()
}

// Remaining returns number of unread bytes.
func (d *Decoder) Remaining() int {
	return d.buf.Len()
}

// Fail marks decoding failed unless it has already failed. It is used by
// custom field decoders to reject values the format itself accepts.
func (d *Decoder) Fail(err error) {
	d.fail(err)
}

func (d *Decoder) fail(err error) {
	if d.r.Err == nil {
		d.r.Err = err
	}
}

// U64 reads 8-byte little-endian integer.
func (d *Decoder) U64() uint64 {
	return d.r.ReadU64LE()
}

// U32 reads 4-byte little-endian integer.
func (d *Decoder) U32() uint32 {
	return d.r.ReadU32LE()
}

// ByteArray reads length-prefixed byte array. Declared length is checked
// against the remaining input before allocation.
func (d *Decoder) ByteArray() []byte {
	n := d.r.ReadU32LE()
	if d.r.Err != nil {
		return nil
	}

	if uint64(n) > uint64(d.buf.Len()) {
		d.fail(fmt.Errorf("byte array length %d exceeds remaining %d bytes", n, d.buf.Len()))
		return nil
	}

	if n == 0 {
		return nil
	}

	b := make([]byte, n)
	d.r.ReadBytes(b)
	if d.r.Err != nil {
		return nil
	}

	return b
}

// String reads length-prefixed UTF-8 string.
func (d *Decoder) String() string {
	return string(d.ByteArray())
}

// Address reads fixed-width account address.
func (d *Decoder) Address() util.Uint160 {
	var a util.Uint160
	d.r.ReadBytes(a[:])
	if d.r.Err != nil {
		return util.Uint160{}
	}
	return a
}

// Bool reads single 0/1 byte.
func (d *Decoder) Bool() bool {
	b := d.r.ReadB()
	if d.r.Err != nil {
		return false
	}

	switch b {
	case 0:
		return false
	case 1:
		return true
	default:
		d.fail(fmt.Errorf("invalid boolean discriminant %d", b))
		return false
	}
}

// Option reads presence tag and, if present, calls f to read the value.
// Returns presence flag.
func (d *Decoder) Option(f func()) bool {
	present := d.Bool()
	if present && d.r.Err == nil {
		f()
	}
	return present && d.r.Err == nil
}

// Count reads number of the following vector elements. Every element takes at
// least one byte, so counts exceeding the rest of the input are rejected.
func (d *Decoder) Count() int {
	n := d.r.ReadU32LE()
	if d.r.Err != nil {
		return 0
	}

	if uint64(n) > uint64(d.buf.Len()) {
		d.fail(fmt.Errorf("element count %d exceeds remaining %d bytes", n, d.buf.Len()))
		return 0
	}

	return int(n)
}

// Variant reads discriminant and checks it against the known set.
func (d *Decoder) Variant(known ...uint32) uint32 {
	tag := d.r.ReadU32LE()
	if d.r.Err != nil {
		return 0
	}

	if !slices.Contains(known, tag) {
		d.fail(fmt.Errorf("unknown discriminant %d", tag))
		return 0
	}

	return tag
}

// Record reads fields of r in ascending order of their names.
func (d *Decoder) Record(r Record) {
	for _, f := range sortedFields(r) {
		if d.r.Err != nil {
			return
		}
		f.dec(d)
	}
}
