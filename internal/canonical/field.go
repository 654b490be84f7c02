package canonical

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Record is a composite value with named fields. Fields must return pointers
// to the record's own storage so that the same list serves both encoding and
// decoding.
type Record interface {
	Fields() []Field
}

// Field is a single named member of a Record.
type Field struct {
	Name string

	enc func(*Encoder)
	dec func(*Decoder)
}

// U64 binds named uint64 field.
func U64(name string, v *uint64) Field {
	return Field{
		Name: name,
		enc:  func(e *Encoder) { e.U64(*v) },
		dec:  func(d *Decoder) { *v = d.U64() },
	}
}

// Bytes binds named variable-length byte array field.
func Bytes(name string, v *[]byte) Field {
	return Field{
		Name: name,
		enc:  func(e *Encoder) { e.ByteArray(*v) },
		dec:  func(d *Decoder) { *v = d.ByteArray() },
	}
}

// String binds named string field.
func String(name string, v *string) Field {
	return Field{
		Name: name,
		enc:  func(e *Encoder) { e.String(*v) },
		dec:  func(d *Decoder) { *v = d.String() },
	}
}

// Address binds named account address field.
func Address(name string, v *util.Uint160) Field {
	return Field{
		Name: name,
		enc:  func(e *Encoder) { e.Address(*v) },
		dec:  func(d *Decoder) { *v = d.Address() },
	}
}

// Bool binds named boolean field.
func Bool(name string, v *bool) Field {
	return Field{
		Name: name,
		enc:  func(e *Encoder) { e.Bool(*v) },
		dec:  func(d *Decoder) { *v = d.Bool() },
	}
}

// Nested binds named field holding another record.
func Nested(name string, r Record) Field {
	return Field{
		Name: name,
		enc:  func(e *Encoder) { e.Record(r) },
		dec:  func(d *Decoder) { d.Record(r) },
	}
}

// Custom binds named field with user-defined encoding. It is used for
// options, vectors and tagged variants which need to allocate on decoding.
func Custom(name string, enc func(*Encoder), dec func(*Decoder)) Field {
	return Field{
		Name: name,
		enc:  enc,
		dec:  dec,
	}
}

// sortedFields returns record fields in encoding order. Duplicate names break
// uniqueness of the encoding, they are considered a programming error.
func sortedFields(r Record) []Field {
	fs := slices.Clone(r.Fields())
	slices.SortFunc(fs, func(a, b Field) int {
		return strings.Compare(a.Name, b.Name)
	})

	for i := 1; i < len(fs); i++ {
		if fs[i].Name == fs[i-1].Name {
			panic(fmt.Sprintf("duplicate field '%s' in %T", fs[i].Name, r))
		}
	}

	return fs
}
