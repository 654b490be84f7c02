/*
Package canonical implements the deterministic binary format used for
resources stored in the account state.

Primitives have a single fixed representation:

	u64      8 bytes, little-endian
	u32      4 bytes, little-endian (lengths, counts, discriminants)
	bytes    u32 length followed by raw bytes
	string   same as bytes, holds UTF-8
	address  20 raw bytes, no prefix
	bool     single byte, 0 or 1
	option   single byte tag, 0 (none) or 1 (some) followed by the value

Records are lists of named fields. Fields are written in ascending
lexicographic order of their names regardless of the order they are declared
in, which makes the encoding of each value unique. The rule applies to nested
records as well.
*/
package canonical
