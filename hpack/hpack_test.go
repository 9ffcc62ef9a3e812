package hpack

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticTableLookup(t *testing.T) {
	name, value, ok := lookupStatic(2)
	require.True(t, ok)
	require.Equal(t, ":method", name)
	require.Equal(t, "GET", value)

	_, _, ok = lookupStatic(0)
	require.False(t, ok)

	_, _, ok = lookupStatic(62)
	require.False(t, ok) // out of static range, dynamic starts at 62
}

func TestIntegerRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 10, 126, 127, 128, 255, 1337, 1 << 20}
	for _, prefix := range []int{4, 5, 6, 7} {
		for _, n := range cases {
			dst := appendInt([]byte{0}, prefix, n)
			got, consumed, err := readInt(prefix, dst)
			require.NoError(t, err)
			require.Equal(t, len(dst), consumed)
			require.Equal(t, n, got)
		}
	}
}

func TestIntegerTruncated(t *testing.T) {
	dst := appendInt([]byte{0}, 5, 1337)
	_, _, err := readInt(5, dst[:1])
	require.ErrorIs(t, err, ErrTruncated)
}

func TestHuffmanRoundTrip(t *testing.T) {
	samples := [][]byte{
		[]byte(""),
		[]byte("www.example.com"),
		[]byte("no-cache"),
		[]byte("custom-key"),
		[]byte("custom-value"),
		bytes.Repeat([]byte("a"), 200),
	}
	for _, s := range samples {
		enc := HuffmanEncode(nil, s)
		dec, err := HuffmanDecode(nil, enc)
		require.NoError(t, err)
		require.Equal(t, string(s), string(dec))
	}
}

func TestHuffmanInvalidPadding(t *testing.T) {
	// A single zero byte decodes the 5-bit code 00000 ('0') and leaves
	// three zero bits over; padding must be all ones, so it is rejected.
	_, err := HuffmanDecode(nil, []byte{0x00})
	require.Error(t, err)
}

func TestDynamicTableEvictsOldestFirst(t *testing.T) {
	tbl := newDynamicTable(64)
	tbl.insert([]byte("a"), []byte("1"), false) // size 34
	tbl.insert([]byte("b"), []byte("2"), false) // size 34, total 68 > 64 -> evict "a"

	require.Equal(t, 1, tbl.Len())
	hf, ok := tbl.at(uint64(staticTableSize) + 1)
	require.True(t, ok)
	require.Equal(t, "b", string(hf.Name))
}

func TestDynamicTableEntryLargerThanCapIsDropped(t *testing.T) {
	tbl := newDynamicTable(16)
	tbl.insert([]byte("a"), []byte("1"), false)
	require.Equal(t, 0, tbl.Len())
	require.Equal(t, 0, tbl.Size())
}

func TestEncoderDecoderRoundTrip(t *testing.T) {
	enc := NewEncoder(4096)
	dec := NewDecoder(4096)

	fields := []HeaderField{
		{Name: []byte(":method"), Value: []byte("GET")},
		{Name: []byte(":path"), Value: []byte("/")},
		{Name: []byte("custom-key"), Value: []byte("custom-value")},
		{Name: []byte("authorization"), Value: []byte("secret"), Sensitive: true},
	}

	var block []byte
	for i := range fields {
		block = enc.AppendHeader(block, &fields[i], true)
	}

	// emit's HeaderField must own its Name/Value bytes: appending it
	// directly (no defensive copy here) still has to leave every earlier
	// field intact once later fields in the same block are decoded.
	var got []HeaderField
	err := dec.DecodeHeaderBlock(block, func(hf HeaderField) {
		got = append(got, hf)
	})
	require.NoError(t, err)
	require.Len(t, got, len(fields))
	for i := range fields {
		require.Equal(t, string(fields[i].Name), string(got[i].Name))
		require.Equal(t, string(fields[i].Value), string(got[i].Value))
	}
}

func TestEncoderReusesDynamicEntryAsIndexed(t *testing.T) {
	enc := NewEncoder(4096)
	hf := HeaderField{Name: []byte("custom-key"), Value: []byte("custom-value")}

	first := enc.AppendHeader(nil, &hf, true)
	second := enc.AppendHeader(nil, &hf, true)

	require.True(t, len(second) < len(first), "second encoding should be a short indexed reference")
	require.Equal(t, byte(0x80)|second[0]&0x80, second[0]&0x80)
}

func TestDecoderRejectsSizeUpdateAfterFirstInstruction(t *testing.T) {
	dec := NewDecoder(4096)
	hf := HeaderField{Name: []byte("a"), Value: []byte("b")}
	enc := NewEncoder(4096)

	block := enc.AppendHeader(nil, &hf, false)
	block = append(block, 0x20) // dynamic table size update, not at start

	err := dec.DecodeHeaderBlock(block, func(HeaderField) {})
	require.ErrorIs(t, err, ErrCompression)
}
