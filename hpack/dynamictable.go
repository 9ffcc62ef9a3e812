package hpack

// dynamicTable is the per-direction FIFO described by §3: newest entry at
// the lowest dynamic index (62), evicted from the oldest end once the cap
// is exceeded.
//
// Grounded on the table bookkeeping in github.com/dgrr/http2's hpack.go
// (legacy "fasthttp2"-package revision retrieved alongside the modern
// split files), reworked as its own type per this library's component
// split between [HPACK] and [FRAME].
type dynamicTable struct {
	entries []HeaderField // index 0 is the newest
	size    int           // sum of entries[i].Size()
	cap     int           // current negotiated bound
}

func newDynamicTable(cap int) *dynamicTable {
	return &dynamicTable{cap: cap}
}

// Len returns the number of entries currently in the table.
func (t *dynamicTable) Len() int {
	return len(t.entries)
}

// Size returns the total RFC 7541 §4.1 accounting size of the table.
func (t *dynamicTable) Size() int {
	return t.size
}

// Cap returns the table's current negotiated size bound.
func (t *dynamicTable) Cap() int {
	return t.cap
}

// at returns the entry at dynamic index idx (62-based, per §4.4: 62 is
// the newest).
func (t *dynamicTable) at(idx uint64) (HeaderField, bool) {
	i := idx - uint64(staticTableSize) - 1
	if i >= uint64(len(t.entries)) {
		return HeaderField{}, false
	}
	return t.entries[i], true
}

// insert adds a new entry at the front, evicting from the back until the
// table fits within cap. If the entry alone exceeds cap, the table is
// left empty and the entry is not inserted — this is valid, not an error.
func (t *dynamicTable) insert(name, value []byte, sensitive bool) {
	entrySize := len(name) + len(value) + 32

	for t.size+entrySize > t.cap && len(t.entries) > 0 {
		last := t.entries[len(t.entries)-1]
		t.size -= last.Size()
		t.entries = t.entries[:len(t.entries)-1]
	}

	if entrySize > t.cap {
		return
	}

	hf := HeaderField{
		Name:      append([]byte(nil), name...),
		Value:     append([]byte(nil), value...),
		Sensitive: sensitive,
	}

	t.entries = append(t.entries, HeaderField{})
	copy(t.entries[1:], t.entries[:len(t.entries)-1])
	t.entries[0] = hf
	t.size += entrySize
}

// setCap changes the table's negotiated size bound, evicting as needed.
// A decoder calls this both from a SETTINGS_HEADER_TABLE_SIZE change and
// from an in-band dynamic-table-size-update instruction; an encoder calls
// it only when choosing to shrink its own table.
func (t *dynamicTable) setCap(cap int) {
	t.cap = cap
	for t.size > t.cap && len(t.entries) > 0 {
		last := t.entries[len(t.entries)-1]
		t.size -= last.Size()
		t.entries = t.entries[:len(t.entries)-1]
	}
}
