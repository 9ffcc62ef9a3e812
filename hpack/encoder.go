package hpack

// Encoder is the write-side of an HPACK session: one per direction, per
// connection, holding its own dynamic table independent of its peer's
// decoder (the Decoder on the other end mirrors it by replaying the same
// instructions).
//
// Grounded on github.com/dgrr/http2's *HPACK type, split here into
// Encoder/Decoder to match the spec's "Encoder and decoder tables are
// independent per direction" (§3) more directly than the teacher's single
// bidirectional HPACK type.
type Encoder struct {
	table         *dynamicTable
	pendingResize bool
	newCap        int
}

// NewEncoder returns an Encoder with the given initial dynamic table cap
// (typically SETTINGS_HEADER_TABLE_SIZE's default of 4096).
func NewEncoder(cap int) *Encoder {
	return &Encoder{table: newDynamicTable(cap)}
}

// TableSize returns the encoder's current dynamic table size in bytes.
func (e *Encoder) TableSize() int {
	return e.table.Size()
}

// SetMaxTableSize requests a new cap for the encoder's dynamic table. The
// corresponding dynamic-table-size-update instruction is emitted at the
// start of the next header block written with AppendHeader.
func (e *Encoder) SetMaxTableSize(cap int) {
	e.pendingResize = true
	e.newCap = cap
}

// AppendHeader encodes hf as one HPACK instruction and appends it to dst.
// If store is true and hf isn't Sensitive, the encoder prefers incremental
// indexing (and inserts hf into its own dynamic table to stay in sync with
// the peer decoder); Sensitive fields are always sent as never-indexed
// literals regardless of store, per §4.4.
func (e *Encoder) AppendHeader(dst []byte, hf *HeaderField, store bool) []byte {
	if e.pendingResize {
		dst = append(dst, 0x20)
		dst = appendInt(dst, 5, uint64(e.newCap))
		e.table.setCap(e.newCap)
		e.pendingResize = false
	}

	nameIdx, fullIdx, hasFull := findStatic(hf.Name, hf.Value)
	if !hasFull {
		if di, ok := e.dynamicFullMatch(hf.Name, hf.Value); ok {
			fullIdx, hasFull = di, true
		}
	}
	if nameIdx == 0 {
		if di, ok := e.dynamicNameMatch(hf.Name); ok {
			nameIdx = di
		}
	}

	if hasFull && !hf.Sensitive {
		dst = append(dst, 0x80)
		return appendInt(dst, 7, fullIdx)
	}

	if hf.Sensitive {
		dst = e.appendLiteral(dst, 0x10, 4, nameIdx, hf.Name, hf.Value)
		return dst
	}

	if store {
		dst = e.appendLiteral(dst, 0x40, 6, nameIdx, hf.Name, hf.Value)
		e.table.insert(hf.Name, hf.Value, false)
		return dst
	}

	dst = e.appendLiteral(dst, 0x00, 4, nameIdx, hf.Name, hf.Value)
	return dst
}

func (e *Encoder) appendLiteral(dst []byte, leader byte, prefixBits int, nameIdx uint64, name, value []byte) []byte {
	dst = append(dst, leader)
	if nameIdx > 0 {
		dst = appendInt(dst, prefixBits, nameIdx)
	} else {
		// index 0 in the prefix (already the leader byte's zero value)
		// means a literal name follows.
		dst = appendString(dst, name)
	}
	return appendString(dst, value)
}

func (e *Encoder) dynamicFullMatch(name, value []byte) (uint64, bool) {
	for i, ent := range e.table.entries {
		if string(ent.Name) == string(name) && string(ent.Value) == string(value) {
			return uint64(staticTableSize + i + 1), true
		}
	}
	return 0, false
}

func (e *Encoder) dynamicNameMatch(name []byte) (uint64, bool) {
	for i, ent := range e.table.entries {
		if string(ent.Name) == string(name) {
			return uint64(staticTableSize + i + 1), true
		}
	}
	return 0, false
}
