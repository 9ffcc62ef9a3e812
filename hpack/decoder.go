package hpack

// Decoder is the read-side of an HPACK session. One Decoder tracks one
// direction's dynamic table; it is driven by DecodeHeaderBlock once per
// reassembled HEADERS(+CONTINUATION...) block.
type Decoder struct {
	table  *dynamicTable
	maxCap int // the cap negotiated via SETTINGS_HEADER_TABLE_SIZE
}

// NewDecoder returns a Decoder with the given initial dynamic table cap.
func NewDecoder(cap int) *Decoder {
	return &Decoder{table: newDynamicTable(cap), maxCap: cap}
}

// TableSize returns the decoder's current dynamic table size in bytes.
func (d *Decoder) TableSize() int {
	return d.table.Size()
}

// SetMaxCap updates the upper bound a dynamic-table-size-update instruction
// may request, mirroring a local SETTINGS_HEADER_TABLE_SIZE change. If the
// new bound is below the table's current cap, entries are evicted to fit.
func (d *Decoder) SetMaxCap(cap int) {
	d.maxCap = cap
	if d.table.cap > cap {
		d.table.setCap(cap)
	}
}

// DecodeHeaderBlock decodes one full header block (all instructions from a
// HEADERS frame plus any CONTINUATION frames already reassembled into one
// slice) and calls emit for each field in wire order. Dynamic-table-size
// updates are only legal as a contiguous run at the very start of the
// block; anything else after the first non-size-update instruction, or a
// requested size above maxCap, is ErrCompression.
func (d *Decoder) DecodeHeaderBlock(block []byte, emit func(HeaderField)) error {
	hf := AcquireHeaderField()
	defer ReleaseHeaderField(hf)

	atStart := true

	for len(block) > 0 {
		leader := block[0]

		switch {
		case leader&0x80 != 0: // indexed header field
			atStart = false
			idx, n, err := readInt(7, block)
			if err != nil {
				return ErrCompression
			}
			if idx == 0 {
				return ErrCompression
			}
			name, value, ok := d.lookup(idx)
			if !ok {
				return ErrCompression
			}
			hf.Reset()
			hf.SetBytes(name, value)
			emit(hf.Clone())
			block = block[n:]

		case leader&0xc0 == 0x40: // literal with incremental indexing
			atStart = false
			n, err := d.readLiteral(hf, block, 6, false)
			if err != nil {
				return err
			}
			d.table.insert(hf.Name, hf.Value, false)
			emit(hf.Clone())
			block = block[n:]

		case leader&0xf0 == 0x00: // literal without indexing
			atStart = false
			n, err := d.readLiteral(hf, block, 4, false)
			if err != nil {
				return err
			}
			emit(hf.Clone())
			block = block[n:]

		case leader&0xf0 == 0x10: // literal never indexed
			atStart = false
			n, err := d.readLiteral(hf, block, 4, true)
			if err != nil {
				return err
			}
			emit(hf.Clone())
			block = block[n:]

		case leader&0xe0 == 0x20: // dynamic table size update
			if !atStart {
				return ErrCompression
			}
			cap, n, err := readInt(5, block)
			if err != nil {
				return ErrCompression
			}
			if cap > uint64(d.maxCap) {
				return ErrCompression
			}
			d.table.setCap(int(cap))
			block = block[n:]

		default:
			return ErrCompression
		}
	}

	return nil
}

func (d *Decoder) readLiteral(hf *HeaderField, block []byte, prefixBits int, sensitive bool) (int, error) {
	idx, n, err := readInt(prefixBits, block)
	if err != nil {
		return 0, ErrCompression
	}

	hf.Reset()
	hf.Sensitive = sensitive

	rest := block[n:]
	consumed := n

	if idx == 0 {
		var nn int
		hf.Name, nn, err = readString(hf.Name, rest)
		if err != nil {
			return 0, ErrCompression
		}
		rest = rest[nn:]
		consumed += nn
	} else {
		name, _, ok := d.lookup(idx)
		if !ok {
			return 0, ErrCompression
		}
		hf.Name = append(hf.Name[:0], name...)
	}

	vn := 0
	var verr error
	hf.Value, vn, verr = readString(hf.Value, rest)
	if verr != nil {
		return 0, ErrCompression
	}
	consumed += vn

	return consumed, nil
}

// lookup resolves a combined static/dynamic index (§4.4: 1..61 static,
// 62.. dynamic with 62 newest).
func (d *Decoder) lookup(idx uint64) (name, value []byte, ok bool) {
	if n, v, found := lookupStatic(idx); found {
		return []byte(n), []byte(v), true
	}
	if hf, found := d.table.at(idx); found {
		return hf.Name, hf.Value, true
	}
	return nil, nil, false
}
