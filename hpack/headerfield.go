package hpack

import "sync"

// HeaderField is a (name, value) pair as defined by §3 of the spec: names
// compare case-insensitively, and Sensitive marks a field that must only
// ever be emitted via the never-indexed literal representation.
//
// Grounded on github.com/dgrr/http2's HeaderField (headerField.go); renamed
// Sensitive (the teacher's "sensible" is clearly a name for "sensitive").
type HeaderField struct {
	Name, Value []byte
	Sensitive   bool
}

var fieldPool = sync.Pool{
	New: func() interface{} { return &HeaderField{} },
}

// AcquireHeaderField returns a HeaderField from the pool.
func AcquireHeaderField() *HeaderField {
	return fieldPool.Get().(*HeaderField)
}

// ReleaseHeaderField resets hf and returns it to the pool.
func ReleaseHeaderField(hf *HeaderField) {
	hf.Reset()
	fieldPool.Put(hf)
}

// Reset clears hf for reuse.
func (hf *HeaderField) Reset() {
	hf.Name = hf.Name[:0]
	hf.Value = hf.Value[:0]
	hf.Sensitive = false
}

// Size is the RFC 7541 §4.1 accounting size of the field.
func (hf *HeaderField) Size() int {
	return len(hf.Name) + len(hf.Value) + 32
}

// CopyTo copies hf's contents into other.
func (hf *HeaderField) CopyTo(other *HeaderField) {
	other.Name = append(other.Name[:0], hf.Name...)
	other.Value = append(other.Value[:0], hf.Value...)
	other.Sensitive = hf.Sensitive
}

// Clone returns a HeaderField with its own Name/Value backing arrays,
// safe to retain past hf's next mutation — callers that hold onto a
// decoded field past the decode loop that produced it (e.g. collecting
// every field in a block) must use this instead of dereferencing hf
// directly, since *hf only copies the slice headers, not the bytes
// they point at.
func (hf *HeaderField) Clone() HeaderField {
	return HeaderField{
		Name:      append([]byte(nil), hf.Name...),
		Value:     append([]byte(nil), hf.Value...),
		Sensitive: hf.Sensitive,
	}
}

// Set assigns name/value as strings.
func (hf *HeaderField) Set(name, value string) {
	hf.Name = append(hf.Name[:0], name...)
	hf.Value = append(hf.Value[:0], value...)
}

// SetBytes assigns name/value as byte slices, copying them.
func (hf *HeaderField) SetBytes(name, value []byte) {
	hf.Name = append(hf.Name[:0], name...)
	hf.Value = append(hf.Value[:0], value...)
}
