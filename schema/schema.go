// Package schema layers a structured, value-constrained view over a raw
// byte buffer. A Schema is built once, at package-init time, from an
// ordered list of fields; each field carries a meta descriptor (range,
// enum bound, string width, ...) that constrains what a write through its
// proxy can store. Two Views over the same bytes are perfectly aliased: a
// mutation through one is visible through the other immediately, because
// neither owns the storage — the byte slice does.
//
// There is no runtime reflection on the hot path: every proxy is a plain
// struct holding a byte-slice window and a pointer back to its field's
// constant configuration, so Get/Set/Reset compile down to a handful of
// loads and stores.
package schema

import "fmt"

// field is the common shape every meta-specific field descriptor embeds:
// its byte offset within the schema and its encoded size.
type field struct {
	offset int
	size   int
}

// Offset returns the field's byte offset within its schema.
func (f field) Offset() int { return f.offset }

// Size returns the field's encoded size in bytes.
func (f field) Size() int { return f.size }

// resetter is implemented by every field descriptor so Schema.Reset can
// cascade without knowing each field's concrete kind.
type resetter interface {
	resetInto(buf []byte)
}

// Schema is an ordered, fixed-layout list of fields over a byte buffer of
// Capacity() bytes. Build one with NewSchema, add fields in declaration
// order, and call Finalize to lock in the layout — Finalize is embedkit's
// stand-in for the "must fail to compile if size > capacity" rule spec.md
// describes; in Go, that check runs once at package-init time instead of at
// compile time, and panics just as unrecoverably if it fails.
type Schema struct {
	fields   []resetter
	size     int
	capacity int
	final    bool
}

// NewSchema returns an empty, unfinalized schema. Add fields with the
// AddXxx builder methods below, then call Finalize(capacity).
func NewSchema() *Schema {
	return &Schema{}
}

// Size returns the sum of every declared field's size, in declaration
// order. Valid only after Finalize.
func (s *Schema) Size() int { return s.size }

// Capacity returns the externally supplied capacity Finalize was called
// with. Bytes in [Size(), Capacity()) are reserved and never touched by
// Reset.
func (s *Schema) Capacity() int { return s.capacity }

func (s *Schema) nextOffset(size int) int {
	if s.final {
		panic("schema: cannot add fields to a finalized schema")
	}
	off := s.size
	s.size += size
	return off
}

func (s *Schema) register(f resetter) {
	s.fields = append(s.fields, f)
}

// Finalize locks the schema's layout against capacity. It panics if
// size > capacity, the closest Go analogue to a compile-time layout error.
func (s *Schema) Finalize(capacity int) *Schema {
	if s.size > capacity {
		panic(fmt.Sprintf("schema: size %d exceeds capacity %d", s.size, capacity))
	}
	s.capacity = capacity
	s.final = true
	return s
}

// Reset resets every field proxy in declaration order: list lengths go to
// zero, strings and scalars go to their declared defaults, nested schemas
// recurse. Bytes in [Size(), Capacity()) are untouched. buf must be at
// least Capacity() bytes.
func (s *Schema) Reset(buf []byte) {
	for _, f := range s.fields {
		f.resetInto(buf)
	}
}

// View is a non-owning handle over a caller-supplied byte buffer, sized to
// one schema's Capacity(). Field proxies are obtained by calling a field
// descriptor's In(view.Bytes()) method; the caller keeps the descriptors
// returned by the AddXxx builder methods for this.
type View struct {
	schema *Schema
	buf    []byte
}

// NewView wraps buf (which must be at least schema.Capacity() bytes) as a
// View over schema.
func NewView(s *Schema, buf []byte) *View {
	if len(buf) < s.capacity {
		panic("schema: buffer shorter than schema capacity")
	}
	return &View{schema: s, buf: buf}
}

// Bytes returns the buffer this view wraps, letting a field descriptor's
// In() method bind to it.
func (v *View) Bytes() []byte { return v.buf }

// Reset resets every field through this view.
func (v *View) Reset() { v.schema.Reset(v.buf) }

// Buffer is a View plus its own owned storage. Buffer.Reset initializes a
// freshly allocated Buffer to every field's declared default.
type Buffer struct {
	View
	storage []byte
}

// NewBuffer allocates Capacity() bytes of owned storage and returns a
// Buffer with that storage already reset to field defaults.
func NewBuffer(s *Schema) *Buffer {
	storage := make([]byte, s.capacity)
	b := &Buffer{View: View{schema: s, buf: storage}, storage: storage}
	b.Reset()
	return b
}
