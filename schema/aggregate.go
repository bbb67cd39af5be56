package schema

import "unsafe"

// Serializer encodes and decodes a T to and from a fixed-width byte window.
// Width must return the same constant value on every call; Encode and
// Decode must each treat exactly that many bytes.
type Serializer[T any] interface {
	Width() int
	Encode(v T, out []byte)
	Decode(in []byte) T
}

// bitcopySerializer is the default Serializer: a raw reinterpretation of a
// plain-old-data T's memory as bytes. It is only safe for types with no
// pointers, slices, maps, or interfaces — embedkit does not check this, the
// same trust boundary the teacher's cache-line padding structs already
// lean on.
type bitcopySerializer[T any] struct{}

func (bitcopySerializer[T]) Width() int { return int(unsafe.Sizeof(*new(T))) }

func (bitcopySerializer[T]) Encode(v T, out []byte) {
	*(*T)(unsafe.Pointer(&out[0])) = v
}

func (bitcopySerializer[T]) Decode(in []byte) T {
	return *(*T)(unsafe.Pointer(&in[0]))
}

// BitcopySerializer returns the default bit-copy Serializer for T.
func BitcopySerializer[T any]() Serializer[T] { return bitcopySerializer[T]{} }

// StructField is a fixed-width field holding a value of type T, encoded
// through a Serializer.
type StructField[T any] struct {
	field
	ser Serializer[T]
	def T
}

// AddStruct declares a struct-valued field on s using ser to encode and
// decode T, defaulting to def on Reset.
func AddStruct[T any](s *Schema, ser Serializer[T], def T) *StructField[T] {
	w := ser.Width()
	f := &StructField[T]{field: field{offset: s.nextOffset(w), size: w}, ser: ser, def: def}
	s.register(f)
	return f
}

func (f *StructField[T]) resetInto(buf []byte) {
	f.ser.Encode(f.def, buf[f.offset:f.offset+f.size])
}

// In binds this field to buf, returning a short-lived proxy.
func (f *StructField[T]) In(buf []byte) StructProxy[T] { return StructProxy[T]{f: f, buf: buf} }

// StructProxy is a short-lived view of one StructField within a buffer.
type StructProxy[T any] struct {
	f   *StructField[T]
	buf []byte
}

// Get decodes and returns the stored value.
func (p StructProxy[T]) Get() T { return p.f.ser.Decode(p.buf[p.f.offset : p.f.offset+p.f.size]) }

// Set encodes v into the field's storage.
func (p StructProxy[T]) Set(v T) { p.f.ser.Encode(v, p.buf[p.f.offset:p.f.offset+p.f.size]) }

// Reset stores the field's configured default.
func (p StructProxy[T]) Reset() { p.f.resetInto(p.buf) }

// ArrayField is a fixed count of elements of kind M, each accessed through
// M's own proxy so per-element clamping and defaulting apply exactly as
// they would to a standalone field of that kind. This mirrors jjreg_array's
// element accessor, which hands back a jjreg_proxy<Meta> rather than a raw
// byte window.
type ArrayField[V any, M ElementMeta[V]] struct {
	field
	meta  M
	Count int
}

// AddArray declares an array of count elements described by meta.
func AddArray[V any, M ElementMeta[V]](s *Schema, meta M, count int) *ArrayField[V, M] {
	elemSize := meta.Size()
	f := &ArrayField[V, M]{
		field: field{offset: s.nextOffset(elemSize * count), size: elemSize * count},
		meta:  meta,
		Count: count,
	}
	s.register(f)
	return f
}

func (f *ArrayField[V, M]) elementOffset(i int) int { return f.offset + i*f.meta.Size() }

func (f *ArrayField[V, M]) resetInto(buf []byte) {
	for i := 0; i < f.Count; i++ {
		start := f.elementOffset(i)
		f.meta.Encode(f.meta.Default(), buf[start:start+f.meta.Size()])
	}
}

// In binds this field to buf, returning a short-lived proxy.
func (f *ArrayField[V, M]) In(buf []byte) ArrayProxy[V, M] { return ArrayProxy[V, M]{f: f, buf: buf} }

// ArrayProxy is a short-lived view of one ArrayField within a buffer.
type ArrayProxy[V any, M ElementMeta[V]] struct {
	f   *ArrayField[V, M]
	buf []byte
}

// Len returns the array's fixed element count.
func (p ArrayProxy[V, M]) Len() int { return p.f.Count }

func (p ArrayProxy[V, M]) window(i int) []byte {
	start := p.f.elementOffset(i)
	return p.buf[start : start+p.f.meta.Size()]
}

// Get decodes and returns element i, applying M's decode. It panics if i is
// out of [0, Len()).
func (p ArrayProxy[V, M]) Get(i int) V { return p.f.meta.Decode(p.window(i)) }

// Set writes v into element i, applying M's clamping. It panics if i is
// out of [0, Len()).
func (p ArrayProxy[V, M]) Set(i int, v V) { p.f.meta.Encode(v, p.window(i)) }

// BulkSet copies the first min(len(src), Len()) items of src into the
// array, each passed through M's own clamping via Set.
func (p ArrayProxy[V, M]) BulkSet(src []V) {
	n := len(src)
	if n > p.f.Count {
		n = p.f.Count
	}
	for i := 0; i < n; i++ {
		p.Set(i, src[i])
	}
}

// Reset restores every element to M's configured default.
func (p ArrayProxy[V, M]) Reset() { p.f.resetInto(p.buf) }

// ListField is a variable-length list of up to Max elements of kind M,
// preceded by a one-byte length. Pushing past Max fails and leaves the list
// unchanged. Each element is accessed through M's own proxy, so push_back
// clamps exactly the way a standalone field of that kind would — the same
// role jjreg_list's per-element jjreg_proxy<Meta> plays.
type ListField[V any, M ElementMeta[V]] struct {
	field
	meta M
	Max  int
}

// AddList declares a list field with capacity max elements described by
// meta. The encoded size is 1+max*meta.Size().
func AddList[V any, M ElementMeta[V]](s *Schema, meta M, max int) *ListField[V, M] {
	if max < 0 || max > 255 {
		panic("schema: list capacity must be in [0, 255]")
	}
	elemSize := meta.Size()
	f := &ListField[V, M]{
		field: field{offset: s.nextOffset(1 + max*elemSize), size: 1 + max*elemSize},
		meta:  meta,
		Max:   max,
	}
	s.register(f)
	return f
}

// resetInto only clears the length, matching jjreg_list::reset: elements
// beyond the length are inert and never independently defaulted.
func (f *ListField[V, M]) resetInto(buf []byte) { buf[f.offset] = 0 }

func (f *ListField[V, M]) elementOffset(i int) int {
	return f.offset + 1 + i*f.meta.Size()
}

// In binds this field to buf, returning a short-lived proxy.
func (f *ListField[V, M]) In(buf []byte) ListProxy[V, M] { return ListProxy[V, M]{f: f, buf: buf} }

// ListProxy is a short-lived view of one ListField within a buffer.
type ListProxy[V any, M ElementMeta[V]] struct {
	f   *ListField[V, M]
	buf []byte
}

// Len returns the current element count.
func (p ListProxy[V, M]) Len() int { return int(p.buf[p.f.offset]) }

// Cap returns the list's declared maximum element count.
func (p ListProxy[V, M]) Cap() int { return p.f.Max }

func (p ListProxy[V, M]) window(i int) []byte {
	start := p.f.elementOffset(i)
	return p.buf[start : start+p.f.meta.Size()]
}

// Get decodes and returns element i. It panics if i is out of [0, Len()).
func (p ListProxy[V, M]) Get(i int) V { return p.f.meta.Decode(p.window(i)) }

// Push grows the list by one element, writing v through M's proxy so it is
// clamped exactly as a standalone field of that kind would be. It returns
// false, unchanged, if the list is already at capacity.
func (p ListProxy[V, M]) Push(v V) bool {
	n := p.Len()
	if n >= p.f.Max {
		return false
	}
	p.f.meta.Encode(v, p.window(n))
	p.buf[p.f.offset] = byte(n + 1)
	return true
}

// Reset sets the length back to zero.
func (p ListProxy[V, M]) Reset() { p.f.resetInto(p.buf) }

// NestedField embeds a finalized child Schema's byte region within a
// parent schema.
type NestedField struct {
	field
	child *Schema
}

// AddNested declares a nested field holding child's layout. child must
// already be finalized.
func (s *Schema) AddNested(child *Schema) *NestedField {
	if !child.final {
		panic("schema: nested schema must be finalized before embedding")
	}
	f := &NestedField{field: field{offset: s.nextOffset(child.capacity), size: child.capacity}, child: child}
	s.register(f)
	return f
}

func (f *NestedField) resetInto(buf []byte) {
	f.child.Reset(buf[f.offset : f.offset+f.size])
}

// In binds this field to buf, returning a View scoped to the child
// schema's region so the caller can reuse the child's own field
// descriptors against it.
func (f *NestedField) In(buf []byte) *View {
	return &View{schema: f.child, buf: buf[f.offset : f.offset+f.size]}
}
