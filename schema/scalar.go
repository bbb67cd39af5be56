package schema

// U8Meta is the reusable descriptor behind a one-byte unsigned integer:
// clamped to [Min, Max] on every write, defaulting to Default on reset. It
// satisfies ElementMeta[uint8], so the same descriptor backs both a
// standalone U8Field and a per-element kind inside Array/List.
type U8Meta struct {
	Min, Max, DefaultValue uint8
}

func (m U8Meta) Size() int { return 1 }

func (m U8Meta) clamp(v uint8) uint8 {
	if v < m.Min {
		return m.Min
	}
	if v > m.Max {
		return m.Max
	}
	return v
}

func (m U8Meta) Encode(v uint8, out []byte) { out[0] = m.clamp(v) }
func (m U8Meta) Decode(in []byte) uint8     { return in[0] }
func (m U8Meta) Default() uint8             { return m.DefaultValue }

// U8Field is a one-byte unsigned integer field clamped to [Min, Max] on
// every write.
type U8Field struct {
	field
	meta U8Meta
}

// AddU8 declares a clamped uint8 field and returns its descriptor.
func (s *Schema) AddU8(min, max, def uint8) *U8Field {
	m := U8Meta{Min: min, Max: max, DefaultValue: def}
	f := &U8Field{field: field{offset: s.nextOffset(m.Size()), size: m.Size()}, meta: m}
	s.register(f)
	return f
}

func (f *U8Field) resetInto(buf []byte) { f.meta.Encode(f.meta.Default(), buf[f.offset:f.offset+f.size]) }

// In binds this field to buf, returning a short-lived proxy.
func (f *U8Field) In(buf []byte) U8Proxy { return U8Proxy{f: f, buf: buf} }

// U8Proxy is a short-lived view of one U8Field within a buffer.
type U8Proxy struct {
	f   *U8Field
	buf []byte
}

// Get returns the raw stored byte, unclamped: a caller that mutated the
// backing bytes through other means may observe an out-of-range value.
func (p U8Proxy) Get() uint8 { return p.f.meta.Decode(p.buf[p.f.offset : p.f.offset+p.f.size]) }

// Set clamps v to [Min, Max] before storing.
func (p U8Proxy) Set(v uint8) { p.f.meta.Encode(v, p.buf[p.f.offset:p.f.offset+p.f.size]) }

// Reset stores the field's configured default.
func (p U8Proxy) Reset() { p.f.resetInto(p.buf) }

// Assign is the assignment shorthand spec.md calls for; it is equivalent
// to Set.
func (p U8Proxy) Assign(v uint8) { p.Set(v) }

// Value is the value-coercion shorthand spec.md calls for; it is
// equivalent to Get.
func (p U8Proxy) Value() uint8 { return p.Get() }

// I8Meta is the reusable descriptor behind a one-byte signed integer,
// mirroring U8Meta.
type I8Meta struct {
	Min, Max, DefaultValue int8
}

func (m I8Meta) Size() int { return 1 }

func (m I8Meta) clamp(v int8) int8 {
	if v < m.Min {
		return m.Min
	}
	if v > m.Max {
		return m.Max
	}
	return v
}

func (m I8Meta) Encode(v int8, out []byte) { out[0] = byte(m.clamp(v)) }
func (m I8Meta) Decode(in []byte) int8     { return int8(in[0]) }
func (m I8Meta) Default() int8             { return m.DefaultValue }

// I8Field is a one-byte signed integer field clamped to [Min, Max] on every
// write, stored as its raw byte representation.
type I8Field struct {
	field
	meta I8Meta
}

// AddI8 declares a clamped int8 field and returns its descriptor.
func (s *Schema) AddI8(min, max, def int8) *I8Field {
	m := I8Meta{Min: min, Max: max, DefaultValue: def}
	f := &I8Field{field: field{offset: s.nextOffset(m.Size()), size: m.Size()}, meta: m}
	s.register(f)
	return f
}

func (f *I8Field) resetInto(buf []byte) { f.meta.Encode(f.meta.Default(), buf[f.offset:f.offset+f.size]) }

// In binds this field to buf, returning a short-lived proxy.
func (f *I8Field) In(buf []byte) I8Proxy { return I8Proxy{f: f, buf: buf} }

// I8Proxy is a short-lived view of one I8Field within a buffer.
type I8Proxy struct {
	f   *I8Field
	buf []byte
}

// Get returns the raw stored byte reinterpreted as int8, unclamped.
func (p I8Proxy) Get() int8 { return p.f.meta.Decode(p.buf[p.f.offset : p.f.offset+p.f.size]) }

// Set clamps v to [Min, Max] before storing.
func (p I8Proxy) Set(v int8) { p.f.meta.Encode(v, p.buf[p.f.offset:p.f.offset+p.f.size]) }

// Reset stores the field's configured default.
func (p I8Proxy) Reset() { p.f.resetInto(p.buf) }

// Assign is equivalent to Set.
func (p I8Proxy) Assign(v int8) { p.Set(v) }

// Value is equivalent to Get.
func (p I8Proxy) Value() int8 { return p.Get() }

// BoolMeta is the reusable descriptor behind a one-byte boolean: 0 or 1 on
// write, any nonzero byte reads as true. There is nothing to clamp.
type BoolMeta struct {
	DefaultValue bool
}

func (m BoolMeta) Size() int { return 1 }

func (m BoolMeta) Encode(v bool, out []byte) {
	if v {
		out[0] = 1
	} else {
		out[0] = 0
	}
}
func (m BoolMeta) Decode(in []byte) bool { return in[0] != 0 }
func (m BoolMeta) Default() bool         { return m.DefaultValue }

// BoolField is a one-byte boolean field: 0 or 1 on write, any nonzero byte
// reads as true.
type BoolField struct {
	field
	meta BoolMeta
}

// AddBool declares a boolean field and returns its descriptor.
func (s *Schema) AddBool(def bool) *BoolField {
	m := BoolMeta{DefaultValue: def}
	f := &BoolField{field: field{offset: s.nextOffset(m.Size()), size: m.Size()}, meta: m}
	s.register(f)
	return f
}

func (f *BoolField) resetInto(buf []byte) {
	f.meta.Encode(f.meta.Default(), buf[f.offset:f.offset+f.size])
}

// In binds this field to buf, returning a short-lived proxy.
func (f *BoolField) In(buf []byte) BoolProxy { return BoolProxy{f: f, buf: buf} }

// BoolProxy is a short-lived view of one BoolField within a buffer.
type BoolProxy struct {
	f   *BoolField
	buf []byte
}

// Get returns true for any nonzero stored byte.
func (p BoolProxy) Get() bool { return p.f.meta.Decode(p.buf[p.f.offset : p.f.offset+p.f.size]) }

// Set stores 1 for true, 0 for false.
func (p BoolProxy) Set(v bool) { p.f.meta.Encode(v, p.buf[p.f.offset:p.f.offset+p.f.size]) }

// Reset stores the field's configured default.
func (p BoolProxy) Reset() { p.f.resetInto(p.buf) }

// Assign is equivalent to Set.
func (p BoolProxy) Assign(v bool) { p.Set(v) }

// Value is equivalent to Get.
func (p BoolProxy) Value() bool { return p.Get() }

// Enum8Meta is the reusable descriptor behind a one-byte field clamped to
// [0, Count); out-of-range values clamp to Count-1.
type Enum8Meta struct {
	Count        int
	DefaultValue uint8
}

func (m Enum8Meta) Size() int { return 1 }

func (m Enum8Meta) clamp(v uint8) uint8 {
	if int(v) >= m.Count {
		return uint8(m.Count - 1)
	}
	return v
}

func (m Enum8Meta) Encode(v uint8, out []byte) { out[0] = m.clamp(v) }
func (m Enum8Meta) Decode(in []byte) uint8     { return in[0] }
func (m Enum8Meta) Default() uint8             { return m.clamp(m.DefaultValue) }

// Enum8Field is a one-byte field clamped to [0, Count) on write;
// out-of-range values clamp to Count-1.
type Enum8Field struct {
	field
	meta Enum8Meta
}

// AddEnum8 declares an enum-bounded uint8 field and returns its
// descriptor. Count must be >= 1.
func (s *Schema) AddEnum8(count int, def uint8) *Enum8Field {
	if count < 1 {
		panic("schema: enum8 count must be >= 1")
	}
	m := Enum8Meta{Count: count, DefaultValue: def}
	f := &Enum8Field{field: field{offset: s.nextOffset(m.Size()), size: m.Size()}, meta: m}
	s.register(f)
	return f
}

func (f *Enum8Field) resetInto(buf []byte) {
	f.meta.Encode(f.meta.Default(), buf[f.offset:f.offset+f.size])
}

// In binds this field to buf, returning a short-lived proxy.
func (f *Enum8Field) In(buf []byte) Enum8Proxy { return Enum8Proxy{f: f, buf: buf} }

// Enum8Proxy is a short-lived view of one Enum8Field within a buffer.
type Enum8Proxy struct {
	f   *Enum8Field
	buf []byte
}

// Get returns the raw stored byte, unclamped.
func (p Enum8Proxy) Get() uint8 { return p.f.meta.Decode(p.buf[p.f.offset : p.f.offset+p.f.size]) }

// Set clamps v to [0, Count) before storing; out-of-range values clamp to
// Count-1.
func (p Enum8Proxy) Set(v uint8) { p.f.meta.Encode(v, p.buf[p.f.offset:p.f.offset+p.f.size]) }

// Reset stores the field's configured (clamped) default.
func (p Enum8Proxy) Reset() { p.f.resetInto(p.buf) }

// Assign is equivalent to Set.
func (p Enum8Proxy) Assign(v uint8) { p.Set(v) }

// Value is equivalent to Get.
func (p Enum8Proxy) Value() uint8 { return p.Get() }
