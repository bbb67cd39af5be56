package schema

// StringMeta is the reusable descriptor behind a fixed-capacity byte
// string: a one-byte length prefix followed by N bytes of storage, reset to
// a configured default rather than unconditionally to empty. It satisfies
// ElementMeta[[]byte].
type StringMeta struct {
	N            int
	DefaultValue []byte
}

func (m StringMeta) Size() int { return m.N + 1 }

// Encode truncates v to N bytes if it is longer, then writes the length
// prefix and the bytes.
func (m StringMeta) Encode(v []byte, out []byte) {
	n := len(v)
	if n > m.N {
		n = m.N
	}
	out[0] = byte(n)
	copy(out[1:1+n], v[:n])
}

// Decode returns the stored bytes, aliasing the window passed in.
func (m StringMeta) Decode(in []byte) []byte {
	n := int(in[0])
	return in[1 : 1+n]
}

func (m StringMeta) Default() []byte { return m.DefaultValue }

// StringField is a fixed-capacity byte string: a one-byte length prefix
// followed by N bytes of storage. Writes longer than N truncate to N; Reset
// restores the field's configured default rather than the empty string.
type StringField struct {
	field
	meta StringMeta
}

// AddString declares a string field with a capacity of n bytes and a
// default value, truncated to n bytes like any other write, and returns its
// descriptor. The encoded size is n+1 (one length byte).
func (s *Schema) AddString(n int, def string) *StringField {
	if n < 0 || n > 255 {
		panic("schema: string capacity must be in [0, 255]")
	}
	defBytes := []byte(def)
	if len(defBytes) > n {
		defBytes = defBytes[:n]
	}
	m := StringMeta{N: n, DefaultValue: defBytes}
	f := &StringField{field: field{offset: s.nextOffset(m.Size()), size: m.Size()}, meta: m}
	s.register(f)
	return f
}

func (f *StringField) resetInto(buf []byte) {
	f.meta.Encode(f.meta.Default(), buf[f.offset:f.offset+f.size])
}

// In binds this field to buf, returning a short-lived proxy.
func (f *StringField) In(buf []byte) StringProxy { return StringProxy{f: f, buf: buf} }

// StringProxy is a short-lived view of one StringField within a buffer.
type StringProxy struct {
	f   *StringField
	buf []byte
}

// Len returns the currently stored length, at most N.
func (p StringProxy) Len() int { return int(p.buf[p.f.offset]) }

// Get returns the stored bytes, aliasing the backing buffer.
func (p StringProxy) Get() []byte {
	return p.f.meta.Decode(p.buf[p.f.offset : p.f.offset+p.f.size])
}

// Value returns the stored bytes as a string. Equivalent to Get, copied.
func (p StringProxy) Value() string { return string(p.Get()) }

// Set copies v into the field's storage, truncating to N bytes if v is
// longer.
func (p StringProxy) Set(v []byte) {
	p.f.meta.Encode(v, p.buf[p.f.offset:p.f.offset+p.f.size])
}

// Assign is equivalent to Set, taking a string.
func (p StringProxy) Assign(v string) { p.Set([]byte(v)) }

// Reset restores the field's configured default.
func (p StringProxy) Reset() { p.f.resetInto(p.buf) }
