// Package record implements wear-leveled, redundant, CRC-checked storage of
// a single small payload across a fixed number of rotating physical slots
// (EEPROM pages, flash sectors, and the like).
//
// A Store never touches a storage medium itself: the caller supplies a
// ReadSlot/WriteSlot pair. This keeps the codec free of any backend
// assumption — the same Store works over an in-memory byte array in a unit
// test, a SQLite-backed virtual flash in a host tool, or a real flash
// driver on a microcontroller.
package record

import "github.com/ferrocore/embedkit/crc16"

// ReadSlot reads the raw bytes of physical slot index into out, which is
// exactly Format().Size bytes long. It returns false on any storage I/O failure,
// which aborts the entire Read as fatal.
type ReadSlot func(index uint, out []byte) bool

// WriteSlot writes data (exactly Format().Size bytes) to physical slot index. Its
// return value is propagated unchanged as the result of WriteNext.
type WriteSlot func(index uint, data []byte) bool

// headerTerse is the 4-byte header of the canonical wire format: CRC(2) +
// type(1) + sequence(1).
const headerTerse = 4

// headerVersioned is the 7-byte header of the extended format: CRC(2) +
// type(2) + version(2) + sequence(1).
const headerVersioned = 7

// seqModulus is the sequence-number cycle length. The wire format formats
// the sequence counter as seq % 255, not seq % 256: value 255 is never
// written. This matches the source implementation's behavior exactly and is
// required for wire interop — see DESIGN.md for the open question this
// raises. A clean-room format with no interop constraint could use 256
// instead, but embedkit preserves the 255-cycle.
const seqModulus = 255

// Format describes the (type, size, redundancy[, version]) tuple that
// characterizes one record.
type Format struct {
	Type       uint16 // stored as u8 in the terse format, u16 in the versioned one
	Size       uint   // bytes per physical slot
	Redundancy uint   // number of rotating slots
	Versioned  bool   // selects the 7-byte header / u16 type / version field
	Version    uint16 // only meaningful when Versioned is true
}

func (f Format) headerSize() uint {
	if f.Versioned {
		return headerVersioned
	}
	return headerTerse
}

// Store drives the write/read protocol for one record format over a
// caller-supplied storage backend. A Store is single-threaded: the caller
// serializes all access to one instance.
type Store struct {
	format Format
	read   ReadSlot
	write  WriteSlot

	index    uint // last slot index written or adopted
	sequence uint8
	haveSeq  bool
}

// New returns a Store for the given format and storage callbacks.
func New(format Format, read ReadSlot, write WriteSlot) *Store {
	if format.Redundancy == 0 {
		panic("record: redundancy must be >= 1")
	}
	if format.Size <= format.headerSize() {
		panic("record: size must exceed the header size")
	}
	return &Store{format: format, read: read, write: write}
}

// Format returns the store's configured (type, size, redundancy, version)
// tuple.
func (s *Store) Format() Format { return s.format }

// LastSlotIndex returns the physical slot index of the most recently
// written or adopted record.
func (s *Store) LastSlotIndex() uint { return s.index }

// LastSequence returns the sequence number of the most recently written or
// adopted record. The second return value is false if nothing has been
// written or read yet.
func (s *Store) LastSequence() (uint8, bool) { return s.sequence, s.haveSeq }

func (f Format) encodeHeader(buf []byte, seq uint8) {
	// Only the header bytes after the CRC are filled here; WriteNext copies
	// the payload in and then writes the CRC (offset 0:2) over [2:size).
	if f.Versioned {
		buf[2] = byte(f.Type)
		buf[3] = byte(f.Type >> 8)
		buf[4] = byte(f.Version)
		buf[5] = byte(f.Version >> 8)
		buf[6] = seq
	} else {
		buf[2] = byte(f.Type)
		buf[3] = seq
	}
}

func (f Format) decodeHeader(buf []byte) (typ uint16, version uint16, seq uint8) {
	if f.Versioned {
		typ = uint16(buf[2]) | uint16(buf[3])<<8
		version = uint16(buf[4]) | uint16(buf[5])<<8
		seq = buf[6]
		return
	}
	typ = uint16(buf[2])
	seq = buf[3]
	return
}

// WriteNext advances the writer cursor to the next slot in the rotation,
// stamps it with the next sequence number, lays out the header and CRC, and
// invokes the write callback. payload must be exactly Format().Size minus the
// header size (4 bytes terse, 7 versioned). It returns the write callback's
// success/failure result unchanged.
func (s *Store) WriteNext(payload []byte) bool {
	h := s.format.headerSize()
	if uint(len(payload)) != s.format.Size-h {
		panic("record: payload length does not match the configured slot size")
	}

	var nextIndex uint
	var nextSeq uint8
	if !s.haveSeq {
		nextIndex = 0
		nextSeq = 0
	} else {
		nextIndex = (s.index + 1) % s.format.Redundancy
		nextSeq = uint8((uint(s.sequence) + 1) % seqModulus)
	}

	buf := make([]byte, s.format.Size)
	s.format.encodeHeader(buf, nextSeq)
	copy(buf[h:], payload)
	crc := crc16.CCITT(buf[2:])
	buf[0] = byte(crc)
	buf[1] = byte(crc >> 8)

	ok := s.write(nextIndex, buf)
	if ok {
		s.index = nextIndex
		s.sequence = nextSeq
		s.haveSeq = true
	}
	return ok
}

// distance255 computes (to - from) in mod-255 sequence space, always
// returning a value in [0, 255).
func distance255(from, to uint8) uint {
	d := int(to) - int(from)
	for d < 0 {
		d += seqModulus
	}
	return uint(d) % seqModulus
}

// Read sweeps all redundancy slots, validates each, and returns the payload
// of the slot with the greatest sequence number within the rolling
// acceptance window. A storage I/O failure on any slot aborts the entire
// read as fatal. Among slots with tied sequence numbers, the
// later-encountered slot in the sweep wins.
func (s *Store) Read(out []byte) bool {
	h := s.format.headerSize()
	if uint(len(out)) != s.format.Size-h {
		panic("record: output length does not match the configured slot size")
	}

	buf := make([]byte, s.format.Size)
	var accepted bool
	var curIndex uint
	var curSeq uint8

	for i := uint(0); i < s.format.Redundancy; i++ {
		if !s.read(i, buf) {
			return false // storage I/O failure is fatal to the whole read
		}

		want := crc16.CCITT(buf[2:])
		got := uint16(buf[0]) | uint16(buf[1])<<8
		if got != want {
			continue
		}

		typ, version, seq := s.format.decodeHeader(buf)
		if typ != s.format.Type {
			continue
		}
		if s.format.Versioned && version > s.format.Version {
			continue
		}

		if accepted {
			// Window check: a slot may only advance the adopted sequence by
			// up to redundancy-1 steps. A tie (distance 0) passes this
			// check and falls through to adopt below, which is how a later
			// duplicate slot wins over an earlier one with the same
			// sequence number.
			if distance255(curSeq, seq) >= s.format.Redundancy {
				continue // jumped further ahead than the rotation could explain
			}
		}

		accepted = true
		curIndex = i
		curSeq = seq
		copy(out, buf[h:])
	}

	if accepted {
		s.index = curIndex
		s.sequence = curSeq
		s.haveSeq = true
	}
	return accepted
}
