// Package logx writes diagnostic lines directly to stderr with no
// dependency on fmt. It is meant for the cold paths around a Store or
// Ring — a rejected slot, a failed write callback — never for a hot loop.
//
// Every write copies its pieces into a fixed-size stack buffer and issues
// one os.Stderr.Write call, rather than building the line with "+"
// concatenation first: string concatenation allocates a new backing array
// on every call, which is exactly the cost this package exists to avoid.
// Lines longer than the buffer truncate; that's an acceptable loss for a
// diagnostic message.
package logx

import "os"

const lineBuf = 256

// Warn writes prefix followed by a newline to stderr.
//
//go:nosplit
//go:inline
func Warn(prefix string) {
	var buf [lineBuf]byte
	n := copy(buf[:], prefix)
	n += copy(buf[n:], "\n")
	os.Stderr.Write(buf[:n])
}

// Error writes prefix and err's message, separated by ": ", to stderr. If
// err is nil it behaves like Warn.
//
//go:nosplit
//go:inline
func Error(prefix string, err error) {
	if err == nil {
		Warn(prefix)
		return
	}
	Errorf(prefix, err.Error())
}

// Errorf is a zero-format-string variant for call sites that already have
// a plain message instead of an error value.
//
//go:nosplit
//go:inline
func Errorf(prefix, message string) {
	var buf [lineBuf]byte
	n := copy(buf[:], prefix)
	n += copy(buf[n:], ": ")
	n += copy(buf[n:], message)
	n += copy(buf[n:], "\n")
	os.Stderr.Write(buf[:n])
}
