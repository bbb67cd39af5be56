// Command recorddump drives a record.Store against a SQLite-backed virtual
// flash, standing in for the EEPROM/flash pages a real device would expose
// through the same ReadSlot/WriteSlot callbacks.
//
// Usage:
//
//	recorddump <db-path> write <payload>
//	recorddump <db-path> dump
package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/crypto/sha3"

	"github.com/ferrocore/embedkit/crc16"
	"github.com/ferrocore/embedkit/internal/logx"
	"github.com/ferrocore/embedkit/record"
)

// dumpFormat is the fixed (type, size, redundancy) tuple recorddump
// exercises. A real integration would pick these to match its device;
// the tool hardcodes one so every .db file it produces is comparable.
var dumpFormat = record.Format{Type: 1, Size: 32, Redundancy: 4}

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: recorddump <db-path> write <payload> | recorddump <db-path> dump")
		os.Exit(2)
	}
	dbPath, cmd := os.Args[1], os.Args[2]

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		logx.Error("open db", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := ensureSchema(db, dumpFormat.Redundancy); err != nil {
		logx.Error("ensure schema", err)
		os.Exit(1)
	}

	read, write := sqliteCallbacks(db)
	store := record.New(dumpFormat, read, write)

	switch cmd {
	case "write":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "usage: recorddump <db-path> write <payload>")
			os.Exit(2)
		}
		runWrite(store, os.Args[3])
	case "dump":
		runDump(db, store)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		os.Exit(2)
	}
}

func ensureSchema(db *sql.DB, redundancy uint) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS slots (idx INTEGER PRIMARY KEY, blob BLOB)`)
	if err != nil {
		return err
	}
	for i := uint(0); i < redundancy; i++ {
		_, err = db.Exec(`INSERT OR IGNORE INTO slots (idx, blob) VALUES (?, ?)`, i, make([]byte, dumpFormat.Size))
		if err != nil {
			return err
		}
	}
	return nil
}

// sqliteCallbacks adapts a *sql.DB's slots table to record.ReadSlot and
// record.WriteSlot.
func sqliteCallbacks(db *sql.DB) (record.ReadSlot, record.WriteSlot) {
	read := func(index uint, out []byte) bool {
		var blob []byte
		err := db.QueryRow(`SELECT blob FROM slots WHERE idx = ?`, index).Scan(&blob)
		if err != nil {
			logx.Error("read slot", err)
			return false
		}
		copy(out, blob)
		return true
	}
	write := func(index uint, data []byte) bool {
		_, err := db.Exec(`UPDATE slots SET blob = ? WHERE idx = ?`, data, index)
		if err != nil {
			logx.Error("write slot", err)
			return false
		}
		return true
	}
	return read, write
}

func runWrite(store *record.Store, payload string) {
	h := store.Format().Size - 4 // terse header
	buf := make([]byte, h)
	copy(buf, payload)
	if !store.WriteNext(buf) {
		logx.Warn("write_next failed")
		os.Exit(1)
	}
	idx, seq := store.LastSlotIndex(), mustSeq(store)
	fmt.Printf("wrote slot %d sequence %d\n", idx, seq)
}

func mustSeq(store *record.Store) uint8 {
	seq, _ := store.LastSequence()
	return seq
}

// slotReport is one row of recorddump's diagnostic JSON, describing one
// physical slot's raw header fields independent of whether record.Store
// would accept it.
type slotReport struct {
	Index    uint   `json:"index"`
	CRCOK    bool   `json:"crc_ok"`
	Type     uint16 `json:"type"`
	Sequence uint8  `json:"sequence"`
	Accepted bool   `json:"accepted"`
	SHA3     string `json:"sha3,omitempty"`
}

func runDump(db *sql.DB, store *record.Store) {
	format := store.Format()
	out := make([]byte, format.Size-4)
	accepted := store.Read(out)

	var reports []slotReport
	for i := uint(0); i < format.Redundancy; i++ {
		var blob []byte
		if err := db.QueryRow(`SELECT blob FROM slots WHERE idx = ?`, i).Scan(&blob); err != nil {
			logx.Error("dump: read slot", err)
			continue
		}
		want := crc16.CCITT(blob[2:])
		got := uint16(blob[0]) | uint16(blob[1])<<8
		digest := sha3.Sum256(blob)
		reports = append(reports, slotReport{
			Index:    i,
			CRCOK:    got == want,
			Type:     uint16(blob[2]),
			Sequence: blob[3],
			Accepted: accepted && i == store.LastSlotIndex(),
			SHA3:     fmt.Sprintf("%x", digest[:8]),
		})
	}

	encoded, err := sonnet.MarshalIndent(reports, "", "  ")
	if err != nil {
		logx.Error("dump: marshal", err)
		os.Exit(1)
	}
	os.Stdout.Write(encoded)
	os.Stdout.Write([]byte("\n"))
}
