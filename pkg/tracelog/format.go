package tracelog

import (
	"encoding/binary"
	"errors"

	"Stylus/pkg/tracelog/pagestore"
)

type MessageType uint8

// Trace file format:
//  ---- Page ----  <- 4K aligned
//  ---- Page ----
//  ----  ... ----
//  ---- Page ----

// Page format:
//  ----- Page -----
//    -- message --
//    -- message --
//    --   ...   --
//    -- message --
//    terminator byte (only when the page is not completely full)
//  ----- Page -----

// Message format:
//   ---  header  ---  (size:2|type:1|pad:1) 4 bytes
//   --- payload  ---  (padded up to a 4-byte boundary)

const (
	TypeInvalid = MessageType(0)
	TypeRaw     = MessageType(1)

	// Header consists of the rounded total size (2 bytes, little-endian),
	// the type tag (1 byte) and one zero pad byte.
	HeaderSize = 4
	MsgAlign   = 4
	MaxPayload = pagestore.PageSize - HeaderSize

	// Terminator marks end-of-data inside a partially filled page. Stored
	// sizes are multiples of MsgAlign, so the low size byte of a real
	// header can never be 0xFF and the sentinel is unambiguous.
	Terminator byte = 0xFF
)

var (
	ErrEndOfData = errors.New("tracelog: end of page data")
	ErrBadHeader = errors.New("tracelog: malformed message header")
)

// RoundUp rounds n up to the next multiple of MsgAlign.
func RoundUp(n int) int {
	return (n + MsgAlign - 1) &^ (MsgAlign - 1)
}

// EncodeHeader writes a message header at the start of b. size is the
// rounded total length including the header itself.
func EncodeHeader(b []byte, size int, typ MessageType) {
	binary.LittleEndian.PutUint16(b, uint16(size))
	b[2] = byte(typ)
	b[3] = 0
}

// DecodeHeader reads the message header at the start of b. It returns
// ErrEndOfData at the terminator sentinel or at never-written (zero)
// bytes, and ErrBadHeader for sizes no writer could have produced.
func DecodeHeader(b []byte) (size int, typ MessageType, err error) {
	if len(b) == 0 {
		return 0, TypeInvalid, ErrEndOfData
	}
	if b[0] == Terminator {
		return 0, TypeInvalid, ErrEndOfData
	}
	if len(b) < HeaderSize {
		return 0, TypeInvalid, ErrBadHeader
	}
	size = int(binary.LittleEndian.Uint16(b))
	if size == 0 {
		return 0, TypeInvalid, ErrEndOfData
	}
	if size < HeaderSize || size%MsgAlign != 0 || pagestore.PageSize < size {
		return 0, TypeInvalid, ErrBadHeader
	}
	return size, MessageType(b[2]), nil
}
