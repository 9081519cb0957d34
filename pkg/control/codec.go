package control

import (
	"bytes"
	"encoding/binary"
	"errors"

	"Stylus/pkg/tracelog/common"
)

// Control messages travel as a fixed little-endian envelope followed by
// a typed payload:
//   ---  header ---  (version:2|type:2|seq:4) 8 bytes
//   --- payload ---  Register: (max_size:8|dir:256, NUL padded)
//                    Test:     empty
//                    Ack:      (code:4)

const (
	ProtocolVersion uint16 = 1

	HeaderLen          = 8
	RegisterPayloadLen = 8 + common.MaxDirPath
	AckPayloadLen      = 4
)

type MsgType uint16

const (
	MsgInvalid  = MsgType(0)
	MsgRegister = MsgType(1)
	MsgTest     = MsgType(2)
	MsgAck      = MsgType(3)
)

type AckCode int32

const (
	AckOK          = AckCode(0)
	AckBadVersion  = AckCode(1)
	AckBadMessage  = AckCode(2)
	AckUnknownType = AckCode(3)
	AckFailed      = AckCode(4)
)

var (
	ErrTruncated = errors.New("control: message truncated")
	ErrNotAck    = errors.New("control: not an acknowledgement")
)

type Header struct {
	Version uint16
	Type    MsgType
	Seq     uint32
}

func putHeader(b []byte, h Header) {
	binary.LittleEndian.PutUint16(b[0:2], h.Version)
	binary.LittleEndian.PutUint16(b[2:4], uint16(h.Type))
	binary.LittleEndian.PutUint32(b[4:8], h.Seq)
}

func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, ErrTruncated
	}
	h := Header{
		Version: binary.LittleEndian.Uint16(b[0:2]),
		Type:    MsgType(binary.LittleEndian.Uint16(b[2:4])),
		Seq:     binary.LittleEndian.Uint32(b[4:8]),
	}
	return h, nil
}

// EncodeRegister builds a Register request. The directory is laid out
// as a fixed NUL-padded field; anything past MaxDirPath-1 bytes is cut.
func EncodeRegister(seq uint32, dir string, maxSizeBytes uint64) []byte {
	b := make([]byte, HeaderLen+RegisterPayloadLen)
	putHeader(b, Header{Version: ProtocolVersion, Type: MsgRegister, Seq: seq})
	binary.LittleEndian.PutUint64(b[HeaderLen:], maxSizeBytes)
	copy(b[HeaderLen+8:len(b)-1], dir)
	return b
}

func DecodeRegister(b []byte) (dir string, maxSizeBytes uint64, err error) {
	if len(b) < HeaderLen+RegisterPayloadLen {
		return "", 0, ErrTruncated
	}
	p := b[HeaderLen:]
	maxSizeBytes = binary.LittleEndian.Uint64(p[0:8])
	// The last byte of the field is always treated as a NUL.
	raw := p[8 : 8+common.MaxDirPath-1]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return string(raw), maxSizeBytes, nil
}

func EncodeTest(seq uint32) []byte {
	b := make([]byte, HeaderLen)
	putHeader(b, Header{Version: ProtocolVersion, Type: MsgTest, Seq: seq})
	return b
}

func EncodeAck(seq uint32, code AckCode) []byte {
	b := make([]byte, HeaderLen+AckPayloadLen)
	putHeader(b, Header{Version: ProtocolVersion, Type: MsgAck, Seq: seq})
	binary.LittleEndian.PutUint32(b[HeaderLen:], uint32(code))
	return b
}

func DecodeAck(b []byte) (seq uint32, code AckCode, err error) {
	h, err := DecodeHeader(b)
	if err != nil {
		return 0, 0, err
	}
	if h.Type != MsgAck {
		return 0, 0, ErrNotAck
	}
	if len(b) < HeaderLen+AckPayloadLen {
		return 0, 0, ErrTruncated
	}
	code = AckCode(int32(binary.LittleEndian.Uint32(b[HeaderLen:])))
	return h.Seq, code, nil
}
