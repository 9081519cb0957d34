package control

import (
	"strings"
	"testing"

	"gotest.tools/assert"

	"Stylus/pkg/tracelog/common"
)

func TestRegisterRoundTrip(t *testing.T) {
	b := EncodeRegister(7, "/var/trace/stage", 1<<20)
	assert.Assert(t, len(b) == HeaderLen+RegisterPayloadLen)

	h, err := DecodeHeader(b)
	assert.Assert(t, err == nil, err)
	assert.Assert(t, h.Version == ProtocolVersion)
	assert.Assert(t, h.Type == MsgRegister)
	assert.Assert(t, h.Seq == 7)

	dir, maxSize, err := DecodeRegister(b)
	assert.Assert(t, err == nil, err)
	assert.Assert(t, dir == "/var/trace/stage")
	assert.Assert(t, maxSize == uint64(1<<20))
}

func TestRegisterDirBounded(t *testing.T) {
	long := strings.Repeat("d", 2*common.MaxDirPath)
	b := EncodeRegister(1, long, 0)
	assert.Assert(t, len(b) == HeaderLen+RegisterPayloadLen)
	// the last field byte stays a NUL no matter the input
	assert.Assert(t, b[len(b)-1] == 0)

	dir, _, err := DecodeRegister(b)
	assert.Assert(t, err == nil, err)
	assert.Assert(t, len(dir) == common.MaxDirPath-1)
	assert.Assert(t, dir == long[:common.MaxDirPath-1])
}

func TestAckRoundTrip(t *testing.T) {
	b := EncodeAck(99, AckFailed)
	assert.Assert(t, len(b) == HeaderLen+AckPayloadLen)

	seq, code, err := DecodeAck(b)
	assert.Assert(t, err == nil, err)
	assert.Assert(t, seq == 99)
	assert.Assert(t, code == AckFailed)

	_, _, err = DecodeAck(EncodeTest(3))
	assert.Assert(t, err == ErrNotAck)

	_, _, err = DecodeAck(b[:HeaderLen+2])
	assert.Assert(t, err == ErrTruncated)
}

func TestDecodeTruncated(t *testing.T) {
	_, err := DecodeHeader([]byte{1, 0, 1})
	assert.Assert(t, err == ErrTruncated)

	_, _, err = DecodeRegister(EncodeTest(1))
	assert.Assert(t, err == ErrTruncated)
}
