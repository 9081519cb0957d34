package control

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	natssrv "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"gotest.tools/assert"

	"Stylus/pkg/tracelog"
	"Stylus/pkg/tracelog/common"
	"Stylus/pkg/tracelog/pagestore"
)

func runTestNATSServer(t *testing.T) *natssrv.Server {
	t.Helper()

	ns, err := natssrv.NewServer(&natssrv.Options{
		Port: -1,
	})
	assert.Assert(t, err == nil, err)
	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("nats server not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func runControlServer(t *testing.T, subject string) (*Server, *nats.Conn, *tracelog.Session, string) {
	t.Helper()
	ns := runTestNATSServer(t)

	dir := t.TempDir()
	opts := common.NewDefaultOptions()
	opts.StagingDir = dir
	session := tracelog.NewSession(pagestore.NewFileStore(false), opts)
	t.Cleanup(func() { _ = session.Close() })

	srv, err := NewServer(ns.ClientURL(), subject, session)
	assert.Assert(t, err == nil, err)
	assert.Assert(t, srv.Start() == nil)
	t.Cleanup(func() { _ = srv.Close() })

	nc, err := nats.Connect(ns.ClientURL())
	assert.Assert(t, err == nil, err)
	t.Cleanup(nc.Close)
	return srv, nc, session, dir
}

func TestServerRegister(t *testing.T) {
	_, nc, session, _ := runControlServer(t, "stylus.test.register")
	dir := t.TempDir()

	code, err := Register(nc, "stylus.test.register", dir, 32*pagestore.PageSize, 2*time.Second)
	assert.Assert(t, err == nil, err)
	assert.Assert(t, code == AckOK)

	// the writer now stages into the registered directory
	session.Start()
	msg, err := session.Alloc(64, tracelog.TypeRaw)
	assert.Assert(t, err == nil, err)
	copy(msg.Bytes(), "registered")
	assert.Assert(t, session.Commit() == nil)
	assert.Assert(t, strings.HasPrefix(session.FilePath(), dir))
	assert.Assert(t, session.Stop() == nil)
}

func TestServerRegisterEmptyDir(t *testing.T) {
	_, nc, _, _ := runControlServer(t, "stylus.test.baddir")

	code, err := Register(nc, "stylus.test.baddir", "", 1024, 2*time.Second)
	assert.Assert(t, err == nil, err)
	assert.Assert(t, code == AckFailed)
}

func TestServerTrigger(t *testing.T) {
	srv, nc, _, dir := runControlServer(t, "stylus.test.trigger")
	srv.testIters = 200

	code, err := Trigger(nc, "stylus.test.trigger", 10*time.Second)
	assert.Assert(t, err == nil, err)
	assert.Assert(t, code == AckOK)

	ents, err := os.ReadDir(dir)
	assert.Assert(t, err == nil, err)
	var raw []byte
	for _, e := range ents {
		if common.IsTraceFile(e.Name()) {
			raw, err = os.ReadFile(filepath.Join(dir, e.Name()))
			assert.Assert(t, err == nil, err)
			break
		}
	}
	assert.Assert(t, raw != nil)

	// first load test message is "%x,%x" of iteration zero and size ten
	assert.Assert(t, string(raw[tracelog.HeaderSize:tracelog.HeaderSize+3]) == "0,a")

	count := 0
	for off := 0; off+pagestore.PageSize <= len(raw); off += pagestore.PageSize {
		pg := raw[off : off+pagestore.PageSize]
		cur := 0
		for cur < pagestore.PageSize {
			size, _, derr := tracelog.DecodeHeader(pg[cur:])
			if derr != nil {
				break
			}
			count++
			cur += size
		}
	}
	assert.Assert(t, count == 200)
}

func TestServerBadVersion(t *testing.T) {
	_, nc, _, _ := runControlServer(t, "stylus.test.badversion")

	b := EncodeTest(5)
	binary.LittleEndian.PutUint16(b[0:2], ProtocolVersion+1)
	resp, err := nc.RequestMsg(&nats.Msg{Subject: "stylus.test.badversion", Data: b}, 2*time.Second)
	assert.Assert(t, err == nil, err)

	seq, code, err := DecodeAck(resp.Data)
	assert.Assert(t, err == nil, err)
	assert.Assert(t, seq == 5)
	assert.Assert(t, code == AckBadVersion)
}

func TestServerUnknownType(t *testing.T) {
	_, nc, _, _ := runControlServer(t, "stylus.test.unknown")

	b := make([]byte, HeaderLen)
	putHeader(b, Header{Version: ProtocolVersion, Type: MsgType(77), Seq: 9})
	resp, err := nc.RequestMsg(&nats.Msg{Subject: "stylus.test.unknown", Data: b}, 2*time.Second)
	assert.Assert(t, err == nil, err)

	seq, code, err := DecodeAck(resp.Data)
	assert.Assert(t, err == nil, err)
	assert.Assert(t, seq == 9)
	assert.Assert(t, code == AckUnknownType)
}

func TestServerTruncated(t *testing.T) {
	_, nc, _, _ := runControlServer(t, "stylus.test.truncated")

	resp, err := nc.RequestMsg(&nats.Msg{Subject: "stylus.test.truncated", Data: []byte{1, 0}}, 2*time.Second)
	assert.Assert(t, err == nil, err)

	// a truncated request cannot carry a sequence, the ack echoes zero
	seq, code, err := DecodeAck(resp.Data)
	assert.Assert(t, err == nil, err)
	assert.Assert(t, seq == 0)
	assert.Assert(t, code == AckBadMessage)
}
