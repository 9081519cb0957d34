package control

import (
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
)

var ctlSeq uint32

func nextSeq() uint32 {
	return atomic.AddUint32(&ctlSeq, 1)
}

// Register asks the writer behind subject to switch its staging
// directory and per-file size limit, and waits for the acknowledgement.
func Register(nc *nats.Conn, subject, dir string, maxSizeBytes uint64, timeout time.Duration) (AckCode, error) {
	return roundTrip(nc, subject, EncodeRegister(nextSeq(), dir, maxSizeBytes), timeout)
}

// Trigger runs the writer's built-in load test and waits for it to
// finish; the timeout must allow for the full run.
func Trigger(nc *nats.Conn, subject string, timeout time.Duration) (AckCode, error) {
	return roundTrip(nc, subject, EncodeTest(nextSeq()), timeout)
}

func roundTrip(nc *nats.Conn, subject string, data []byte, timeout time.Duration) (AckCode, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	msg := &nats.Msg{Subject: subject, Data: data}
	resp, err := nc.RequestMsg(msg, timeout)
	if err != nil {
		return 0, err
	}
	_, code, err := DecodeAck(resp.Data)
	if err != nil {
		return 0, err
	}
	return code, nil
}
