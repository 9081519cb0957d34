package control

import (
	"github.com/nats-io/nats.go"
	"k8s.io/klog/v2"

	"Stylus/pkg/tracelog"
)

// DefaultSubject is the control subject writers listen on when the
// daemon does not override it.
const DefaultSubject = "stylus.tracelog.ctl"

// Server answers control messages for one writer session. It subscribes
// with a queue group named after the subject, so clustered daemons
// split the command stream instead of all executing it.
type Server struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	session *tracelog.Session
	subject string
	ownConn bool

	// message count of a triggered load test
	testIters int
}

// NewServer connects to the broker at url and serves session. Use
// NewServerConn to reuse an existing connection instead.
func NewServer(url, subject string, session *tracelog.Session) (*Server, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	s := NewServerConn(nc, subject, session)
	s.ownConn = true
	return s, nil
}

func NewServerConn(nc *nats.Conn, subject string, session *tracelog.Session) *Server {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Server{
		nc:        nc,
		session:   session,
		subject:   subject,
		testIters: tracelog.DefaultLoadTestIterations,
	}
}

func (s *Server) Start() error {
	sub, err := s.nc.QueueSubscribe(s.subject, s.subject, s.onMsg)
	if err != nil {
		return err
	}
	// make sure the subscription reached the broker before anyone sends
	if err := s.nc.Flush(); err != nil {
		sub.Unsubscribe()
		return err
	}
	s.sub = sub
	klog.Infof("control: listening on %s", s.subject)
	return nil
}

// onMsg handles one control request. Commands run synchronously on the
// subscription dispatcher, so a long-running Test delays later commands
// the same way the writer lock would anyway.
func (s *Server) onMsg(m *nats.Msg) {
	h, err := DecodeHeader(m.Data)
	if err != nil {
		klog.Errorf("control: message truncated")
		s.ack(m, 0, AckBadMessage)
		return
	}
	if h.Version != ProtocolVersion {
		klog.Errorf("control: wrong version %d, current=%d", h.Version, ProtocolVersion)
		s.ack(m, h.Seq, AckBadVersion)
		return
	}
	klog.Infof("control: seq=%d type=%d len=%d", h.Seq, h.Type, len(m.Data))

	switch h.Type {
	case MsgRegister:
		dir, maxSize, err := DecodeRegister(m.Data)
		if err != nil {
			klog.Errorf("control: register payload truncated")
			s.ack(m, h.Seq, AckBadMessage)
			return
		}
		if err := s.session.Configure(dir, maxSize); err != nil {
			klog.Errorf("control: register: %v", err)
			s.ack(m, h.Seq, AckFailed)
			return
		}
		s.ack(m, h.Seq, AckOK)
	case MsgTest:
		n := tracelog.RunLoadTest(s.session, s.testIters)
		klog.Infof("control: load test wrote %d messages", n)
		s.ack(m, h.Seq, AckOK)
	default:
		klog.Errorf("control: unknown message type %d", h.Type)
		s.ack(m, h.Seq, AckUnknownType)
	}
}

func (s *Server) ack(m *nats.Msg, seq uint32, code AckCode) {
	if m.Reply == "" {
		return
	}
	if err := m.Respond(EncodeAck(seq, code)); err != nil {
		klog.Errorf("control: ack seq=%d: %v", seq, err)
	}
}

func (s *Server) Close() error {
	if s.sub != nil {
		if err := s.sub.Unsubscribe(); err != nil {
			return err
		}
		s.sub = nil
	}
	if s.ownConn {
		s.nc.Close()
	}
	return nil
}
