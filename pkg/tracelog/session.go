package tracelog

import (
	"sync"

	"github.com/juju/fslock"
	"k8s.io/klog/v2"

	"Stylus/pkg/tracelog/common"
	"Stylus/pkg/tracelog/pagestore"
)

// Session is the page-buffered trace writer. One mutex serializes every
// mutation of file, page and configuration state: a producer holds it
// for the whole Start...Stop bracket, Configure takes it on its own, so
// no two callers ever interleave inside a page.
//
// The accessors (Generation, PageOffset, FilePageOffset, FilePath,
// HasPage) are for the bracket holder and tests; they take no lock.
type Session struct {
	mu sync.Mutex

	store pagestore.Store

	stagingDir   string
	maxFilePages int64

	generation int
	file       *logFile
	page       *page
	offset     int // in-page cursor, survives page release across Stop/Start

	pending *Message
	started bool

	dirLock   *fslock.Lock
	lockedDir string

	metrics *Metrics
}

// Message is the writable region handed out by Alloc. The caller fills
// Bytes with up to the requested length and must not touch it after
// Commit.
type Message struct {
	payload []byte
	typ     MessageType
}

func (m *Message) Bytes() []byte {
	return m.payload
}

func (m *Message) Type() MessageType {
	return m.typ
}

func NewSession(store pagestore.Store, opts *common.Options) *Session {
	if opts == nil {
		opts = common.NewDefaultOptions()
	}
	s := &Session{}
	s.store = store
	s.stagingDir = opts.StagingDir
	if len(s.stagingDir) >= common.MaxDirPath {
		s.stagingDir = s.stagingDir[:common.MaxDirPath-1]
	}
	s.maxFilePages = opts.MaxFilePages()
	s.metrics = GetMetrics()
	return s
}

// Start acquires the writer for the calling producer, blocking until no
// other producer holds it, and makes sure a trace file is open. Every
// Start must be paired with a Stop on the same goroutine.
func (s *Session) Start() {
	s.mu.Lock()
	s.started = true
	s.fetchFile()
}

// Alloc reserves room for a message of n payload bytes and returns a
// handle whose Bytes the caller fills before Commit. The stored size is
// HeaderSize+n rounded up to MsgAlign; a message never spans two pages.
// ErrUnavailable means no page could be obtained and the message must
// be dropped, not treated as a hard failure.
func (s *Session) Alloc(n int, typ MessageType) (*Message, error) {
	if !s.started {
		return nil, ErrNotStarted
	}
	if s.pending != nil {
		return nil, ErrAllocPending
	}
	if n <= 0 {
		return nil, ErrInvalidSize
	}
	if MaxPayload < n {
		return nil, ErrMessageTooLarge
	}
	total := RoundUp(HeaderSize + n)
	s.fetchPage(total)
	if s.page == nil {
		s.metrics.DroppedAllocs.Inc()
		return nil, ErrUnavailable
	}
	b := s.page.reserve(total)
	EncodeHeader(b, total, typ)
	m := &Message{payload: b[HeaderSize : HeaderSize+n], typ: typ}
	s.pending = m
	return m, nil
}

// Commit releases the region handed out by the last Alloc, making the
// message eligible for the next page flush.
func (s *Session) Commit() error {
	if s.pending == nil {
		return ErrNoAlloc
	}
	s.metrics.MessagesCommitted.Inc()
	s.metrics.PayloadBytes.Add(float64(len(s.pending.payload)))
	s.pending = nil
	return nil
}

// Roll flushes the page, closes the current file and resets both
// offsets, so the next alloc opens a fresh file. Idempotent.
func (s *Session) Roll() error {
	if !s.started {
		return ErrNotStarted
	}
	s.roll()
	return nil
}

// Stop flushes the current page and releases the writer. The file stays
// open so a later Start continues appending where this one left off. An
// alloc left uncommitted is abandoned.
func (s *Session) Stop() error {
	if !s.started {
		return ErrNotStarted
	}
	s.putPage()
	s.started = false
	s.mu.Unlock()
	return nil
}

// Configure replaces the staging directory and the per-file size limit.
// It takes effect on the next file fetch; a file already open is left
// alone. The directory is not checked for existence here, a bad one
// surfaces on the next open attempt.
func (s *Session) Configure(dir string, maxSizeBytes uint64) error {
	if dir == "" {
		return ErrInvalidDir
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(dir) >= common.MaxDirPath {
		dir = dir[:common.MaxDirPath-1]
	}
	s.stagingDir = dir
	s.maxFilePages = int64(maxSizeBytes / pagestore.PageSize)
	klog.Infof("tracelog: configured staging dir %s, max file pages %d", dir, s.maxFilePages)
	return nil
}

// Close flushes and closes any open file and releases the directory
// lock. Only for shutdown, after all producers have stopped.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roll()
	if s.dirLock != nil {
		if err := s.dirLock.Unlock(); err != nil {
			return err
		}
		s.dirLock = nil
		s.lockedDir = ""
	}
	return nil
}

// Generation returns how many file names this session has generated.
func (s *Session) Generation() int {
	return s.generation
}

// PageOffset returns the in-page write cursor.
func (s *Session) PageOffset() int {
	if s.page != nil {
		return s.page.off
	}
	return s.offset
}

// FilePageOffset returns the page index the next fetched page maps to.
func (s *Session) FilePageOffset() int64 {
	if s.file != nil {
		return s.file.poffset
	}
	return 0
}

// FilePath returns the path of the open trace file, or "" after a roll.
func (s *Session) FilePath() string {
	if s.file != nil {
		return s.file.pf.Path()
	}
	return ""
}

func (s *Session) HasPage() bool {
	return s.page != nil
}
