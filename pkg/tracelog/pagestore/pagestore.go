package pagestore

import (
	"io"
	"os"
)

// PageSize is the unit of staging and file alignment. Trace files are a
// sequence of PageSize blocks and a message never crosses a block boundary.
const PageSize = 4096

// MappedPage is one writable page leased from a File. Bytes stays valid
// until the page is passed back through Commit.
type MappedPage interface {
	Bytes() []byte
	Index() int64
}

// File hands out pages of a single backing file for writing.
// Fetch is the write-begin half of the lease, Commit the write-end half.
type File interface {
	Fetch(index int64) (MappedPage, error)
	Commit(p MappedPage) error
	Close() error
	Path() string
}

// Store opens backing files. Implementations decide how pages reach disk.
type Store interface {
	Open(path string) (File, error)
}

type fileStore struct {
	syncWrites bool
}

// NewFileStore returns a Store backed by plain file I/O. Each committed
// page is written at index*PageSize; with syncWrites every commit is
// followed by an fsync.
func NewFileStore(syncWrites bool) Store {
	return &fileStore{syncWrites: syncWrites}
}

func (s *fileStore) Open(path string) (File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	return &plainFile{f: f, path: path, syncWrites: s.syncWrites}, nil
}

type plainFile struct {
	f          *os.File
	path       string
	syncWrites bool
}

type bufPage struct {
	buf   []byte
	index int64
}

func (p *bufPage) Bytes() []byte { return p.buf }
func (p *bufPage) Index() int64  { return p.index }

// Fetch returns the current content of the page so a writer can resume
// mid-page after a put; bytes past EOF read as zero.
func (f *plainFile) Fetch(index int64) (MappedPage, error) {
	p := &bufPage{buf: make([]byte, PageSize), index: index}
	if _, err := f.f.ReadAt(p.buf, index*PageSize); err != nil && err != io.EOF {
		return nil, err
	}
	return p, nil
}

func (f *plainFile) Commit(p MappedPage) error {
	if _, err := f.f.WriteAt(p.Bytes(), p.Index()*PageSize); err != nil {
		return err
	}
	if f.syncWrites {
		return f.f.Sync()
	}
	return nil
}

func (f *plainFile) Close() error {
	return f.f.Close()
}

func (f *plainFile) Path() string {
	return f.path
}
