//go:build !windows
// +build !windows

package pagestore

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

type mmapStore struct {
	syncWrites bool
}

// NewMmapStore returns a Store that leases pages as shared memory mappings.
// Commit msyncs the mapping (MS_SYNC when syncWrites) and unmaps it.
func NewMmapStore(syncWrites bool) Store {
	return &mmapStore{syncWrites: syncWrites}
}

func (s *mmapStore) Open(path string) (File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	return &mmapFile{f: f, path: path, syncWrites: s.syncWrites}, nil
}

type mmapFile struct {
	f          *os.File
	path       string
	syncWrites bool
}

type mmapPage struct {
	raw   []byte // full mapping, aligned to the OS page size
	data  []byte // the PageSize window inside raw
	index int64
}

func (p *mmapPage) Bytes() []byte { return p.data }
func (p *mmapPage) Index() int64  { return p.index }

func (f *mmapFile) Fetch(index int64) (MappedPage, error) {
	off := index * PageSize
	end := off + PageSize
	st, err := f.f.Stat()
	if err != nil {
		return nil, err
	}
	if st.Size() < end {
		if err := f.f.Truncate(end); err != nil {
			return nil, err
		}
	}

	// The mapping offset must be aligned to the OS page size, which may be
	// larger than PageSize.
	align := int64(os.Getpagesize())
	base := off &^ (align - 1)
	raw, err := unix.Mmap(int(f.f.Fd()), base, int(end-base), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	p := &mmapPage{raw: raw, index: index}
	p.data = raw[off-base : off-base+PageSize]
	return p, nil
}

func (f *mmapFile) Commit(p MappedPage) error {
	mp, ok := p.(*mmapPage)
	if !ok {
		return errors.New("pagestore: page was not fetched from this file")
	}
	flags := unix.MS_ASYNC
	if f.syncWrites {
		flags = unix.MS_SYNC
	}
	err := unix.Msync(mp.raw, flags)
	if uerr := unix.Munmap(mp.raw); err == nil {
		err = uerr
	}
	return err
}

func (f *mmapFile) Close() error {
	return f.f.Close()
}

func (f *mmapFile) Path() string {
	return f.path
}
