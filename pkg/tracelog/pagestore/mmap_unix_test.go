//go:build !windows
// +build !windows

package pagestore

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/assert"
)

func TestMmapStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages.trace")

	s := NewMmapStore(false)
	f, err := s.Open(path)
	assert.Assert(t, err == nil, err)

	p0, err := f.Fetch(0)
	assert.Assert(t, err == nil, err)
	assert.Assert(t, p0.Index() == 0)
	assert.Assert(t, len(p0.Bytes()) == PageSize)
	copy(p0.Bytes(), "mapped page zero")
	assert.Assert(t, f.Commit(p0) == nil)

	p1, err := f.Fetch(1)
	assert.Assert(t, err == nil, err)
	copy(p1.Bytes(), "mapped page one")
	assert.Assert(t, f.Commit(p1) == nil)

	// refetching maps the committed content back in
	p0, err = f.Fetch(0)
	assert.Assert(t, err == nil, err)
	assert.Assert(t, string(p0.Bytes()[:16]) == "mapped page zero")
	assert.Assert(t, f.Commit(p0) == nil)
	assert.Assert(t, f.Close() == nil)

	raw, err := os.ReadFile(path)
	assert.Assert(t, err == nil, err)
	assert.Assert(t, len(raw) == 2*PageSize)
	assert.Assert(t, string(raw[:16]) == "mapped page zero")
	assert.Assert(t, string(raw[PageSize:PageSize+15]) == "mapped page one")
}

func TestMmapStoreRejectsForeignPage(t *testing.T) {
	dir := t.TempDir()

	ms := NewMmapStore(false)
	mf, err := ms.Open(filepath.Join(dir, "a.trace"))
	assert.Assert(t, err == nil, err)

	fs := NewFileStore(false)
	ff, err := fs.Open(filepath.Join(dir, "b.trace"))
	assert.Assert(t, err == nil, err)

	p, err := ff.Fetch(0)
	assert.Assert(t, err == nil, err)
	assert.Assert(t, mf.Commit(p) != nil)

	assert.Assert(t, ff.Close() == nil)
	assert.Assert(t, mf.Close() == nil)
}
