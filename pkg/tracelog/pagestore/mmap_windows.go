//go:build windows
// +build windows

package pagestore

// Mmap-backed pages are not wired up on Windows; fall back to plain file I/O.
func NewMmapStore(syncWrites bool) Store {
	return NewFileStore(syncWrites)
}
