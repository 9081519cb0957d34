package tracelog

import (
	"path/filepath"
	"time"

	"github.com/juju/fslock"
	"k8s.io/klog/v2"

	"Stylus/pkg/tracelog/common"
	"Stylus/pkg/tracelog/pagestore"
	"Stylus/pkg/util"
)

// logFile is the currently open backing file. poffset is the page index
// the next fetched page maps to; it only increases for a given file.
type logFile struct {
	pf      pagestore.File
	poffset int64
}

// fetchPage ensures s.page has room for total more bytes, switching
// pages, rotating files and re-attempting fetches as needed. On return
// s.page may still be nil; the caller reports unavailability.
func (s *Session) fetchPage(total int) {
	for {
		if s.page != nil {
			if s.page.fits(total) {
				return
			}
			util.Assert(s.file != nil)
			s.putPage()
			s.offset = 0
			s.file.poffset++
		}
		s.fetchFile()
		if s.file == nil {
			return
		}
		mp, err := s.file.pf.Fetch(s.file.poffset)
		if err != nil {
			klog.Errorf("tracelog: fetch page %d of %s: %v", s.file.poffset, s.file.pf.Path(), err)
			return
		}
		s.page = newPageAt(mp, s.offset)
	}
}

// fetchFile makes sure a trace file with room below the configured page
// count is open. Open failures leave s.file unset so the writer keeps
// running in drop-data mode.
func (s *Session) fetchFile() {
	if s.file != nil {
		if s.file.poffset < s.maxFilePages {
			return
		}
		s.roll()
	}
	if !s.lockDir() {
		return
	}
	name := common.TraceFileName(time.Now().Unix(), s.generation)
	s.generation++
	path := filepath.Join(s.stagingDir, name)
	pf, err := s.store.Open(path)
	if err != nil {
		klog.Errorf("tracelog: create trace file %s: %v", path, err)
		s.metrics.OpenFailures.Inc()
		return
	}
	s.file = &logFile{pf: pf}
	s.metrics.FilesOpened.Inc()
	klog.Infof("tracelog: created trace file %s", path)
}

// putPage terminates, flushes and releases the staging page. A flush
// failure loses that page but the writer stays live.
func (s *Session) putPage() {
	if s.page == nil {
		return
	}
	s.offset = s.page.off
	s.page.terminate()
	if err := s.file.pf.Commit(s.page.mp); err != nil {
		klog.Errorf("tracelog: flush page %d of %s: %v", s.page.mp.Index(), s.file.pf.Path(), err)
		s.metrics.FlushFailures.Inc()
	} else {
		s.metrics.PagesFlushed.Inc()
	}
	s.page = nil
	s.pending = nil
}

func (s *Session) roll() {
	s.putPage()
	s.offset = 0
	if s.file == nil {
		return
	}
	if err := s.file.pf.Close(); err != nil {
		klog.Errorf("tracelog: close trace file %s: %v", s.file.pf.Path(), err)
	}
	s.file = nil
	s.metrics.Rotations.Inc()
}

// lockDir holds an advisory lock on the staging directory so no second
// writer process appends there. Re-pointed when Configure moves the
// directory.
func (s *Session) lockDir() bool {
	if s.dirLock != nil && s.lockedDir == s.stagingDir {
		return true
	}
	if s.dirLock != nil {
		if err := s.dirLock.Unlock(); err != nil {
			klog.Errorf("tracelog: unlock staging dir %s: %v", s.lockedDir, err)
		}
		s.dirLock = nil
		s.lockedDir = ""
	}
	lk := fslock.New(filepath.Join(s.stagingDir, common.GetLockName()))
	if err := lk.TryLock(); err != nil {
		klog.Errorf("tracelog: lock staging dir %s: %v", s.stagingDir, err)
		return false
	}
	s.dirLock = lk
	s.lockedDir = s.stagingDir
	return true
}
