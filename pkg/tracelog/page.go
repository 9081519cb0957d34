package tracelog

import (
	"Stylus/pkg/tracelog/pagestore"
	"Stylus/pkg/util"
)

// page is a bounds-checked cursor over one leased staging page. off is
// the next free byte; it only moves forward while the page is live.
type page struct {
	mp  pagestore.MappedPage
	off int
}

func newPageAt(mp pagestore.MappedPage, off int) *page {
	util.Assertf(0 <= off && off <= pagestore.PageSize, "page offset %d", off)
	return &page{mp: mp, off: off}
}

func (p *page) fits(n int) bool {
	return p.off+n <= pagestore.PageSize
}

// reserve hands out the next n bytes of the page and advances the
// cursor. Callers must have checked fits(n).
func (p *page) reserve(n int) []byte {
	util.Assertf(p.fits(n), "reserve %d bytes at offset %d", n, p.off)
	b := p.mp.Bytes()[p.off : p.off+n]
	p.off += n
	return b
}

// terminate marks end-of-data when the page is not completely full.
func (p *page) terminate() {
	if p.off < pagestore.PageSize {
		p.mp.Bytes()[p.off] = Terminator
	}
}
