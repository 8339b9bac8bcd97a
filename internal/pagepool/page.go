package pagepool

import "github.com/hupe1980/boltgo/internal/mem"

// Page is a fixed-size, cache-line-aligned scratch buffer.
//
// While checked out, the payload returned by Bytes is caller-owned and opaque;
// the pool never inspects it. The content of a freshly obtained page is
// unspecified; callers must not assume a zeroed buffer.
//
// The next field is the intrusive free-list link. It is meaningful only while
// the page is linked into the pool's shared stack and must never be touched by
// callers.
type Page struct {
	next *Page
	buf  []byte
}

func newPage(size int) *Page {
	return &Page{buf: mem.AllocAligned(size)}
}

// Bytes returns the page payload. The first byte is 64-byte aligned.
func (p *Page) Bytes() []byte { return p.buf }

// Size returns the payload size in bytes.
func (p *Page) Size() int { return len(p.buf) }
