package services

import (
	"slices"

	"github.com/custodia-labs/reposcan/internal/core/domain"
)

// batchBuffer holds candidate node ids between flushes.
// Ids are appended in enumeration order and leave the buffer in contiguous slices.
type batchBuffer struct {
	ids   []string
	size  int
	order domain.FlushOrder
}

func newBatchBuffer(size int, order domain.FlushOrder) *batchBuffer {
	return &batchBuffer{
		ids:   make([]string, 0, 2*size),
		size:  size,
		order: order,
	}
}

func (b *batchBuffer) push(id string) {
	b.ids = append(b.ids, id)
}

func (b *batchBuffer) len() int {
	return len(b.ids)
}

// next removes and returns the next slice to hydrate, or nil when no flush is due.
//
// A flush is due when the buffer holds at least size ids, or when enumeration is
// exhausted and the buffer is not empty. An exhausted buffer that fits in one
// batch is flushed whole. Otherwise newest-first order hydrates buf[len-size:]
// and keeps the older head, while fifo order hydrates buf[:size] and keeps the tail.
func (b *batchBuffer) next(exhausted bool) []string {
	n := len(b.ids)
	switch {
	case n == 0:
		return nil
	case exhausted && n <= b.size:
		out := b.ids
		b.ids = make([]string, 0, 2*b.size)
		return out
	case n < b.size:
		return nil
	}

	if b.order == domain.FlushFIFO {
		out := slices.Clone(b.ids[:b.size])
		b.ids = slices.Clone(b.ids[b.size:])
		return out
	}

	cutoff := n - b.size
	out := slices.Clone(b.ids[cutoff:])
	b.ids = b.ids[:cutoff]
	return out
}
