package scale

import "sync"

// Scratch is a thread-safe pool of intermediate step buffers.
//
// Buffers are grouped by sample type and length, so a multi-step plan run
// repeatedly at the same sizes allocates its intermediates once. Pooled
// buffers are not cleared; every resample pass overwrites all of its
// destination samples.
type Scratch struct {
	mu      sync.Mutex
	u8      map[int][][]uint8
	f32     map[int][][]float32
	maxSize int // max buffers per bucket
}

// NewScratch creates a pool retaining at most maxPerBucket buffers of each
// type and length. A maxPerBucket of 0 means unlimited.
func NewScratch(maxPerBucket int) *Scratch {
	return &Scratch{
		u8:      make(map[int][][]uint8),
		f32:     make(map[int][][]float32),
		maxSize: maxPerBucket,
	}
}

// Len returns the number of pooled buffers.
func (s *Scratch) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.u8 {
		n += len(b)
	}
	for _, b := range s.f32 {
		n += len(b)
	}
	return n
}

// Clear drops every pooled buffer.
func (s *Scratch) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	clear(s.u8)
	clear(s.f32)
	s.mu.Unlock()
}

// getBuffer pops a buffer of length n or allocates one. A nil pool always
// allocates.
func getBuffer[T Sample](s *Scratch, n int) []T {
	if s == nil {
		return make([]T, n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []T
	switch b := any(&out).(type) {
	case *[]uint8:
		*b = pop(s.u8, n)
	case *[]float32:
		*b = pop(s.f32, n)
	}
	if out == nil {
		out = make([]T, n)
	}
	return out
}

// putBuffer returns buf to the pool. Buffers over the bucket limit are
// dropped.
func putBuffer[T Sample](s *Scratch, buf []T) {
	if s == nil || len(buf) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	switch b := any(buf).(type) {
	case []uint8:
		push(s.u8, b, s.maxSize)
	case []float32:
		push(s.f32, b, s.maxSize)
	}
}

func pop[E any](buckets map[int][][]E, n int) []E {
	bucket := buckets[n]
	if len(bucket) == 0 {
		return nil
	}
	buf := bucket[len(bucket)-1]
	buckets[n] = bucket[:len(bucket)-1]
	return buf
}

func push[E any](buckets map[int][][]E, buf []E, maxSize int) {
	bucket := buckets[len(buf)]
	if maxSize > 0 && len(bucket) >= maxSize {
		return
	}
	buckets[len(buf)] = append(bucket, buf)
}
