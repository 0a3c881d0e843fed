package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfDomain      = errors.New("number is outside the category domain")
	ErrInvalidPartition = errors.New("invalid category partition")
)

// Partitioner splits the numeric trigger domain [min, max] into contiguous
// buckets of a fixed size. The last bucket is clipped to max.
type Partitioner struct {
	min  int64
	max  int64
	size int64
}

// NewPartitioner creates a Partitioner for [min, max] with the given bucket size
func NewPartitioner(min, max, size int64) (*Partitioner, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: bucket size must be positive, got %d", ErrInvalidPartition, size)
	}
	if min < 0 {
		return nil, fmt.Errorf("%w: minimum must be non-negative, got %d", ErrInvalidPartition, min)
	}
	if max < min {
		return nil, fmt.Errorf("%w: maximum %d is below minimum %d", ErrInvalidPartition, max, min)
	}
	return &Partitioner{min: min, max: max, size: size}, nil
}

// Min returns the smallest number in the domain
func (p *Partitioner) Min() int64 { return p.min }

// Max returns the largest number in the domain
func (p *Partitioner) Max() int64 { return p.max }

// Contains reports whether n belongs to the domain
func (p *Partitioner) Contains(n int64) bool {
	return n >= p.min && n <= p.max
}

// BucketFor returns the label of the bucket holding n
func (p *Partitioner) BucketFor(n int64) (string, error) {
	if !p.Contains(n) {
		return "", fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfDomain, n, p.min, p.max)
	}
	return p.label((n - p.min) / p.size), nil
}

// AllBuckets returns every bucket label in ascending order
func (p *Partitioner) AllBuckets() []string {
	count := (p.max-p.min)/p.size + 1
	labels := make([]string, 0, count)
	for i := int64(0); i < count; i++ {
		labels = append(labels, p.label(i))
	}
	return labels
}

// First returns the label of the lowest bucket
func (p *Partitioner) First() string {
	return p.label(0)
}

// IsBucket reports whether label is one of the bucket labels
func (p *Partitioner) IsBucket(label string) bool {
	var lo, hi int64
	if _, err := fmt.Sscanf(label, "%d-%d", &lo, &hi); err != nil {
		return false
	}
	if !p.Contains(lo) {
		return false
	}
	idx := (lo - p.min) / p.size
	return p.label(idx) == label
}

func (p *Partitioner) label(idx int64) string {
	lo := p.min + idx*p.size
	hi := lo + p.size - 1
	if hi > p.max {
		hi = p.max
	}
	return fmt.Sprintf("%d-%d", lo, hi)
}
