package frame

import (
	"fmt"
	"time"

	"github.com/skypies/geo"
)

// Segmenter cuts the fix stream into fixed-length time buckets. It owns the
// frame number, the bucket of the frame in progress and that frame's points.
//
// The first observed timestamp seeds the bucket; frame numbering starts at 1.
type Segmenter struct {
	length time.Duration

	number  int
	bucket  int64
	started bool
	last    time.Time

	points []geo.Latlong
}

func NewSegmenter(length time.Duration) (*Segmenter, error) {
	if length <= 0 {
		return nil, fmt.Errorf("frame length must be > 0")
	}
	return &Segmenter{length: length, number: 1}, nil
}

// Bucket returns floor(ts / length), counted from the Unix epoch.
func (s *Segmenter) Bucket(ts time.Time) int64 {
	n := ts.UnixNano()
	l := s.length.Nanoseconds()
	b := n / l
	if n%l != 0 && n < 0 {
		b--
	}
	return b
}

// Observe records ts and reports whether it falls in a later bucket than the
// frame in progress. When it does, the caller flushes the current frame and
// then calls Advance(ts). Timestamps in an earlier bucket stay in the current
// frame.
func (s *Segmenter) Observe(ts time.Time) bool {
	b := s.Bucket(ts)
	if !s.started {
		s.started = true
		s.bucket = b
		s.last = ts
		return false
	}
	s.last = ts
	return b > s.bucket
}

// Advance closes the frame in progress and opens the bucket holding ts.
func (s *Segmenter) Advance(ts time.Time) {
	s.number++
	s.bucket = s.Bucket(ts)
	s.points = s.points[:0]
}

// Append adds an accepted fix to the frame in progress.
func (s *Segmenter) Append(p geo.Latlong) {
	s.points = append(s.points, p)
}

// Points returns the fixes of the frame in progress. The slice is reused
// after Advance.
func (s *Segmenter) Points() []geo.Latlong { return s.points }

// Number is the frame number of the frame in progress.
func (s *Segmenter) Number() int { return s.number }

// Started reports whether any timestamp has been observed.
func (s *Segmenter) Started() bool { return s.started }

// Last is the most recently observed timestamp.
func (s *Segmenter) Last() time.Time { return s.last }
