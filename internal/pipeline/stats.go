package pipeline

// SkipReason classifies a line or fix that did not contribute to the output.
type SkipReason string

const (
	SkipMalformed          SkipReason = "malformed"
	SkipUnknownSentence    SkipReason = "unknown_sentence"
	SkipSatelliteTruncated SkipReason = "gsv_truncated"
	SkipNoLatitude         SkipReason = "no_latitude"
	SkipNoTimestamp        SkipReason = "no_timestamp"
	SkipBadPosition        SkipReason = "bad_position"
	SkipFewSatellites      SkipReason = "few_satellites"
	SkipOutsideBox         SkipReason = "outside_box"
)

// Stats summarizes a run.
type Stats struct {
	Lines     int
	Sentences map[string]int
	Skipped   map[SkipReason]int
	// SatelliteRecordsDropped counts GSV groups with non-numeric values.
	SatelliteRecordsDropped int
	Fixes                   int
	Frames                  int
}

func newStats() Stats {
	return Stats{Sentences: map[string]int{}, Skipped: map[SkipReason]int{}}
}

func (s *Stats) skip(r SkipReason) {
	s.Skipped[r]++
}
