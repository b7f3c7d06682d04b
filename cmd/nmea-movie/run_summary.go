package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"nmea-movie/internal/pipeline"
)

func printRunSummary(w io.Writer, s pipeline.Stats, elapsed time.Duration) {
	fmt.Fprintf(w, "lines: %d\n", s.Lines)
	fmt.Fprintf(w, "fixes: %d\n", s.Fixes)
	fmt.Fprintf(w, "frames: %d\n", s.Frames)
	fmt.Fprintf(w, "satellite_records_dropped: %d\n", s.SatelliteRecordsDropped)
	fmt.Fprintf(w, "elapsed: %s\n", elapsed.Round(time.Millisecond))

	ids := make([]string, 0, len(s.Sentences))
	for k := range s.Sentences {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	fmt.Fprintf(w, "sentences:\n")
	for _, k := range ids {
		fmt.Fprintf(w, "  %s: %d\n", k, s.Sentences[k])
	}

	reasons := make([]string, 0, len(s.Skipped))
	for k := range s.Skipped {
		reasons = append(reasons, string(k))
	}
	sort.Strings(reasons)
	fmt.Fprintf(w, "skipped:\n")
	for _, k := range reasons {
		fmt.Fprintf(w, "  %s: %d\n", k, s.Skipped[pipeline.SkipReason(k)])
	}
}
