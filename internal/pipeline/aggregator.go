package pipeline

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"nmea-movie/internal/frame"
	"nmea-movie/internal/gps"
	"nmea-movie/internal/grid"
	"nmea-movie/internal/movie"
	"nmea-movie/internal/satellite"
)

// Options configure an Aggregator.
type Options struct {
	Grid        grid.Config
	FrameLength time.Duration
	// MinSatellites drops fixes using fewer satellites. Nil disables the filter.
	MinSatellites *int
	// StrictTimestamps makes a fix that cannot be timestamped fatal instead
	// of skipped.
	StrictTimestamps bool
}

// Aggregator is the single-threaded state of a run: current date, satellite
// snapshot, frame segmentation and the cumulative grid.
type Aggregator struct {
	opts Options
	out  movie.Writer

	date string
	sats *satellite.Tracker
	seg  *frame.Segmenter
	grid *grid.Grid

	finished bool
	stats    Stats
}

func New(opts Options, out movie.Writer) (*Aggregator, error) {
	if out == nil {
		return nil, fmt.Errorf("frame writer is nil")
	}
	g, err := grid.New(opts.Grid)
	if err != nil {
		return nil, err
	}
	seg, err := frame.NewSegmenter(opts.FrameLength)
	if err != nil {
		return nil, err
	}
	return &Aggregator{
		opts:  opts,
		out:   out,
		sats:  satellite.NewTracker(),
		seg:   seg,
		grid:  g,
		stats: newStats(),
	}, nil
}

// Grid exposes the cumulative grid for inspection.
func (a *Aggregator) Grid() *grid.Grid { return a.grid }

// Satellites exposes the satellite snapshot of the frame in progress.
func (a *Aggregator) Satellites() *satellite.Tracker { return a.sats }

// Frame exposes the segmenter of the frame in progress.
func (a *Aggregator) Frame() *frame.Segmenter { return a.seg }

func (a *Aggregator) Stats() Stats { return a.stats }

// ProcessLine handles one raw input line. Malformed input is counted and
// skipped; the returned error is reserved for conditions that end the run
// (a failed flush, or an untimestampable fix in strict mode).
func (a *Aggregator) ProcessLine(line string) error {
	a.stats.Lines++

	s, err := gps.Decode(line)
	if err != nil {
		switch {
		case errors.Is(err, gps.ErrUnknownType):
			a.stats.skip(SkipUnknownSentence)
		default:
			a.stats.skip(SkipMalformed)
		}
		return nil
	}
	a.stats.Sentences[s.Kind.String()]++

	switch s.Kind {
	case gps.KindRMC:
		a.applyRMC(s)
		return nil
	case gps.KindGSV:
		a.applyGSV(s, line)
		return nil
	case gps.KindGGA:
		return a.applyGGA(s)
	}
	return nil
}

// SkipOverlongLine accounts for a line the reader discarded for exceeding
// MaxLineBytes.
func (a *Aggregator) SkipOverlongLine() {
	a.stats.Lines++
	a.stats.skip(SkipMalformed)
	log.Warnf("line longer than %d bytes discarded", MaxLineBytes)
}

func (a *Aggregator) applyRMC(s gps.Sentence) {
	rmc, err := gps.DecodeRMC(s)
	if err != nil {
		a.stats.skip(SkipMalformed)
		return
	}
	a.date = rmc.Date
}

func (a *Aggregator) applyGSV(s gps.Sentence, line string) {
	gsv, err := gps.DecodeGSV(s)
	a.stats.SatelliteRecordsDropped += gsv.Skipped
	a.sats.UpsertGSV(gsv)
	if err != nil {
		a.stats.skip(SkipSatelliteTruncated)
		log.WithError(err).Warnf("gsv sentence cut short: line=%s", line)
	}
}

func (a *Aggregator) applyGGA(s gps.Sentence) error {
	gga, err := gps.DecodeGGA(s)
	if err != nil {
		if errors.Is(err, gps.ErrNoLatitude) {
			a.stats.skip(SkipNoLatitude)
		} else {
			a.stats.skip(SkipMalformed)
		}
		return nil
	}

	ts, err := gps.Timestamp(a.date, gga.Time)
	if err != nil {
		if a.opts.StrictTimestamps {
			return fmt.Errorf("fix at %q: %w", gga.Time, err)
		}
		a.stats.skip(SkipNoTimestamp)
		log.WithError(err).Debug("fix skipped: no timestamp")
		return nil
	}

	if a.seg.Observe(ts) {
		if err := a.flush(); err != nil {
			return err
		}
		a.seg.Advance(ts)
		a.sats.Clear()
	}

	pos, err := gga.Position()
	if err != nil {
		a.stats.skip(SkipBadPosition)
		log.WithError(err).Debug("fix skipped")
		return nil
	}

	if minSats := a.opts.MinSatellites; minSats != nil {
		if !gga.SatellitesOK || gga.Satellites < *minSats {
			a.stats.skip(SkipFewSatellites)
			return nil
		}
	}

	if !a.grid.Add(pos) {
		a.stats.skip(SkipOutsideBox)
		return nil
	}
	a.seg.Append(pos)
	a.stats.Fixes++
	return nil
}

// flush writes the frame in progress. The title timestamp is the timestamp
// most recently observed by the segmenter.
func (a *Aggregator) flush() error {
	n := a.seg.Number()
	log.Infof("Writing frame %d", n)
	err := a.out.WriteFrame(movie.Frame{
		Number:     n,
		Time:       a.seg.Last(),
		Grid:       a.grid,
		Points:     a.seg.Points(),
		Satellites: a.sats.Snapshot(),
	})
	if err != nil {
		return fmt.Errorf("write frame %d: %w", n, err)
	}
	a.stats.Frames++
	return nil
}

// Finish flushes the frame in progress at end of input. Nothing is written
// if no fix was ever timestamped.
func (a *Aggregator) Finish() error {
	if a.finished || !a.seg.Started() {
		return nil
	}
	a.finished = true
	return a.flush()
}
