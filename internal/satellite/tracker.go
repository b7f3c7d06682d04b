package satellite

import (
	"sort"

	"nmea-movie/internal/gps"
)

// Record is the latest observation of one satellite.
type Record struct {
	ID        int
	Elevation float64
	Azimuth   float64
	SNR       float64
}

// Tracker holds the satellites seen since the last frame flush, keyed by id.
// Later observations replace earlier ones. Not safe for concurrent use; it is
// owned by the processing loop.
type Tracker struct {
	sats map[int]Record
}

func NewTracker() *Tracker {
	return &Tracker{sats: make(map[int]Record)}
}

func (t *Tracker) Upsert(r Record) {
	if t == nil {
		return
	}
	t.sats[r.ID] = r
}

// UpsertGSV stores every record decoded from one GSV sentence.
func (t *Tracker) UpsertGSV(g gps.GSV) {
	for _, r := range g.Records {
		t.Upsert(Record{ID: r.ID, Elevation: r.Elevation, Azimuth: r.Azimuth, SNR: r.SNR})
	}
}

func (t *Tracker) Get(id int) (Record, bool) {
	if t == nil {
		return Record{}, false
	}
	r, ok := t.sats[id]
	return r, ok
}

func (t *Tracker) Len() int {
	if t == nil {
		return 0
	}
	return len(t.sats)
}

// Clear forgets every satellite.
func (t *Tracker) Clear() {
	if t == nil {
		return
	}
	clear(t.sats)
}

// Snapshot returns the tracked satellites ordered by id.
func (t *Tracker) Snapshot() []Record {
	if t == nil {
		return nil
	}
	out := make([]Record, 0, len(t.sats))
	for _, r := range t.sats {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
