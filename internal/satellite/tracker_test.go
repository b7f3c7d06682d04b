package satellite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nmea-movie/internal/gps"
)

func TestTracker_LastWriteWins(t *testing.T) {
	tr := NewTracker()
	tr.Upsert(Record{ID: 7, Elevation: 10, Azimuth: 20, SNR: 30})
	tr.Upsert(Record{ID: 7, Elevation: 11, Azimuth: 21, SNR: 31})
	tr.Upsert(Record{ID: 3, Elevation: 40, Azimuth: 50, SNR: 0})

	require.Equal(t, 2, tr.Len())
	r, ok := tr.Get(7)
	require.True(t, ok)
	assert.Equal(t, Record{ID: 7, Elevation: 11, Azimuth: 21, SNR: 31}, r)
}

func TestTracker_SnapshotSortedAndClear(t *testing.T) {
	tr := NewTracker()
	for _, id := range []int{29, 2, 14} {
		tr.Upsert(Record{ID: id})
	}
	snap := tr.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []int{2, 14, 29}, []int{snap[0].ID, snap[1].ID, snap[2].ID})

	tr.Clear()
	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Snapshot())

	// Snapshot is a copy.
	snap[0].ID = 99
	_, ok := tr.Get(99)
	assert.False(t, ok)
}

func TestTracker_UpsertGSV(t *testing.T) {
	s, err := gps.Decode("$GPGSV,1,1,02,07,45,120,38,12,30,250,xx*00")
	require.NoError(t, err)
	g, err := gps.DecodeGSV(s)
	require.NoError(t, err)

	tr := NewTracker()
	tr.UpsertGSV(g)
	require.Equal(t, 1, tr.Len())
	r, ok := tr.Get(7)
	require.True(t, ok)
	assert.Equal(t, 38.0, r.SNR)
}

func TestTracker_NilSafe(t *testing.T) {
	var tr *Tracker
	tr.Upsert(Record{ID: 1})
	tr.Clear()
	assert.Equal(t, 0, tr.Len())
	assert.Nil(t, tr.Snapshot())
}
