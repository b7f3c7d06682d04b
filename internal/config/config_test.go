package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bbox = "bbox:\n  lat0: 53\n  lng0: -7\n  lat1: 54\n  lng1: -5\n"

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func requireErrEq(t *testing.T, err error, want string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, err.Error())
}

func TestLoad_RequiresBBox(t *testing.T) {
	path := writeTempConfig(t, "bins: {}\n")
	_, err := Load(path)
	requireErrEq(t, err, "bbox.lat0, bbox.lng0, bbox.lat1 and bbox.lng1 are required")
}

func TestLoad_DefaultsApplied(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, bbox))
	require.NoError(t, err)

	assert.Equal(t, 0.0001, cfg.Bins.LatSize)
	assert.Equal(t, 0.0001, cfg.Bins.LngSize)
	assert.Equal(t, 60*time.Second, cfg.Frame.Length)
	assert.Nil(t, cfg.Filter.MinSatellites)
	assert.Equal(t, ".", cfg.Output.Dir)
	assert.Equal(t, DefaultQueueSize, cfg.Input.QueueSize)
	assert.Equal(t, DefaultMaxCells, cfg.Grid.MaxCells)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Timestamps.Strict)
	assert.Equal(t, 53.0, *cfg.BBox.Lat0)
	assert.Equal(t, -5.0, *cfg.BBox.Lng1)
}

func TestLoad_AllFields(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, bbox+`bins:
  lat_size: 0.1
  lng_size: 0.2
frame:
  length: 90s
filter:
  min_satellites: 0
grid:
  max_cells: 1000
timestamps:
  strict: true
input:
  path: ./track.nmea
  queue_size: 16
output:
  dir: ./out
log:
  level: debug
  file: ./movie.log
  max_age_days: 7
`))
	require.NoError(t, err)

	assert.Equal(t, 0.1, cfg.Bins.LatSize)
	assert.Equal(t, 0.2, cfg.Bins.LngSize)
	assert.Equal(t, 90*time.Second, cfg.Frame.Length)
	require.NotNil(t, cfg.Filter.MinSatellites)
	assert.Equal(t, 0, *cfg.Filter.MinSatellites)
	assert.Equal(t, 1000, cfg.Grid.MaxCells)
	assert.True(t, cfg.Timestamps.Strict)
	assert.Equal(t, "./track.nmea", cfg.Input.Path)
	assert.Equal(t, 16, cfg.Input.QueueSize)
	assert.Equal(t, "./out", cfg.Output.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "./movie.log", cfg.Log.File)
	assert.Equal(t, 7, cfg.Log.MaxAgeDays)
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "InvertedLat",
			yaml: "bbox:\n  lat0: 54\n  lng0: -7\n  lat1: 53\n  lng1: -5\n",
			want: "bbox.lat0 must be <= bbox.lat1",
		},
		{
			name: "InvertedLng",
			yaml: "bbox:\n  lat0: 53\n  lng0: -5\n  lat1: 54\n  lng1: -7\n",
			want: "bbox.lng0 must be <= bbox.lng1",
		},
		{
			name: "LatOutOfRange",
			yaml: "bbox:\n  lat0: -91\n  lng0: -7\n  lat1: 54\n  lng1: -5\n",
			want: "bbox.lat0 must be within [-90, 90]",
		},
		{
			name: "NegativeBin",
			yaml: bbox + "bins:\n  lat_size: -1\n",
			want: "bins.lat_size must be > 0",
		},
		{
			name: "InfiniteBin",
			yaml: bbox + "bins:\n  lng_size: .inf\n",
			want: "bins.lng_size must be > 0",
		},
		{
			name: "FractionalFrame",
			yaml: bbox + "frame:\n  length: 1500ms\n",
			want: "frame.length must be a whole number of seconds",
		},
		{
			name: "NegativeFrame",
			yaml: bbox + "frame:\n  length: -5s\n",
			want: "frame.length must be > 0",
		},
		{
			name: "NegativeMinSats",
			yaml: bbox + "filter:\n  min_satellites: -1\n",
			want: "filter.min_satellites must be >= 0",
		},
		{
			name: "BadLogLevel",
			yaml: bbox + "log:\n  level: loud\n",
			want: "log.level must be one of debug, info, warn, error",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tc.yaml))
			requireErrEq(t, err, tc.want)
		})
	}
}

func TestLoad_RejectsUnknownField(t *testing.T) {
	_, err := Load(writeTempConfig(t, bbox+"frame:\n  lenght: 30s\n"))
	requireErrEq(t, err, "config contains unknown or invalid fields: field lenght not found in type config.FrameConfig")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefault_NeedsBBox(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate())

	lat0, lng0, lat1, lng1 := 53.0, -7.0, 54.0, -5.0
	cfg.BBox = BBoxConfig{Lat0: &lat0, Lng0: &lng0, Lat1: &lat1, Lng1: &lng1}
	assert.NoError(t, cfg.Validate())
}

func TestRead_SkipsValidation(t *testing.T) {
	cfg, err := Read(writeTempConfig(t, "frame:\n  length: 30s\n"))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Frame.Length)
	assert.Nil(t, cfg.BBox.Lat0)
	assert.Error(t, cfg.Validate())
}
