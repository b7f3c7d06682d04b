package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nmea-movie/internal/movie"
	"nmea-movie/internal/pipeline"
)

var boxArgs = []string{"-lat0", "53.34", "-lng0", "-6.28", "-lat1", "53.36", "-lng1", "-6.24"}

func resetLogger(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		log.StandardLogger().ReplaceHooks(make(log.LevelHooks))
		log.SetLevel(log.InfoLevel)
		log.SetOutput(os.Stderr)
	})
}

func simulateToFile(t *testing.T, seconds string) string {
	t.Helper()
	var out bytes.Buffer
	args := append([]string{"-simulate", seconds}, boxArgs...)
	require.NoError(t, run(context.Background(), args, nil, &out, &bytes.Buffer{}))
	path := filepath.Join(t.TempDir(), "track.nmea")
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0o644))
	return path
}

func TestRun_SimulatedTrackEndToEnd(t *testing.T) {
	resetLogger(t)
	in := simulateToFile(t, "150")
	outDir := filepath.Join(t.TempDir(), "frames")

	var stderr bytes.Buffer
	args := append([]string{"-in", in, "-out", outDir, "-latbinsize", "0.001", "-lngbinsize", "0.001"}, boxArgs...)
	require.NoError(t, run(context.Background(), args, nil, &bytes.Buffer{}, &stderr))

	for n := 1; n <= 3; n++ {
		for _, ext := range []string{".hm.dat", ".pt.dat", ".gp", ".sv.dat", ".sv.gp"} {
			_, err := os.Stat(filepath.Join(outDir, movie.FrameName(n)+ext))
			require.NoError(t, err, "frame %d %s", n, ext)
		}
	}
	_, err := os.Stat(filepath.Join(outDir, "f000004.gp"))
	assert.True(t, os.IsNotExist(err))

	pts, err := os.ReadFile(filepath.Join(outDir, "f000001.pt.dat"))
	require.NoError(t, err)
	assert.Equal(t, 60, strings.Count(string(pts), "\n"))

	sv, err := os.ReadFile(filepath.Join(outDir, "f000001.sv.dat"))
	require.NoError(t, err)
	assert.Equal(t, 10, strings.Count(string(sv), "\n"))

	summary := stderr.String()
	assert.Contains(t, summary, "Writing frame 3")
	assert.Contains(t, summary, "fixes: 150\n")
	assert.Contains(t, summary, "frames: 3\n")
	assert.Contains(t, summary, "  GGA: 150\n")
}

func TestRun_NumSVFilterDropsEverything(t *testing.T) {
	resetLogger(t)
	in := simulateToFile(t, "10")
	outDir := t.TempDir()

	var stderr bytes.Buffer
	args := append([]string{"-in", in, "-out", outDir, "-latbinsize", "0.001", "-lngbinsize", "0.001", "-numsv", "11"}, boxArgs...)
	require.NoError(t, run(context.Background(), args, nil, &bytes.Buffer{}, &stderr))

	assert.Contains(t, stderr.String(), "fixes: 0\n")
	assert.Contains(t, stderr.String(), "few_satellites: 10\n")
	// The frame is still written: the fixes were timestamped.
	_, err := os.Stat(filepath.Join(outDir, "f000001.hm.dat"))
	assert.NoError(t, err)
}

func TestRun_RequiresBBox(t *testing.T) {
	err := run(context.Background(), []string{"-out", t.TempDir()}, strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, "bbox.lat0, bbox.lng0, bbox.lat1 and bbox.lng1 are required", err.Error())
}

func TestRun_MissingInputFile(t *testing.T) {
	resetLogger(t)
	args := append([]string{"-in", filepath.Join(t.TempDir(), "missing.nmea"), "-out", t.TempDir()}, boxArgs...)
	err := run(context.Background(), args, nil, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRun_RejectsPositionalArgs(t *testing.T) {
	err := run(context.Background(), []string{"extra"}, nil, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected arguments")
}

func TestBuildConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`bbox:
  lat0: 1
  lng0: 2
  lat1: 3
  lng1: 4
frame:
  length: 30s
output:
  dir: ./from-yaml
`), 0o644))

	o, fs, err := parseFlags([]string{"-config", path, "-framelength", "90", "-lat1", "5", "-numsv", "4"}, &bytes.Buffer{})
	require.NoError(t, err)
	cfg, err := buildConfig(o, fs)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 90*time.Second, cfg.Frame.Length)
	assert.Equal(t, 1.0, *cfg.BBox.Lat0)
	assert.Equal(t, 5.0, *cfg.BBox.Lat1)
	assert.Equal(t, "./from-yaml", cfg.Output.Dir)
	require.NotNil(t, cfg.Filter.MinSatellites)
	assert.Equal(t, 4, *cfg.Filter.MinSatellites)
}

func TestBuildConfig_UnsetFlagsKeepDefaults(t *testing.T) {
	o, fs, err := parseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)
	cfg, err := buildConfig(o, fs)
	require.NoError(t, err)
	assert.Nil(t, cfg.Filter.MinSatellites)
	assert.Nil(t, cfg.BBox.Lat0)
	assert.Equal(t, 60*time.Second, cfg.Frame.Length)
}

func TestPrintRunSummary(t *testing.T) {
	s := pipeline.Stats{
		Lines:     12,
		Sentences: map[string]int{"GGA": 5, "RMC": 1, "GSV": 3},
		Skipped:   map[pipeline.SkipReason]int{pipeline.SkipOutsideBox: 2, pipeline.SkipMalformed: 3},
		Fixes:     3,
		Frames:    1,
	}
	var buf bytes.Buffer
	printRunSummary(&buf, s, 1500*time.Microsecond)

	want := "lines: 12\n" +
		"fixes: 3\n" +
		"frames: 1\n" +
		"satellite_records_dropped: 0\n" +
		"elapsed: 2ms\n" +
		"sentences:\n" +
		"  GGA: 5\n" +
		"  GSV: 3\n" +
		"  RMC: 1\n" +
		"skipped:\n" +
		"  malformed: 3\n" +
		"  outside_box: 2\n"
	assert.Equal(t, want, buf.String())
}
