package movie

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/skypies/geo"

	"nmea-movie/internal/grid"
	"nmea-movie/internal/satellite"
)

// Frame is everything written for one flush.
type Frame struct {
	Number int
	// Time is the timestamp that triggered the flush; it becomes the plot title.
	Time       time.Time
	Grid       *grid.Grid
	Points     []geo.Latlong
	Satellites []satellite.Record
}

// Writer persists frames.
type Writer interface {
	WriteFrame(f Frame) error
}

// Emitter writes the five per-frame files into Dir:
//
//	fNNNNNN.hm.dat  heat-map rows "lat lng count" (count -1 for unset cells)
//	fNNNNNN.pt.dat  the frame's fixes "lat lng"
//	fNNNNNN.gp      gnuplot script for the heat map, loads movie.gp
//	fNNNNNN.sv.dat  satellites "id azimuth elevation snr"
//	fNNNNNN.sv.gp   gnuplot polar script for satellites, loads sv_chart.gp
type Emitter struct {
	Dir string
}

func NewEmitter(dir string) (*Emitter, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Emitter{Dir: dir}, nil
}

// FrameName is the zero-padded base name shared by a frame's files.
func FrameName(n int) string {
	return fmt.Sprintf("f%06d", n)
}

// WriteFrame writes all files of f. Each file is closed before the next one
// is opened. Files written before a failure are left in place.
func (e *Emitter) WriteFrame(f Frame) error {
	if f.Grid == nil {
		return fmt.Errorf("frame %d: grid is nil", f.Number)
	}
	name := FrameName(f.Number)

	steps := []struct {
		file  string
		write func(w *bufio.Writer) error
	}{
		{name + ".hm.dat", func(w *bufio.Writer) error { return writeHeatMap(w, f.Grid) }},
		{name + ".pt.dat", func(w *bufio.Writer) error { return writePoints(w, f.Points) }},
		{name + ".gp", func(w *bufio.Writer) error { return writeHeatMapScript(w, f.Number, f.Time) }},
		{name + ".sv.dat", func(w *bufio.Writer) error { return writeSatellites(w, f.Satellites) }},
		{name + ".sv.gp", func(w *bufio.Writer) error { return writeSatelliteScript(w, f.Number) }},
	}
	for _, st := range steps {
		if err := e.writeFile(st.file, st.write); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) writeFile(name string, write func(w *bufio.Writer) error) error {
	path := filepath.Join(e.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	bw := bufio.NewWriterSize(f, 64*1024)
	if err := write(bw); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeHeatMap(w io.Writer, g *grid.Grid) error {
	buf := make([]byte, 0, 64)
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			lat, lng := g.BinCoordinate(r, c)
			cell := g.Cell(r, c)
			count := -1
			if cell.Set {
				count = cell.Count
			}
			buf = buf[:0]
			buf = AppendFloat(buf, lat)
			buf = append(buf, ' ')
			buf = AppendFloat(buf, lng)
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, int64(count), 10)
			buf = append(buf, '\n')
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
	}
	return nil
}

func writePoints(w io.Writer, pts []geo.Latlong) error {
	for _, p := range pts {
		if _, err := fmt.Fprintf(w, "%s %s\n", FormatFloat(p.Lat), FormatFloat(p.Long)); err != nil {
			return err
		}
	}
	return nil
}

func writeSatellites(w io.Writer, sats []satellite.Record) error {
	for _, s := range sats {
		if _, err := fmt.Fprintf(w, "%d %s %s %s\n", s.ID, FormatFloat(s.Azimuth), FormatFloat(s.Elevation), FormatFloat(s.SNR)); err != nil {
			return err
		}
	}
	return nil
}
