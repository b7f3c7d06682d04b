package movie

import (
	"fmt"
	"io"
	"time"
)

const (
	BaseScript          = "movie.gp"
	SatelliteBaseScript = "sv_chart.gp"

	titleLayout = "2006-01-02 15:04:05"
	pointStyle  = "using (lng_to_meters($2,clng,clat)):(lat_to_meters($1,clat)):(0.5) with circles linecolor rgb '%s' fs transparent solid 0.1 noborder"
)

// Trail of earlier frames drawn under the current one, oldest first.
var trail = []struct {
	back  int
	color string
}{
	{3, "#444444"},
	{2, "#888888"},
	{1, "#cccccc"},
}

func writeHeatMapScript(w io.Writer, n int, ts time.Time) error {
	name := FrameName(n)
	if _, err := fmt.Fprintf(w, "load '%s'\n", BaseScript); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "set output '%s.png'\n", name); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "set title '%s'\n", ts.UTC().Format(titleLayout)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "plot '%s.hm.dat' using (lng_to_meters($2,clng,clat)):(lat_to_meters($1,clat)):3  with image \\\n", name); err != nil {
		return err
	}
	for _, t := range trail {
		prev := n - t.back
		if prev < 1 {
			continue
		}
		if _, err := fmt.Fprintf(w, ", '%s.pt.dat' "+pointStyle+" title''\\\n", FrameName(prev), t.color); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, ", '%s.pt.dat' "+pointStyle+" title ''\t\\\n", name, "#ffffff"); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, ", '%s.sv.png' binary filetype=png center=(20,-15) dx=0.03 dy=0.03 with rgbimage notitle\n", name)
	return err
}

func writeSatelliteScript(w io.Writer, n int) error {
	name := FrameName(n)
	_, err := fmt.Fprintf(w,
		"load '%s'\n"+
			"set output '%s.sv.png'\n"+
			"plot '%s.sv.dat' using (90-$2):(90-$3):(5.0):4 with circles lc palette title '' \\\n"+
			",'%s.sv.dat' using (90-$2):(90-$3):1 with labels textcolor rgb 'white' title ''\n",
		SatelliteBaseScript, name, name, name)
	return err
}
