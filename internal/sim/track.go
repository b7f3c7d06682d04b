package sim

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	"github.com/skypies/geo"
)

// Track is a deterministic GPS receiver moving around a center point. It
// produces one RMC, the GSV set and one GGA per step.
type Track struct {
	Center   geo.Latlong
	RadiusNm float64
	Period   time.Duration

	// Satellites in view; their azimuths rotate slowly with time.
	Satellites int
	// Used is the satellite count reported in GGA.
	Used int

	Start time.Time
	Step  time.Duration
}

func (s Track) withDefaults() Track {
	if s.Period <= 0 {
		s.Period = 120 * time.Second
	}
	if s.RadiusNm <= 0 {
		s.RadiusNm = 0.5
	}
	if s.Satellites <= 0 {
		s.Satellites = 8
	}
	if s.Used <= 0 {
		s.Used = s.Satellites
	}
	if s.Step <= 0 {
		s.Step = time.Second
	}
	if s.Start.IsZero() {
		s.Start = time.Date(2023, 9, 23, 12, 0, 0, 0, time.UTC)
	}
	return s
}

// Position returns a figure-eight (Lissajous) path around the center that
// stays within the configured radius.
func (s Track) Position(now time.Time) geo.Latlong {
	s = s.withDefaults()

	// Convert NM to degrees latitude (~60 NM per degree).
	radiusDeg := s.RadiusNm / 60.0

	phase := float64(now.UnixNano()%s.Period.Nanoseconds()) / float64(s.Period.Nanoseconds())

	//	x = cos(2πt)
	//	y = 0.5*sin(4πt)
	w := 2 * math.Pi * phase
	x := math.Cos(w)
	y := 0.5 * math.Sin(2*w)

	return geo.Latlong{
		Lat:  s.Center.Lat + radiusDeg*y,
		Long: s.Center.Long + (radiusDeg*x)/math.Cos(s.Center.Lat*math.Pi/180.0),
	}
}

type satView struct {
	id                 int
	elevation, azimuth int
	snr                int
}

func (s Track) satellites(now time.Time) []satView {
	n := s.Satellites
	out := make([]satView, 0, n)
	// One full sky rotation every 12 hours.
	rot := float64(now.Unix()%43200) / 43200 * 360
	for i := 0; i < n; i++ {
		az := math.Mod(float64(i)*360/float64(n)+rot, 360)
		elev := 10 + 70*math.Abs(math.Sin(float64(i+1)*0.7+rot*math.Pi/180))
		out = append(out, satView{
			id:        2*i + 1,
			elevation: int(math.Round(elev)),
			azimuth:   int(math.Round(az)) % 360,
			snr:       20 + int(math.Round(elev/4)),
		})
	}
	return out
}

// Sentences returns the NMEA lines for step i.
func (s Track) Sentences(i int) []string {
	s = s.withDefaults()
	now := s.Start.Add(time.Duration(i) * s.Step).UTC()
	pos := s.Position(now)

	hhmmss := now.Format("150405")
	ddmmyy := now.Format("020106")
	lat, ns := degMin(pos.Lat, 2, "N", "S")
	lng, ew := degMin(pos.Long, 3, "E", "W")

	lines := []string{
		sentence(fmt.Sprintf("GPRMC,%s,A,%s,%s,%s,%s,010.0,090.0,%s,,,A", hhmmss, lat, ns, lng, ew, ddmmyy)),
	}

	sats := s.satellites(now)
	total := (len(sats) + 3) / 4
	for m := 0; m < total; m++ {
		var b strings.Builder
		fmt.Fprintf(&b, "GPGSV,%d,%d,%02d", total, m+1, len(sats))
		for _, sv := range sats[m*4 : min(m*4+4, len(sats))] {
			fmt.Fprintf(&b, ",%02d,%02d,%03d,%02d", sv.id, sv.elevation, sv.azimuth, sv.snr)
		}
		lines = append(lines, sentence(b.String()))
	}

	lines = append(lines, sentence(fmt.Sprintf("GPGGA,%s,%s,%s,%s,%s,1,%02d,0.9,%.1f,M,46.9,M,,", hhmmss, lat, ns, lng, ew, s.Used, 30.0)))
	return lines
}

// WriteTo writes steps worth of sentences to w, one per line.
func (s Track) WriteTo(w io.Writer, steps int) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < steps; i++ {
		for _, l := range s.Sentences(i) {
			if _, err := bw.WriteString(l + "\r\n"); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func sentence(payload string) string {
	return "$" + payload + "*" + nmea.Checksum(payload)
}

// degMin formats decimal degrees as NMEA ddmm.mmmm (or dddmm.mmmm).
func degMin(v float64, degDigits int, pos, neg string) (string, string) {
	hemi := pos
	if v < 0 {
		hemi = neg
		v = -v
	}
	deg := math.Floor(v)
	minutes := (v - deg) * 60
	// Avoid "60.0000" after rounding.
	if math.Round(minutes*10000) >= 600000 {
		deg++
		minutes = 0
	}
	return fmt.Sprintf("%0*d%07.4f", degDigits, int(deg), minutes), hemi
}
