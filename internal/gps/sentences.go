package gps

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/skypies/geo"
)

var (
	ErrNoLatitude   = errors.New("nmea: empty latitude")
	ErrBadPosition  = errors.New("nmea: malformed position")
	ErrGSVTruncated = errors.New("nmea: gsv record beyond available fields")
	ErrBadSatellite = errors.New("nmea: non-numeric satellite record")
)

// RMC: Recommended Minimum Specific GNSS Data. Only the date is consumed.
//
//	0: talker+type
//	1: time (hhmmss.sss)
//	...
//	9: date (ddmmyy)
type RMC struct {
	Date string
}

func DecodeRMC(s Sentence) (RMC, error) {
	if s.Kind != KindRMC {
		return RMC{}, ErrWrongSentence
	}
	if len(s.Fields) < 10 {
		return RMC{}, ErrTooFewFields
	}
	return RMC{Date: strings.TrimSpace(s.Fields[9])}, nil
}

// SatelliteRecord is one 4-field group of a GSV sentence.
type SatelliteRecord struct {
	ID        int
	Elevation float64
	Azimuth   float64
	SNR       float64
}

// GSV: Satellites in View.
//
//	0: talker+type
//	1: number of messages
//	2: message index
//	3: satellites in view
//	4+4i..7+4i: id, elevation, azimuth, snr
type GSV struct {
	Records []SatelliteRecord
	// Skipped counts groups dropped because a value was not numeric.
	Skipped int
}

// DecodeGSV extracts the satellite groups of s. A group with a non-numeric
// value is skipped on its own. Fields left over after the last whole group
// are a group cut short: the complete groups are still returned, together
// with ErrGSVTruncated.
func DecodeGSV(s Sentence) (GSV, error) {
	if s.Kind != KindGSV {
		return GSV{}, ErrWrongSentence
	}
	f := s.Fields
	n := (len(f) - 4) / 4
	out := GSV{Records: make([]SatelliteRecord, 0, max(n, 0))}
	for i := 0; i < n; i++ {
		base := 4 + i*4
		rec, err := parseSatelliteGroup(f[base : base+4])
		if err != nil {
			out.Skipped++
			continue
		}
		out.Records = append(out.Records, rec)
	}
	if extra := len(f) - 4 - 4*max(n, 0); len(f) > 4 && extra > 0 {
		return out, fmt.Errorf("%w: %d trailing fields after %d groups", ErrGSVTruncated, extra, n)
	}
	return out, nil
}

func parseSatelliteGroup(g []string) (SatelliteRecord, error) {
	id, err := strconv.Atoi(strings.TrimSpace(g[0]))
	if err != nil {
		return SatelliteRecord{}, ErrBadSatellite
	}
	elev, ok := parseFloat(g[1])
	if !ok {
		return SatelliteRecord{}, ErrBadSatellite
	}
	az, ok := parseFloat(g[2])
	if !ok {
		return SatelliteRecord{}, ErrBadSatellite
	}
	snr, ok := parseFloat(g[3])
	if !ok {
		return SatelliteRecord{}, ErrBadSatellite
	}
	return SatelliteRecord{ID: id, Elevation: elev, Azimuth: az, SNR: snr}, nil
}

// GGA: Global Positioning System Fix Data
// Fields:
//
//	0: talker+type
//	1: time
//	2: latitude
//	3: N/S
//	4: longitude
//	5: E/W
//	6: fix quality (0=invalid)
//	7: number of satellites
//	8: HDOP
//	9: altitude (meters)
//
// Coordinates are kept as text so that the timestamp can gate the sentence
// before the position is parsed.
type GGA struct {
	Time    string
	Lat     string
	LatHemi string
	Lng     string
	LngHemi string

	Satellites   int
	SatellitesOK bool
	AltitudeM    float64
	AltitudeOK   bool
}

func DecodeGGA(s Sentence) (GGA, error) {
	if s.Kind != KindGGA {
		return GGA{}, ErrWrongSentence
	}
	f := s.Fields
	if len(f) < 9 {
		return GGA{}, ErrTooFewFields
	}
	if f[2] == "" {
		return GGA{}, ErrNoLatitude
	}
	g := GGA{
		Time:    strings.TrimSpace(f[1]),
		Lat:     f[2],
		LatHemi: strings.TrimSpace(f[3]),
		Lng:     f[4],
		LngHemi: strings.TrimSpace(f[5]),
	}
	if sats, err := strconv.Atoi(strings.TrimSpace(f[7])); err == nil {
		g.Satellites = sats
		g.SatellitesOK = true
	}
	if len(f) > 9 {
		if alt, ok := parseFloat(f[9]); ok {
			g.AltitudeM = alt
			g.AltitudeOK = true
		}
	}
	return g, nil
}

// Position converts the degrees-minutes coordinates to signed decimal
// degrees. Only "S" and "W" negate; any other hemisphere text is positive.
func (g GGA) Position() (geo.Latlong, error) {
	lat, ok := parseFloat(g.Lat)
	if !ok {
		return geo.Latlong{}, fmt.Errorf("%w: latitude %q", ErrBadPosition, g.Lat)
	}
	lng, ok := parseFloat(g.Lng)
	if !ok {
		return geo.Latlong{}, fmt.Errorf("%w: longitude %q", ErrBadPosition, g.Lng)
	}
	pos := geo.Latlong{Lat: ToDecimalDegrees(lat), Long: ToDecimalDegrees(lng)}
	if g.LatHemi == "S" {
		pos.Lat = -pos.Lat
	}
	if g.LngHemi == "W" {
		pos.Long = -pos.Long
	}
	return pos, nil
}
