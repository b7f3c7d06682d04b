package gps

import (
	"math"
	"strconv"
	"strings"
)

// ToDecimalDegrees converts an NMEA ddmm.mmmm / dddmm.mmmm magnitude to
// decimal degrees, e.g. 5330.00 -> 53.5. The sign is applied by the caller.
func ToDecimalDegrees(degMin float64) float64 {
	degrees := math.Floor(degMin / 100)
	minutes := degMin - degrees*100
	return degrees + minutes/60
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
