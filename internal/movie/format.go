package movie

import (
	"bytes"
	"math"
	"strconv"
)

// FormatFloat renders v the way the data files have always carried doubles:
// shortest round-trip digits, at least one fractional digit ("-6.0"), and
// "1.0E-4" style exponents outside [1e-3, 1e7).
func FormatFloat(v float64) string {
	return string(AppendFloat(nil, v))
}

func AppendFloat(dst []byte, v float64) []byte {
	switch {
	case math.IsNaN(v):
		return append(dst, "NaN"...)
	case math.IsInf(v, 1):
		return append(dst, "Infinity"...)
	case math.IsInf(v, -1):
		return append(dst, "-Infinity"...)
	case v == 0:
		if math.Signbit(v) {
			return append(dst, "-0.0"...)
		}
		return append(dst, "0.0"...)
	}

	abs := math.Abs(v)
	if abs >= 1e-3 && abs < 1e7 {
		start := len(dst)
		dst = strconv.AppendFloat(dst, v, 'f', -1, 64)
		if bytes.IndexByte(dst[start:], '.') < 0 {
			dst = append(dst, '.', '0')
		}
		return dst
	}

	// strconv gives "1.2345e+07" / "5e-04"; rewrite as "1.2345E7" / "5.0E-4".
	var tmp [32]byte
	s := strconv.AppendFloat(tmp[:0], v, 'e', -1, 64)
	e := bytes.IndexByte(s, 'e')
	mant, exp := s[:e], s[e+1:]
	dst = append(dst, mant...)
	if bytes.IndexByte(mant, '.') < 0 {
		dst = append(dst, '.', '0')
	}
	dst = append(dst, 'E')
	n, _ := strconv.Atoi(string(exp))
	return strconv.AppendInt(dst, int64(n), 10)
}
