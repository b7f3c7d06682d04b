package gps

import (
	"errors"
	"strings"
)

// Sentence identifiers handled by the decoder. Only the GP talker is
// recognized; everything else is ignored by the caller.
const (
	IDRMC = "$GPRMC"
	IDGSV = "$GPGSV"
	IDGGA = "$GPGGA"
)

// Kind classifies a decoded sentence.
type Kind int

const (
	KindUnknown Kind = iota
	KindRMC
	KindGSV
	KindGGA
)

func (k Kind) String() string {
	switch k {
	case KindRMC:
		return "RMC"
	case KindGSV:
		return "GSV"
	case KindGGA:
		return "GGA"
	default:
		return "unknown"
	}
}

var (
	ErrNoChecksum    = errors.New("nmea: missing checksum delimiter")
	ErrTooFewFields  = errors.New("nmea: too few fields")
	ErrUnknownType   = errors.New("nmea: unrecognized sentence")
	ErrWrongSentence = errors.New("nmea: wrong sentence type")
)

// Sentence is a raw line split into its identifier and comma-separated
// payload. Fields[0] is the identifier including the leading '$'.
type Sentence struct {
	Kind   Kind
	Fields []string
}

// ID returns the sentence identifier, e.g. "$GPGGA".
func (s Sentence) ID() string {
	if len(s.Fields) == 0 {
		return ""
	}
	return s.Fields[0]
}

// Decode splits a raw NMEA line. The checksum suffix is stripped at the last
// '*' but never verified. Lines without the delimiter or with fewer than two
// fields are rejected. Unrecognized identifiers return ErrUnknownType along
// with the split sentence.
func Decode(line string) (Sentence, error) {
	line = strings.TrimRight(line, "\r\n")
	star := strings.LastIndexByte(line, '*')
	if star == -1 {
		return Sentence{}, ErrNoChecksum
	}
	parts := strings.Split(line[:star], ",")
	if len(parts) < 2 {
		return Sentence{}, ErrTooFewFields
	}

	s := Sentence{Fields: parts}
	switch parts[0] {
	case IDRMC:
		s.Kind = KindRMC
	case IDGSV:
		s.Kind = KindGSV
	case IDGGA:
		s.Kind = KindGGA
	default:
		return s, ErrUnknownType
	}
	return s, nil
}
