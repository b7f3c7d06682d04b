package gps

import (
	"errors"
	"fmt"
	"time"

	nmea "github.com/adrianmo/go-nmea"
)

var (
	ErrNoDate  = errors.New("nmea: no date observed yet")
	ErrBadDate = errors.New("nmea: malformed date")
	ErrBadTime = errors.New("nmea: malformed time of day")
)

// Timestamp combines an RMC date token (ddmmyy) with a GGA time-of-day
// (hhmmss[.sss]) into a UTC instant. Two-digit years below 80 are taken as
// 20yy, the rest as 19yy.
func Timestamp(date, timeOfDay string) (time.Time, error) {
	if date == "" {
		return time.Time{}, ErrNoDate
	}
	d, err := nmea.ParseDate(date)
	if err != nil || !d.Valid {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, date)
	}
	if d.DD < 1 || d.DD > 31 || d.MM < 1 || d.MM > 12 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, date)
	}
	t, err := nmea.ParseTime(timeOfDay)
	if err != nil || !t.Valid {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadTime, timeOfDay)
	}
	if t.Hour > 23 || t.Minute > 59 || t.Second > 60 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadTime, timeOfDay)
	}

	century := 1900
	if d.YY < 80 {
		century = 2000
	}
	return nmea.DateTime(century, d, t), nil
}
