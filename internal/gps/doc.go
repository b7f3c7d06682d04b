package gps

// Package gps decodes the NMEA-0183 sentences consumed by the movie builder.
//
// It is intentionally small:
// - Split a raw line into identifier + fields (checksum is stripped, not verified)
// - RMC supplies the date
// - GSV supplies satellite elevation/azimuth/SNR, up to 4 per sentence
// - GGA supplies the fix itself
