// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/cab

package cab

import "time"

// decodeDOSDateTime unpacks the cabinet date and time fields into a local
// time.Time. Malformed fields yield the zero time rather than an error;
// cabinets in the wild carry plenty of garbage timestamps.
func decodeDOSDateTime(date, tod uint16) time.Time {
	year := 1980 + int(date>>9)
	month := int(date>>5) & 0x0F
	day := int(date) & 0x1F

	hour := int(tod >> 11)
	minute := int(tod>>5) & 0x3F
	second := int(tod&0x1F) * 2

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}
	}
	if hour > 23 || minute > 59 || second > 59 {
		return time.Time{}
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local)
}

// encodeDOSDateTime packs a time.Time into cabinet date and time fields.
// The format has two-second resolution and cannot represent dates before
// 1980; those encode as zero, which decodeDOSDateTime maps back to the
// zero time.
func encodeDOSDateTime(t time.Time) (date, tod uint16) {
	if t.IsZero() || t.Year() < 1980 {
		return 0, 0
	}

	year := t.Year() - 1980
	if year > 127 {
		year = 127
	}

	date = uint16(year)<<9 | uint16(t.Month())<<5 | uint16(t.Day())
	tod = uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)
	return date, tod
}
