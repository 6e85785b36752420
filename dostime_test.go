// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/cab

package cab

import (
	"testing"
	"time"
)

func TestDOSDateTimeRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   time.Time
	}{
		{name: "even seconds", in: time.Date(2021, 3, 15, 14, 30, 40, 0, time.Local)},
		{name: "midnight", in: time.Date(1980, 1, 1, 0, 0, 0, 0, time.Local)},
		{name: "end of day", in: time.Date(2003, 12, 31, 23, 59, 58, 0, time.Local)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			date, tod := encodeDOSDateTime(tc.in)
			got := decodeDOSDateTime(date, tod)
			if !got.Equal(tc.in) {
				t.Fatalf("round trip: got %v, want %v", got, tc.in)
			}
		})
	}
}

func TestDOSDateTimeTruncatesOddSeconds(t *testing.T) {
	t.Parallel()

	in := time.Date(2021, 3, 15, 14, 30, 41, 0, time.Local)
	date, tod := encodeDOSDateTime(in)

	got := decodeDOSDateTime(date, tod)
	want := time.Date(2021, 3, 15, 14, 30, 40, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDOSDateTimePre1980EncodesZero(t *testing.T) {
	t.Parallel()

	date, tod := encodeDOSDateTime(time.Date(1975, 6, 1, 10, 0, 0, 0, time.Local))
	if date != 0 || tod != 0 {
		t.Fatalf("pre-1980: date=%#x tod=%#x, want zero", date, tod)
	}

	if !decodeDOSDateTime(date, tod).IsZero() {
		t.Fatal("zero fields must decode to zero time")
	}
}

func TestDOSDateTimeKnownValues(t *testing.T) {
	t.Parallel()

	// 1989-07-20 12:34:56 in packed form.
	got := decodeDOSDateTime(0x12F4, 0x645C)
	want := time.Date(1989, 7, 20, 12, 34, 56, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("decode: got %v, want %v", got, want)
	}
}

func TestDOSDateTimeInvalidFieldsDecodeZero(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		date uint16
		tod  uint16
	}{
		{name: "month zero", date: 0x0014, tod: 0},
		{name: "month thirteen", date: 0x01B4, tod: 0},
		{name: "day zero", date: 0x00E0, tod: 0},
		{name: "hour 24", date: 0x12F4, tod: 24 << 11},
		{name: "minute 60", date: 0x12F4, tod: 60 << 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := decodeDOSDateTime(tc.date, tc.tod); !got.IsZero() {
				t.Fatalf("decode(%#x, %#x) = %v, want zero time", tc.date, tc.tod, got)
			}
		})
	}
}
