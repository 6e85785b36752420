// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/cab

package cab

import "testing"

func TestChecksumCompute(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		buf  []byte
		seed uint32
		want uint32
	}{
		{name: "empty", buf: nil, seed: 0, want: 0},
		{name: "empty keeps seed", buf: nil, seed: 0xDEADBEEF, want: 0xDEADBEEF},
		{name: "one word", buf: []byte{0x01, 0x02, 0x03, 0x04}, seed: 0, want: 0x04030201},
		{name: "two words", buf: []byte{0x01, 0x02, 0x03, 0x04, 0x01, 0x02, 0x03, 0x04}, seed: 0, want: 0},
		{name: "tail one byte", buf: []byte{0x01, 0x02, 0x03, 0x04, 0x05}, seed: 0, want: 0x04030204},
		{name: "tail two bytes", buf: []byte{0xAA, 0xBB}, seed: 0, want: 0xAABB},
		{name: "tail three bytes", buf: []byte{0x01, 0x02, 0x03}, seed: 0, want: 0x010203},
		{name: "seeded", buf: []byte{0xFF, 0x00, 0x00, 0x00}, seed: 0x01, want: 0xFE},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := checksumCompute(tc.buf, tc.seed)
			if got != tc.want {
				t.Fatalf("checksumCompute(%v, %#x) = %#x, want %#x", tc.buf, tc.seed, got, tc.want)
			}
		})
	}
}

func TestChecksumBlockCoversLengthFields(t *testing.T) {
	t.Parallel()

	payload := []byte{0x01, 0x02, 0x03, 0x04}

	got := checksumBlock(payload, 4, 4)
	if got != 0x04070205 {
		t.Fatalf("checksumBlock = %#x, want 0x04070205", got)
	}

	// Different recorded lengths over identical payload must change the sum.
	other := checksumBlock(payload, 4, 8)
	if other == got {
		t.Fatalf("checksumBlock ignored the length fields")
	}
}

func TestChecksumBlockSeedChaining(t *testing.T) {
	t.Parallel()

	payload := []byte("data block payload")

	want := checksumCompute(
		[]byte{byte(len(payload)), 0, byte(len(payload)), 0},
		checksumCompute(payload, 0),
	)

	got := checksumBlock(payload, uint16(len(payload)), uint16(len(payload)))
	if got != want {
		t.Fatalf("checksumBlock = %#x, want %#x", got, want)
	}
}
