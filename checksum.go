// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/cab

package cab

import "encoding/binary"

// checksumCompute folds buf into seed four bytes at a time as little-endian
// words. A short tail is assembled big-endian; the asymmetry is a quirk of
// the original cabinet specification that every implementation reproduces.
func checksumCompute(buf []byte, seed uint32) uint32 {
	sum := seed

	n := len(buf)
	for off := 0; off+4 <= n; off += 4 {
		sum ^= binary.LittleEndian.Uint32(buf[off : off+4])
	}

	switch n % 4 {
	case 3:
		sum ^= uint32(buf[n-3])<<16 | uint32(buf[n-2])<<8 | uint32(buf[n-1])
	case 2:
		sum ^= uint32(buf[n-2])<<8 | uint32(buf[n-1])
	case 1:
		sum ^= uint32(buf[n-1])
	}

	return sum
}

// checksumBlock computes the CFDATA checksum: the payload first, then the
// two length fields as a 4-byte little-endian header seeded with the payload
// sum. Both encoder and decoder must cover this exact field set.
func checksumBlock(payload []byte, compressedSize, uncompressedSize uint16) uint32 {
	var hdr [4]byte
	binary.LittleEndian.PutUint16(hdr[0:2], compressedSize)
	binary.LittleEndian.PutUint16(hdr[2:4], uncompressedSize)

	return checksumCompute(hdr[:], checksumCompute(payload, 0))
}
