// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/cab

package cab

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// folderDecompressor carries per-folder decompression state: the method and
// the dictionary chained from the previous block's decompressed output.
// MSZIP blocks are independent DEFLATE streams, but each is conventionally
// compressed against the previous block's plaintext as dictionary.
type folderDecompressor struct {
	method CompressionType
	dict   []byte
}

// newFolderDecompressor returns decompression state for one folder stream.
func newFolderDecompressor(method CompressionType) *folderDecompressor {
	return &folderDecompressor{method: method}
}

// decompress expands one block payload to exactly want bytes.
func (d *folderDecompressor) decompress(payload []byte, want int) ([]byte, error) {
	switch d.method {
	case CompressionNone:
		if len(payload) != want {
			return nil, fmt.Errorf("%w: stored block carries %d bytes, records %d",
				ErrBlockLength, len(payload), want)
		}

		return payload, nil
	case CompressionMSZIP:
		return d.inflateBlock(payload, want)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, d.method)
	}
}

// inflateBlock strips the CK signature and inflates one MSZIP block.
func (d *folderDecompressor) inflateBlock(payload []byte, want int) ([]byte, error) {
	if len(payload) < len(mszipSignature) || !bytes.Equal(payload[:len(mszipSignature)], mszipSignature) {
		return nil, fmt.Errorf("%w: missing CK block signature", ErrCompression)
	}

	fr := flate.NewReaderDict(bytes.NewReader(payload[len(mszipSignature):]), d.dict)
	defer func() { _ = fr.Close() }()

	out := make([]byte, want)
	if _, err := io.ReadFull(fr, out); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: block decodes short of %d bytes", ErrBlockLength, want)
		}

		return nil, fmt.Errorf("%w: inflate: %w", ErrCompression, err)
	}

	// The stream must end exactly at the recorded length.
	var extra [1]byte
	n, err := fr.Read(extra[:])
	if n != 0 {
		return nil, fmt.Errorf("%w: block decodes past %d bytes", ErrBlockLength, want)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: inflate: %w", ErrCompression, err)
	}

	d.dict = out
	return out, nil
}

// folderCompressor carries per-folder compression state for Encode.
type folderCompressor struct {
	method CompressionType
	level  int
	dict   []byte
	buf    bytes.Buffer
}

// newFolderCompressor returns compression state for one folder stream.
func newFolderCompressor(method CompressionType, level int) *folderCompressor {
	return &folderCompressor{method: method, level: level}
}

// compress encodes one chunk of at most maxBlockSize plaintext bytes into
// its stored payload form.
func (c *folderCompressor) compress(chunk []byte) ([]byte, error) {
	switch c.method {
	case CompressionNone:
		return chunk, nil
	case CompressionMSZIP:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, c.method)
	}

	c.buf.Reset()
	c.buf.Write(mszipSignature)

	// Each block is a complete DEFLATE stream seeded with the previous
	// chunk as dictionary, mirroring what the decoder expects.
	fw, err := flate.NewWriterDict(&c.buf, c.level, c.dict)
	if err != nil {
		return nil, fmt.Errorf("%w: deflate init: %w", ErrCompression, err)
	}
	if _, err := fw.Write(chunk); err != nil {
		return nil, fmt.Errorf("%w: deflate: %w", ErrCompression, err)
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("%w: deflate close: %w", ErrCompression, err)
	}

	c.dict = chunk

	out := make([]byte, c.buf.Len())
	copy(out, c.buf.Bytes())
	return out, nil
}
