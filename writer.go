// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/cab

package cab

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
)

// encodedFolder holds one folder's serialization state: stored names, file
// offsets within the plaintext stream, and the compressed block payloads.
type encodedFolder struct {
	folder   *Folder
	names    []string
	offsets  []uint32
	chunks   [][]byte
	payloads [][]byte
	dataLen  int64
}

// Encode serializes the archive into a cabinet byte buffer.
func Encode(a *Archive) ([]byte, error) {
	return EncodeWithOptions(a, EncodeOptions{})
}

// EncodeWithOptions serializes the archive using explicit encode options.
// The archive is not modified; all offsets and block tables are derived
// locally from the emitted streams.
func EncodeWithOptions(a *Archive, opts EncodeOptions) ([]byte, error) {
	if a == nil {
		return nil, ErrNilArchive
	}

	opts.applyDefaults()

	if len(a.folders) > maxTableCount {
		return nil, fmt.Errorf("%w: %d", ErrTooManyFolders, len(a.folders))
	}

	fileCount := 0
	for _, folder := range a.folders {
		fileCount += len(folder.files)
	}
	if fileCount == 0 {
		return nil, ErrNoFiles
	}
	if fileCount > maxTableCount {
		return nil, fmt.Errorf("%w: %d", ErrTooManyFiles, fileCount)
	}
	if len(a.ReserveHeader) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: header reserve area is %d bytes", ErrConstraint, len(a.ReserveHeader))
	}

	folders, err := prepareFolders(a, opts)
	if err != nil {
		return nil, err
	}

	if err := validateUniqueNames(folders); err != nil {
		return nil, err
	}

	// Layout: header (+ reserve area), folder table, file table, data blocks.
	reserveArea := len(a.ReserveHeader) > 0 || a.ReserveFolder > 0 || a.ReserveBlock > 0
	headerLen := int64(cfHeaderSize)
	if reserveArea {
		headerLen += cfReserveSize + int64(len(a.ReserveHeader))
	}

	folderTableLen := int64(len(folders)) * int64(cfFolderSize+int(a.ReserveFolder))

	var fileTableLen int64
	for _, enc := range folders {
		for _, name := range enc.names {
			fileTableLen += int64(cfFileSize + len(name) + 1)
		}
	}

	var dataLen int64
	for _, enc := range folders {
		dataLen += enc.dataLen
	}

	fileTableOff := headerLen + folderTableLen
	dataStart := fileTableOff + fileTableLen
	total := dataStart + dataLen
	if total > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrArchiveTooLarge, total)
	}

	var out bytes.Buffer
	out.Grow(int(total))

	// CFHEADER
	out.Write(cabSignature)
	writeUint32(&out, 0)
	writeUint32(&out, uint32(total))
	writeUint32(&out, 0)
	writeUint32(&out, uint32(fileTableOff))
	writeUint32(&out, 0)
	out.WriteByte(versionMinor)
	out.WriteByte(versionMajor)
	writeUint16(&out, uint16(len(folders)))
	writeUint16(&out, uint16(fileCount))
	if reserveArea {
		writeUint16(&out, flagReserve)
	} else {
		writeUint16(&out, 0)
	}
	writeUint16(&out, a.SetID)
	writeUint16(&out, a.CabinetIndex)

	if reserveArea {
		writeUint16(&out, uint16(len(a.ReserveHeader)))
		out.WriteByte(a.ReserveFolder)
		out.WriteByte(a.ReserveBlock)
		out.Write(a.ReserveHeader)
	}

	// CFFOLDER table. Data offsets are cumulative over emitted block bytes.
	dataOff := dataStart
	for _, enc := range folders {
		writeUint32(&out, uint32(dataOff))
		writeUint16(&out, uint16(len(enc.payloads)))
		writeUint16(&out, uint16(enc.folder.compression))
		writeReserved(&out, enc.folder.reserved, int(a.ReserveFolder))
		dataOff += enc.dataLen
	}

	// CFFILE table, folder by folder in stream order.
	for folderIdx, enc := range folders {
		for j, file := range enc.folder.files {
			date, tod := encodeDOSDateTime(file.ModTime)
			writeUint32(&out, uint32(len(file.data)))
			writeUint32(&out, enc.offsets[j])
			writeUint16(&out, uint16(folderIdx))
			writeUint16(&out, date)
			writeUint16(&out, tod)
			writeUint16(&out, encodeAttrs(file, enc.names[j]))
			out.WriteString(enc.names[j])
			out.WriteByte(0)
		}
	}

	// CFDATA blocks.
	for _, enc := range folders {
		for i, payload := range enc.payloads {
			compressedSize := uint16(len(payload))
			uncompressedSize := uint16(len(enc.chunks[i]))
			writeUint32(&out, checksumBlock(payload, compressedSize, uncompressedSize))
			writeUint16(&out, compressedSize)
			writeUint16(&out, uncompressedSize)
			writeReserved(&out, nil, int(a.ReserveBlock))
			out.Write(payload)
		}
	}

	return out.Bytes(), nil
}

// prepareFolders validates file entries and produces each folder's stored
// names, stream offsets, and compressed block payloads.
func prepareFolders(a *Archive, opts EncodeOptions) ([]encodedFolder, error) {
	folders := make([]encodedFolder, 0, len(a.folders))
	for _, folder := range a.folders {
		if folder.compression != CompressionNone && folder.compression != CompressionMSZIP {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, folder.compression)
		}

		enc := encodedFolder{
			folder:  folder,
			names:   make([]string, 0, len(folder.files)),
			offsets: make([]uint32, 0, len(folder.files)),
		}

		var stream []byte
		var streamLen int64
		for _, file := range folder.files {
			name := archiveName(file.Name)
			if name == "" || len(name) > maxNameLen || strings.IndexByte(name, 0) >= 0 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidName, file.Name)
			}
			if int64(len(file.data)) > math.MaxUint32 {
				return nil, fmt.Errorf("%w: %q is %d bytes", ErrFileTooLarge, file.Name, len(file.data))
			}

			enc.names = append(enc.names, name)
			enc.offsets = append(enc.offsets, uint32(streamLen))
			stream = append(stream, file.data...)
			streamLen += int64(len(file.data))
			if streamLen > math.MaxUint32 {
				return nil, fmt.Errorf("%w: %d bytes", ErrFolderTooLarge, streamLen)
			}
		}

		enc.chunks = chunkify(stream, maxBlockSize)
		if len(enc.chunks) == 0 {
			// A folder must carry at least one block to stay decodable.
			enc.chunks = [][]byte{nil}
		}
		if len(enc.chunks) > maxTableCount {
			return nil, fmt.Errorf("%w: %d", ErrTooManyBlocks, len(enc.chunks))
		}

		comp := newFolderCompressor(folder.compression, opts.CompressionLevel)
		enc.payloads = make([][]byte, 0, len(enc.chunks))
		for _, chunk := range enc.chunks {
			payload, err := comp.compress(chunk)
			if err != nil {
				return nil, err
			}
			if len(payload) > math.MaxUint16 {
				return nil, fmt.Errorf("%w: %d bytes", ErrBlockOverflow, len(payload))
			}

			enc.payloads = append(enc.payloads, payload)
			enc.dataLen += int64(cfDataSize + int(a.ReserveBlock) + len(payload))
		}

		folders = append(folders, enc)
	}

	return folders, nil
}

// validateUniqueNames rejects case-insensitive duplicate names across the
// whole archive; cabinet names are Windows paths.
func validateUniqueNames(folders []encodedFolder) error {
	seen := make(map[string]struct{})
	for _, enc := range folders {
		for _, name := range enc.names {
			key := strings.ToLower(name)
			if _, ok := seen[key]; ok {
				return fmt.Errorf("%w: %q", ErrDuplicateName, name)
			}

			seen[key] = struct{}{}
		}
	}

	return nil
}

// BuildFolder reads every input's byte provider eagerly and appends a folder
// populated with the resulting files. Inputs keep their supplied order.
func (a *Archive) BuildFolder(compression CompressionType, inputs []Input) (*Folder, error) {
	files := make([]*File, 0, len(inputs))
	for _, in := range inputs {
		if in.Open == nil {
			return nil, fmt.Errorf("%w: %q", ErrNilProvider, in.Name)
		}

		rc, err := in.Open()
		if err != nil {
			return nil, fmt.Errorf("open input %s: %w", in.Name, err)
		}

		data, err := io.ReadAll(rc)
		if cerr := rc.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("read input %s: %w", in.Name, err)
		}

		files = append(files, NewFile(in.Name, data, in.ModTime))
	}

	folder := a.AddFolder(compression)
	for _, file := range files {
		folder.AddFile(file)
	}

	return folder, nil
}

// encodeAttrs packs a file's attribute bits; the UTF bit is derived from
// the stored name, never set by callers.
func encodeAttrs(file *File, storedName string) uint16 {
	var attrs uint16
	if file.ReadOnly {
		attrs |= attrReadOnly
	}
	if file.Hidden {
		attrs |= attrHidden
	}
	if file.System {
		attrs |= attrSystem
	}
	if file.Archived {
		attrs |= attrArchived
	}
	if file.Exec {
		attrs |= attrExec
	}
	if !nameIsASCII(storedName) {
		attrs |= attrNameUTF
	}

	return attrs
}

// chunkify splits stream into consecutive chunks of at most size bytes.
func chunkify(stream []byte, size int) [][]byte {
	if len(stream) == 0 {
		return nil
	}

	chunks := make([][]byte, 0, (len(stream)+size-1)/size)
	for off := 0; off < len(stream); off += size {
		end := off + size
		if end > len(stream) {
			end = len(stream)
		}

		chunks = append(chunks, stream[off:end:end])
	}

	return chunks
}

// writeReserved writes src truncated or zero-padded to exactly size bytes.
func writeReserved(out *bytes.Buffer, src []byte, size int) {
	if size == 0 {
		return
	}

	if len(src) > size {
		src = src[:size]
	}

	out.Write(src)
	for i := len(src); i < size; i++ {
		out.WriteByte(0)
	}
}

// writeUint16 appends v little-endian.
func writeUint16(out *bytes.Buffer, v uint16) {
	var scratch [2]byte
	binary.LittleEndian.PutUint16(scratch[:], v)
	out.Write(scratch[:])
}

// writeUint32 appends v little-endian.
func writeUint32(out *bytes.Buffer, v uint32) {
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], v)
	out.Write(scratch[:])
}
