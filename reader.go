// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/cab

package cab

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// cfHeader is the parsed CFHEADER plus the optional reserve area.
type cfHeader struct {
	totalSize     uint32
	fileTableOff  uint32
	folderCount   int
	fileCount     int
	flags         uint16
	setID         uint16
	cabinetIndex  uint16
	reserveHeader []byte
	reserveFolder uint8
	reserveBlock  uint8
	// folderTableOff is where the folder table starts, after the reserve
	// area when present.
	folderTableOff int
}

// folderRecord is one parsed CFFOLDER entry.
type folderRecord struct {
	dataOffset uint32
	blockCount int
	method     CompressionType
	reserved   []byte
}

// fileRecord is one parsed CFFILE entry before folder resolution.
type fileRecord struct {
	file   *File
	size   uint32
	offset uint32
	folder int
}

// Decode parses a cabinet from buf into an Archive, verifying block
// checksums and decompressing every folder stream.
func Decode(buf []byte) (*Archive, error) {
	return DecodeWithOptions(buf, DecodeOptions{})
}

// DecodeWithOptions parses a cabinet from buf using explicit decode options.
func DecodeWithOptions(buf []byte, opts DecodeOptions) (*Archive, error) {
	opts.applyDefaults()

	hdr, err := parseHeader(buf, opts.Strict)
	if err != nil {
		return nil, err
	}

	folders, err := parseFolderTable(buf, hdr)
	if err != nil {
		return nil, err
	}

	files, err := parseFileTable(buf, hdr)
	if err != nil {
		return nil, err
	}

	if err := checkDeclaredSizes(folders, files, opts.MaxDecodedSize); err != nil {
		return nil, err
	}

	// Folders are independent compression streams; decode them in parallel
	// with a bounded group. Each goroutine writes only its own slot.
	streams := make([][]byte, len(folders))
	blocks := make([][]DataBlock, len(folders))

	var group errgroup.Group
	group.SetLimit(opts.MaxWorkers)
	for i := range folders {
		group.Go(func() error {
			stream, folderBlocks, err := decodeFolderBlocks(buf, i, folders[i], int(hdr.reserveBlock), opts)
			if err != nil {
				return err
			}

			streams[i] = stream
			blocks[i] = folderBlocks
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	archive := &Archive{
		SetID:         hdr.setID,
		CabinetIndex:  hdr.cabinetIndex,
		ReserveHeader: hdr.reserveHeader,
		ReserveFolder: hdr.reserveFolder,
		ReserveBlock:  hdr.reserveBlock,
		folders:       make([]*Folder, len(folders)),
	}
	for i := range folders {
		archive.folders[i] = &Folder{
			compression: folders[i].method,
			reserved:    folders[i].reserved,
			blocks:      blocks[i],
		}
	}

	if err := sliceFolderStreams(archive, files, streams); err != nil {
		return nil, err
	}

	return archive, nil
}

// parseHeader validates the fixed CFHEADER and reads the reserve area.
func parseHeader(buf []byte, strict bool) (*cfHeader, error) {
	if len(buf) < len(cabSignature) {
		return nil, fmt.Errorf("%w: %d byte buffer", ErrTruncated, len(buf))
	}
	if !bytes.Equal(buf[:len(cabSignature)], cabSignature) {
		return nil, ErrBadSignature
	}
	if len(buf) < cfHeaderSize {
		return nil, fmt.Errorf("%w: %d byte header", ErrTruncated, len(buf))
	}

	reserved1 := binary.LittleEndian.Uint32(buf[4:8])
	totalSize := binary.LittleEndian.Uint32(buf[8:12])
	reserved2 := binary.LittleEndian.Uint32(buf[12:16])
	fileTableOff := binary.LittleEndian.Uint32(buf[16:20])
	reserved3 := binary.LittleEndian.Uint32(buf[20:24])
	verMinor := buf[24]
	verMajor := buf[25]
	folderCount := int(binary.LittleEndian.Uint16(buf[26:28]))
	fileCount := int(binary.LittleEndian.Uint16(buf[28:30]))
	flags := binary.LittleEndian.Uint16(buf[30:32])
	setID := binary.LittleEndian.Uint16(buf[32:34])
	cabinetIndex := binary.LittleEndian.Uint16(buf[34:36])

	if strict {
		if reserved1 != 0 || reserved2 != 0 || reserved3 != 0 {
			return nil, ErrReservedNonzero
		}
		if int64(totalSize) != int64(len(buf)) {
			return nil, fmt.Errorf("%w: header declares %d bytes, buffer has %d",
				ErrSizeMismatch, totalSize, len(buf))
		}
	} else if int64(totalSize) > int64(len(buf)) {
		return nil, fmt.Errorf("%w: header declares %d bytes, buffer has %d",
			ErrSizeMismatch, totalSize, len(buf))
	}

	if verMajor != versionMajor || verMinor != versionMinor {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedVersion, verMajor, verMinor)
	}
	if flags&(flagPrevCabinet|flagNextCabinet) != 0 {
		return nil, fmt.Errorf("%w: prev/next cabinet flags %#04x", ErrMultiCabinet, flags)
	}
	if folderCount == 0 || fileCount == 0 {
		return nil, ErrEmptyArchive
	}

	hdr := &cfHeader{
		totalSize:      totalSize,
		fileTableOff:   fileTableOff,
		folderCount:    folderCount,
		fileCount:      fileCount,
		flags:          flags,
		setID:          setID,
		cabinetIndex:   cabinetIndex,
		folderTableOff: cfHeaderSize,
	}

	if flags&flagReserve != 0 {
		if len(buf) < hdr.folderTableOff+cfReserveSize {
			return nil, fmt.Errorf("%w: reserve sizes", ErrTruncated)
		}

		reserveHeaderSize := int(binary.LittleEndian.Uint16(buf[hdr.folderTableOff : hdr.folderTableOff+2]))
		hdr.reserveFolder = buf[hdr.folderTableOff+2]
		hdr.reserveBlock = buf[hdr.folderTableOff+3]
		hdr.folderTableOff += cfReserveSize

		if len(buf) < hdr.folderTableOff+reserveHeaderSize {
			return nil, fmt.Errorf("%w: header reserve area", ErrTruncated)
		}

		hdr.reserveHeader = append([]byte(nil), buf[hdr.folderTableOff:hdr.folderTableOff+reserveHeaderSize]...)
		hdr.folderTableOff += reserveHeaderSize
	}

	if int64(fileTableOff) > int64(len(buf)) {
		return nil, fmt.Errorf("%w: file table at %d", ErrTruncated, fileTableOff)
	}

	return hdr, nil
}

// parseFolderTable parses CFFOLDER records starting after the reserve area.
func parseFolderTable(buf []byte, hdr *cfHeader) ([]folderRecord, error) {
	off := hdr.folderTableOff
	stride := cfFolderSize + int(hdr.reserveFolder)

	records := make([]folderRecord, 0, hdr.folderCount)
	for i := 0; i < hdr.folderCount; i++ {
		if off+stride > len(buf) {
			return nil, fmt.Errorf("%w: folder record %d", ErrTruncated, i)
		}

		dataOffset := binary.LittleEndian.Uint32(buf[off : off+4])
		blockCount := int(binary.LittleEndian.Uint16(buf[off+4 : off+6]))
		method := CompressionType(binary.LittleEndian.Uint16(buf[off+6:off+8]) & compressionMask)

		if method != CompressionNone && method != CompressionMSZIP {
			return nil, fmt.Errorf("%w: folder %d uses %s", ErrUnsupportedCompression, i, method)
		}
		if blockCount == 0 {
			return nil, fmt.Errorf("%w: folder %d has no data blocks", ErrFormat, i)
		}
		if int64(dataOffset) >= int64(len(buf)) {
			return nil, fmt.Errorf("%w: folder %d data at %d", ErrTruncated, i, dataOffset)
		}

		var reserved []byte
		if hdr.reserveFolder > 0 {
			reserved = append([]byte(nil), buf[off+cfFolderSize:off+stride]...)
		}

		records = append(records, folderRecord{
			dataOffset: dataOffset,
			blockCount: blockCount,
			method:     method,
			reserved:   reserved,
		})
		off += stride
	}

	return records, nil
}

// parseFileTable parses CFFILE records from the header's file table offset.
func parseFileTable(buf []byte, hdr *cfHeader) ([]fileRecord, error) {
	off := int(hdr.fileTableOff)

	records := make([]fileRecord, 0, hdr.fileCount)
	for i := 0; i < hdr.fileCount; i++ {
		if off+cfFileSize > len(buf) {
			return nil, fmt.Errorf("%w: file record %d", ErrTruncated, i)
		}

		size := binary.LittleEndian.Uint32(buf[off : off+4])
		folderOff := binary.LittleEndian.Uint32(buf[off+4 : off+8])
		folderIdx := binary.LittleEndian.Uint16(buf[off+8 : off+10])
		date := binary.LittleEndian.Uint16(buf[off+10 : off+12])
		tod := binary.LittleEndian.Uint16(buf[off+12 : off+14])
		attrs := binary.LittleEndian.Uint16(buf[off+14 : off+16])
		off += cfFileSize

		nameEnd := off + maxNameLen + 1
		if nameEnd > len(buf) {
			nameEnd = len(buf)
		}

		nul := bytes.IndexByte(buf[off:nameEnd], 0)
		if nul < 0 {
			return nil, fmt.Errorf("%w: file %d name not terminated", ErrFormat, i)
		}

		name := string(buf[off : off+nul])
		off += nul + 1

		switch folderIdx {
		case iFolderContinuedFromPrev, iFolderContinuedToNext, iFolderContinuedPrevAndNext:
			return nil, fmt.Errorf("%w: file %q continues across cabinets", ErrMultiCabinet, name)
		}
		if int(folderIdx) >= hdr.folderCount {
			return nil, fmt.Errorf("%w: file %q references folder %d of %d",
				ErrFolderIndex, name, folderIdx, hdr.folderCount)
		}

		records = append(records, fileRecord{
			file: &File{
				Name:     name,
				ModTime:  decodeDOSDateTime(date, tod),
				ReadOnly: attrs&attrReadOnly != 0,
				Hidden:   attrs&attrHidden != 0,
				System:   attrs&attrSystem != 0,
				Archived: attrs&attrArchived != 0,
				Exec:     attrs&attrExec != 0,
			},
			size:   size,
			offset: folderOff,
			folder: int(folderIdx),
		})
	}

	return records, nil
}

// checkDeclaredSizes rejects oversized cabinets before any block is read,
// bounding memory use against malicious declared sizes.
func checkDeclaredSizes(folders []folderRecord, files []fileRecord, maxDecoded int64) error {
	var total int64
	capacity := make([]int64, len(folders))
	for i := range folders {
		capacity[i] = int64(folders[i].blockCount) * maxBlockSize
		total += capacity[i]
	}

	if maxDecoded > 0 && total > maxDecoded {
		return fmt.Errorf("%w: folders declare up to %d bytes, limit %d",
			ErrDecodeLimit, total, maxDecoded)
	}

	for _, rec := range files {
		if int64(rec.offset)+int64(rec.size) > capacity[rec.folder] {
			return fmt.Errorf("%w: %q claims %d bytes at %d, folder holds at most %d",
				ErrFileBounds, rec.file.Name, rec.size, rec.offset, capacity[rec.folder])
		}
	}

	return nil
}

// decodeFolderBlocks reads one folder's CFDATA sequence, verifies checksums,
// and returns the concatenated decompressed stream. A single bad block fails
// the whole folder since later files depend on stream continuity.
func decodeFolderBlocks(
	buf []byte,
	folderIdx int,
	rec folderRecord,
	reserveBlock int,
	opts DecodeOptions,
) ([]byte, []DataBlock, error) {
	off := int(rec.dataOffset)
	dec := newFolderDecompressor(rec.method)

	var stream []byte
	blocks := make([]DataBlock, 0, rec.blockCount)
	for i := 0; i < rec.blockCount; i++ {
		if off+cfDataSize+reserveBlock > len(buf) {
			return nil, nil, fmt.Errorf("%w: folder %d block %d header", ErrTruncated, folderIdx, i)
		}

		stored := binary.LittleEndian.Uint32(buf[off : off+4])
		compressedSize := binary.LittleEndian.Uint16(buf[off+4 : off+6])
		uncompressedSize := binary.LittleEndian.Uint16(buf[off+6 : off+8])

		payloadStart := off + cfDataSize + reserveBlock
		payloadEnd := payloadStart + int(compressedSize)
		if payloadEnd > len(buf) {
			return nil, nil, fmt.Errorf("%w: folder %d block %d payload", ErrTruncated, folderIdx, i)
		}

		payload := buf[payloadStart:payloadEnd]
		if int(uncompressedSize) > maxBlockSize {
			return nil, nil, fmt.Errorf("%w: folder %d block %d declares %d decompressed bytes",
				ErrFormat, folderIdx, i, uncompressedSize)
		}

		// Zero stored checksum means the writer skipped it.
		if stored != 0 && !opts.SkipChecksum {
			computed := checksumBlock(payload, compressedSize, uncompressedSize)
			if computed != stored {
				return nil, nil, &ChecksumError{
					Folder:   folderIdx,
					Block:    i,
					Stored:   stored,
					Computed: computed,
				}
			}
		}

		data, err := dec.decompress(payload, int(uncompressedSize))
		if err != nil {
			return nil, nil, fmt.Errorf("folder %d block %d: %w", folderIdx, i, err)
		}

		stream = append(stream, data...)
		blocks = append(blocks, DataBlock{
			Checksum:         stored,
			CompressedSize:   compressedSize,
			UncompressedSize: uncompressedSize,
		})
		off = payloadEnd
	}

	return stream, blocks, nil
}

// sliceFolderStreams assigns each file its byte range of the owning folder's
// decompressed stream, in table order, rejecting overlap and out-of-bounds
// claims.
func sliceFolderStreams(archive *Archive, files []fileRecord, streams [][]byte) error {
	prevEnd := make([]int64, len(streams))
	for _, rec := range files {
		stream := streams[rec.folder]
		start := int64(rec.offset)
		end := start + int64(rec.size)

		if end > int64(len(stream)) {
			return fmt.Errorf("%w: %q needs bytes %d..%d, folder stream has %d",
				ErrFileBounds, rec.file.Name, start, end, len(stream))
		}
		if start < prevEnd[rec.folder] {
			return fmt.Errorf("%w: %q overlaps previous file at %d",
				ErrFileBounds, rec.file.Name, start)
		}
		prevEnd[rec.folder] = end

		rec.file.data = stream[start:end:end]
		rec.file.offset = rec.offset
		archive.folders[rec.folder].files = append(archive.folders[rec.folder].files, rec.file)
	}

	return nil
}
