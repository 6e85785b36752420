// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/cab

package cab

import (
	"io"
	"runtime"
	"time"
)

// Internal binary layout and format limits.
const (
	cfHeaderSize  = 36     // fixed CFHEADER size in bytes
	cfReserveSize = 4      // reserve-size fields present when flagReserve set
	cfFolderSize  = 8      // fixed CFFOLDER record size
	cfFileSize    = 16     // fixed CFFILE record size before the name
	cfDataSize    = 8      // fixed CFDATA record size before the payload
	maxBlockSize  = 0x8000 // max decompressed bytes per data block
	maxNameLen    = 255    // max stored file name length in bytes
	maxTableCount = 0xFFFF // max folder/file/block table entries
)

// Cabinet format version written and accepted (1.3).
const (
	versionMajor = 1
	versionMinor = 3
)

// CFHEADER flag bits.
const (
	flagPrevCabinet = 0x0001
	flagNextCabinet = 0x0002
	flagReserve     = 0x0004
)

// Folder index sentinels marking files continued across cabinet boundaries.
const (
	iFolderContinuedFromPrev    = 0xFFFD
	iFolderContinuedToNext      = 0xFFFE
	iFolderContinuedPrevAndNext = 0xFFFF
)

// CFFILE attribute bits.
const (
	attrReadOnly = 0x01
	attrHidden   = 0x02
	attrSystem   = 0x04
	attrArchived = 0x20
	attrExec     = 0x40
	attrNameUTF  = 0x80
)

// mszipSignature prefixes every MSZIP-compressed block payload.
var mszipSignature = []byte{'C', 'K'}

// cabSignature is the 4-byte cabinet magic.
var cabSignature = []byte{'M', 'S', 'C', 'F'}

// CompressionType is the per-folder compression method code.
type CompressionType uint16

// Cabinet compression method codes. Only store and MSZIP are supported;
// Quantum and LZX cabinets are rejected on decode.
const (
	CompressionNone    CompressionType = 0
	CompressionMSZIP   CompressionType = 1
	CompressionQuantum CompressionType = 2
	CompressionLZX     CompressionType = 3

	// compressionMask selects the method from typeCompress; the high bits
	// carry Quantum/LZX parameters we never interpret.
	compressionMask = 0x000F
)

// String returns the conventional method name.
func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionMSZIP:
		return "MSZIP"
	case CompressionQuantum:
		return "Quantum"
	case CompressionLZX:
		return "LZX"
	default:
		return "unknown"
	}
}

// Archive is an in-memory cabinet: an ordered sequence of folders plus the
// header fields that survive a round-trip. Decode returns a fully populated
// Archive; Encode consumes one built either by Decode or by NewArchive,
// AddFolder, and AddFile.
type Archive struct {
	// SetID identifies the cabinet set this archive belongs to.
	SetID uint16
	// CabinetIndex is this cabinet's position in its set. Preserved for
	// round-trips; spanning sets themselves are not supported.
	CabinetIndex uint16
	// ReserveHeader is the opaque per-header reserved area, preserved
	// verbatim.
	ReserveHeader []byte
	// ReserveFolder is the per-folder reserved area size in bytes.
	ReserveFolder uint8
	// ReserveBlock is the per-data-block reserved area size in bytes.
	ReserveBlock uint8

	folders []*Folder
}

// NewArchive returns an empty archive ready for AddFolder.
func NewArchive() *Archive {
	return &Archive{}
}

// AddFolder appends a folder with the given compression method and returns
// it for AddFile calls.
func (a *Archive) AddFolder(compression CompressionType) *Folder {
	folder := &Folder{compression: compression}
	a.folders = append(a.folders, folder)
	return folder
}

// Folders returns the archive's folders in cabinet order.
func (a *Archive) Folders() []*Folder {
	if a == nil {
		return nil
	}

	out := make([]*Folder, len(a.folders))
	copy(out, a.folders)
	return out
}

// Files returns all files across folders in cabinet order.
func (a *Archive) Files() []*File {
	if a == nil {
		return nil
	}

	total := 0
	for _, folder := range a.folders {
		total += len(folder.files)
	}

	out := make([]*File, 0, total)
	for _, folder := range a.folders {
		out = append(out, folder.files...)
	}

	return out
}

// Folder is one compression unit: the files drawing their bytes from a
// single compressed stream, plus the data blocks that stream was carried in.
type Folder struct {
	compression CompressionType
	// reserved holds per-folder reserved bytes preserved from decode.
	reserved []byte
	// blocks is per-block metadata recorded by Decode; empty for built
	// archives until Encode derives fresh blocks.
	blocks []DataBlock
	files  []*File
}

// Compression returns the folder's compression method.
func (f *Folder) Compression() CompressionType {
	return f.compression
}

// Files returns the folder's files in stream order.
func (f *Folder) Files() []*File {
	out := make([]*File, len(f.files))
	copy(out, f.files)
	return out
}

// Blocks returns per-block metadata recorded by Decode.
func (f *Folder) Blocks() []DataBlock {
	out := make([]DataBlock, len(f.blocks))
	copy(out, f.blocks)
	return out
}

// AddFile appends a file to the folder's stream order.
func (f *Folder) AddFile(file *File) {
	f.files = append(f.files, file)
}

// File is one logical cabinet entry.
type File struct {
	// Name is the file path. Stored cabinet form uses "\" separators;
	// Encode converts "/" automatically.
	Name string
	// ModTime is the entry timestamp. Cabinet time has two-second
	// resolution and no timezone; Encode stores the local wall clock
	// fields and dates before 1980 as zero.
	ModTime time.Time
	// ReadOnly, Hidden, System, Archived, Exec mirror the DOS attribute
	// bits stored with the entry.
	ReadOnly bool
	Hidden   bool
	System   bool
	Archived bool
	Exec     bool

	data   []byte
	offset uint32
}

// NewFile returns a file entry with the given name, contents, and
// modification time.
func NewFile(name string, data []byte, modTime time.Time) *File {
	return &File{Name: name, ModTime: modTime, data: data}
}

// Data returns the file's decompressed contents. The returned slice is
// shared with the archive; callers must not modify it.
func (f *File) Data() []byte {
	return f.data
}

// Size returns the file's decompressed size in bytes.
func (f *File) Size() int {
	return len(f.data)
}

// Offset returns the file's byte offset within its folder's decompressed
// stream. Set by Decode; zero for files added via NewFile until encoded.
func (f *File) Offset() uint32 {
	return f.offset
}

// DataBlock is per-block metadata of one CFDATA record.
type DataBlock struct {
	// Checksum is the stored block checksum (zero means unchecked).
	Checksum uint32
	// CompressedSize is the stored payload length in bytes.
	CompressedSize uint16
	// UncompressedSize is the decompressed length in bytes.
	UncompressedSize uint16
}

// Input describes one caller-supplied byte source for BuildFolder.
type Input struct {
	// ModTime is the entry timestamp.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
	// Open returns the raw content stream for this entry.
	Open func() (io.ReadCloser, error) `json:"-" yaml:"-"`
	// Name is the entry path inside the cabinet.
	Name string `json:"name" yaml:"name"`
}

// DecodeOptions configures Decode behavior.
type DecodeOptions struct {
	// Strict requires the declared cabinet size to equal the buffer length
	// exactly and all must-be-zero header fields to be zero. Default is
	// lenient: trailing bytes after the declared size are tolerated and
	// reserved fields are ignored.
	Strict bool
	// SkipChecksum disables per-block checksum verification, for cabinets
	// known to carry wrong sums.
	SkipChecksum bool
	// MaxDecodedSize caps the total declared decompressed size across all
	// folders before any block is read. Zero means no cap.
	MaxDecodedSize int64
	// MaxWorkers bounds parallel folder decompression (zero means
	// GOMAXPROCS). Folders are independent streams.
	MaxWorkers int
}

// applyDefaults fills zero-valued decode options with defaults.
func (opts *DecodeOptions) applyDefaults() {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = runtime.GOMAXPROCS(0)
	}
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
}

// EncodeOptions configures Encode behavior.
type EncodeOptions struct {
	// CompressionLevel is the DEFLATE level used for MSZIP folders,
	// 1 (fastest) to 9 (best). Zero selects 9.
	CompressionLevel int
}

// applyDefaults fills zero-valued encode options with defaults.
func (opts *EncodeOptions) applyDefaults() {
	if opts.CompressionLevel == 0 {
		opts.CompressionLevel = 9
	}
}
