// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/cab

package cab

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by this package wraps exactly one of
// these, so callers can classify failures with errors.Is without matching
// message text.
var (
	// ErrFormat means the input is structurally invalid: bad magic, size
	// mismatch, truncated buffer, out-of-range index. Always fatal.
	ErrFormat = errors.New("structurally invalid cabinet")
	// ErrIntegrity means a data block is well-formed but its stored checksum
	// does not match the recomputed value. See ChecksumError for context.
	ErrIntegrity = errors.New("cabinet data block corrupted")
	// ErrCompression means the MSZIP codec failed inside a data block.
	ErrCompression = errors.New("MSZIP codec failure")
	// ErrConstraint means an encode-time value does not fit its cabinet
	// field width.
	ErrConstraint = errors.New("value does not fit cabinet field")
)

// Specific sentinel errors. Use errors.Is in callers; each also matches its
// class sentinel above.
var (
	// ErrBadSignature means the buffer does not start with "MSCF".
	ErrBadSignature = fmt.Errorf("%w: missing MSCF signature", ErrFormat)
	// ErrTruncated means the buffer ends before a declared structure does.
	ErrTruncated = fmt.Errorf("%w: buffer truncated", ErrFormat)
	// ErrSizeMismatch means the declared cabinet size disagrees with the
	// buffer length under the selected strictness.
	ErrSizeMismatch = fmt.Errorf("%w: declared size mismatch", ErrFormat)
	// ErrReservedNonzero means a must-be-zero header field is nonzero in
	// strict mode.
	ErrReservedNonzero = fmt.Errorf("%w: reserved field not zero", ErrFormat)
	// ErrUnsupportedVersion means the cabinet format version is not 1.3.
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported format version", ErrFormat)
	// ErrUnsupportedCompression means a folder uses Quantum, LZX, or an
	// unknown compression method code.
	ErrUnsupportedCompression = fmt.Errorf("%w: unsupported compression method", ErrFormat)
	// ErrMultiCabinet means the cabinet is part of a spanning set
	// (continuation folder index or prev/next cabinet header flags).
	ErrMultiCabinet = fmt.Errorf("%w: multi-cabinet sets not supported", ErrFormat)
	// ErrEmptyArchive means the cabinet declares no folders or no files.
	ErrEmptyArchive = fmt.Errorf("%w: cabinet has no content", ErrFormat)
	// ErrFolderIndex means a file record references a folder outside the
	// folder table.
	ErrFolderIndex = fmt.Errorf("%w: file references missing folder", ErrFormat)
	// ErrFileBounds means a file's offset/size does not fit inside its
	// folder's decompressed stream.
	ErrFileBounds = fmt.Errorf("%w: file outside folder stream", ErrFormat)
	// ErrBlockLength means a data block's decompressed output disagrees
	// with its recorded uncompressed length.
	ErrBlockLength = fmt.Errorf("%w: block length mismatch", ErrFormat)
	// ErrDecodeLimit means declared sizes exceed DecodeOptions.MaxDecodedSize.
	ErrDecodeLimit = fmt.Errorf("%w: declared size exceeds decode limit", ErrFormat)

	// ErrNilArchive means Encode was called with a nil archive.
	ErrNilArchive = fmt.Errorf("%w: archive is nil", ErrConstraint)
	// ErrNoFiles means the archive has no files to encode.
	ErrNoFiles = fmt.Errorf("%w: archive has no files", ErrConstraint)
	// ErrTooManyFolders means the folder count exceeds the 16-bit table limit.
	ErrTooManyFolders = fmt.Errorf("%w: more than 65535 folders", ErrConstraint)
	// ErrTooManyFiles means the file count exceeds the 16-bit table limit.
	ErrTooManyFiles = fmt.Errorf("%w: more than 65535 files", ErrConstraint)
	// ErrTooManyBlocks means one folder needs more than 65535 data blocks.
	ErrTooManyBlocks = fmt.Errorf("%w: more than 65535 data blocks in folder", ErrConstraint)
	// ErrFileTooLarge means a file size does not fit the 32-bit size field.
	ErrFileTooLarge = fmt.Errorf("%w: file exceeds 4 GiB", ErrConstraint)
	// ErrFolderTooLarge means a folder's concatenated stream does not fit
	// the 32-bit offset field.
	ErrFolderTooLarge = fmt.Errorf("%w: folder stream exceeds 4 GiB", ErrConstraint)
	// ErrArchiveTooLarge means the serialized cabinet does not fit the
	// 32-bit total size field.
	ErrArchiveTooLarge = fmt.Errorf("%w: cabinet exceeds 4 GiB", ErrConstraint)
	// ErrBlockOverflow means one compressed block does not fit the 16-bit
	// compressed length field.
	ErrBlockOverflow = fmt.Errorf("%w: compressed block exceeds 65535 bytes", ErrConstraint)
	// ErrInvalidName means a file name is empty, contains a NUL byte, or
	// exceeds the maximum stored length.
	ErrInvalidName = fmt.Errorf("%w: invalid file name", ErrConstraint)
	// ErrDuplicateName means two files resolve to the same normalized name.
	ErrDuplicateName = fmt.Errorf("%w: duplicate file name", ErrConstraint)
	// ErrNilProvider means a folder input has no Open callback.
	ErrNilProvider = fmt.Errorf("%w: input has nil Open", ErrConstraint)
)

// ChecksumError reports one corrupted data block. It unwraps to
// ErrIntegrity; Folder and Block locate the failure for callers doing
// best-effort recovery.
type ChecksumError struct {
	// Folder is the index of the folder owning the block.
	Folder int
	// Block is the index of the block inside the folder.
	Block int
	// Stored is the checksum recorded in the block header.
	Stored uint32
	// Computed is the checksum recomputed over the block contents.
	Computed uint32
}

// Error implements the error interface.
func (e *ChecksumError) Error() string {
	return fmt.Sprintf(
		"%v: folder %d block %d: stored %#08x, computed %#08x",
		ErrIntegrity, e.Folder, e.Block, e.Stored, e.Computed,
	)
}

// Unwrap makes errors.Is(err, ErrIntegrity) hold for checksum failures.
func (e *ChecksumError) Unwrap() error {
	return ErrIntegrity
}
