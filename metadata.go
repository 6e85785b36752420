// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/cab

package cab

import "time"

// Info summarizes a cabinet header.
type Info struct {
	// TotalSize is the declared cabinet size in bytes.
	TotalSize uint32 `json:"total_size" yaml:"total_size"`
	// FolderCount is the declared folder table length.
	FolderCount int `json:"folder_count" yaml:"folder_count"`
	// FileCount is the declared file table length.
	FileCount int `json:"file_count" yaml:"file_count"`
	// Flags is the raw CFHEADER flag word.
	Flags uint16 `json:"flags" yaml:"flags"`
	// SetID identifies the cabinet set.
	SetID uint16 `json:"set_id" yaml:"set_id"`
	// CabinetIndex is this cabinet's position in its set.
	CabinetIndex uint16 `json:"cabinet_index" yaml:"cabinet_index"`
	// ReserveHeader is the opaque header reserved area.
	ReserveHeader []byte `json:"reserve_header,omitempty" yaml:"reserve_header,omitempty"`
	// ReserveFolder is the per-folder reserved area size.
	ReserveFolder uint8 `json:"reserve_folder,omitempty" yaml:"reserve_folder,omitempty"`
	// ReserveBlock is the per-data-block reserved area size.
	ReserveBlock uint8 `json:"reserve_block,omitempty" yaml:"reserve_block,omitempty"`
}

// FileInfo describes one file entry from the file table.
type FileInfo struct {
	// ModTime is the decoded entry timestamp.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
	// Name is the entry path as stored in the table.
	Name string `json:"name" yaml:"name"`
	// Size is the uncompressed size in bytes.
	Size uint32 `json:"size" yaml:"size"`
	// Offset is the byte offset within the folder's decompressed stream.
	Offset uint32 `json:"offset" yaml:"offset"`
	// Folder is the index of the owning folder.
	Folder int `json:"folder" yaml:"folder"`
	// Compression is the owning folder's compression method.
	Compression CompressionType `json:"compression" yaml:"compression"`
	// ReadOnly, Hidden, System, Archived, Exec mirror the stored attribute bits.
	ReadOnly bool `json:"read_only,omitempty" yaml:"read_only,omitempty"`
	Hidden   bool `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	System   bool `json:"system,omitempty" yaml:"system,omitempty"`
	Archived bool `json:"archived,omitempty" yaml:"archived,omitempty"`
	Exec     bool `json:"exec,omitempty" yaml:"exec,omitempty"`
}

// ReadInfo parses only the cabinet header, without touching the folder or
// file tables.
func ReadInfo(buf []byte) (*Info, error) {
	hdr, err := parseHeader(buf, false)
	if err != nil {
		return nil, err
	}

	return &Info{
		TotalSize:     hdr.totalSize,
		FolderCount:   hdr.folderCount,
		FileCount:     hdr.fileCount,
		Flags:         hdr.flags,
		SetID:         hdr.setID,
		CabinetIndex:  hdr.cabinetIndex,
		ReserveHeader: hdr.reserveHeader,
		ReserveFolder: hdr.reserveFolder,
		ReserveBlock:  hdr.reserveBlock,
	}, nil
}

// List parses file metadata from the tables without reading any data block,
// so corrupt or expensive payloads cost nothing to inspect.
func List(buf []byte) ([]FileInfo, error) {
	return ListWithOptions(buf, DecodeOptions{})
}

// ListWithOptions parses file metadata using explicit decode options.
// Only the structural options apply; blocks are never read.
func ListWithOptions(buf []byte, opts DecodeOptions) ([]FileInfo, error) {
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

	out := make([]FileInfo, 0, len(files))
	for _, rec := range files {
		out = append(out, FileInfo{
			ModTime:     rec.file.ModTime,
			Name:        rec.file.Name,
			Size:        rec.size,
			Offset:      rec.offset,
			Folder:      rec.folder,
			Compression: folders[rec.folder].method,
			ReadOnly:    rec.file.ReadOnly,
			Hidden:      rec.file.Hidden,
			System:      rec.file.System,
			Archived:    rec.file.Archived,
			Exec:        rec.file.Exec,
		})
	}

	return out, nil
}
