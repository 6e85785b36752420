// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/cab

package cab

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestReadInfo(t *testing.T) {
	t.Parallel()

	buf := buildStoreCab(t, []byte("hello"))

	info, err := ReadInfo(buf)
	if err != nil {
		t.Fatalf("ReadInfo: %v", err)
	}

	if info.TotalSize != uint32(len(buf)) {
		t.Errorf("TotalSize = %d, want %d", info.TotalSize, len(buf))
	}
	if info.FolderCount != 1 || info.FileCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", info.FolderCount, info.FileCount)
	}
	if info.Flags != 0 {
		t.Errorf("Flags = %#x", info.Flags)
	}
	if info.SetID != 0x1234 || info.CabinetIndex != 0 {
		t.Errorf("set = %#x index %d", info.SetID, info.CabinetIndex)
	}
	if info.ReserveHeader != nil || info.ReserveFolder != 0 || info.ReserveBlock != 0 {
		t.Errorf("reserve fields set on plain cabinet: %+v", info)
	}
}

func TestReadInfoReserveAreas(t *testing.T) {
	t.Parallel()

	archive := NewArchive()
	archive.ReserveHeader = []byte{0x01, 0x02}
	archive.ReserveBlock = 4
	archive.AddFolder(CompressionNone).AddFile(
		NewFile("r.txt", []byte("x"), time.Date(2020, 1, 2, 3, 4, 6, 0, time.Local)))

	buf, err := Encode(archive)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	info, err := ReadInfo(buf)
	if err != nil {
		t.Fatalf("ReadInfo: %v", err)
	}

	if info.Flags&flagReserve == 0 {
		t.Error("reserve flag not set")
	}
	if !bytes.Equal(info.ReserveHeader, archive.ReserveHeader) {
		t.Errorf("ReserveHeader = %x", info.ReserveHeader)
	}
	if info.ReserveBlock != 4 {
		t.Errorf("ReserveBlock = %d, want 4", info.ReserveBlock)
	}
}

func TestList(t *testing.T) {
	t.Parallel()

	infos, err := List(buildStoreCab(t, []byte("hello")))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(infos))
	}

	entry := infos[0]
	if entry.Name != "a.txt" || entry.Size != 5 || entry.Offset != 0 {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Folder != 0 || entry.Compression != CompressionNone {
		t.Errorf("folder binding = %d/%v", entry.Folder, entry.Compression)
	}
	if !entry.ModTime.IsZero() {
		t.Errorf("ModTime = %v, want zero", entry.ModTime)
	}
}

func TestListSkipsDataBlocks(t *testing.T) {
	t.Parallel()

	// Corrupt the block payload: Decode must fail the checksum, List must
	// not notice.
	buf := buildStoreCab(t, []byte("hello"))
	buf[74] ^= 0xFF

	if _, err := Decode(buf); !errors.Is(err, ErrIntegrity) {
		t.Fatalf("Decode err = %v, want ErrIntegrity", err)
	}

	infos, err := List(buf)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 1 || infos[0].Name != "a.txt" {
		t.Fatalf("entries = %+v", infos)
	}
}

func TestListWithOptionsStrict(t *testing.T) {
	t.Parallel()

	buf := buildStoreCab(t, []byte("hello"))
	buf[4] = 1 // must-be-zero header field

	if _, err := ListWithOptions(buf, DecodeOptions{Strict: true}); !errors.Is(err, ErrReservedNonzero) {
		t.Fatalf("err = %v, want ErrReservedNonzero", err)
	}

	if _, err := List(buf); err != nil {
		t.Fatalf("lenient List: %v", err)
	}
}

func TestListReportsAttributes(t *testing.T) {
	t.Parallel()

	file := NewFile("flags.bin", []byte("x"), time.Date(2020, 5, 6, 7, 8, 10, 0, time.Local))
	file.Hidden = true
	file.Archived = true

	archive := NewArchive()
	archive.AddFolder(CompressionMSZIP).AddFile(file)

	buf, err := Encode(archive)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	infos, err := List(buf)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	entry := infos[0]
	if !entry.Hidden || !entry.Archived || entry.ReadOnly || entry.System || entry.Exec {
		t.Errorf("attributes = %+v", entry)
	}
	if entry.Compression != CompressionMSZIP {
		t.Errorf("compression = %v", entry.Compression)
	}
	if !entry.ModTime.Equal(file.ModTime) {
		t.Errorf("ModTime = %v, want %v", entry.ModTime, file.ModTime)
	}
}
