// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/cab

/*
Package cab decodes and encodes Microsoft Cabinet (CAB) archives entirely
in memory. It supports the store and MSZIP compression methods; Quantum
and LZX cabinets and multi-cabinet spanning sets are rejected. The package
never touches the filesystem: decoding consumes a byte buffer and encoding
produces one.

# Decoding

Parse a cabinet and read file contents:

	archive, err := cab.Decode(buf)
	if err != nil {
	    return err
	}
	for _, f := range archive.Files() {
	    data := f.Data()
	    // use data
	}

Every data block's checksum is verified during decode; a mismatch reports
ErrIntegrity with the folder and block index attached:

	archive, err := cab.Decode(buf)
	var cerr *cab.ChecksumError
	if errors.As(err, &cerr) {
	    log.Printf("folder %d block %d corrupted", cerr.Folder, cerr.Block)
	}

For cabinets with known-bad checksums, or to bound memory and strictness
explicitly:

	archive, err := cab.DecodeWithOptions(buf, cab.DecodeOptions{
	    Strict:         true,
	    SkipChecksum:   false,
	    MaxDecodedSize: 256 << 20,
	})

For metadata-only scans no data block is ever read:

	info, err := cab.ReadInfo(buf)
	files, err := cab.List(buf)
	_, _, _ = info, files, err

# Encoding

Build an archive and serialize it. Files grouped into one folder share a
single compressed stream:

	archive := cab.NewArchive()
	folder := archive.AddFolder(cab.CompressionMSZIP)
	folder.AddFile(cab.NewFile("readme.txt", data, time.Now()))
	buf, err := cab.Encode(archive)

Callers with streaming sources can supply byte providers instead
(the folder is still assembled eagerly, order is preserved):

	_, err = archive.BuildFolder(cab.CompressionNone, []cab.Input{
	    {Name: "setup.inf", Open: func() (io.ReadCloser, error) { return os.Open("setup.inf") }},
	})

# Lookups

Find files by name or glob rules, examples below use
github.com/woozymasta/pathrules for rule matching:

	f := archive.Lookup(`docs\manual.txt`)
	txt, err := archive.Glob("*.txt")
	sel, err := archive.Match([]pathrules.Rule{
	    {Action: pathrules.ActionInclude, Pattern: "drivers/**"},
	    {Action: pathrules.ActionExclude, Pattern: "*.tmp"},
	}, pathrules.MatcherOptions{
	    CaseInsensitive: true,
	    DefaultAction:   pathrules.ActionExclude,
	})
	_, _, _, _ = f, txt, sel, err

All errors wrap one of four class sentinels: ErrFormat (structurally
invalid input), ErrIntegrity (checksum mismatch), ErrCompression (MSZIP
codec failure), and ErrConstraint (encode-time value does not fit its
field). Check them with errors.Is.
*/
package cab
