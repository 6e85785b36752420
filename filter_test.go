// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/cab

package cab

import (
	"testing"
	"time"

	"github.com/woozymasta/pathrules"
)

func buildFilterArchive() *Archive {
	now := time.Date(2022, 6, 1, 10, 0, 0, 0, time.Local)

	archive := NewArchive()
	folder := archive.AddFolder(CompressionNone)
	folder.AddFile(NewFile(`docs\Manual.TXT`, []byte("manual"), now))
	folder.AddFile(NewFile("docs/notes.txt", []byte("notes"), now))
	folder.AddFile(NewFile("drivers/net/e1000.sys", []byte("driver"), now))
	folder.AddFile(NewFile("setup.exe", []byte("setup"), now))

	return archive
}

func TestLookup(t *testing.T) {
	t.Parallel()

	archive := buildFilterArchive()

	cases := []struct {
		name  string
		query string
		want  string // expected stored name, "" for no match
	}{
		{name: "exact", query: "setup.exe", want: "setup.exe"},
		{name: "case insensitive", query: "DOCS/MANUAL.txt", want: `docs\Manual.TXT`},
		{name: "backslash query", query: `docs\notes.txt`, want: "docs/notes.txt"},
		{name: "missing", query: "docs/absent.txt", want: ""},
		{name: "empty", query: "", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := archive.Lookup(tc.query)
			if tc.want == "" {
				if got != nil {
					t.Fatalf("Lookup(%q) = %q, want nil", tc.query, got.Name)
				}
				return
			}
			if got == nil || got.Name != tc.want {
				t.Fatalf("Lookup(%q) = %v, want %q", tc.query, got, tc.want)
			}
		})
	}
}

func TestLookupNilArchive(t *testing.T) {
	t.Parallel()

	var archive *Archive
	if archive.Lookup("x") != nil {
		t.Fatal("nil archive lookup must return nil")
	}
}

func TestGlob(t *testing.T) {
	t.Parallel()

	archive := buildFilterArchive()

	got, err := archive.Glob("docs/*.txt")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("matched %d files, want 2", len(got))
	}
	if got[0].Name != `docs\Manual.TXT` || got[1].Name != "docs/notes.txt" {
		t.Errorf("matches = %q, %q", got[0].Name, got[1].Name)
	}
}

func TestGlobNoMatches(t *testing.T) {
	t.Parallel()

	got, err := buildFilterArchive().Glob("*.dll")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("matched %d files, want 0", len(got))
	}
}

func TestMatchOrderedRules(t *testing.T) {
	t.Parallel()

	archive := buildFilterArchive()

	got, err := archive.Match([]pathrules.Rule{
		{Action: pathrules.ActionInclude, Pattern: "**"},
		{Action: pathrules.ActionExclude, Pattern: "drivers/**"},
	}, pathrules.MatcherOptions{
		CaseInsensitive: true,
		DefaultAction:   pathrules.ActionExclude,
	})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("matched %d files, want 3", len(got))
	}
	for _, f := range got {
		if f.Name == "drivers/net/e1000.sys" {
			t.Fatal("excluded path leaked through")
		}
	}
}

func TestMatchEmptyRules(t *testing.T) {
	t.Parallel()

	got, err := buildFilterArchive().Match(nil, pathrules.MatcherOptions{})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if got != nil {
		t.Fatalf("empty rules matched %d files", len(got))
	}
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: `docs\sub\file.txt`, want: "docs/sub/file.txt"},
		{in: "docs//file.txt", want: "docs/file.txt"},
		{in: "./docs/file.txt", want: "docs/file.txt"},
		{in: "  spaced.txt  ", want: "spaced.txt"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
