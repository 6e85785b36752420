// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/cab

package cab

import (
	"fmt"
	"strings"

	"github.com/woozymasta/pathrules"
)

// Lookup returns the file with the given name, comparing normalized
// slash-separated forms case-insensitively (cabinet names are Windows
// paths). Returns nil when no file matches.
func (a *Archive) Lookup(name string) *File {
	if a == nil {
		return nil
	}

	want := strings.ToLower(NormalizeName(name))
	if want == "" {
		return nil
	}

	for _, folder := range a.folders {
		for _, file := range folder.files {
			if strings.ToLower(NormalizeName(file.Name)) == want {
				return file
			}
		}
	}

	return nil
}

// Match returns files selected by ordered path rules, in cabinet order.
func (a *Archive) Match(rules []pathrules.Rule, opts pathrules.MatcherOptions) ([]*File, error) {
	if a == nil || len(rules) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}

	var out []*File
	for _, folder := range a.folders {
		for _, file := range folder.files {
			candidate := NormalizeName(file.Name)
			if candidate == "" {
				continue
			}

			if matcher.Included(candidate, false) {
				out = append(out, file)
			}
		}
	}

	return out, nil
}

// Glob returns files whose names match a single include pattern,
// case-insensitively.
func (a *Archive) Glob(pattern string) ([]*File, error) {
	return a.Match(
		[]pathrules.Rule{{Action: pathrules.ActionInclude, Pattern: pattern}},
		pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionExclude,
		},
	)
}
