// Package search finds the pages of a document that mention a set of terms.
package search

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/coregx/ahocorasick"
	"github.com/ledongthuc/pdf"
)

// ErrUnreadable means the document text layer could not be read.
var ErrUnreadable = errors.New("search: document text could not be read")

// Hit reports how often a term occurs on one page.
type Hit struct {
	Term  string `json:"term"`
	Page  int    `json:"page"`
	Count int    `json:"count"`
}

// Index holds the lowercased plain text of every page. Pages without a text
// layer are empty.
type Index struct {
	pages []string
}

// NewIndex extracts per-page text from a PDF. The reader panics on some
// malformed object trees; those documents report ErrUnreadable.
func NewIndex(data []byte) (ix *Index, err error) {
	defer recoverUnreadable(&err)

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	n := reader.NumPage()
	pages := make([]string, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages[i-1] = strings.ToLower(text)
	}

	return &Index{pages: pages}, nil
}

func recoverUnreadable(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrUnreadable, r)
	}
}

// Pages returns the page count.
func (ix *Index) Pages() int {
	return len(ix.pages)
}

// Find matches every term case-insensitively across all pages. Hits are
// ordered by page, then by the order terms were given.
func (ix *Index) Find(terms []string) ([]Hit, error) {
	patterns := Normalize(terms)
	if len(patterns) == 0 {
		return []Hit{}, nil
	}

	automaton, err := ahocorasick.NewBuilder().
		AddStrings(patterns).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build matcher: %w", err)
	}

	hits := []Hit{}
	for i, text := range ix.pages {
		if text == "" {
			continue
		}

		counts := make([]int, len(patterns))
		for _, m := range automaton.FindAllOverlapping([]byte(text)) {
			counts[m.PatternID]++
		}

		for id, count := range counts {
			if count > 0 {
				hits = append(hits, Hit{Term: patterns[id], Page: i + 1, Count: count})
			}
		}
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(a.Page, b.Page)
	})
	return hits, nil
}

// Normalize lowercases and trims terms, dropping blanks and duplicates while
// keeping first-seen order.
func Normalize(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.Join(strings.Fields(t), " "))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
