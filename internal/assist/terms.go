package assist

import (
	"strings"
	"unicode"

	"github.com/orsinium-labs/stopwords"
)

// MaxRelatedTerms caps a suggestion list.
const MaxRelatedTerms = 5

var english = stopwords.MustGet("en")

// parseTerms splits a model reply into candidate terms. It accepts one term
// per line or comma-separated terms and strips list markers and quotes.
func parseTerms(reply string) []string {
	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return r == '\n' || r == ','
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimLeft(strings.TrimSpace(f), "-*•· \t")
		if i := strings.IndexAny(f, ".)"); i > 0 && allDigits(f[:i]) {
			f = f[i+1:]
		}
		f = strings.Trim(f, "\"'`“”‘’ \t\r")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// filterTerms drops the input term, duplicates and stop-word-only candidates
// (all case-insensitive) and caps the result at MaxRelatedTerms.
func filterTerms(term string, candidates []string) []string {
	seen := map[string]struct{}{normalizeTerm(term): {}}
	out := make([]string, 0, MaxRelatedTerms)

	for _, c := range candidates {
		key := normalizeTerm(c)
		if key == "" || onlyStopwords(key) {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.Join(strings.Fields(c), " "))
		if len(out) == MaxRelatedTerms {
			break
		}
	}
	return out
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func onlyStopwords(s string) bool {
	for _, w := range strings.Fields(s) {
		if !english.Contains(w) {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
