// Package textnorm cleans free text coming from imports before it is stored as a facet or
// parameter value
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFC composition
// 3 Remove format and control chars (zero widths, BOM, C0/C1 controls)
// 4 Width fold fullwidth and halfwidth forms
// 5 Collapse whitespace runs to one space and trim
// Case is preserved; values end up verbatim in URLs
package textnorm

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFC,
			runes.Remove(runes.In(unicode.Cf)),
			runes.Remove(runes.Predicate(isStrayControl)),
			width.Fold,
		)
	},
}

// isStrayControl matches control chars other than whitespace, which step 5 handles
func isStrayControl(r rune) bool {
	return unicode.IsControl(r) && !unicode.IsSpace(r)
}

// Value returns the normalized form of s
func Value(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(out), " ")
}

// Lines splits a newline separated blob into normalized values
// Empty lines and repeats are dropped, first occurrence order is kept
func Lines(blob string) []string {
	if blob == "" {
		return nil
	}
	raw := strings.Split(strings.ReplaceAll(blob, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, l := range raw {
		v := Value(l)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Values applies Value to each element with the same drop rules as Lines
func Values(in []string) []string {
	return Lines(strings.Join(in, "\n"))
}
