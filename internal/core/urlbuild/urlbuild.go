// Package urlbuild composes a preload URL from a base and ordered query fragments
package urlbuild

import (
	"strings"

	"preloadassist/internal/core/facetparam"
)

// Assemble joins before, facet and after fragments onto base
// Query order is before + facets + after
// Empty fragments are skipped and a fragment that reuses a key already present is dropped
func Assemble(base string, facetFrags, before, after []string) string {
	var b strings.Builder
	b.Grow(len(base) + 16*(len(facetFrags)+len(before)+len(after)))
	b.WriteString(base)

	sep := byte('?')
	if strings.Contains(base, "?") {
		sep = '&'
		if strings.HasSuffix(base, "?") || strings.HasSuffix(base, "&") {
			sep = 0
		}
	}

	var seen map[string]struct{}
	for _, group := range [3][]string{before, facetFrags, after} {
		for _, frag := range group {
			if frag == "" {
				continue
			}
			keys := facetparam.FragmentKeys(frag)
			if len(keys) == 0 || clashes(seen, keys) {
				continue
			}
			if seen == nil {
				seen = make(map[string]struct{}, 8)
			}
			for _, k := range keys {
				seen[k] = struct{}{}
			}
			if sep != 0 {
				b.WriteByte(sep)
			}
			sep = '&'
			b.WriteString(frag)
		}
	}
	return b.String()
}

func clashes(seen map[string]struct{}, keys []string) bool {
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			return true
		}
	}
	return false
}

// CategoryURL derives a category landing URL from the site base and slug
// Used when the category has no canonical URL on record
func CategoryURL(siteBase, slug string) string {
	base := strings.TrimRight(siteBase, "/")
	slug = strings.Trim(slug, "/")
	if slug == "" {
		return base + "/"
	}
	return base + "/" + slug + "/"
}

// SiteURL returns the site base with a trailing slash
func SiteURL(siteBase string) string {
	return strings.TrimRight(siteBase, "/") + "/"
}
