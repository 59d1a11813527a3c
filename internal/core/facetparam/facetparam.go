// Package facetparam turns a facet and one of its values into the query string fragment
// the storefront's faceted search expects
// Values are emitted verbatim; the only escaping applied is the comma in range values
package facetparam

import (
	"strconv"
	"strings"
)

// Type is the facet kind as reported by the faceted search export
type Type string

// Known facet types; anything else encodes as TypeOther
const (
	TypeSelect      Type = "select"
	TypeSearch      Type = "search"
	TypeSlider      Type = "slider"
	TypeNumberRange Type = "number_range"
	TypeDateRange   Type = "date_range"
	TypeHierarchy   Type = "hierarchy"
	TypeOther       Type = "other"
)

// ParseType maps a raw type name onto a Type, unknown names become TypeOther
func ParseType(s string) Type {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeSelect, TypeSearch, TypeSlider, TypeNumberRange, TypeDateRange, TypeHierarchy:
		return t
	default:
		return TypeOther
	}
}

// Facet is the part of a facet definition the encoder needs
type Facet struct {
	Name string
	Type Type
}

const (
	rangeSep     = ","
	encodedComma = "%2C"
	levelSep     = "/"
)

// Encode returns the query fragment for value under facet f
// Empty names or values produce an empty fragment
func Encode(f Facet, value string) string {
	if f.Name == "" || value == "" {
		return ""
	}

	switch f.Type {
	case TypeSlider, TypeNumberRange:
		// min,max; anything past a second comma is dropped
		if parts := strings.SplitN(value, rangeSep, 3); len(parts) > 1 {
			return f.Name + "=" + parts[0] + encodedComma + parts[1]
		}
	case TypeHierarchy:
		if levels := strings.Split(value, levelSep); len(levels) > 1 {
			var b strings.Builder
			for i, lvl := range levels {
				if i > 0 {
					b.WriteByte('&')
				}
				b.WriteString(levelKey(f.Name, i))
				b.WriteByte('=')
				b.WriteString(lvl)
			}
			return b.String()
		}
	}
	return f.Name + "=" + value
}

// Keys lists the query keys Encode(f, value) occupies, in order
func Keys(f Facet, value string) []string {
	if f.Name == "" || value == "" {
		return nil
	}
	if f.Type == TypeHierarchy {
		if n := strings.Count(value, levelSep) + 1; n > 1 {
			keys := make([]string, n)
			for i := range keys {
				keys[i] = levelKey(f.Name, i)
			}
			return keys
		}
	}
	return []string{f.Name}
}

// Param encodes a custom parameter assignment, parameters have no type rules
func Param(name, value string) string {
	if name == "" || value == "" {
		return ""
	}
	return name + "=" + value
}

// FragmentKeys splits an already encoded fragment back into its keys
func FragmentKeys(frag string) []string {
	if frag == "" {
		return nil
	}
	parts := strings.Split(frag, "&")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		k, _, _ := strings.Cut(p, "=")
		keys = append(keys, k)
	}
	return keys
}

func levelKey(name string, i int) string {
	return name + "_level_" + strconv.Itoa(i)
}
