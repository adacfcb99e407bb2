package domain

import "strings"

// FilterSpec is the per-category set of inclusion/exclusion rules.
type FilterSpec struct {
	Protocols        []string `json:"protocols"`
	Keywords         []string `json:"keywords"`
	ExcludedKeywords []string `json:"excludedKeywords"`
}

// Normalized returns a copy with blank keywords and protocols removed.
// Keywords are trimmed; protocols keep their exact spelling.
func (f FilterSpec) Normalized() FilterSpec {
	return FilterSpec{
		Protocols:        compact(f.Protocols, false),
		Keywords:         compact(f.Keywords, true),
		ExcludedKeywords: compact(f.ExcludedKeywords, true),
	}
}

// IsEmpty reports whether the spec accepts every record.
func (f FilterSpec) IsEmpty() bool {
	n := f.Normalized()
	return len(n.Protocols) == 0 && len(n.Keywords) == 0 && len(n.ExcludedKeywords) == 0
}

// ActiveCount is the number of active rules shown on the filter badge.
func (f FilterSpec) ActiveCount() int {
	n := f.Normalized()
	return len(n.Protocols) + len(n.Keywords) + len(n.ExcludedKeywords)
}

func compact(values []string, trim bool) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trim {
			v = strings.TrimSpace(v)
		}
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
