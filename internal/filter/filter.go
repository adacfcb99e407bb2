// Package filter derives category views from the authoritative token sequence.
package filter

import (
	"strings"

	"token-pulse/internal/domain"
)

// Apply returns the records accepted by spec, preserving input order.
// Records are not copied or mutated.
//
// Rules, short-circuiting on the first failure:
//  1. Non-empty Protocols: protocol must be a member.
//  2. Non-empty Keywords: at least one must match name or symbol.
//  3. Non-empty ExcludedKeywords: none may match name or symbol.
//
// Matching is case-insensitive substring. Blank keywords are ignored.
func Apply(records []*domain.TokenRecord, spec domain.FilterSpec) []*domain.TokenRecord {
	m := newMatcher(spec)
	result := make([]*domain.TokenRecord, 0, len(records))
	for _, r := range records {
		if m.accept(r) {
			result = append(result, r)
		}
	}
	return result
}

// Match reports whether a single record passes spec.
func Match(r *domain.TokenRecord, spec domain.FilterSpec) bool {
	return newMatcher(spec).accept(r)
}

// ByStatus returns the records with the given status, preserving order.
func ByStatus(records []*domain.TokenRecord, status domain.Status) []*domain.TokenRecord {
	result := make([]*domain.TokenRecord, 0, len(records)/len(domain.Statuses)+1)
	for _, r := range records {
		if r.Status == status {
			result = append(result, r)
		}
	}
	return result
}

// matcher holds a spec with keywords pre-lowered.
type matcher struct {
	protocols map[string]struct{}
	keywords  []string
	excluded  []string
}

func newMatcher(spec domain.FilterSpec) matcher {
	n := spec.Normalized()
	m := matcher{
		keywords: lowerAll(n.Keywords),
		excluded: lowerAll(n.ExcludedKeywords),
	}
	if len(n.Protocols) > 0 {
		m.protocols = make(map[string]struct{}, len(n.Protocols))
		for _, p := range n.Protocols {
			m.protocols[p] = struct{}{}
		}
	}
	return m
}

func (m matcher) accept(r *domain.TokenRecord) bool {
	if m.protocols != nil {
		if _, ok := m.protocols[r.Protocol]; !ok {
			return false
		}
	}

	if len(m.keywords) == 0 && len(m.excluded) == 0 {
		return true
	}

	name := strings.ToLower(r.Name)
	symbol := strings.ToLower(r.Symbol)

	if len(m.keywords) > 0 && !anyContains(m.keywords, name, symbol) {
		return false
	}
	if len(m.excluded) > 0 && anyContains(m.excluded, name, symbol) {
		return false
	}
	return true
}

func anyContains(keywords []string, name, symbol string) bool {
	for _, k := range keywords {
		if strings.Contains(name, k) || strings.Contains(symbol, k) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
