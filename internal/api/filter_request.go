package api

import (
	"encoding/json"
	"fmt"

	"token-pulse/internal/domain"
	"token-pulse/internal/filter"
)

// keywordList accepts either a JSON array of keywords or the comma separated
// text a user types into the filter box.
type keywordList []string

func (k *keywordList) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*k = filter.ParseKeywords(text)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("keywords must be a string or an array of strings")
	}
	*k = list
	return nil
}

// filterRequest is the PUT body of a category filter.
type filterRequest struct {
	Protocols        []string    `json:"protocols"`
	Keywords         keywordList `json:"keywords"`
	ExcludedKeywords keywordList `json:"excludedKeywords"`
}

func (r filterRequest) spec() (domain.FilterSpec, error) {
	for _, p := range r.Protocols {
		if !domain.IsKnownProtocol(p) {
			return domain.FilterSpec{}, fmt.Errorf("unknown protocol: %q", p)
		}
	}
	return domain.FilterSpec{
		Protocols:        r.Protocols,
		Keywords:         r.Keywords,
		ExcludedKeywords: r.ExcludedKeywords,
	}, nil
}
