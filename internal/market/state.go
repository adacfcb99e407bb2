package market

import "token-pulse/internal/domain"

// State is the authoritative market data owned by a Store.
type State struct {
	// Records is the authoritative sequence; its order is the ranking.
	Records []*domain.TokenRecord
	// Filters has exactly one entry per domain.Statuses element.
	Filters map[domain.Status]domain.FilterSpec
}

// newState creates a state with an empty filter for every category.
func newState(records []*domain.TokenRecord) *State {
	filters := make(map[domain.Status]domain.FilterSpec, len(domain.Statuses))
	for _, s := range domain.Statuses {
		filters[s] = domain.FilterSpec{}
	}
	return &State{Records: records, Filters: filters}
}

// ChangeKind identifies what caused a version bump.
type ChangeKind string

const (
	ChangeInit   ChangeKind = "init"
	ChangeTick   ChangeKind = "tick"
	ChangeFilter ChangeKind = "filter"
)

// Change is delivered to subscribers after every mutation.
type Change struct {
	Version uint64        `json:"version"`
	Kind    ChangeKind    `json:"kind"`
	Status  domain.Status `json:"status,omitempty"` // set for ChangeFilter
}

// CategorySummary is the header data for one category column.
type CategorySummary struct {
	Status        domain.Status `json:"status"`
	Title         string        `json:"title"`
	Count         int           `json:"count"` // after filtering
	Total         int           `json:"total"` // ignoring filters
	ActiveFilters int           `json:"activeFilters"`
}

// TickReport describes a completed tick.
type TickReport struct {
	Version    uint64
	Tick       uint64
	Updated    []domain.TokenRecord // post-tick copies of the updated records
	Trades     int
	Spikes     int
	Degenerate int
}
