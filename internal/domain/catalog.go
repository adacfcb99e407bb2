package domain

// CatalogEntry is the immutable listing of a generated token.
// Corresponds to token_catalog table in PostgreSQL.
type CatalogEntry struct {
	TokenID         string // PRIMARY KEY
	ContractAddress string // unique base58 address
	Name            string
	Symbol          string
	Protocol        string
	Status          Status
	Digest          string // universe digest the entry was generated in
	CreatedAt       int64  // record creation timestamp (ms)
}

// NewCatalogEntry extracts the immutable part of a record.
func NewCatalogEntry(t *TokenRecord, digest string) *CatalogEntry {
	return &CatalogEntry{
		TokenID:         t.ID,
		ContractAddress: t.ContractAddress,
		Name:            t.Name,
		Symbol:          t.Symbol,
		Protocol:        t.Protocol,
		Status:          t.Status,
		Digest:          digest,
	}
}
