package idhash

import (
	"testing"

	"token-pulse/internal/domain"
)

func sampleRecords() []*domain.TokenRecord {
	return []*domain.TokenRecord{
		{ID: "token-0", Name: "Pepe Coin", Symbol: "PEPE", Price: 1.5, History: []float64{1, 2}, Status: domain.StatusNewPairs},
		{ID: "token-1", Name: "Floki", Symbol: "FLOKI", Price: 0.25, History: []float64{3}, Status: domain.StatusMigrated},
	}
}

func TestUniverseDigest(t *testing.T) {
	got := UniverseDigest(sampleRecords())

	if len(got) != 64 {
		t.Errorf("UniverseDigest() length = %d, want 64", len(got))
	}

	// Verify determinism: same inputs should produce same output
	if again := UniverseDigest(sampleRecords()); again != got {
		t.Errorf("UniverseDigest() not deterministic: %s != %s", got, again)
	}
}

func TestUniverseDigest_SensitiveToChanges(t *testing.T) {
	base := UniverseDigest(sampleRecords())

	tests := []struct {
		name   string
		mutate func([]*domain.TokenRecord)
	}{
		{"price", func(r []*domain.TokenRecord) { r[0].Price = 1.5000001 }},
		{"history", func(r []*domain.TokenRecord) { r[1].History[0] = 4 }},
		{"order", func(r []*domain.TokenRecord) { r[0], r[1] = r[1], r[0] }},
		{"security", func(r []*domain.TokenRecord) { r[0].Security.HasAudit = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := sampleRecords()
			tt.mutate(records)
			if UniverseDigest(records) == base {
				t.Errorf("digest unchanged after %s mutation", tt.name)
			}
		})
	}
}
