package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"token-pulse/internal/domain"
)

// UniverseDigest computes a deterministic fingerprint of a token universe using SHA256.
// Every field of every record is hashed in order, floats in their shortest exact form.
// Returns hex-encoded hash (64 characters).
func UniverseDigest(records []*domain.TokenRecord) string {
	h := sha256.New()
	for _, t := range records {
		fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s|%s|",
			t.ID, t.ContractAddress, t.Name, t.Symbol, t.Image, t.Protocol, t.Status)
		for _, f := range []float64{
			t.Price, t.MarketCap, t.Liquidity, t.Volume24h,
			t.PriceChange5m, t.PriceChange1h, t.PriceChange24h,
			t.Security.Top10Holders,
		} {
			h.Write([]byte(formatFloat(f)))
			h.Write([]byte{'|'})
		}
		fmt.Fprintf(h, "%d|%d|%t|%t|%t|%s|",
			t.Transactions, t.Holders,
			t.Security.NoMint, t.Security.HasAudit, t.Security.IsBurned,
			t.TimeSinceCreation)
		for _, p := range t.History {
			h.Write([]byte(formatFloat(p)))
			h.Write([]byte{','})
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
