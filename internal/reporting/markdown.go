package reporting

import (
	"fmt"
	"strings"
	"time"

	"token-pulse/internal/format"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Market Session Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: %s | Universe: %d | Ticks: %d\n\n", r.RunID, r.Universe, r.Ticks))
	sb.WriteString(fmt.Sprintf("Digest: `%s`\n\n", r.Digest))

	// Categories
	sb.WriteString("## Categories\n\n")
	if len(r.Categories) > 0 {
		sb.WriteString("| Category | Visible | Total | Filters | Gainers | Losers | GainerRate | Mean 5m | Median 5m | P10 | P90 | MaxDD |\n")
		sb.WriteString("|----------|---------|-------|---------|---------|--------|------------|---------|-----------|-----|-----|-------|\n")
		for _, c := range r.Categories {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d | %d | %.4f | %s | %s | %s | %s | %.2f%% |\n",
				c.Title, c.Visible, c.Total, c.ActiveFilters,
				c.Gainers, c.Losers, c.GainerRate,
				format.Percentage(c.ChangeMean), format.Percentage(c.ChangeMedian),
				format.Percentage(c.ChangeP10), format.Percentage(c.ChangeP90),
				c.MaxDrawdown))
		}
	} else {
		sb.WriteString("No categories available.\n")
	}
	sb.WriteString("\n")

	// Movers
	sb.WriteString("## Top Movers\n\n")
	if len(r.Movers) > 0 {
		sb.WriteString("| Token | Symbol | Category | Samples | First | Last | Change | MaxDD |\n")
		sb.WriteString("|-------|--------|----------|---------|-------|------|--------|-------|\n")
		for _, m := range r.Movers {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %s | %s | %s | %.2f%% |\n",
				m.TokenID, m.Symbol, m.Status.DisplayName(), m.Samples,
				format.Price(m.FirstPrice), format.Price(m.LastPrice),
				format.Percentage(m.Change), m.MaxDrawdown))
		}
	} else {
		sb.WriteString("No archived samples available.\n")
	}
	sb.WriteString("\n")

	// Verification
	if r.Verification != nil {
		sb.WriteString("## Determinism\n\n")
		if r.Verification.Match {
			sb.WriteString(fmt.Sprintf("**Replay matched** over %d ticks.\n\n", r.Verification.TicksCompared))
		} else {
			sb.WriteString(fmt.Sprintf("**Replay diverged** after %d ticks: %d fields differ.\n\n",
				r.Verification.TicksCompared, r.Verification.Divergences))
		}
	}

	return sb.String()
}
