package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the mover table as CSV string.
func RenderCSV(movers []MoverRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("token_id,symbol,status,samples,first_price,last_price,change_pct,max_drawdown_pct\n")

	// Rows
	for _, m := range movers {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%d,%.10f,%.10f,%.6f,%.6f\n",
			m.TokenID,
			m.Symbol,
			m.Status,
			m.Samples,
			m.FirstPrice,
			m.LastPrice,
			m.Change,
			m.MaxDrawdown,
		))
	}

	return sb.String()
}
