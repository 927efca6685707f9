package impact

import (
	"fmt"
	"strings"

	"github.com/memograph/memograph-go/internal/models"
	"github.com/memograph/memograph-go/internal/risk"
)

// FormatImpactSummary renders the short text block injected into assistant
// context. Downstream layers parse these lines; keep the structure stable.
func FormatImpactSummary(result *models.ImpactResult) string {
	var sb strings.Builder

	target := result.File
	if result.Symbol != nil {
		target = fmt.Sprintf("%s:%s", result.File, *result.Symbol)
	}
	level := risk.Level(result.RiskLevel)
	sb.WriteString(fmt.Sprintf("[%s] Impact: %s — %s (%.0f)\n", level.Glyph(), target, result.RiskLevel, result.RiskScore))

	sb.WriteString(fmt.Sprintf("Callers: %d direct, %d transitive\n", len(result.DirectCallers), len(result.TransitiveCallers)))

	if len(result.DirectCallers) > 0 {
		top := result.DirectCallers
		if len(top) > 3 {
			top = top[:3]
		}
		names := make([]string, 0, len(top))
		for _, c := range top {
			names = append(names, fmt.Sprintf("%s:%s", c.File, c.Symbol))
		}
		sb.WriteString(fmt.Sprintf("Top callers: %s\n", strings.Join(names, ", ")))
	}

	if len(result.AffectedTests) == 0 {
		sb.WriteString("Tests: NONE — no test coverage found\n")
	} else {
		sb.WriteString(fmt.Sprintf("Tests: %d covering\n", len(result.AffectedTests)))
	}

	return sb.String()
}
