package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SummaryRow is one label/value line of the end-of-run report.
type SummaryRow struct {
	Label string
	Value string
}

// RenderSummary lays rows out as an aligned two-column table framed by
// horizontal rules.
func RenderSummary(rows []SummaryRow) string {
	labelWidth, valueWidth := 0, 0
	for _, row := range rows {
		labelWidth = max(labelWidth, len(row.Label))
		valueWidth = max(valueWidth, len(row.Value))
	}

	rule := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, rule)
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s | %s",
			summaryLabelStyle.Render(fmt.Sprintf("%-*s", labelWidth, row.Label)),
			summaryValueStyle.Render(fmt.Sprintf("%-*s", valueWidth, row.Value))))
	}
	lines = append(lines, rule)
	return strings.Join(lines, "\n")
}

var (
	summaryLabelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	summaryValueStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
)
