// Package report renders analysis results to the terminal and to files.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"langagent/agents"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 2)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	lowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
)

// maxListed bounds competitors and trends shown on the console;
// the full lists are still written to the output file.
const maxListed = 5

// RenderConsole writes a human-readable summary of the analysis to w.
func RenderConsole(w io.Writer, state *agents.State) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("MARKET ANALYSIS REPORT: %s", strings.ToUpper(state.TargetCompany))))
	fmt.Fprintln(w)
	printField(w, "Generated", state.AnalyzedAt.Format("2006-01-02 15:04:05"))
	printField(w, "Model", state.Model)
	printField(w, "Confidence", fmt.Sprintf("%.1f/10", state.ConfidenceScore))

	fmt.Fprintln(w, sectionStyle.Render("INDUSTRY"))
	if state.Industry != "" {
		fmt.Fprintln(w, valueStyle.Render("  "+state.Industry))
	} else {
		fmt.Fprintln(w, valueStyle.Render("  Not identified"))
	}

	fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf("COMPETITORS (%d identified)", len(state.Competitors))))
	for i, comp := range state.Competitors {
		if i == maxListed {
			break
		}
		fmt.Fprintf(w, "  %d. %s (%s threat)\n", i+1, valueStyle.Render(comp.Name), threatStyle(comp.ThreatLevel).Render(comp.ThreatLevel))
	}

	if pos := state.MarketPosition; pos != nil {
		fmt.Fprintln(w, sectionStyle.Render("MARKET POSITION"))
		printField(w, "  Position", pos.Position)
		printField(w, "  Market share", pos.MarketShare)
	}

	fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf("KEY TRENDS (%d)", len(state.MarketTrends))))
	for i, trend := range state.MarketTrends {
		if i == maxListed {
			break
		}
		fmt.Fprintf(w, "  - %s (%s impact)\n", valueStyle.Render(trend.Trend), threatStyle(trend.Impact).Render(trend.Impact))
	}

	if state.FinalReport != "" {
		fmt.Fprintln(w, sectionStyle.Render("EXECUTIVE SUMMARY"))
		fmt.Fprintln(w, valueStyle.Render(indent(preview(state.FinalReport, 500), "  ")))
	}
}

func printField(w io.Writer, label, value string) {
	if value == "" {
		value = "unknown"
	}
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

func threatStyle(level string) lipgloss.Style {
	switch strings.ToLower(level) {
	case "high":
		return highStyle
	case "medium":
		return mediumStyle
	case "low":
		return lowStyle
	default:
		return valueStyle
	}
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
