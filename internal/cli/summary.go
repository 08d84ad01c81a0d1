package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/autoparts-catalog/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// RenderRunSummary renders the per-input report: extraction counters,
// validation counters and the reject histogram.
func RenderRunSummary(run model.Run) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s Source: %s\n", FolderIcon, run.Source)
	if run.Output != "" {
		fmt.Fprintf(&b, "  Output: %s\n", run.Output)
	}
	fmt.Fprintf(&b, "  Tables: %d found, %d processed, %d failed\n", run.Tables, run.Processed, run.Failed)
	fmt.Fprintf(&b, "\n%s Records:\n", ChartIcon)
	fmt.Fprintf(&b, "  • Total: %d\n", run.Total)
	b.WriteString("  • " + SuccessStyle.Render(fmt.Sprintf("Valid: %d", run.Valid)) + "\n")
	rejected := fmt.Sprintf("Rejected: %d", run.Rejected)
	if run.Rejected > 0 {
		rejected = WarningStyle.Render(rejected)
	}
	b.WriteString("  • " + rejected + "\n")

	if reasons := run.SortedReasons(); len(reasons) > 0 {
		b.WriteString("\nMissing fields:\n")
		b.WriteString(renderReasons(reasons))
	}

	if !run.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "\nTime taken: %s", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}

	return RenderBox("Catalog Run Complete", strings.TrimRight(b.String(), "\n"))
}

func renderReasons(reasons []model.ReasonCount) string {
	width := len("Reason")
	for _, r := range reasons {
		width = max(width, lipgloss.Width(r.Reason))
	}

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(
		TableCellStyle.Render(pad("Reason", width)) + "Rows"))
	b.WriteString("\n")
	for _, r := range reasons {
		b.WriteString(TableCellStyle.Render(pad(r.Reason, width)))
		fmt.Fprintf(&b, "%d\n", r.Count)
	}
	return b.String()
}

// RenderRunList renders stored runs one per line, newest first.
func RenderRunList(runs []model.Run) string {
	if len(runs) == 0 {
		return FormatInfo("No runs recorded yet")
	}

	var b strings.Builder
	b.WriteString(FormatTitle("Catalog Runs"))
	b.WriteString("\n")
	for _, run := range runs {
		status := SuccessStyle.Render(SuccessIcon)
		if run.Rejected > 0 {
			status = WarningStyle.Render("!")
		}
		fmt.Fprintf(&b, "%s %s  %s  %s\n",
			status,
			SubtleStyle.Render(run.StartedAt.Local().Format("2006-01-02 15:04")),
			BoldStyle.Render(run.Source),
			fmt.Sprintf("%d valid / %d rejected", run.Valid, run.Rejected),
		)
		b.WriteString(SubtleStyle.Render("    " + run.ID))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
