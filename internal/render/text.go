package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"possales/internal/core"
	"possales/internal/report"
)

const (
	defaultBarWidth = 40
	barRune         = "█"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00CFCF"))
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C00"))
	footerStyle = lipgloss.NewStyle().Faint(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
)

// TextOptions controls the bar chart.
type TextOptions struct {
	// BarWidth is the width of the longest bar. Defaults to 40.
	BarWidth int
	// Color enables lipgloss styling. Disable for pipes and tests.
	Color bool
}

// Text draws one bar per bucket, or per bucket and category, scaled to the
// largest absolute total.
func Text(w io.Writer, s report.Summary, opts TextOptions) error {
	width := opts.BarWidth
	if width <= 0 {
		width = defaultBarWidth
	}
	style := func(st lipgloss.Style, text string) string {
		if !opts.Color {
			return text
		}
		return st.Render(text)
	}

	var b strings.Builder
	title := fmt.Sprintf("Sales by %s, %s to %s", s.Granularity,
		s.Start.Format(core.DateLayout), s.End.Format(core.DateLayout))
	if s.ByCategory {
		title += ", by category"
	}
	b.WriteString(style(headerStyle, title))
	b.WriteString("\n\n")

	if s.IsEmpty() {
		b.WriteString("No sales in range.\n")
	} else {
		peak := decimal.Zero
		for _, r := range s.Rows {
			if r.Total.Abs().GreaterThan(peak) {
				peak = r.Total.Abs()
			}
		}
		labelWidth := 0
		for _, r := range s.Rows {
			if n := len(rowLabel(s, r)); n > labelWidth {
				labelWidth = n
			}
		}
		for _, r := range s.Rows {
			label := fmt.Sprintf("%-*s", labelWidth, rowLabel(s, r))
			bar := strings.Repeat(barRune, barLength(r.Total, peak, width))
			fmt.Fprintf(&b, "%s  %s %s\n", style(labelStyle, label), style(barStyle, bar), r.Total.StringFixed(2))
		}
	}

	b.WriteString("\n")
	b.WriteString(style(footerStyle, fmt.Sprintf("Total %s across %d line items", s.Total().StringFixed(2), s.LineItems)))
	b.WriteString("\n")
	if s.Skipped > 0 {
		b.WriteString(style(warnStyle, fmt.Sprintf("%d line items with non-numeric totals were skipped", s.Skipped)))
		b.WriteString("\n")
	}
	if s.Excluded > 0 {
		b.WriteString(style(warnStyle, fmt.Sprintf("%d uncategorized line items were excluded", s.Excluded)))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func rowLabel(s report.Summary, r report.Row) string {
	label := core.BucketLabel(r.Bucket, s.Granularity)
	if s.ByCategory {
		label += "  " + r.Category
	}
	return label
}

func barLength(v, peak decimal.Decimal, width int) int {
	if peak.IsZero() {
		return 0
	}
	n := v.Abs().Mul(decimal.NewFromInt(int64(width))).Div(peak).Round(0).IntPart()
	if n == 0 && !v.IsZero() {
		n = 1
	}
	return int(n)
}
