package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/meltforce/blockplan/internal/plan"
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true)
	styleDim    = lipgloss.NewStyle().Faint(true)
)

const colGap = 2

// renderTable writes an aligned table with a header separator line. Widths are
// measured on visible characters so styled cells line up.
func renderTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style *lipgloss.Style) {
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if style != nil {
				cell = style.Render(cell)
			}
			b.WriteString(cell)
			if i < len(headers)-1 {
				b.WriteString(strings.Repeat(" ", pad+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, &styleHeader)
	sep := make([]string, len(widths))
	for i, n := range widths {
		sep[i] = strings.Repeat("─", n)
	}
	writeRow(sep, &styleDim)
	for _, row := range rows {
		writeRow(row, nil)
	}
	io.WriteString(w, b.String())
}

// renderWeek prints one line per day with its blocks and the day load,
// followed by the week total.
func renderWeek(w io.Writer, week plan.Week) {
	summary := plan.Summarize(week)
	rows := make([][]string, 0, len(plan.Days))
	for i, name := range plan.Days {
		day := week[name]
		blocks := make([]string, 0, len(day.Blocks))
		for _, b := range day.Blocks {
			if day.IsSpecial() {
				blocks = append(blocks, b.Code)
				continue
			}
			blocks = append(blocks, fmt.Sprintf("%s %d/%d'", b.Code, b.RPE, b.Duration))
		}
		ds := summary.Days[i]
		rows = append(rows, []string{
			name.Label(),
			strings.Join(blocks, ", "),
			day.Intensity,
			fmt.Sprintf("%d'", ds.Duration),
			fmt.Sprint(ds.Load),
		})
	}
	renderTable(w, []string{"Day", "Blocks", "Intensity", "Time", "Load"}, rows)
	fmt.Fprintf(w, "Week load: %d\n", summary.WeekLoad)
}
