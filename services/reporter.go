package services

import (
	"fmt"
	"io"
	"strings"

	"seatmap-scraper/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// PrintReport writes the availability summary of a run to w
func PrintReport(w io.Writer, run *models.Run) {
	border := strings.Repeat("═", 55)

	fmt.Fprintf(w, "\n╔%s╗\n", border)
	fmt.Fprintf(w, "║%s║\n", center("SEAT AVAILABILITY SUMMARY", 55))
	fmt.Fprintf(w, "╚%s╝\n", border)

	if run.Result == nil {
		fmt.Fprintln(w, "  No results obtained")
		return
	}
	summary := run.Result.Summary

	overview := newTable(w, "OVERVIEW")
	overview.AppendRows([]table.Row{
		{"Run", run.ID},
		{"Event", truncate(run.EventKey(), 40)},
		{"Captured responses", len(run.Captures)},
		{"Distinct URLs", run.DistinctURLs},
		{"Total seats found", summary.TotalSeats},
		{"Available", summary.AvailableSeats},
		{"Unavailable", summary.UnavailableSeats},
	})
	overview.Render()

	for _, a := range run.Result.Availability {
		if a.EventInfo.EventName == nil && a.EventInfo.Venue == nil {
			continue
		}
		fmt.Fprintf(w, "\n  %s @ %s  %s\n",
			models.Deref(a.EventInfo.EventName, "?"),
			models.Deref(a.EventInfo.Venue, "?"),
			models.Deref(a.EventInfo.Date, ""))
	}

	if len(summary.PriceRanges) > 0 {
		prices := newTable(w, "PRICE RANGES")
		prices.AppendHeader(table.Row{"Price", "Seats"})
		for _, pr := range summary.PriceRanges {
			label := "Unknown"
			if pr.Price != nil {
				label = pr.Price.String()
				if pr.Price.IsNumeric() {
					label = "$" + label
				}
			}
			prices.AppendRow(table.Row{label, pr.Count})
		}
		prices.Render()
	}

	if len(summary.Sections) > 0 {
		sections := newTable(w, "SECTIONS")
		sections.AppendHeader(table.Row{"Section", "Seats", ""})
		for _, sc := range summary.Sections {
			sections.AppendRow(table.Row{truncate(sc.Name, 25), sc.Count, strings.Repeat("▓", min(sc.Count, 30))})
		}
		sections.Render()
	}

	fmt.Fprintf(w, "\n%s\n\n", border)
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleLight)
	t.Style().Title.Align = text.AlignLeft
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	return t
}

func center(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	pad := (width - len(runes)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(runes)-pad)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
