package cmd

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/comicmeta/cmi/pkg/anilist"
)

// renderCandidateTable renders search candidates for terminal selection.
func renderCandidateTable(candidates []anilist.Media) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	tw.AppendHeader(table.Row{"#", "Title", "Year", "Staff", "Genres", "Summary"})

	for i, c := range candidates {
		year := ""
		if c.Year > 0 {
			year = strconv.Itoa(c.Year)
		}

		tw.AppendRow(table.Row{
			i + 1,
			c.DisplayTitle(),
			year,
			truncate(c.StaffSummary(), 40),
			truncate(strings.Join(c.Genres, ", "), 40),
			truncate(c.Description, 80),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}

// truncate shortens s to at most max runes. Slicing on runes keeps
// multibyte titles and descriptions valid UTF-8.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
