package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one report column. A zero width leaves the column
// unbounded.
type column struct {
	title string
	align text.Align
	width int
}

var (
	groupColumns = []column{
		{title: "Folder"},
		{title: "Images", align: text.AlignRight},
		{title: "First image", width: 40},
		{title: "Fingerprint"},
		{title: "Other members", width: 60},
	}
	warningColumns = []column{
		{title: "File", width: 40},
		{title: "Problem", width: 60},
	}
)

// renderTable lays rows out under cols. Short rows are padded and extra
// cells are dropped.
func renderTable(cols []column, rows [][]string) string {
	if len(cols) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		header[i] = c.title
		align := c.align
		if align == text.AlignDefault {
			align = text.AlignLeft
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			WidthMax:    c.width,
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(cols))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}
