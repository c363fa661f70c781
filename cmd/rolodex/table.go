package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/codeGROOVE-dev/rolodex/pkg/person"
	"github.com/codeGROOVE-dev/rolodex/pkg/resolve"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

var resultHeaders = []string{"Name", "Status", "Score", "Org", "URL"}

var resultAligns = []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft}

func resultRow(q person.Query, res person.Result) []string {
	return []string{
		q.FullName(),
		string(res.Status),
		fmt.Sprintf("%.0f", res.Score),
		fmt.Sprintf("%.0f", res.OrgScore),
		res.URL,
	}
}

func resultTable(q person.Query, res person.Result) string {
	out := renderTable(resultHeaders, [][]string{resultRow(q, res)}, resultAligns)
	if res.ReviewReason != "" {
		out += "\nReason: " + res.ReviewReason
	}
	for _, alt := range res.Alternatives {
		out += "\nAlternative: " + alt
	}
	return out
}

func batchTable(rows []resolve.Row) string {
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, resultRow(row.Query, row.Result))
	}
	return renderTable(resultHeaders, cells, resultAligns)
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
