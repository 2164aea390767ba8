package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/rawbytedev/anyref/internal/bench"
)

const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
)

func render(w io.Writer, format string, report bench.Report) error {
	switch format {
	case OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case OutputFormatTable:
		renderTable(w, report)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderTable(w io.Writer, report bench.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Workload", "Ops", "Duration", "ns/op", "allocs/op", "Checksum"})
	for _, res := range report.Results {
		t.AppendRow(table.Row{
			res.Name,
			res.Ops,
			res.Duration.String(),
			fmt.Sprintf("%.2f", res.NsPerOp()),
			fmt.Sprintf("%.3f", res.AllocsPerOp()),
			res.Checksum,
		})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
}
