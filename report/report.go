// Package report prints a sized network.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"ductsize/fluid"
	"ductsize/model"
)

// Write renders n in the given format: "json", "text" for plain ASCII tables,
// or box-drawn tables for anything else.
func Write(w io.Writer, n *model.Network, format string) error {
	switch format {
	case "json":
		return WriteJSON(w, n)
	case "text":
		return WriteTable(w, n, table.StyleDefault)
	}
	return WriteTable(w, n, table.StyleLight)
}

// WriteTable prints one row per fitting, then each diffuser's total loss.
func WriteTable(w io.Writer, n *model.Network, style table.Style) error {
	if n.Title != "" {
		_, _ = fmt.Fprintln(w, n.Title)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(style)
	t.AppendHeader(table.Row{"ID", "Fitting", "Velocity", "Q", "DeltaP", "Diameter",
		"Main Dia", "Branch Dia", "DeltaP Main", "DeltaP Branch"})
	for _, f := range n.Fittings {
		row := table.Row{
			f.ID,
			string(f.Kind),
			fmt.Sprintf("%.3f", velocity(f)),
			fmt.Sprintf("%.1f", f.Flow),
			fmt.Sprintf("%.3f", f.PressureDrop),
			fmt.Sprintf("%.3f", f.Size),
		}
		if f.Kind == model.Tee {
			row = append(row,
				fmt.Sprintf("%.3f", f.SizeMain),
				fmt.Sprintf("%.3f", f.SizeBranch),
				fmt.Sprintf("%.4f", f.PressureDropMain),
				fmt.Sprintf("%.4f", f.PressureDropBranch))
		} else {
			row = append(row, "", "", "", "")
		}
		t.AppendRow(row)
	}
	t.Render()

	d := table.NewWriter()
	d.SetOutputMirror(w)
	d.SetStyle(style)
	d.AppendHeader(table.Row{"Diffuser", "Q", "Fan Distance", "Total DeltaP"})
	for _, f := range n.Fittings {
		if f.Kind != model.Diffuser {
			continue
		}
		d.AppendRow(table.Row{
			f.ID,
			fmt.Sprintf("%.1f", f.Flow),
			fmt.Sprintf("%.1f", f.FanDistance),
			fmt.Sprintf("%.4f", f.DiffuserPressureSum),
		})
	}
	d.Render()
	return nil
}

func WriteJSON(w io.Writer, n *model.Network) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(n)
}

// WriteFile writes the report to path, replacing any previous file.
func WriteFile(path string, n *model.Network, format string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(file, n, format); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// velocity in ft/min through the reported diameter, 0 when unsized.
func velocity(f *model.Fitting) float64 {
	if !(f.Size > 0) || !(f.Flow > 0) {
		return 0
	}
	return fluid.Velocity(f.Flow, f.Size)
}
