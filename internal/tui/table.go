package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gonum.org/v1/gonum/mat"
)

// KernelRow is one line of a kernel summary.
type KernelRow struct {
	Label string
	Min   float64
	Max   float64
	Mean  float64
}

// KernelTable renders min, max and mean of one or more kernels.
func KernelTable(rows ...KernelRow) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorder).
		Headers("", "MIN [cm3/s]", "MAX [cm3/s]", "MEAN [cm3/s]").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeadStyle
			case col == 0:
				return tableFirstStyle
			}
			return cellStyle
		})
	for _, r := range rows {
		t.Row(r.Label, sci(r.Min), sci(r.Max), sci(r.Mean))
	}
	return t.Render()
}

// MatrixTable renders a square matrix with one labelled row and column per
// bin. Wider matrices are cut to their first limit bins.
func MatrixTable(m mat.Matrix, labels []string, limit int) string {
	rows, cols := m.Dims()
	rows, cols = min(rows, limit), min(cols, limit)

	headers := make([]string, cols+1)
	for j := 0; j < cols; j++ {
		headers[j+1] = label(labels, j)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorder).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeadStyle
			}
			if col == 0 {
				return tableFirstStyle
			}
			return cellStyle
		})
	for i := 0; i < rows; i++ {
		cells := make([]string, cols+1)
		cells[0] = label(labels, i)
		for j := 0; j < cols; j++ {
			cells[j+1] = fmt.Sprintf("%.2e", m.At(i, j))
		}
		t.Row(cells...)
	}
	return t.Render()
}

func label(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return fmt.Sprintf("%d", i)
}

func sci(v float64) string { return fmt.Sprintf("%.4e", v) }
