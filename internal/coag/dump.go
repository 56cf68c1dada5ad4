package coag

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// WriteKernel writes the kernel as text: one tab-separated row per bin of
// population A for the 2D form, one value per line for the 1D form.
func (c *Coagulation) WriteKernel(w io.Writer) error {
	if !c.Populated() {
		return ErrNotPopulated
	}

	bw := bufio.NewWriter(w)
	if c.kernel1D != nil {
		for _, v := range c.kernel1D {
			bw.WriteString(formatValue(v))
			bw.WriteByte('\n')
		}
		return bw.Flush()
	}

	rows, cols := c.kernel.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if j > 0 {
				bw.WriteByte('\t')
			}
			bw.WriteString(formatValue(c.kernel.At(i, j)))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// PrintKernel writes the kernel to the file at path, replacing it.
func (c *Coagulation) PrintKernel(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("coag: writing kernel: %w", err)
	}
	if err := c.WriteKernel(file); err != nil {
		file.Close()
		return fmt.Errorf("coag: writing kernel to %s: %w", path, err)
	}
	return file.Close()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'e', 6, 64)
}
