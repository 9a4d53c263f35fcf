package export

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes one header row then one row per point, oldest first.
func WriteCSV(r Report, out io.Writer) error {
	w := csv.NewWriter(out)

	if err := w.Write(header); err != nil {
		return err
	}
	for _, p := range r.Points {
		if err := w.Write(record(p)); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
