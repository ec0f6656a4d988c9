package altbc

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

var csvHeader = []string{"A", "B", "C", "AB", "BC", "angle_ABC", "weight", "pair"}

// WriteCSV writes the triplets in T as comma separated values, with a header
// line. Frame numbers are written as an extra first column only if the table
// spans more than one frame.
func (T *Table) WriteCSV(w io.Writer) error {
	multi := T.frames() > 1
	cw := csv.NewWriter(w)
	header := csvHeader
	if multi {
		header = append([]string{"frame"}, csvHeader...)
	}
	if err := cw.Write(header); err != nil {
		return newError(err.Error(), "WriteCSV", err)
	}
	record := make([]string, 0, len(header))
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for _, t := range T.Triplets {
		record = record[:0]
		if multi {
			record = append(record, strconv.Itoa(t.Frame))
		}
		record = append(record, strconv.Itoa(t.A), strconv.Itoa(t.B), strconv.Itoa(t.C),
			f(t.AB), f(t.BC), f(t.Angle), f(t.Weight), f(t.PairWeight))
		if err := cw.Write(record); err != nil {
			return newError(err.Error(), "WriteCSV", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return newError(err.Error(), "WriteCSV", err)
	}
	return nil
}

// WriteJSON writes the triplets in T as a JSON array.
func (T *Table) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	trip := T.Triplets
	if trip == nil {
		trip = []Triplet{}
	}
	if err := enc.Encode(trip); err != nil {
		return newError(err.Error(), "WriteJSON", err)
	}
	return nil
}

// frames returns the number of distinct frames in the table.
func (T *Table) frames() int {
	seen := make(map[int]bool)
	for _, t := range T.Triplets {
		seen[t.Frame] = true
	}
	return len(seen)
}
