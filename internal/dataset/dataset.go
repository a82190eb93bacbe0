// Package dataset prepares raw CSV datasets for analysis jobs: loading,
// cleaning and deterministic train/validation/test splitting.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
)

// Dataset is a loaded CSV table with a named label column.
type Dataset struct {
	Headers []string
	Rows    [][]string

	labelIdx int
}

// Load reads a CSV dataset with a header row and locates the label column.
// Rows with a missing label or with any empty cell are dropped (the cleaning
// step the analysis service requires of its input).
func Load(r io.Reader, labelHeader string) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	headers, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("dataset is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	labelIdx := -1
	for i, h := range headers {
		if h == labelHeader {
			labelIdx = i
			break
		}
	}
	if labelIdx < 0 {
		return nil, fmt.Errorf("label column %q not found in header %v", labelHeader, headers)
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset row: %w", err)
		}
		if len(row) != len(headers) || !clean(row) {
			continue
		}
		rows = append(rows, row)
	}

	return &Dataset{Headers: headers, Rows: rows, labelIdx: labelIdx}, nil
}

func clean(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) == "" {
			return false
		}
	}
	return true
}

// Labels returns the ground-truth column as integers, aligned by row index.
func (d *Dataset) Labels() ([]int, error) {
	labels := make([]int, len(d.Rows))
	for i, row := range d.Rows {
		v, err := strconv.Atoi(strings.TrimSpace(row[d.labelIdx]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parse label %q: %w", i, row[d.labelIdx], err)
		}
		labels[i] = v
	}
	return labels, nil
}

// Split partitions the rows into train/validation/test datasets. trainFrac
// and validFrac must be positive and sum to less than 1; the remainder is
// the test split. The shuffle is seeded, so a given (dataset, seed) pair
// always produces the same partition.
func (d *Dataset) Split(trainFrac, validFrac float64, seed int64) (train, valid, test *Dataset, err error) {
	if trainFrac <= 0 || validFrac <= 0 || trainFrac+validFrac >= 1 {
		return nil, nil, nil, fmt.Errorf("invalid split fractions %v/%v", trainFrac, validFrac)
	}

	idx := make([]int, len(d.Rows))
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	nTrain := int(trainFrac * float64(len(idx)))
	nValid := int(validFrac * float64(len(idx)))

	pick := func(ids []int) *Dataset {
		rows := make([][]string, len(ids))
		for i, id := range ids {
			rows[i] = d.Rows[id]
		}
		return &Dataset{Headers: d.Headers, Rows: rows, labelIdx: d.labelIdx}
	}

	train = pick(idx[:nTrain])
	valid = pick(idx[nTrain : nTrain+nValid])
	test = pick(idx[nTrain+nValid:])
	return train, valid, test, nil
}

// Write serializes the dataset back to CSV, header first.
func (d *Dataset) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Headers); err != nil {
		return err
	}
	for _, row := range d.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
