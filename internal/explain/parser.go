package explain

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parsed is the parse result for one instance. A per-instance parse failure
// is carried in Err so the rest of the batch keeps going; the instance is
// never silently dropped.
type Parsed struct {
	Instance Instance
	Delta    float64
	Err      error
}

// jsonEntry mirrors one attribution entry of the analysis job's JSON Lines
// output: a single-element score array plus a positional descriptor. Text
// explanations carry partial_text/start_idx, tabular ones feature_name.
type jsonEntry struct {
	Attribution []float64 `json:"attribution"`
	Description *struct {
		PartialText *string `json:"partial_text"`
		FeatureName *string `json:"feature_name"`
		StartIdx    *int    `json:"start_idx"`
	} `json:"description"`
}

type jsonRecord struct {
	Attributions []jsonEntry `json:"attributions"`
	Delta        *float64    `json:"delta"`
}

// ParseJSONLines reads one explanation record per line and returns the parse
// result for every instance, in payload order. Only read failures abort the
// whole parse.
func ParseJSONLines(r io.Reader) ([]Parsed, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var out []Parsed
	idx := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		out = append(out, parseRecord(idx, []byte(line)))
		idx++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read explanation payload: %w", err)
	}
	return out, nil
}

func parseRecord(idx int, line []byte) Parsed {
	var rec jsonRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return Parsed{Err: fmt.Errorf("instance %d: decode explanation record: %w", idx, err)}
	}
	if len(rec.Attributions) == 0 {
		return Parsed{Err: &MalformedRecordError{Index: idx, Field: "attributions"}}
	}

	inst := Instance{
		Units:        make([]string, 0, len(rec.Attributions)),
		Attributions: make([]float64, 0, len(rec.Attributions)),
	}
	for _, e := range rec.Attributions {
		// Every entry must carry exactly one numeric score.
		if len(e.Attribution) != 1 {
			return Parsed{Err: &MalformedRecordError{Index: idx, Field: "attribution"}}
		}
		unit, ok := descriptor(e)
		if !ok {
			return Parsed{Err: &MalformedRecordError{Index: idx, Field: "description"}}
		}
		inst.Units = append(inst.Units, unit)
		inst.Attributions = append(inst.Attributions, e.Attribution[0])
	}

	p := Parsed{Instance: inst}
	if rec.Delta != nil {
		p.Delta = *rec.Delta
	}
	return p
}

func descriptor(e jsonEntry) (string, bool) {
	if e.Description == nil {
		return "", false
	}
	if e.Description.PartialText != nil {
		return *e.Description.PartialText, true
	}
	if e.Description.FeatureName != nil {
		return *e.Description.FeatureName, true
	}
	return "", false
}

// ParseCSV reads a tabular attribution table: the header row names the
// features, every following row holds one instance's attributions in feature
// order.
func ParseCSV(r io.Reader) ([]Parsed, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // shape checked per instance below

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("attribution table is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read attribution table header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var out []Parsed
	idx := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read attribution table row: %w", err)
		}
		out = append(out, parseRow(idx, header, row))
		idx++
	}
	return out, nil
}

func parseRow(idx int, header, row []string) Parsed {
	if len(row) != len(header) {
		return Parsed{Err: &ShapeMismatchError{Index: idx, Units: len(header), Attributions: len(row)}}
	}

	inst := Instance{
		Units:        make([]string, len(header)),
		Attributions: make([]float64, len(header)),
	}
	copy(inst.Units, header)
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			return Parsed{Err: &MalformedRecordError{Index: idx, Field: header[i]}}
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return Parsed{Err: &MalformedRecordError{Index: idx, Field: header[i]}}
		}
		inst.Attributions[i] = v
	}
	return Parsed{Instance: inst}
}
