// Package storage keeps a history of computations on disk. Each run gets a
// directory holding metadata.json, table.csv and graphic.json.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/compmath/internal/plot"
)

const (
	metadataFile = "metadata.json"
	tableFile    = "table.csv"
	graphicFile  = "graphic.json"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Method    string             `json:"method"`
	Timestamp time.Time          `json:"timestamp"`
	Params    json.RawMessage    `json:"params"`
	Result    json.RawMessage    `json:"result"`
	Iters     int                `json:"iters"`
	Converged bool               `json:"converged"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Record is one finished computation ready to be saved.
type Record struct {
	Kind      string
	Method    string
	Params    any
	Result    any
	Iters     int
	Converged bool
	Metrics   map[string]float64
	Header    []string
	Rows      [][]float64
	Graphic   *plot.Graphic
}

func (s *Store) Save(rec *Record) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%s_%d", rec.Kind, rec.Method, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	params, err := json.Marshal(rec.Params)
	if err != nil {
		return "", fmt.Errorf("storage: encode params: %w", err)
	}
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return "", fmt.Errorf("storage: encode result: %w", err)
	}

	meta := RunMetadata{
		ID:        runID,
		Kind:      rec.Kind,
		Method:    rec.Method,
		Timestamp: now,
		Params:    params,
		Result:    result,
		Iters:     rec.Iters,
		Converged: rec.Converged,
		Metrics:   rec.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	if err := writeTable(filepath.Join(runDir, tableFile), rec.Header, rec.Rows); err != nil {
		return "", err
	}

	if rec.Graphic != nil {
		if err := writeJSON(filepath.Join(runDir, graphicFile), rec.Graphic); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(path string, header []string, rows [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(header) > 0 {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTable(runID string) ([]string, [][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, tableFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return []string{}, [][]float64{}, nil
	}

	header := records[0]
	rows := make([][]float64, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		row := make([]float64, len(records[i]))
		for j, field := range records[i] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: %s line %d: %w", tableFile, i+1, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// LoadGraphic returns nil without error when the run saved no plot.
func (s *Store) LoadGraphic(runID string) (*plot.Graphic, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, graphicFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var g plot.Graphic
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

type ExportData struct {
	RunMetadata
	Header  []string      `json:"header"`
	Rows    [][]float64   `json:"rows"`
	Graphic *plot.Graphic `json:"graphic,omitempty"`
}

// ExportJSON writes a run with its table and plot as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	header, rows, err := s.LoadTable(runID)
	if err != nil {
		return err
	}
	g, err := s.LoadGraphic(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: *meta, Header: header, Rows: rows, Graphic: g})
}
