package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
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

type RunMetadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Prefix    string    `json:"prefix"`
	Start     int       `json:"start"`
	End       int       `json:"end"`
	Step      int       `json:"step"`
	Field     string    `json:"field"`
	Axis      string    `json:"axis"`
	Colormap  string    `json:"colormap"`
	DPI       int       `json:"dpi"`
	OutputDir string    `json:"output_dir"`
	Rendered  int       `json:"rendered"`
	Failed    int       `json:"failed"`
	Elapsed   float64   `json:"elapsed_seconds"`
}

// SliceRecord is one rendered snapshot.
type SliceRecord struct {
	Index  int
	Time   float64
	Min    float64
	Max    float64
	Mean   float64
	Std    float64
	Output string
}

var sliceHeader = []string{"index", "time", "min", "max", "mean", "std", "output"}

func (s *Store) Save(meta RunMetadata, records []SliceRecord) (string, error) {
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Field, time.Now().UnixNano())
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "slices.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(sliceHeader); err != nil {
		return "", err
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Index),
			strconv.FormatFloat(r.Time, 'g', -1, 64),
			strconv.FormatFloat(r.Min, 'g', -1, 64),
			strconv.FormatFloat(r.Max, 'g', -1, 64),
			strconv.FormatFloat(r.Mean, 'g', -1, 64),
			strconv.FormatFloat(r.Std, 'g', -1, 64),
			r.Output,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	ctx := context.Background()
	ix, err := OpenIndex(ctx, s.baseDir)
	if err != nil {
		return "", err
	}
	defer ix.Close()
	if err := ix.Record(ctx, meta, records); err != nil {
		return "", fmt.Errorf("index run %s: %w", meta.ID, err)
	}

	return meta.ID, nil
}

// Find returns the indexed runs of field, oldest first.
func (s *Store) Find(ctx context.Context, field string) ([]RunMetadata, error) {
	if _, err := os.Stat(filepath.Join(s.baseDir, indexFile)); os.IsNotExist(err) {
		return []RunMetadata{}, nil
	}
	ix, err := OpenIndex(ctx, s.baseDir)
	if err != nil {
		return nil, err
	}
	defer ix.Close()
	return ix.Runs(ctx, field)
}

// Range returns the value range over all slices of a run, from the index.
func (s *Store) Range(ctx context.Context, runID string) (lo, hi float64, err error) {
	if _, err := os.Stat(filepath.Join(s.baseDir, indexFile)); os.IsNotExist(err) {
		return 0, 0, fmt.Errorf("run %s: no index in %s", runID, s.baseDir)
	}
	ix, err := OpenIndex(ctx, s.baseDir)
	if err != nil {
		return 0, 0, err
	}
	defer ix.Close()
	return ix.Range(ctx, runID)
}

// List returns stored runs, oldest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSlices(runID string) ([]SliceRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "slices.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []SliceRecord{}, nil
	}

	records := make([]SliceRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < len(sliceHeader) {
			continue
		}
		idx, err := strconv.Atoi(row[0])
		if err != nil {
			continue
		}
		var vals [5]float64
		ok := true
		for i := range vals {
			if vals[i], err = strconv.ParseFloat(row[i+1], 64); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		records = append(records, SliceRecord{
			Index:  idx,
			Time:   vals[0],
			Min:    vals[1],
			Max:    vals[2],
			Mean:   vals[3],
			Std:    vals[4],
			Output: row[6],
		})
	}

	return records, nil
}
