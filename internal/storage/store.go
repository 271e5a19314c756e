package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/xid"

	"github.com/san-kum/pidsim/internal/config"
	"github.com/san-kum/pidsim/internal/loop"
	"github.com/san-kum/pidsim/internal/numjson"
	"github.com/san-kum/pidsim/internal/pid"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

var samplesHeader = []string{"step", "time", "error", "correction", "state", "p", "i", "d"}

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
	ID        string                   `json:"id"`
	Plant     string                   `json:"plant"`
	Preset    string                   `json:"preset,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
	Dt        float64                  `json:"dt"`
	Steps     int                      `json:"steps"`
	Origin    float64                  `json:"origin"`
	Target    float64                  `json:"target"`
	Gains     pid.Gains                `json:"gains"`
	Metrics   map[string]numjson.Float `json:"metrics"`
}

// MetricValues returns the stored metrics as plain floats.
func (m *RunMetadata) MetricValues() map[string]float64 {
	out := make(map[string]float64, len(m.Metrics))
	for k, v := range m.Metrics {
		out[k] = float64(v)
	}
	return out
}

func MetadataFor(cfg *config.Config) RunMetadata {
	return RunMetadata{
		Plant:  cfg.Plant,
		Dt:     cfg.Dt,
		Steps:  cfg.Steps,
		Origin: cfg.Origin,
		Target: cfg.Init.Target,
		Gains:  cfg.Gains,
	}
}

// Save writes a new run directory and returns its id. terms may be nil or
// hold one controller snapshot per sample. Nothing is left on disk when
// Save fails.
func (s *Store) Save(meta RunMetadata, result *loop.Result, terms []pid.State) (string, error) {
	meta.ID = xid.New().String()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Metrics = numjson.Map(result.Metrics)

	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	var samplesCSV bytes.Buffer
	if err := writeSamples(&samplesCSV, result.Samples, terms); err != nil {
		return "", fmt.Errorf("encode samples: %w", err)
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Join(runDir, metadataFile), append(metaJSON, '\n'), 0644); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, samplesFile), samplesCSV.Bytes(), 0644); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}

	return meta.ID, nil
}

func writeSamples(w io.Writer, samples []loop.Sample, terms []pid.State) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(samplesHeader); err != nil {
		return err
	}

	for i, smp := range samples {
		var st pid.State
		if i < len(terms) {
			st = terms[i]
		}
		row := []string{
			strconv.Itoa(smp.Step),
			formatFloat(smp.Time),
			formatFloat(smp.Error),
			formatFloat(smp.Correction),
			formatFloat(smp.State),
			formatFloat(st.Proportional),
			formatFloat(st.Integral),
			formatFloat(st.Derivative),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// List returns every readable run, newest first. A missing base directory
// has no runs.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
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
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}

	return &meta, nil
}

// LoadSamples reads back the samples and controller terms of a run.
// Malformed rows are skipped.
func (s *Store) LoadSamples(runID string) ([]loop.Sample, []pid.State, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []loop.Sample{}, []pid.State{}, nil
	}

	samples := make([]loop.Sample, 0, len(records)-1)
	terms := make([]pid.State, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) != len(samplesHeader) {
			continue
		}

		step, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		vals := make([]float64, len(record)-1)
		ok := true
		for j := range vals {
			vals[j], err = strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		samples = append(samples, loop.Sample{
			Step:       step,
			Time:       vals[0],
			Error:      vals[1],
			Correction: vals[2],
			State:      vals[3],
		})
		terms = append(terms, pid.State{
			Proportional:  vals[4],
			Integral:      vals[5],
			Derivative:    vals[6],
			PreviousTime:  vals[0],
			PreviousError: vals[1],
		})
	}

	return samples, terms, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
