package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/pidsim/internal/loop"
	"github.com/san-kum/pidsim/internal/numjson"
)

type ExportData struct {
	RunMetadata
	Samples []ExportSample `json:"samples"`
}

// ExportSample is a loop.Sample whose values may be NaN or infinite.
type ExportSample struct {
	Step       int   `json:"step"`
	Time       numjson.Float `json:"time"`
	Error      numjson.Float `json:"error"`
	Correction numjson.Float `json:"correction"`
	State      numjson.Float `json:"state"`
}

func exportSamples(samples []loop.Sample) []ExportSample {
	out := make([]ExportSample, len(samples))
	for i, s := range samples {
		out[i] = ExportSample{
			Step:       s.Step,
			Time:       numjson.Float(s.Time),
			Error:      numjson.Float(s.Error),
			Correction: numjson.Float(s.Correction),
			State:      numjson.Float(s.State),
		}
	}
	return out
}

// ExportJSON writes a run's metadata and samples as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}

	samples, _, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		RunMetadata: *meta,
		Samples:     exportSamples(samples),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
