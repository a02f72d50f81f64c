// Package finetune implements the fine-tuned intent strategy: a linear
// classifier over word n-gram features, trained offline and shipped as two
// JSON artifacts (optionally zstd-compressed) in a model directory or an
// R2 prefix.
package finetune

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/zstd"

	domerrors "github.com/garyellow/agri-advisor-go/internal/errors"
	"github.com/garyellow/agri-advisor-go/internal/intent"
)

// Artifact file names inside the model directory.
const (
	LabelMappingsFile = "label_mappings.json"
	ModelFile         = "model.json"
	compressedSuffix  = ".zst"
)

// Artifacts lists every file the strategy needs.
var Artifacts = []string{LabelMappingsFile, ModelFile}

// LabelMappings is the on-disk index ↔ intent table.
type LabelMappings struct {
	LabelToIntent map[string]string `json:"label_to_intent"`
	IntentToLabel map[string]int    `json:"intent_to_label"`
}

// Labels validates the mapping and returns labels ordered by index.
// The two tables must mirror each other and indices must be dense from 0.
func (m LabelMappings) Labels() ([]intent.Label, error) {
	n := len(m.LabelToIntent)
	if n == 0 {
		return nil, errors.New("label_to_intent is empty")
	}
	if len(m.IntentToLabel) != n {
		return nil, fmt.Errorf("label_to_intent has %d entries but intent_to_label has %d", n, len(m.IntentToLabel))
	}

	labels := make([]intent.Label, n)
	for i := range n {
		name, ok := m.LabelToIntent[strconv.Itoa(i)]
		if !ok {
			return nil, fmt.Errorf("label indices are not dense: %d is missing", i)
		}
		label, ok := intent.Parse(name)
		if !ok || string(label) != name {
			return nil, fmt.Errorf("%w: %q at index %d", domerrors.ErrUnknownIntent, name, i)
		}
		back, ok := m.IntentToLabel[name]
		if !ok || back != i {
			return nil, fmt.Errorf("intent_to_label[%q] does not mirror index %d", name, i)
		}
		labels[i] = label
	}
	return labels, nil
}

// ModelWeights is the serialized linear model.
type ModelWeights struct {
	Vocabulary map[string]int `json:"vocabulary"`
	Weights    [][]float64    `json:"weights"`
	Bias       []float64      `json:"bias"`
	NgramMax   int            `json:"ngram_max"`
	Lowercase  bool           `json:"lowercase"`
}

// Validate checks shapes against the number of labels.
func (w ModelWeights) Validate(numLabels int) error {
	if len(w.Vocabulary) == 0 {
		return errors.New("vocabulary is empty")
	}
	if w.NgramMax < 1 {
		return fmt.Errorf("ngram_max must be at least 1, got %d", w.NgramMax)
	}
	if len(w.Weights) != numLabels {
		return fmt.Errorf("weights has %d rows, want %d (one per label)", len(w.Weights), numLabels)
	}
	if len(w.Bias) != numLabels {
		return fmt.Errorf("bias has %d entries, want %d", len(w.Bias), numLabels)
	}
	cols := len(w.Vocabulary)
	for i, row := range w.Weights {
		if len(row) != cols {
			return fmt.Errorf("weights row %d has %d columns, want %d", i, len(row), cols)
		}
	}
	for tok, col := range w.Vocabulary {
		if col < 0 || col >= cols {
			return fmt.Errorf("vocabulary[%q] = %d is out of range", tok, col)
		}
	}
	return nil
}

// artifactPath resolves name inside dir, preferring the plain file over
// its .zst twin.
func artifactPath(dir, name string) (string, error) {
	plain := filepath.Join(dir, name)
	if _, err := os.Stat(plain); err == nil {
		return plain, nil
	}
	packed := plain + compressedSuffix
	if _, err := os.Stat(packed); err == nil {
		return packed, nil
	}
	return "", &domerrors.ArtifactError{Path: plain, Err: domerrors.ErrNotFound}
}

type zstdReadCloser struct {
	io.ReadCloser
	file *os.File
}

func (z zstdReadCloser) Close() error {
	z.ReadCloser.Close()
	return z.file.Close()
}

func openArtifact(dir, name string) (io.ReadCloser, string, error) {
	path, err := artifactPath(dir, name)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, path, &domerrors.ArtifactError{Path: path, Err: err}
	}
	if filepath.Ext(path) != compressedSuffix {
		return f, path, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, path, &domerrors.ArtifactError{Path: path, Err: err}
	}
	return zstdReadCloser{ReadCloser: dec.IOReadCloser(), file: f}, path, nil
}

func decodeArtifact(dir, name string, v any) error {
	r, path, err := openArtifact(dir, name)
	if err != nil {
		return err
	}
	defer r.Close()
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return &domerrors.ArtifactError{Path: path, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// LoadModel reads and validates both artifacts from dir.
func LoadModel(dir string) (*Model, error) {
	var mappings LabelMappings
	if err := decodeArtifact(dir, LabelMappingsFile, &mappings); err != nil {
		return nil, err
	}
	labels, err := mappings.Labels()
	if err != nil {
		return nil, &domerrors.ArtifactError{Path: filepath.Join(dir, LabelMappingsFile), Err: err}
	}

	var weights ModelWeights
	if err := decodeArtifact(dir, ModelFile, &weights); err != nil {
		return nil, err
	}
	if err := weights.Validate(len(labels)); err != nil {
		return nil, &domerrors.ArtifactError{Path: filepath.Join(dir, ModelFile), Err: err}
	}
	return newModel(labels, weights), nil
}
