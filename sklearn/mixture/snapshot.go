package mixture

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/YuminosukeSato/gmmtutor/core/model"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

// Snapshot is a serializable copy of an EM state.
type Snapshot struct {
	Iteration     int       `json:"iteration"`
	MaxIter       int       `json:"max_iter"`
	LogLikelihood float64   `json:"log_likelihood"`
	History       []float64 `json:"history"`
	Params        Params    `json:"params"`
	Assignments   []int     `json:"assignments,omitempty"`
}

// Snapshot captures the current state. Assignments are included only when
// withAssignments is set since they grow with the dataset.
func (em *EM) Snapshot(withAssignments bool) Snapshot {
	s := Snapshot{
		Iteration:     em.iteration,
		MaxIter:       em.maxIter,
		LogLikelihood: em.LogLikelihood(),
		History:       em.History(),
		Params:        em.Params(),
	}
	if withAssignments {
		s.Assignments = em.Assignments()
	}
	return s
}

// WriteJSON writes s as indented JSON.
func (s Snapshot) WriteJSON(w io.Writer) error {
	return model.SaveJSON(s, w)
}

// ReadSnapshot decodes a snapshot written by WriteJSON.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := model.LoadJSON(&s, r); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

func isGob(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gob")
}

// SaveFile writes s to path, as gob when the extension is .gob and as JSON
// otherwise.
func (s Snapshot) SaveFile(path string) error {
	if isGob(path) {
		return model.SaveModel(s, path)
	}
	return model.SaveJSONFile(s, path)
}

// LoadSnapshotFile reads a snapshot written by SaveFile.
func LoadSnapshotFile(path string) (Snapshot, error) {
	var s Snapshot
	if isGob(path) {
		if err := model.LoadModel(&s, path); err != nil {
			return Snapshot{}, err
		}
		return s, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return ReadSnapshot(f)
}
