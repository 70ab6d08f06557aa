package model

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

func TestBaseEstimator(t *testing.T) {
	var e BaseEstimator
	if e.IsFitted() {
		t.Fatal("zero value should not be fitted")
	}
	err := e.RequireFitted("GaussianMixture", "Predict")
	var nfe *errors.NotFittedError
	if !errors.As(err, &nfe) {
		t.Fatalf("expected NotFittedError, got %v", err)
	}

	e.SetFitted()
	if e.State() != Fitted || e.State().String() != "fitted" {
		t.Errorf("state = %v, want fitted", e.State())
	}
	if err := e.RequireFitted("GaussianMixture", "Predict"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	e.Reset()
	if e.IsFitted() {
		t.Error("Reset should clear the fitted state")
	}
}

func sampleWeights() *MixtureWeights {
	return &MixtureWeights{
		ModelType:            "GaussianMixture",
		Version:              "1.0.0",
		Weights:              []float64{0.4, 0.6},
		Means:                [][2]float64{{-2, 0}, {2, 0}},
		Covariances:          [][2][2]float64{{{0.5, 0}, {0, 2}}, {{0.5, 0.1}, {0.1, 2}}},
		LogLikelihoodHistory: []float64{-900, -850.5},
		Hyperparameters:      map[string]interface{}{"n_components": 2, "init_method": "kmeans"},
		IsFitted:             true,
	}
}

func TestMixtureWeights_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*MixtureWeights)
		wantErr bool
	}{
		{"valid", func(*MixtureWeights) {}, false},
		{"missing type", func(w *MixtureWeights) { w.ModelType = "" }, true},
		{"missing version", func(w *MixtureWeights) { w.Version = "" }, true},
		{"fitted without weights", func(w *MixtureWeights) {
			w.Weights, w.Means, w.Covariances = nil, nil, nil
		}, true},
		{"unfitted with weights", func(w *MixtureWeights) { w.IsFitted = false }, true},
		{"means length", func(w *MixtureWeights) { w.Means = w.Means[:1] }, true},
		{"covariances length", func(w *MixtureWeights) { w.Covariances = nil }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := sampleWeights()
			tt.mutate(w)
			if err := w.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMixtureWeights_JSONRoundTrip(t *testing.T) {
	w := sampleWeights()
	data, err := w.ToJSON()
	if err != nil {
		t.Fatal(err)
	}

	var got MixtureWeights
	if err := got.FromJSON(data); err != nil {
		t.Fatal(err)
	}
	if got.Covariances[1][0][1] != 0.1 || got.Means[0][0] != -2 {
		t.Errorf("round trip lost values: %+v", got)
	}
	// JSON numbers decode as float64
	if got.Hyperparameters["n_components"] != 2.0 {
		t.Errorf("n_components = %v", got.Hyperparameters["n_components"])
	}
}

func TestMixtureWeights_Clone(t *testing.T) {
	w := sampleWeights()
	c := w.Clone()
	c.Weights[0] = 99
	c.Means[0][0] = 99
	c.Hyperparameters["n_components"] = 5
	if w.Weights[0] == 99 || w.Means[0][0] == 99 || w.Hyperparameters["n_components"] == 5 {
		t.Error("Clone should not share memory with the original")
	}
}

func TestGobPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gmm.gob")
	if err := SaveModel(sampleWeights(), path); err != nil {
		t.Fatal(err)
	}
	var got MixtureWeights
	if err := LoadModel(&got, path); err != nil {
		t.Fatal(err)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("loaded weights invalid: %v", err)
	}
	if got.Hyperparameters["init_method"] != "kmeans" {
		t.Errorf("init_method = %v", got.Hyperparameters["init_method"])
	}

	if err := LoadModel(&got, filepath.Join(t.TempDir(), "missing.gob")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestJSONPersistence(t *testing.T) {
	var buf bytes.Buffer
	if err := SaveJSON(sampleWeights(), &buf); err != nil {
		t.Fatal(err)
	}
	var got MixtureWeights
	if err := LoadJSON(&got, &buf); err != nil {
		t.Fatal(err)
	}
	if len(got.LogLikelihoodHistory) != 2 {
		t.Errorf("history = %v", got.LogLikelihoodHistory)
	}

	if err := LoadJSON(&got, bytes.NewBufferString("{")); err == nil {
		t.Error("expected error for truncated JSON")
	}

	path := filepath.Join(t.TempDir(), "w.json")
	if err := SaveJSONFile(sampleWeights(), path); err != nil {
		t.Fatal(err)
	}
}
