package metrics

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

func TestContingencyTable(t *testing.T) {
	table, err := ContingencyTable([]int{0, 0, 1, 1, 2}, []int{5, 5, 5, 7, 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, c := table.Dims()
	if r != 3 || c != 2 {
		t.Fatalf("dims = (%d, %d), want (3, 2)", r, c)
	}
	want := [][]float64{{2, 0}, {1, 1}, {0, 1}}
	for i := range want {
		for j := range want[i] {
			if table.At(i, j) != want[i][j] {
				t.Errorf("table[%d][%d] = %v, want %v", i, j, table.At(i, j), want[i][j])
			}
		}
	}
}

func TestAdjustedRandIndex(t *testing.T) {
	tests := []struct {
		name      string
		labelsA   []int
		labelsB   []int
		want      float64
		tolerance float64
		wantErr   bool
	}{
		{
			name:      "identical",
			labelsA:   []int{0, 0, 1, 1, 2, 2},
			labelsB:   []int{0, 0, 1, 1, 2, 2},
			want:      1.0,
			tolerance: 1e-12,
		},
		{
			name:      "permuted labels",
			labelsA:   []int{0, 0, 1, 1, 2, 2},
			labelsB:   []int{2, 2, 0, 0, 1, 1},
			want:      1.0,
			tolerance: 1e-12,
		},
		{
			// scikit-learn: adjusted_rand_score([0,0,1,1],[0,0,1,2]) = 0.5714...
			name:      "split cluster",
			labelsA:   []int{0, 0, 1, 1},
			labelsB:   []int{0, 0, 1, 2},
			want:      4.0 / 7.0,
			tolerance: 1e-12,
		},
		{
			// scikit-learn: adjusted_rand_score([0,0,1,1],[0,1,0,1]) = -0.5
			name:      "anti-correlated",
			labelsA:   []int{0, 0, 1, 1},
			labelsB:   []int{0, 1, 0, 1},
			want:      -0.5,
			tolerance: 1e-12,
		},
		{
			name:      "single cluster both",
			labelsA:   []int{1, 1, 1},
			labelsB:   []int{0, 0, 0},
			want:      1.0,
			tolerance: 1e-12,
		},
		{
			name:    "length mismatch",
			labelsA: []int{0, 1},
			labelsB: []int{0},
			wantErr: true,
		},
		{
			name:    "empty",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AdjustedRandIndex(tt.labelsA, tt.labelsB)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AdjustedRandIndex() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("AdjustedRandIndex() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClusteringAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		labelsA []int
		labelsB []int
		want    float64
	}{
		{"permuted", []int{0, 0, 1, 1, 2, 2}, []int{1, 1, 2, 2, 0, 0}, 1.0},
		{"one mistake", []int{0, 0, 0, 1, 1, 1}, []int{1, 1, 0, 0, 0, 0}, 5.0 / 6.0},
		{"more clusters than classes", []int{0, 0, 1, 1}, []int{0, 1, 2, 3}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClusteringAccuracy(tt.labelsA, tt.labelsB)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("ClusteringAccuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClusteringErrors(t *testing.T) {
	_, err := AdjustedRandIndex(nil, nil)
	if !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("expected ErrEmptyData, got %v", err)
	}

	_, err = ClusteringAccuracy([]int{0, 1}, []int{0})
	var de *errors.DimensionError
	if !errors.As(err, &de) {
		t.Errorf("expected DimensionError, got %v", err)
	}

	many := make([]int, 20)
	for i := range many {
		many[i] = i
	}
	_, err = ClusteringAccuracy(many, many)
	var ve *errors.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}
