package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

// maxPermutationClusters はClusteringAccuracyが全探索するクラスタ数の上限
const maxPermutationClusters = 8

// ContingencyTable は2つのラベル列の分割表を計算する
// 行はlabelsTrueのクラス、列はlabelsPredのクラスタに対応し、
// 各ラベルは出現順ではなく値の昇順で並ぶ
func ContingencyTable(labelsTrue, labelsPred []int) (*mat.Dense, error) {
	if err := checkLabels("ContingencyTable", labelsTrue, labelsPred); err != nil {
		return nil, err
	}

	rowIdx := indexLabels(labelsTrue)
	colIdx := indexLabels(labelsPred)

	table := mat.NewDense(len(rowIdx), len(colIdx), nil)
	for i := range labelsTrue {
		r, c := rowIdx[labelsTrue[i]], colIdx[labelsPred[i]]
		table.Set(r, c, table.At(r, c)+1)
	}
	return table, nil
}

// AdjustedRandIndex は調整済みランド指数（ARI）を計算する
// ラベルの付け替えに対して不変で、完全一致で1、ランダムな割り当てで0付近になる
func AdjustedRandIndex(labelsTrue, labelsPred []int) (float64, error) {
	table, err := ContingencyTable(labelsTrue, labelsPred)
	if err != nil {
		return 0, err
	}

	rows, cols := table.Dims()
	rowSums := make([]float64, rows)
	colSums := make([]float64, cols)
	sumComb := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			nij := table.At(i, j)
			sumComb += comb2(nij)
			rowSums[i] += nij
			colSums[j] += nij
		}
	}

	sumA, sumB := 0.0, 0.0
	for _, a := range rowSums {
		sumA += comb2(a)
	}
	for _, b := range colSums {
		sumB += comb2(b)
	}

	n := float64(len(labelsTrue))
	expected := sumA * sumB / comb2(n)
	maxIndex := (sumA + sumB) / 2

	// 両方が1クラスタのみ、または全て別クラスタの場合は完全一致とみなす
	if maxIndex == expected {
		return 1.0, nil
	}
	return (sumComb - expected) / (maxIndex - expected), nil
}

// ClusteringAccuracy はクラスタとクラスの最良の1対1対応のもとでの正解率を計算する
func ClusteringAccuracy(labelsTrue, labelsPred []int) (float64, error) {
	table, err := ContingencyTable(labelsTrue, labelsPred)
	if err != nil {
		return 0, err
	}

	rows, cols := table.Dims()
	if rows > maxPermutationClusters || cols > maxPermutationClusters {
		return 0, errors.NewValidationError("labels", "too many distinct labels for exhaustive matching", max(rows, cols))
	}

	// 各予測クラスタに異なる真のクラスを割り当てる全探索
	usedRow := make([]bool, rows)
	var best float64
	var search func(col int, matched float64)
	search = func(col int, matched float64) {
		if col == cols {
			if matched > best {
				best = matched
			}
			return
		}
		// このクラスタをどのクラスにも対応させない
		search(col+1, matched)
		for r := 0; r < rows; r++ {
			if usedRow[r] {
				continue
			}
			usedRow[r] = true
			search(col+1, matched+table.At(r, col))
			usedRow[r] = false
		}
	}
	search(0, 0)

	return best / float64(len(labelsTrue)), nil
}

func checkLabels(op string, labelsTrue, labelsPred []int) error {
	if len(labelsTrue) == 0 {
		return errors.Wrap(errors.ErrEmptyData, op)
	}
	if len(labelsPred) != len(labelsTrue) {
		return errors.NewDimensionError(op, len(labelsTrue), len(labelsPred), 0)
	}
	return nil
}

// indexLabels はラベル値を昇順の連番インデックスに対応付ける
func indexLabels(labels []int) map[int]int {
	seen := map[int]bool{}
	var values []int
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			values = append(values, l)
		}
	}
	// 挿入ソート（ラベルの種類は少ない）
	for i := 1; i < len(values); i++ {
		for j := i; j > 0 && values[j] < values[j-1]; j-- {
			values[j], values[j-1] = values[j-1], values[j]
		}
	}
	idx := make(map[int]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return idx
}

// comb2 は n C 2 を計算する
func comb2(n float64) float64 {
	return n * (n - 1) / 2
}
