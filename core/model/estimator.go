package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
// 教師なし学習では y は無視される（nil を渡してよい）
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Clusterer はクラスタリングモデルのインターフェース
// Predict は各サンプルのクラスタ番号を n×1 の行列で返す
type Clusterer interface {
	Fitter
	Predictor

	// FitPredict は学習と予測を同時に行う
	FitPredict(X, y mat.Matrix) (mat.Matrix, error)
}

// DensityEstimator は確率密度を推定するモデルのインターフェース
type DensityEstimator interface {
	Fitter

	// ScoreSamples は各サンプルの対数密度を n×1 の行列で返す
	ScoreSamples(X mat.Matrix) (mat.Matrix, error)

	// Score はサンプルあたりの平均対数尤度を返す
	Score(X mat.Matrix) (float64, error)
}

// ProbabilisticClusterer は各クラスタへの所属確率を返せるクラスタリングモデル
type ProbabilisticClusterer interface {
	Clusterer
	DensityEstimator

	// PredictProba は n×K の所属確率（負担率）を返す
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// ParameterGetter is the interface for models that expose their hyperparameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}
