package model

import (
	"encoding/json"

	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

// MixtureWeights は混合モデルの学習済みパラメータを表す構造体（シリアライゼーション用）
type MixtureWeights struct {
	// ModelType はモデルの種類（GaussianMixture, EM等）
	ModelType string `json:"model_type"`

	// Version はモデルのバージョン（互換性チェック用）
	Version string `json:"version"`

	// Weights は各コンポーネントの混合比
	Weights []float64 `json:"weights"`

	// Means は各コンポーネントの平均ベクトル（K x 2）
	Means [][2]float64 `json:"means"`

	// Covariances は各コンポーネントの共分散行列（K x 2 x 2）
	Covariances [][2][2]float64 `json:"covariances"`

	// LogLikelihoodHistory は反復ごとの対数尤度
	LogLikelihoodHistory []float64 `json:"log_likelihood_history,omitempty"`

	// Hyperparameters はモデルのハイパーパラメータ
	Hyperparameters map[string]interface{} `json:"hyperparameters"`

	// IsFitted はモデルが学習済みかどうか
	IsFitted bool `json:"is_fitted"`
}

// ToJSON はMixtureWeightsをJSON形式にシリアライズ
func (mw *MixtureWeights) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(mw, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal mixture weights")
	}
	return data, nil
}

// FromJSON はJSON形式からMixtureWeightsをデシリアライズ
func (mw *MixtureWeights) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, mw); err != nil {
		return errors.Wrap(err, "failed to unmarshal mixture weights")
	}
	return nil
}

// Validate はMixtureWeightsの妥当性を検証
func (mw *MixtureWeights) Validate() error {
	if mw.ModelType == "" {
		return errors.NewValidationError("model_type", "is required", mw.ModelType)
	}

	if mw.Version == "" {
		return errors.NewValidationError("version", "is required", mw.Version)
	}

	if !mw.IsFitted && len(mw.Weights) > 0 {
		return errors.NewValidationError("weights", "unfitted model should not have weights", len(mw.Weights))
	}

	if mw.IsFitted && len(mw.Weights) == 0 {
		return errors.NewValidationError("weights", "fitted model must have weights", 0)
	}

	k := len(mw.Weights)
	if len(mw.Means) != k {
		return errors.NewDimensionError("MixtureWeights.Validate", k, len(mw.Means), 0)
	}
	if len(mw.Covariances) != k {
		return errors.NewDimensionError("MixtureWeights.Validate", k, len(mw.Covariances), 0)
	}

	return nil
}

// Clone はMixtureWeightsのディープコピーを作成
func (mw *MixtureWeights) Clone() *MixtureWeights {
	clone := &MixtureWeights{
		ModelType:            mw.ModelType,
		Version:              mw.Version,
		Weights:              append([]float64(nil), mw.Weights...),
		Means:                append([][2]float64(nil), mw.Means...),
		Covariances:          append([][2][2]float64(nil), mw.Covariances...),
		LogLikelihoodHistory: append([]float64(nil), mw.LogLikelihoodHistory...),
		IsFitted:             mw.IsFitted,
	}

	if mw.Hyperparameters != nil {
		clone.Hyperparameters = make(map[string]interface{}, len(mw.Hyperparameters))
		for k, v := range mw.Hyperparameters {
			clone.Hyperparameters[k] = v
		}
	}

	return clone
}
