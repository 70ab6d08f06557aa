package model

import (
	"encoding/gob"
	"encoding/json"
	"io"
	"os"

	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

// SaveModel はモデルをgob形式でファイルに保存する
//
// パラメータ:
//   - model: 保存する値（エクスポートされたフィールドを持つ構造体）
//   - filename: 保存先のファイルパス
//
// 使用例:
//
//	w, _ := gm.ExportWeights()
//	err := model.SaveModel(w, "gmm.gob")
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", filename)
	}
	defer file.Close()

	return SaveModelToWriter(model, file)
}

// LoadModel はgob形式のファイルからモデルを読み込む
//
// 使用例:
//
//	var w model.MixtureWeights
//	err := model.LoadModel(&w, "gmm.gob")
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", filename)
	}
	defer file.Close()

	return LoadModelFromReader(model, file)
}

// SaveModelToWriter はモデルをgob形式でio.Writerに保存する
func SaveModelToWriter(model interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(model); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader はgob形式のio.Readerからモデルを読み込む
func LoadModelFromReader(model interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(model); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}

// SaveJSON は値をインデント付きJSONとしてio.Writerに書き出す
// スナップショットなど人が読む出力に使う
func SaveJSON(v interface{}, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode JSON")
	}
	return nil
}

// LoadJSON はio.ReaderからJSONを読み込む
func LoadJSON(v interface{}, r io.Reader) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return errors.Wrap(err, "failed to decode JSON")
	}
	return nil
}

// SaveJSONFile は値をJSONファイルに保存する
func SaveJSONFile(v interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", filename)
	}
	defer file.Close()

	return SaveJSON(v, file)
}
