package cluster

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/core/model"
	"github.com/YuminosukeSato/gmmtutor/core/parallel"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
	"github.com/YuminosukeSato/gmmtutor/pkg/log"
)

// KMeans はLloydアルゴリズムによるK-meansクラスタリング
// scikit-learnのKMeansと互換性を持つ
type KMeans struct {
	model.BaseEstimator

	// ハイパーパラメータ
	nClusters   int     // クラスタ数
	init        string  // 初期化方法: "k-means++", "random"
	maxIter     int     // 最大イテレーション数
	nInit       int     // 異なる初期化での実行回数
	tol         float64 // 中心の移動量（二乗和）による収束判定の許容誤差
	randomState int64   // 乱数シード（負の値なら時刻から生成）

	// 学習パラメータ
	clusterCenters_ [][]float64 // クラスタ中心（nClusters x nFeatures）
	labels_         []int       // 各サンプルのクラスタラベル
	inertia_        float64     // クラスタ内平方和誤差
	nIter_          int         // 実行されたイテレーション数

	// 内部状態
	mu         sync.RWMutex
	rng        *rand.Rand
	nFeatures_ int
	logger     log.Logger
}

// NewKMeans は新しいKMeansを作成
func NewKMeans(options ...KMeansOption) *KMeans {
	kmeans := &KMeans{
		nClusters:   8,
		init:        "k-means++",
		maxIter:     300,
		nInit:       3,
		tol:         1e-4,
		randomState: -1,
		logger:      log.GetLoggerWithName("cluster"),
	}

	for _, opt := range options {
		opt(kmeans)
	}

	if kmeans.randomState >= 0 {
		kmeans.rng = newRand(uint64(kmeans.randomState))
	} else {
		kmeans.rng = newRand(uint64(time.Now().UnixNano()))
	}

	return kmeans
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
}

// KMeansOption はKMeansの設定オプション
type KMeansOption func(*KMeans)

// WithKMeansNClusters はクラスタ数を設定
func WithKMeansNClusters(n int) KMeansOption {
	return func(kmeans *KMeans) {
		kmeans.nClusters = n
	}
}

// WithKMeansInit は初期化方法を設定
func WithKMeansInit(init string) KMeansOption {
	return func(kmeans *KMeans) {
		kmeans.init = init
	}
}

// WithKMeansMaxIter は最大イテレーション数を設定
func WithKMeansMaxIter(maxIter int) KMeansOption {
	return func(kmeans *KMeans) {
		kmeans.maxIter = maxIter
	}
}

// WithKMeansNInit は初期化を変えて実行する回数を設定
func WithKMeansNInit(nInit int) KMeansOption {
	return func(kmeans *KMeans) {
		kmeans.nInit = nInit
	}
}

// WithKMeansRandomState は乱数シードを設定
func WithKMeansRandomState(seed int64) KMeansOption {
	return func(kmeans *KMeans) {
		kmeans.randomState = seed
	}
}

// WithKMeansTol は収束判定の許容誤差を設定
func WithKMeansTol(tol float64) KMeansOption {
	return func(kmeans *KMeans) {
		kmeans.tol = tol
	}
}

// WithKMeansLogger はロガーを設定
func WithKMeansLogger(logger log.Logger) KMeansOption {
	return func(kmeans *KMeans) {
		kmeans.logger = logger
	}
}

// Fit はバッチ学習でモデルを訓練
func (kmeans *KMeans) Fit(X, y mat.Matrix) error {
	kmeans.mu.Lock()
	defer kmeans.mu.Unlock()

	if err := kmeans.validate(); err != nil {
		return err
	}

	rows, cols := X.Dims()
	if rows < kmeans.nClusters {
		return errors.NewValidationError("n_clusters", "must not exceed the number of samples", kmeans.nClusters)
	}
	data := make([][]float64, rows)
	for i := range data {
		data[i] = mat.Row(nil, i, X)
	}
	kmeans.nFeatures_ = cols

	// 複数回実行して最良の結果を選択
	bestInertia := math.Inf(1)
	var bestCenters [][]float64
	var bestLabels []int
	var bestNIter int

	for run := 0; run < kmeans.nInit; run++ {
		centers, labels, inertia, nIter := kmeans.fitSingleRun(data)

		if inertia < bestInertia {
			bestInertia = inertia
			bestCenters = centers
			bestLabels = labels
			bestNIter = nIter
		}
	}

	kmeans.clusterCenters_ = bestCenters
	kmeans.labels_ = bestLabels
	kmeans.inertia_ = bestInertia
	kmeans.nIter_ = bestNIter

	kmeans.logger.Debug("KMeans fitted",
		log.ModelNameKey, "KMeans",
		log.ClustersKey, kmeans.nClusters,
		log.SamplesKey, rows,
		log.IterationKey, bestNIter,
		log.InertiaKey, bestInertia,
	)

	kmeans.SetFitted()
	return nil
}

// FitPoints は2次元の点列でモデルを訓練
func (kmeans *KMeans) FitPoints(points []linalg.Point) error {
	return kmeans.Fit(pointsMatrix(points), nil)
}

func (kmeans *KMeans) validate() error {
	if kmeans.nClusters < 1 {
		return errors.NewValidationError("n_clusters", "must be positive", kmeans.nClusters)
	}
	if kmeans.maxIter < 1 {
		return errors.NewValidationError("max_iter", "must be positive", kmeans.maxIter)
	}
	if kmeans.nInit < 1 {
		return errors.NewValidationError("n_init", "must be positive", kmeans.nInit)
	}
	switch kmeans.init {
	case "k-means++", "random":
	default:
		return errors.NewValidationError("init", "must be 'k-means++' or 'random'", kmeans.init)
	}
	return nil
}

// fitSingleRun は単一回の学習を実行
func (kmeans *KMeans) fitSingleRun(data [][]float64) ([][]float64, []int, float64, int) {
	cols := len(data[0])

	// クラスタ中心の初期化
	centers := kmeans.initializeCenters(data)
	labels := make([]int, len(data))

	nIter := 0
	for iter := 0; iter < kmeans.maxIter; iter++ {
		nIter = iter + 1

		// 割り当てステップ
		assignLabels(data, centers, labels)

		// 更新ステップ: 各クラスタの平均を新しい中心にする
		sums := make([][]float64, kmeans.nClusters)
		counts := make([]int, kmeans.nClusters)
		for c := range sums {
			sums[c] = make([]float64, cols)
		}
		for i, sample := range data {
			floats.Add(sums[labels[i]], sample)
			counts[labels[i]]++
		}

		shift := 0.0
		for c := range centers {
			// 空のクラスタは中心を動かさない
			if counts[c] == 0 {
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			d := floats.Distance(centers[c], sums[c], 2)
			shift += d * d
			centers[c] = sums[c]
		}

		// 収束判定
		if shift <= kmeans.tol {
			break
		}
	}

	// 最終的なラベルの計算
	assignLabels(data, centers, labels)
	return centers, labels, computeInertia(data, centers, labels), nIter
}

// Predict は入力データに対するクラスタ予測を行う
func (kmeans *KMeans) Predict(X mat.Matrix) (mat.Matrix, error) {
	kmeans.mu.RLock()
	defer kmeans.mu.RUnlock()

	if !kmeans.IsFitted() {
		return nil, errors.NewNotFittedError("KMeans", "Predict")
	}

	rows, cols := X.Dims()
	if cols != kmeans.nFeatures_ {
		return nil, errors.NewDimensionError("Predict", kmeans.nFeatures_, cols, 1)
	}

	predictions := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		sample := mat.Row(nil, i, X)
		predictions.Set(i, 0, float64(findNearestCluster(sample, kmeans.clusterCenters_)))
	}

	return predictions, nil
}

// PredictPoints は2次元の点列に対するクラスタ予測を行う
func (kmeans *KMeans) PredictPoints(points []linalg.Point) ([]int, error) {
	if len(points) == 0 {
		if !kmeans.IsFitted() {
			return nil, errors.NewNotFittedError("KMeans", "Predict")
		}
		return []int{}, nil
	}
	pred, err := kmeans.Predict(pointsMatrix(points))
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = int(pred.At(i, 0))
	}
	return labels, nil
}

// FitPredict は学習と予測を同時に行う
func (kmeans *KMeans) FitPredict(X, y mat.Matrix) (mat.Matrix, error) {
	err := kmeans.Fit(X, y)
	if err != nil {
		return nil, err
	}
	return kmeans.Predict(X)
}

// Transform はデータをクラスタ中心との距離に変換
func (kmeans *KMeans) Transform(X mat.Matrix) (mat.Matrix, error) {
	kmeans.mu.RLock()
	defer kmeans.mu.RUnlock()

	if !kmeans.IsFitted() {
		return nil, errors.NewNotFittedError("KMeans", "Transform")
	}

	rows, cols := X.Dims()
	if cols != kmeans.nFeatures_ {
		return nil, errors.NewDimensionError("Transform", kmeans.nFeatures_, cols, 1)
	}

	distances := mat.NewDense(rows, kmeans.nClusters, nil)
	for i := 0; i < rows; i++ {
		sample := mat.Row(nil, i, X)
		for c := 0; c < kmeans.nClusters; c++ {
			distances.Set(i, c, floats.Distance(sample, kmeans.clusterCenters_[c], 2))
		}
	}

	return distances, nil
}

// NIterations は実行された学習イテレーション数を返す
func (kmeans *KMeans) NIterations() int {
	kmeans.mu.RLock()
	defer kmeans.mu.RUnlock()
	return kmeans.nIter_
}

// ClusterCenters は学習されたクラスタ中心を返す
func (kmeans *KMeans) ClusterCenters() [][]float64 {
	kmeans.mu.RLock()
	defer kmeans.mu.RUnlock()

	centers := make([][]float64, len(kmeans.clusterCenters_))
	for i := range kmeans.clusterCenters_ {
		centers[i] = make([]float64, len(kmeans.clusterCenters_[i]))
		copy(centers[i], kmeans.clusterCenters_[i])
	}
	return centers
}

// CenterPoints は2次元のクラスタ中心を返す
func (kmeans *KMeans) CenterPoints() []linalg.Point {
	centers := kmeans.ClusterCenters()
	points := make([]linalg.Point, len(centers))
	for i, c := range centers {
		if len(c) >= 2 {
			points[i] = linalg.Point{X: c[0], Y: c[1]}
		}
	}
	return points
}

// Labels は学習データのクラスタラベルを返す
func (kmeans *KMeans) Labels() []int {
	kmeans.mu.RLock()
	defer kmeans.mu.RUnlock()

	if kmeans.labels_ == nil {
		return nil
	}

	labels := make([]int, len(kmeans.labels_))
	copy(labels, kmeans.labels_)
	return labels
}

// Inertia は慣性（クラスタ内平方和誤差）を返す
func (kmeans *KMeans) Inertia() float64 {
	kmeans.mu.RLock()
	defer kmeans.mu.RUnlock()
	return kmeans.inertia_
}

// 内部ヘルパーメソッド

// initializeCenters はクラスタ中心を初期化
func (kmeans *KMeans) initializeCenters(data [][]float64) [][]float64 {
	if kmeans.init == "random" {
		centers := make([][]float64, kmeans.nClusters)
		for i, idx := range kmeans.rng.Perm(len(data))[:kmeans.nClusters] {
			centers[i] = append([]float64(nil), data[idx]...)
		}
		return centers
	}
	return kmeans.initKMeansPlusPlus(data)
}

// initKMeansPlusPlus はk-means++初期化を実行
func (kmeans *KMeans) initKMeansPlusPlus(data [][]float64) [][]float64 {
	rows := len(data)
	centers := make([][]float64, kmeans.nClusters)

	// 最初のクラスタ中心をランダムに選択
	centers[0] = append([]float64(nil), data[kmeans.rng.IntN(rows)]...)

	distances := make([]float64, rows)
	for c := 1; c < kmeans.nClusters; c++ {
		// 各サンプルから最近傍クラスタ中心までの距離の二乗を計算
		totalDistance := 0.0
		for i, sample := range data {
			minDist := math.Inf(1)
			for j := 0; j < c; j++ {
				if dist := floats.Distance(sample, centers[j], 2); dist < minDist {
					minDist = dist
				}
			}
			distances[i] = minDist * minDist
			totalDistance += distances[i]
		}

		// 確率に応じてサンプルを選択
		selectedIdx := kmeans.rng.IntN(rows)
		if totalDistance > 0 {
			target := kmeans.rng.Float64() * totalDistance
			cumSum := 0.0
			for i := 0; i < rows; i++ {
				cumSum += distances[i]
				if cumSum >= target && distances[i] > 0 {
					selectedIdx = i
					break
				}
			}
		}

		centers[c] = append([]float64(nil), data[selectedIdx]...)
	}

	return centers
}

// 補助関数

// assignLabels は各サンプルを最近傍クラスタに割り当てる
func assignLabels(data [][]float64, centers [][]float64, labels []int) {
	parallel.ParallelizeWithThreshold(len(data), parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			labels[i] = findNearestCluster(data[i], centers)
		}
	})
}

// findNearestCluster は最近傍クラスタを検索
func findNearestCluster(sample []float64, centers [][]float64) int {
	minDist := math.Inf(1)
	nearestCluster := 0

	for c, center := range centers {
		if dist := floats.Distance(sample, center, 2); dist < minDist {
			minDist = dist
			nearestCluster = c
		}
	}

	return nearestCluster
}

// computeInertia は慣性（クラスタ内平方和誤差）を計算
func computeInertia(data [][]float64, centers [][]float64, labels []int) float64 {
	inertia := 0.0
	for i, sample := range data {
		dist := floats.Distance(sample, centers[labels[i]], 2)
		inertia += dist * dist
	}
	return inertia
}

// pointsMatrix は点列を n×2 の行列に変換
func pointsMatrix(points []linalg.Point) *mat.Dense {
	if len(points) == 0 {
		return &mat.Dense{}
	}
	data := make([]float64, 0, 2*len(points))
	for _, p := range points {
		data = append(data, p.X, p.Y)
	}
	return mat.NewDense(len(points), 2, data)
}
