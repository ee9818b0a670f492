package knngo

import (
	"context"
	"io"
	"math"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/knngo/blobstore"
	"github.com/hupe1980/knngo/metric"
	"github.com/hupe1980/knngo/neighbor"
	"github.com/hupe1980/knngo/policy"
	"github.com/hupe1980/knngo/snapshot"
	"github.com/hupe1980/knngo/tree"
)

// Result is the outcome of one query: indices and distances aligned by rank,
// best first. See neighbor.Result.
type Result = neighbor.Result

// SearchOptions hold the per-query knobs.
type SearchOptions struct {
	// Filter withholds matching points from the results. Nil admits all.
	Filter neighbor.Filter
}

// KNNGo answers exact nearest and furthest neighbor queries over a fixed
// point set. It is immutable after construction and safe for concurrent use.
type KNNGo struct {
	tree             *tree.KDTree
	metric           metric.Metric
	nearest          *neighbor.Search
	furthest         *neighbor.Search
	parallelism      int
	metricsCollector MetricsCollector
	logger           *Logger
}

// New builds an index over the given points. Points are copied.
func New(points [][]float64, optFns ...Option) (*KNNGo, error) {
	o := applyOptions(optFns)

	start := time.Now()
	t, err := tree.New(points, func(to *tree.Options) {
		to.LeafSize = o.leafSize
	})
	o.metricsCollector.RecordBuild(len(points), time.Since(start), err)
	if err != nil {
		o.logger.LogBuild(context.Background(), len(points), 0, err)
		return nil, translateError(err)
	}
	o.logger.LogBuild(context.Background(), t.NumPoints(), t.Dims(), nil)

	return fromTree(t, o)
}

func fromTree(t *tree.KDTree, o options) (*KNNGo, error) {
	nearest, err := neighbor.New(t, o.metric, policy.Nearest{})
	if err != nil {
		return nil, translateError(err)
	}
	furthest, err := neighbor.New(t, o.metric, policy.Furthest{})
	if err != nil {
		return nil, translateError(err)
	}

	return &KNNGo{
		tree:             t,
		metric:           o.metric,
		nearest:          nearest,
		furthest:         furthest,
		parallelism:      o.parallelism,
		metricsCollector: o.metricsCollector,
		logger:           o.logger,
	}, nil
}

// NumPoints returns the number of indexed points.
func (g *KNNGo) NumPoints() int { return g.tree.NumPoints() }

// Dims returns the dimensionality of the indexed points.
func (g *KNNGo) Dims() int { return g.tree.Dims() }

// Metric returns the distance metric the index was built with.
func (g *KNNGo) Metric() metric.Metric { return g.metric }

// Point returns the indexed point with the given index. The returned slice
// is a view and must not be modified.
func (g *KNNGo) Point(i int) []float64 { return g.tree.Point(i) }

// Stats reports the shape of the underlying tree.
func (g *KNNGo) Stats() tree.Stats { return g.tree.Stats() }

// KNN returns the k nearest neighbors of the query point.
func (g *KNNGo) KNN(ctx context.Context, query []float64, k int, optFns ...func(o *SearchOptions)) (Result, error) {
	return g.search(ctx, g.nearest, query, k, optFns)
}

// KFN returns the k furthest neighbors of the query point.
func (g *KNNGo) KFN(ctx context.Context, query []float64, k int, optFns ...func(o *SearchOptions)) (Result, error) {
	return g.search(ctx, g.furthest, query, k, optFns)
}

// BruteKNN returns the k nearest neighbors by scanning every point. It is
// the reference answer for KNN and the better choice for tiny datasets.
func (g *KNNGo) BruteKNN(ctx context.Context, query []float64, k int, optFns ...func(o *SearchOptions)) (Result, error) {
	return g.brute(ctx, g.nearest, query, k, optFns)
}

// BruteKFN returns the k furthest neighbors by scanning every point.
func (g *KNNGo) BruteKFN(ctx context.Context, query []float64, k int, optFns ...func(o *SearchOptions)) (Result, error) {
	return g.brute(ctx, g.furthest, query, k, optFns)
}

// BatchKNN answers many nearest-neighbor queries concurrently. The result
// slice is aligned with queries; the first failing query aborts the batch.
func (g *KNNGo) BatchKNN(ctx context.Context, queries [][]float64, k int, optFns ...func(o *SearchOptions)) ([]Result, error) {
	return g.searchBatch(ctx, g.nearest, queries, k, optFns)
}

// BatchKFN answers many furthest-neighbor queries concurrently.
func (g *KNNGo) BatchKFN(ctx context.Context, queries [][]float64, k int, optFns ...func(o *SearchOptions)) ([]Result, error) {
	return g.searchBatch(ctx, g.furthest, queries, k, optFns)
}

// AllKNN returns the k nearest neighbors of every indexed point, excluding
// the point itself, using a single dual-tree traversal.
func (g *KNNGo) AllKNN(ctx context.Context, k int, optFns ...func(o *SearchOptions)) ([]Result, error) {
	return g.searchAll(ctx, g.nearest, k, optFns)
}

// AllKFN returns the k furthest neighbors of every indexed point, excluding
// the point itself.
func (g *KNNGo) AllKFN(ctx context.Context, k int, optFns ...func(o *SearchOptions)) ([]Result, error) {
	return g.searchAll(ctx, g.furthest, k, optFns)
}

func (g *KNNGo) search(ctx context.Context, s *neighbor.Search, query []float64, k int, optFns []func(o *SearchOptions)) (Result, error) {
	start := time.Now()
	res, err := s.Query(ctx, query, k, queryOptions(optFns))

	g.metricsCollector.RecordSearch(k, time.Since(start), err)
	g.logger.LogSearch(ctx, k, countFound(res), err)

	return res, translateError(err)
}

func (g *KNNGo) brute(ctx context.Context, s *neighbor.Search, query []float64, k int, optFns []func(o *SearchOptions)) (Result, error) {
	start := time.Now()
	res, err := s.Brute(ctx, query, k, queryOptions(optFns))

	g.metricsCollector.RecordSearch(k, time.Since(start), err)
	g.logger.LogSearch(ctx, k, countFound(res), err)

	return res, translateError(err)
}

func (g *KNNGo) searchBatch(ctx context.Context, s *neighbor.Search, queries [][]float64, k int, optFns []func(o *SearchOptions)) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(queries))

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.parallelism)

	for i, query := range queries {
		i, query := i, query
		grp.Go(func() error {
			res, err := s.Query(gctx, query, k, queryOptions(optFns))
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	err := grp.Wait()

	failed := 0
	if err != nil {
		failed = 1
	}
	g.metricsCollector.RecordBatchSearch(len(queries), failed, time.Since(start))
	g.logger.LogBatchSearch(ctx, len(queries), failed)

	if err != nil {
		return nil, translateError(err)
	}
	return results, nil
}

func (g *KNNGo) searchAll(ctx context.Context, s *neighbor.Search, k int, optFns []func(o *SearchOptions)) ([]Result, error) {
	start := time.Now()
	results, err := s.QueryTree(ctx, g.tree, k, func(o *neighbor.QueryOptions) {
		queryOptions(optFns)(o)
		o.ExcludeSelf = true
	})

	failed := boolToInt(err != nil)
	g.metricsCollector.RecordBatchSearch(g.tree.NumPoints(), failed, time.Since(start))
	g.logger.LogBatchSearch(ctx, g.tree.NumPoints(), failed)

	return results, translateError(err)
}

func queryOptions(optFns []func(o *SearchOptions)) func(o *neighbor.QueryOptions) {
	var opts SearchOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return func(o *neighbor.QueryOptions) {
		o.Filter = opts.Filter
	}
}

func countFound(res Result) int {
	found := 0
	for _, idx := range res.Indices {
		if idx != neighbor.NoIndex {
			found++
		}
	}
	return found
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// snapshotPayload is what a snapshot carries: the built tree plus enough to
// reconstruct the metric.
type snapshotPayload struct {
	MetricKind  metric.Kind
	MetricPower float64
	Tree        *tree.KDTree
}

// Save writes the index as a snapshot to w.
func (g *KNNGo) Save(w io.Writer, optFns ...func(o *snapshot.Options)) error {
	return snapshot.Save(w, g.payload(), optFns...)
}

// SaveToFile writes the index as a snapshot file.
func (g *KNNGo) SaveToFile(name string, optFns ...func(o *snapshot.Options)) error {
	start := time.Now()
	err := g.saveToFile(name, optFns)

	g.metricsCollector.RecordSnapshot(time.Since(start), err)
	g.logger.LogSnapshot(context.Background(), name, err)

	return err
}

func (g *KNNGo) saveToFile(name string, optFns []func(o *snapshot.Options)) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := g.Save(f, optFns...); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// SaveToStore writes the index as a snapshot blob.
func (g *KNNGo) SaveToStore(ctx context.Context, store blobstore.Store, name string, optFns ...func(o *snapshot.Options)) error {
	start := time.Now()
	err := snapshot.SaveToStore(ctx, store, name, g.payload(), optFns...)

	g.metricsCollector.RecordSnapshot(time.Since(start), err)
	g.logger.LogSnapshot(ctx, name, err)

	return err
}

func (g *KNNGo) payload() *snapshotPayload {
	return &snapshotPayload{
		MetricKind:  metric.KindOf(g.metric),
		MetricPower: g.metric.Power(),
		Tree:        g.tree,
	}
}

// Load reads a snapshot from r. The metric comes from the snapshot;
// WithMetric and WithLeafSize are ignored.
func Load(r io.Reader, optFns ...Option) (*KNNGo, error) {
	var payload snapshotPayload
	if err := snapshot.Load(r, &payload); err != nil {
		return nil, err
	}
	return fromPayload(&payload, applyOptions(optFns))
}

// LoadFromFile reads a snapshot file written by SaveToFile.
func LoadFromFile(name string, optFns ...Option) (*KNNGo, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f, optFns...)
}

// LoadFromStore reads a snapshot blob written by SaveToStore.
func LoadFromStore(ctx context.Context, store blobstore.Store, name string, optFns ...Option) (*KNNGo, error) {
	var payload snapshotPayload
	if err := snapshot.LoadFromStore(ctx, store, name, &payload); err != nil {
		return nil, err
	}
	return fromPayload(&payload, applyOptions(optFns))
}

func fromPayload(payload *snapshotPayload, o options) (*KNNGo, error) {
	m, err := metricFromSnapshot(payload.MetricKind, payload.MetricPower)
	if err != nil {
		return nil, err
	}
	o.metric = m

	return fromTree(payload.Tree, o)
}

func metricFromSnapshot(kind metric.Kind, power float64) (metric.Metric, error) {
	if kind == metric.KindMinkowski {
		return metric.NewMinkowski(power)
	}
	if math.IsInf(power, 1) {
		return metric.Chebyshev{}, nil
	}
	return metric.Provider(kind)
}
