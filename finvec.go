package finvec

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/quantmesh/finvec/blobstore"
	"github.com/quantmesh/finvec/codec"
	"github.com/quantmesh/finvec/distance"
	"github.com/quantmesh/finvec/index"
	"github.com/quantmesh/finvec/index/flat"
	"github.com/quantmesh/finvec/metadata"
	"github.com/quantmesh/finvec/persistence"
)

// MetaSuffix is appended to the index path to form the metadata
// artifact path.
const MetaSuffix = ".meta"

// Item is a single upsert payload.
type Item struct {
	ID       string
	Values   []float32
	Metadata metadata.Metadata
}

// Record is the metadata side-table entry for a live ordinal. An
// ordinal without a Record is a tombstone.
type Record struct {
	ID        string            `json:"id"`
	Metadata  metadata.Metadata `json:"metadata,omitempty"`
	Namespace string            `json:"namespace,omitempty"`
}

// Match is a single query result.
type Match struct {
	ID       string
	Score    float32
	Metadata metadata.Metadata
}

// UpsertResult reports the outcome of an Upsert.
type UpsertResult struct {
	UpsertedCount int
}

// DeleteResult reports the outcome of a Delete.
type DeleteResult struct {
	DeletedCount int
}

// Stats is a point-in-time snapshot of store state.
type Stats struct {
	Dimension      int
	VectorCount    int
	LiveCount      int
	TombstoneCount int
	Rebuilds       uint64
	Metric         distance.Metric
}

// QueryOptions refine a Query.
type QueryOptions struct {
	// Namespace restricts matches to records upserted under it. Empty
	// applies no namespace filter: records from every namespace match.
	Namespace string

	// Filter is an exact-match predicate over record metadata. Records
	// missing a filter key do not match.
	Filter metadata.Filter
}

// Store is a persistent vector store: an exhaustive similarity index
// plus a metadata side-table with namespace isolation and logical
// deletion. All methods are safe for concurrent use; mutations are
// serialized by a single write lock.
type Store struct {
	path string
	opts options

	mu         sync.RWMutex
	idx        *flat.Flat
	records    map[uint32]Record
	tombstones *roaring.Bitmap
	rebuilds   uint64
	closed     bool
}

// Open loads the store at path or creates an empty one. The metadata
// artifact lives at path + MetaSuffix. Index ordinals absent from the
// metadata artifact are treated as tombstones, which tolerates a crash
// between the two artifact writes. A loaded index whose dimension or
// metric disagrees with the arguments fails Open.
func Open(path string, dimension int, metric distance.Metric, optFns ...Option) (*Store, error) {
	opts := options{
		codec:            codec.Default,
		overfetchFactor:  3,
		rebuildThreshold: 0.10,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Store{
		path:       path,
		opts:       opts,
		records:    make(map[uint32]Record),
		tombstones: roaring.New(),
	}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err := s.load(); err != nil {
			s.opts.logger.LogLoad(context.Background(), path, 0, 0, err)
			return nil, err
		}
		if s.idx.Dimension() != dimension {
			return nil, &ErrDimensionMismatch{Expected: dimension, Actual: s.idx.Dimension()}
		}
		if s.idx.Metric() != metric {
			return nil, fmt.Errorf("%w: index metric %s, requested %s",
				ErrCorruptArtifact, s.idx.Metric(), metric)
		}
		s.opts.logger.LogLoad(context.Background(), path, s.idx.Count(), int(s.tombstones.GetCardinality()), nil)
	case errors.Is(err, fs.ErrNotExist):
		idx, err := flat.New(func(o *flat.Options) {
			o.Dimension = dimension
			o.Metric = metric
		})
		if err != nil {
			return nil, translateError(err)
		}
		s.idx = idx
	default:
		return nil, &PersistError{Op: "stat", Path: path, Err: err}
	}

	return s, nil
}

// Upsert appends items to the index under namespace and records their
// metadata. The batch is atomic with respect to validation: a dimension
// mismatch anywhere rejects the whole batch. An item whose ID already
// exists gets a new ordinal; the prior record stays live until deleted,
// so queries may surface the same ID more than once until then.
//
// A persistence failure after the in-memory mutation is returned as a
// *PersistError and must be treated as fatal: memory and disk have
// diverged.
func (s *Store) Upsert(ctx context.Context, items []Item, namespace string) (UpsertResult, error) {
	start := time.Now()

	result, err := s.upsert(ctx, items, namespace)

	s.opts.metricsCollector.RecordUpsert(len(items), time.Since(start), err)
	s.opts.logger.LogUpsert(ctx, namespace, len(items), err)

	return result, err
}

func (s *Store) upsert(ctx context.Context, items []Item, namespace string) (UpsertResult, error) {
	if len(items) == 0 {
		return UpsertResult{}, nil
	}

	vectors := make([][]float32, len(items))
	for i, item := range items {
		vectors[i] = item.Values
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return UpsertResult{}, ErrClosed
	}

	first, err := s.idx.Append(ctx, vectors)
	if err != nil {
		return UpsertResult{}, translateError(err)
	}

	for i, item := range items {
		s.records[first+uint32(i)] = Record{
			ID:        item.ID,
			Metadata:  item.Metadata.Clone(),
			Namespace: namespace,
		}
	}

	if err := s.persistLocked(ctx, true); err != nil {
		return UpsertResult{}, err
	}

	return UpsertResult{UpsertedCount: len(items)}, nil
}

// Query returns up to topK matches for vector, closest first. The index
// is over-fetched by the configured factor to compensate for tombstones
// and filter misses; heavy filtering may still yield fewer than topK
// matches.
func (s *Store) Query(ctx context.Context, vector []float32, topK int, optFns ...func(o *QueryOptions)) ([]Match, error) {
	start := time.Now()

	matches, err := s.query(ctx, vector, topK, optFns...)

	s.opts.metricsCollector.RecordQuery(topK, time.Since(start), err)
	s.opts.logger.LogQuery(ctx, topK, len(matches), err)

	return matches, err
}

func (s *Store) query(ctx context.Context, vector []float32, topK int, optFns ...func(o *QueryOptions)) ([]Match, error) {
	if topK < 1 {
		return nil, ErrInvalidTopK
	}

	var qo QueryOptions
	for _, fn := range optFns {
		fn(&qo)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	if err := index.ValidateVector(vector, s.idx.Dimension()); err != nil {
		return nil, translateError(err)
	}

	total := s.idx.Count()
	if total == 0 {
		return []Match{}, nil
	}

	fetchK := topK * s.opts.overfetchFactor
	if fetchK > total {
		fetchK = total
	}

	candidates, err := s.idx.Search(ctx, vector, fetchK)
	if err != nil {
		return nil, translateError(err)
	}

	matches := make([]Match, 0, topK)
	for _, c := range candidates {
		record, ok := s.records[c.Ordinal]
		if !ok {
			continue
		}
		if qo.Namespace != "" && record.Namespace != qo.Namespace {
			continue
		}
		if !qo.Filter.Matches(record.Metadata) {
			continue
		}

		matches = append(matches, Match{
			ID:       record.ID,
			Score:    distance.Score(s.idx.Metric(), c.Distance),
			Metadata: record.Metadata.Clone(),
		})
		if len(matches) == topK {
			break
		}
	}

	return matches, nil
}

// Delete tombstones every live record whose ID is in ids and, when a
// namespace is given, whose namespace matches; an empty namespace
// deletes across all namespaces. Unknown IDs are skipped, so Delete is
// idempotent. When the tombstoned fraction of the index exceeds the
// rebuild threshold the index is compacted: surviving vectors are
// re-appended in ascending ordinal order and all ordinals are
// reassigned from zero.
func (s *Store) Delete(ctx context.Context, ids []string, namespace string) (DeleteResult, error) {
	start := time.Now()

	result, err := s.delete(ctx, ids, namespace)

	s.opts.metricsCollector.RecordDelete(result.DeletedCount, time.Since(start), err)
	s.opts.logger.LogDelete(ctx, namespace, len(ids), result.DeletedCount, err)

	return result, err
}

func (s *Store) delete(ctx context.Context, ids []string, namespace string) (DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return DeleteResult{}, err
	}

	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return DeleteResult{}, ErrClosed
	}

	removed := 0
	for ordinal, record := range s.records {
		if namespace != "" && record.Namespace != namespace {
			continue
		}
		if _, ok := idSet[record.ID]; !ok {
			continue
		}
		delete(s.records, ordinal)
		s.tombstones.Add(ordinal)
		removed++
	}

	if removed == 0 {
		return DeleteResult{}, nil
	}

	rebuilt := false
	if total := s.idx.Count(); total > 0 {
		deletedFraction := float64(s.tombstones.GetCardinality()) / float64(total)
		if deletedFraction > s.opts.rebuildThreshold {
			if err := s.rebuildLocked(ctx); err != nil {
				return DeleteResult{DeletedCount: removed}, err
			}
			rebuilt = true
		}
	}

	if err := s.persistLocked(ctx, rebuilt); err != nil {
		return DeleteResult{DeletedCount: removed}, err
	}

	return DeleteResult{DeletedCount: removed}, nil
}

// rebuildLocked compacts the index by re-appending surviving vectors in
// ascending ordinal order. Caller holds the write lock.
func (s *Store) rebuildLocked(ctx context.Context) error {
	start := time.Now()
	before := s.idx.Count()

	err := s.rebuild(ctx)

	s.opts.metricsCollector.RecordRebuild(time.Since(start), err)
	s.opts.logger.LogRebuild(ctx, before, s.idx.Count(), err)

	return err
}

func (s *Store) rebuild(ctx context.Context) error {
	ordinals := make([]uint32, 0, len(s.records))
	for ordinal := range s.records {
		ordinals = append(ordinals, ordinal)
	}
	sort.Slice(ordinals, func(i, j int) bool { return ordinals[i] < ordinals[j] })

	vectors := make([][]float32, len(ordinals))
	for i, ordinal := range ordinals {
		v, ok := s.idx.VectorByOrdinal(ordinal)
		if !ok {
			return fmt.Errorf("%w: live ordinal %d missing from index", ErrCorruptArtifact, ordinal)
		}
		vectors[i] = v
	}

	fresh, err := flat.New(func(o *flat.Options) {
		o.Dimension = s.idx.Dimension()
		o.Metric = s.idx.Metric()
	})
	if err != nil {
		return translateError(err)
	}

	if len(vectors) > 0 {
		if _, err := fresh.Append(ctx, vectors); err != nil {
			return translateError(err)
		}
	}

	remapped := make(map[uint32]Record, len(ordinals))
	for i, ordinal := range ordinals {
		remapped[uint32(i)] = s.records[ordinal]
	}

	s.idx = fresh
	s.records = remapped
	s.tombstones.Clear()
	s.rebuilds++

	return nil
}

// Count returns the number of live records. Unlike the mutating and
// querying operations, Count keeps answering after Close: it reads the
// in-memory snapshot and cannot observe divergent state.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// Stats returns a snapshot of store state. Like Count it remains
// usable after Close.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		Dimension:      s.idx.Dimension(),
		VectorCount:    s.idx.Count(),
		LiveCount:      len(s.records),
		TombstoneCount: int(s.tombstones.GetCardinality()),
		Rebuilds:       s.rebuilds,
		Metric:         s.idx.Metric(),
	}
}

// Close marks the store closed. Artifacts are persisted by every
// mutation, so Close has nothing left to flush.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.closed = true

	return nil
}

// metaPayload is the codec-encoded body of the metadata artifact.
// Ordinals are keyed as decimal strings.
type metaPayload struct {
	Records map[string]Record `json:"records"`
}

func (s *Store) metaPath() string {
	return s.path + MetaSuffix
}

// persistLocked writes the artifacts, index first so a crash between
// the two writes leaves the index ahead of the metadata, which load
// resolves as tombstones. Caller holds the write lock. withIndex false
// skips the index artifact for mutations that only touched metadata.
func (s *Store) persistLocked(ctx context.Context, withIndex bool) error {
	start := time.Now()

	err := s.persist(ctx, withIndex)

	s.opts.metricsCollector.RecordPersist(time.Since(start), err)
	s.opts.logger.LogPersist(ctx, s.path, s.idx.Count(), err)

	return err
}

func (s *Store) persist(ctx context.Context, withIndex bool) error {
	if withIndex {
		if err := s.idx.SaveToFile(s.path); err != nil {
			return &PersistError{Op: "save index", Path: s.path, Err: err}
		}
	}

	payload := metaPayload{Records: make(map[string]Record, len(s.records))}
	for ordinal, record := range s.records {
		payload.Records[strconv.FormatUint(uint64(ordinal), 10)] = record
	}

	body, err := s.opts.codec.Marshal(payload)
	if err != nil {
		return &PersistError{Op: "encode metadata", Path: s.metaPath(), Err: err}
	}

	if err := persistence.SaveToFile(s.metaPath(), func(w *bufio.Writer) error {
		if err := persistence.WriteMetaHeader(w, s.opts.codec.Name()); err != nil {
			return err
		}
		_, err := w.Write(body)
		return err
	}); err != nil {
		return &PersistError{Op: "save metadata", Path: s.metaPath(), Err: err}
	}

	if s.opts.mirror != nil {
		if err := s.mirrorArtifacts(ctx); err != nil {
			// Mirroring is best effort: the local artifacts are the source
			// of truth.
			s.opts.logger.WarnContext(ctx, "mirror upload failed", "error", err)
		}
	}

	return nil
}

// mirrorArtifacts uploads both artifacts to the configured blob store.
// A PairWriter store receives them as one atomic publication; otherwise
// both uploads run concurrently.
func (s *Store) mirrorArtifacts(ctx context.Context) error {
	indexData, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	metaData, err := os.ReadFile(s.metaPath())
	if err != nil {
		return err
	}

	base := filepath.Base(s.path)
	indexName := path.Join(s.opts.mirrorPrefix, base)
	metaName := path.Join(s.opts.mirrorPrefix, base+MetaSuffix)

	if pw, ok := s.opts.mirror.(blobstore.PairWriter); ok {
		return pw.PutPair(ctx,
			blobstore.Object{Name: indexName, Data: indexData},
			blobstore.Object{Name: metaName, Data: metaData},
		)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.opts.mirror.Put(gctx, indexName, indexData) })
	g.Go(func() error { return s.opts.mirror.Put(gctx, metaName, metaData) })

	return g.Wait()
}

// load reads both artifacts and reconciles them. Index ordinals with no
// metadata entry become tombstones; metadata entries past the index
// mean the metadata is newer than the index, which the crash model
// cannot produce, so they fail the load.
func (s *Store) load() error {
	idx, err := flat.LoadFromFile(s.path)
	if err != nil {
		return s.loadError("load index", s.path, err)
	}
	s.idx = idx

	payload, err := s.loadMeta()
	if err != nil {
		return err
	}

	total := uint32(idx.Count())
	for key, record := range payload.Records {
		ordinal64, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: bad ordinal key %q", ErrCorruptArtifact, key)
		}
		ordinal := uint32(ordinal64)
		if ordinal >= total {
			return fmt.Errorf("%w: metadata ordinal %d beyond index count %d",
				ErrCorruptArtifact, ordinal, total)
		}
		s.records[ordinal] = record
	}

	for ordinal := uint32(0); ordinal < total; ordinal++ {
		if _, ok := s.records[ordinal]; !ok {
			s.tombstones.Add(ordinal)
		}
	}

	return nil
}

// loadMeta reads the metadata artifact, resolving the codec recorded in
// its header. A missing artifact yields an empty payload: every ordinal
// becomes a tombstone.
func (s *Store) loadMeta() (metaPayload, error) {
	payload := metaPayload{Records: map[string]Record{}}

	err := persistence.LoadFromFile(s.metaPath(), func(r *bufio.Reader) error {
		codecName, err := persistence.ReadMetaHeader(r)
		if err != nil {
			return err
		}

		c, err := codec.ByName(codecName)
		if err != nil {
			return err
		}

		body, err := io.ReadAll(r)
		if err != nil {
			return err
		}

		if err := c.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptArtifact, err)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return metaPayload{Records: map[string]Record{}}, nil
	}
	if err != nil {
		return metaPayload{}, s.loadError("load metadata", s.metaPath(), err)
	}

	return payload, nil
}

// loadError classifies a load failure: artifact validation problems
// surface as ErrCorruptArtifact, everything else as a PersistError.
func (s *Store) loadError(op, path string, err error) error {
	translated := translateError(err)
	if errors.Is(translated, ErrCorruptArtifact) {
		return translated
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: truncated artifact %s", ErrCorruptArtifact, path)
	}

	return &PersistError{Op: op, Path: path, Err: err}
}
