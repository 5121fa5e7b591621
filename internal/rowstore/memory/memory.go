// Package memory is an in-process LiteTable row store. Rows are spread over shards by an FNV
// hash of the row key and every shard has its own lock, so concurrent tasks writing different
// rows rarely contend.
//
// Prefix scans have to visit every shard. Each shard is read under its own read lock and the
// matching rows are copied out before the lock is released, so an iterator never observes
// later writes.
package memory

import (
	"context"
	"errors"
	"fmt"
	"github.com/litetable/litetable-scheme/internal/litetable"
	"github.com/litetable/litetable-scheme/internal/request"
	"github.com/litetable/litetable-scheme/internal/rowstore"
	"github.com/rs/zerolog/log"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
)

var defaultShardCount = 2

// shard is a manager for a single shard of in-memory litetable.Data.
type shard struct {
	data  litetable.Data
	mutex sync.RWMutex
}

// Store is an in-memory row store.
type Store struct {
	familyMux       sync.RWMutex
	allowedFamilies []string
	dataFile        string

	shardCount int
	shardMap   []*shard
}

type Config struct {
	// Families are the column families writes are allowed into.
	Families []string
	// ShardCount defaults to 2.
	ShardCount int
	// DataFile, when set, is loaded by New if it exists and rewritten by Stop.
	DataFile string
}

func (c *Config) validate() error {
	var errGrp []error
	if c.ShardCount < 0 || c.ShardCount > 50 {
		errGrp = append(errGrp, fmt.Errorf("shard count must be between 1 and 50"))
	}
	for _, f := range c.Families {
		if f == "" {
			errGrp = append(errGrp, errors.New("family names cannot be empty"))
			break
		}
	}
	return errors.Join(errGrp...)
}

// New creates an empty store.
func New(cfg *Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	count := cfg.ShardCount
	if count == 0 {
		count = defaultShardCount
	}

	s := &Store{
		allowedFamilies: append([]string(nil), cfg.Families...),
		dataFile:        cfg.DataFile,
		shardCount:      count,
		shardMap:        make([]*shard, count),
	}
	for i := range s.shardMap {
		s.shardMap[i] = &shard{data: make(litetable.Data)}
	}

	if s.dataFile != "" {
		if err := s.load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) Start() error { return nil }

// Stop saves the store to its data file, if it has one.
func (s *Store) Stop() error {
	if s.dataFile == "" {
		return nil
	}
	return s.save()
}

func (s *Store) Name() string {
	return "Memory Row Store"
}

// getShardIndex determines which shard a particular row key belongs to.
func (s *Store) getShardIndex(rowKey string) int {
	if s.shardCount <= 0 {
		return 0
	}

	// Use FNV-1a hash algorithm for distributing keys
	h := fnv.New32a()
	_, _ = h.Write([]byte(rowKey))
	hash := h.Sum32()

	return int(hash % uint32(s.shardCount))
}

// CreateFamilies allows writes into the given families.
func (s *Store) CreateFamilies(families ...string) {
	s.familyMux.Lock()
	defer s.familyMux.Unlock()
	for _, f := range families {
		if !s.isFamilyAllowed(f) {
			s.allowedFamilies = append(s.allowedFamilies, f)
		}
	}
}

// IsFamilyAllowed reports whether the family has been created.
func (s *Store) IsFamilyAllowed(family string) bool {
	s.familyMux.RLock()
	defer s.familyMux.RUnlock()
	return s.isFamilyAllowed(family)
}

func (s *Store) isFamilyAllowed(family string) bool {
	for _, f := range s.allowedFamilies {
		if f == family {
			return true
		}
	}
	return false
}

// Apply writes all qualifier-value pairs with the same timestamp.
func (s *Store) Apply(rowKey litetable.EntityID, family string, qualifiers []string,
	values [][]byte, timestamp int64) error {
	if !s.IsFamilyAllowed(family) {
		return fmt.Errorf("column family not allowed: %s", family)
	}
	if len(qualifiers) != len(values) {
		return fmt.Errorf("number of qualifiers (%d) doesn't match number of values (%d)",
			len(qualifiers), len(values))
	}

	sh := s.shardMap[s.getShardIndex(string(rowKey))]
	sh.mutex.Lock()
	defer sh.mutex.Unlock()

	row := sh.ensure(string(rowKey), family)
	for i, qualifier := range qualifiers {
		row[family][qualifier] = append(row[family][qualifier], litetable.TimestampedValue{
			Value:     values[i],
			Timestamp: timestamp,
		})
	}
	return nil
}

func (sh *shard) ensure(rowKey, family string) map[string]litetable.VersionedQualifier {
	if _, exists := sh.data[rowKey]; !exists {
		sh.data[rowKey] = make(map[string]litetable.VersionedQualifier)
	}
	if _, exists := sh.data[rowKey][family]; !exists {
		sh.data[rowKey][family] = make(litetable.VersionedQualifier)
	}
	return sh.data[rowKey]
}

// Scan selects every row in the partition through the data request. Rows are yielded in key
// order; rows with nothing left after selection are still yielded, empty, so the caller can
// decide what a missing column means.
func (s *Store) Scan(ctx context.Context, req *request.DataRequest,
	p rowstore.Partition) (rowstore.RowIterator, error) {
	var (
		mutex sync.Mutex
		wg    sync.WaitGroup
		rows  []*litetable.Row
	)

	wg.Add(len(s.shardMap))
	for _, sh := range s.shardMap {
		go func(sh *shard) {
			defer wg.Done()

			var local []*litetable.Row
			sh.mutex.RLock()
			for rowKey, columns := range sh.data {
				if !strings.HasPrefix(rowKey, p.Prefix) {
					continue
				}
				local = append(local, req.Select(&litetable.Row{
					Key:     litetable.EntityID(rowKey),
					Columns: columns,
				}))
			}
			sh.mutex.RUnlock()

			mutex.Lock()
			rows = append(rows, local...)
			mutex.Unlock()
		}(sh)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Key < rows[j].Key
	})

	log.Debug().Msgf("scanned %d rows with prefix %q", len(rows), p.Prefix)
	return rowstore.NewSliceIterator(rows), nil
}

// OpenWriter returns a writer bound to this store.
func (s *Store) OpenWriter(_ context.Context) (rowstore.Writer, error) {
	return &writer{store: s}, nil
}

type writer struct {
	store  *Store
	closed bool
}

func (w *writer) Put(ctx context.Context, key litetable.EntityID, family, qualifier string,
	timestamp int64, value []byte) error {
	if w.closed {
		return errors.New("writer is closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return w.store.Apply(key, family, []string{qualifier}, [][]byte{value}, timestamp)
}

func (w *writer) Close() error {
	w.closed = true
	return nil
}
