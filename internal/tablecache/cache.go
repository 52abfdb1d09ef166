// Package tablecache shares built interpolation tables between evaluators.
// Lookups go memory, then the optional SQLite store, then a fresh build; a
// build for an unseen key runs exactly once even under concurrent requests.
package tablecache

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/danielpatrickdp/eloss/internal/logging"
	"github.com/danielpatrickdp/eloss/internal/numeric"
	"github.com/danielpatrickdp/eloss/internal/tablestore"
)

// Stats counts where tables came from.
type Stats struct {
	Hits   int64
	Loads  int64
	Builds int64
}

// Cache holds immutable tables keyed by fingerprint and name.
type Cache struct {
	store *tablestore.Store

	mu     sync.RWMutex
	tables map[string]any

	group  singleflight.Group
	hits   atomic.Int64
	loads  atomic.Int64
	builds atomic.Int64
}

// New creates a cache. store may be nil for memory-only operation.
func New(store *tablestore.Store) *Cache {
	return &Cache{store: store, tables: make(map[string]any)}
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Loads: c.loads.Load(), Builds: c.builds.Load()}
}

// Len returns the number of tables held in memory.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

// #region get-1d
// Get1D returns the table for key. A persisted table is used only when its
// definition matches def; otherwise build runs and the result is saved.
func (c *Cache) Get1D(key tablestore.Key, def numeric.Definition1D, build func() (*numeric.Interpolant, error)) (*numeric.Interpolant, error) {
	id := key.String() + "#1"
	if v, ok := c.lookup(id); ok {
		c.hits.Add(1)
		return v.(*numeric.Interpolant), nil
	}

	v, err, _ := c.group.Do(id, func() (any, error) {
		if v, ok := c.lookup(id); ok {
			return v, nil
		}
		if c.store != nil {
			snap, ok, err := c.store.Load(key)
			if err != nil {
				log.Printf("tablecache: load %s: %v", key, err)
			}
			if ok && snap.Def.Hash() == def.Hash() {
				ip, err := numeric.FromSnapshot(snap)
				if err == nil {
					c.loads.Add(1)
					c.record(key, "", logging.SourceLoaded, len(snap.Values), 0)
					c.put(id, ip)
					return ip, nil
				}
				log.Printf("tablecache: discard %s: %v", key, err)
			}
		}

		start := time.Now()
		ip, err := build()
		if err != nil {
			return nil, err
		}
		c.builds.Add(1)
		if c.store != nil {
			rec, err := c.store.Save(key, ip.Snapshot())
			if err != nil {
				log.Printf("tablecache: save %s: %v", key, err)
			} else {
				c.record(key, rec.BuildID, logging.SourceBuilt, rec.Nodes, time.Since(start))
			}
		}
		c.put(id, ip)
		return ip, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*numeric.Interpolant), nil
}
// #endregion get-1d

// #region get-2d
// Get2D is Get1D for two-dimensional tables.
func (c *Cache) Get2D(key tablestore.Key, def numeric.Definition2D, build func() (*numeric.Interpolant2D, error)) (*numeric.Interpolant2D, error) {
	id := key.String() + "#2"
	if v, ok := c.lookup(id); ok {
		c.hits.Add(1)
		return v.(*numeric.Interpolant2D), nil
	}

	v, err, _ := c.group.Do(id, func() (any, error) {
		if v, ok := c.lookup(id); ok {
			return v, nil
		}
		if c.store != nil {
			snap, ok, err := c.store.Load2D(key)
			if err != nil {
				log.Printf("tablecache: load %s: %v", key, err)
			}
			if ok && snap.Def.Hash() == def.Hash() {
				ip, err := numeric.FromSnapshot2D(snap)
				if err == nil {
					c.loads.Add(1)
					c.record(key, "", logging.SourceLoaded, len(snap.Values), 0)
					c.put(id, ip)
					return ip, nil
				}
				log.Printf("tablecache: discard %s: %v", key, err)
			}
		}

		start := time.Now()
		ip, err := build()
		if err != nil {
			return nil, err
		}
		c.builds.Add(1)
		if c.store != nil {
			rec, err := c.store.Save2D(key, ip.Snapshot())
			if err != nil {
				log.Printf("tablecache: save %s: %v", key, err)
			} else {
				c.record(key, rec.BuildID, logging.SourceBuilt, rec.Nodes, time.Since(start))
			}
		}
		c.put(id, ip)
		return ip, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*numeric.Interpolant2D), nil
}
// #endregion get-2d

// #region helpers
func (c *Cache) lookup(id string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.tables[id]
	return v, ok
}

func (c *Cache) put(id string, v any) {
	c.mu.Lock()
	c.tables[id] = v
	c.mu.Unlock()
}

// record writes a build_log row; failures are logged and ignored.
func (c *Cache) record(key tablestore.Key, buildID, source string, nodes int, d time.Duration) {
	err := logging.LogBuild(c.store.DB(), logging.BuildEntry{
		BuildID:     buildID,
		Fingerprint: key.Hex(),
		Name:        key.Name,
		Source:      source,
		Nodes:       nodes,
		Duration:    d,
	})
	if err != nil {
		log.Printf("tablecache: %v", err)
	}
}
// #endregion helpers
