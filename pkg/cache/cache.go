// Package cache provides an LRU cache for built control flow graphs with
// msgpack disk persistence. Keys embed a content hash, so edited files
// invalidate naturally on the next run.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/l3aro/go-flow-graph/pkg/cfg"
)

// Key derives the cache key for one function's graph: the source path, a
// truncated content hash, and the function name.
func Key(path string, content []byte, function string) string {
	sum := sha256.Sum256(content)
	return path + "@" + hex.EncodeToString(sum[:8]) + ":" + function
}

// Entry is one cached graph with metadata.
type Entry struct {
	Key       string                 `msgpack:"key"`
	Graph     *cfg.SerializableGraph `msgpack:"graph"`
	CreatedAt int64                  `msgpack:"created_at"`
}

// Options configures the graph cache.
type Options struct {
	// MaxSize is the maximum number of cached graphs. 0 means unlimited.
	MaxSize int

	// OnEvict is called when an entry is evicted.
	OnEvict func(key string, g *cfg.SerializableGraph)
}

// GraphCache is an in-memory LRU cache of serialized graphs with optional
// disk persistence. Safe for concurrent use.
type GraphCache struct {
	mu      sync.RWMutex
	items   map[string]*listItem
	lru     *list
	maxSize int
	onEvict func(key string, g *cfg.SerializableGraph)
}

// listItem is an item in the doubly-linked LRU list.
type listItem struct {
	Entry
	prev *listItem
	next *listItem
}

// list is a doubly-linked list with the most recently used item at the
// front.
type list struct {
	head *listItem
	tail *listItem
	len  int
}

func (l *list) pushFront(item *listItem) {
	item.next = l.head
	item.prev = nil
	if l.head != nil {
		l.head.prev = item
	}
	l.head = item
	if l.tail == nil {
		l.tail = item
	}
	l.len++
}

func (l *list) remove(item *listItem) {
	if item.prev != nil {
		item.prev.next = item.next
	} else {
		l.head = item.next
	}
	if item.next != nil {
		item.next.prev = item.prev
	} else {
		l.tail = item.prev
	}
	item.prev = nil
	item.next = nil
	l.len--
}

func (l *list) moveToFront(item *listItem) {
	if item == l.head {
		return
	}
	l.remove(item)
	l.pushFront(item)
}

func (l *list) removeBack() *listItem {
	item := l.tail
	if item == nil {
		return nil
	}
	l.remove(item)
	return item
}

// New creates a graph cache with the given options.
func New(opts Options) *GraphCache {
	return &GraphCache{
		items:   make(map[string]*listItem),
		lru:     &list{},
		maxSize: opts.MaxSize,
		onEvict: opts.OnEvict,
	}
}

// Get retrieves a cached graph and marks it recently used.
func (c *GraphCache) Get(key string) (*cfg.SerializableGraph, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found {
		return nil, false
	}
	c.lru.moveToFront(item)
	return item.Graph, true
}

// Set stores a graph, evicting the least recently used entries when the
// cache exceeds its size limit.
func (c *GraphCache) Set(key string, g *cfg.SerializableGraph) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item, exists := c.items[key]; exists {
		item.Graph = g
		c.lru.moveToFront(item)
		return
	}

	item := &listItem{Entry: Entry{
		Key:       key,
		Graph:     g,
		CreatedAt: time.Now().Unix(),
	}}
	c.items[key] = item
	c.lru.pushFront(item)

	for c.maxSize > 0 && c.lru.len > c.maxSize {
		evicted := c.lru.removeBack()
		if evicted == nil {
			break
		}
		delete(c.items, evicted.Key)
		if c.onEvict != nil {
			c.onEvict(evicted.Key, evicted.Graph)
		}
	}
}

// Delete removes a key from the cache.
func (c *GraphCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found {
		return
	}
	c.lru.remove(item)
	delete(c.items, key)
	if c.onEvict != nil {
		c.onEvict(item.Key, item.Graph)
	}
}

// Clear removes all entries.
func (c *GraphCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*listItem)
	c.lru = &list{}
}

// Len returns the number of cached graphs.
func (c *GraphCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Save persists the cache to a writer using msgpack, least recently used
// entries first so Load restores the same LRU order.
func (c *GraphCache) Save(w io.Writer) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]Entry, 0, len(c.items))
	for item := c.lru.tail; item != nil; item = item.prev {
		entries = append(entries, item.Entry)
	}

	return msgpack.NewEncoder(w).Encode(entries)
}

// Load restores the cache from a reader, replacing current contents.
func (c *GraphCache) Load(r io.Reader) error {
	var entries []Entry
	if err := msgpack.NewDecoder(r).Decode(&entries); err != nil {
		return fmt.Errorf("decoding cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*listItem)
	c.lru = &list{}
	for _, entry := range entries {
		item := &listItem{Entry: entry}
		c.items[entry.Key] = item
		c.lru.pushFront(item)
	}
	return nil
}

// SaveFile persists the cache to a file, creating parent directories.
func (c *GraphCache) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer f.Close()
	return c.Save(f)
}

// LoadFile restores the cache from a file. A missing file is not an error;
// the cache simply starts empty.
func (c *GraphCache) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening cache file: %w", err)
	}
	defer f.Close()
	return c.Load(f)
}
