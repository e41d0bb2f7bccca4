package compiler

import (
	"log/slog"
	"sync"

	"github.com/edwingeng/deque"
	"github.com/zeebo/blake3"

	"github.com/zurustar/bangla/pkg/compiler/ast"
)

// DefaultCacheSize is the number of programs a ProgramCache keeps when no
// size is given.
const DefaultCacheSize = 64

// ProgramCache holds parsed programs keyed by the blake3 hash of their
// source. When full, the oldest entry is evicted first.
// Only successful parses are cached; programs are read-only once built,
// so a cached program may be evaluated any number of times.
type ProgramCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*ast.Program
	order    deque.Deque
	hits     int
	misses   int
	log      *slog.Logger
}

// NewProgramCache creates a cache holding up to capacity programs.
func NewProgramCache(capacity int, log *slog.Logger) *ProgramCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &ProgramCache{
		capacity: capacity,
		entries:  make(map[string]*ast.Program),
		order:    deque.NewDeque(),
		log:      log,
	}
}

func hashSource(source string) string {
	h := blake3.New()
	h.WriteString(source)
	return string(h.Sum(nil))
}

// Compile returns the cached program for source, parsing and caching it on
// a miss. Sources that fail to parse are not cached.
func (c *ProgramCache) Compile(source string) (*ast.Program, []*CompileError) {
	key := hashSource(source)

	c.mu.Lock()
	if program, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		c.log.Debug("program cache hit", "bytes", len(source))
		return program, nil
	}
	c.misses++
	c.mu.Unlock()

	program, errs := Compile(source)
	if len(errs) > 0 {
		return nil, errs
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		for c.order.Len() >= c.capacity {
			oldest := c.order.PopFront().(string)
			delete(c.entries, oldest)
		}
		c.order.PushBack(key)
		c.entries[key] = program
	}
	c.log.Debug("program cached", "statements", len(program.Statements), "entries", len(c.entries))

	return program, nil
}

// Len returns the number of cached programs.
func (c *ProgramCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the hit and miss counts.
func (c *ProgramCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Clear drops every cached program.
func (c *ProgramCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*ast.Program)
	c.order = deque.NewDeque()
}
