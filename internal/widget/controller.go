package widget

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dgallion1/docsearch/internal/index"
	"github.com/samber/lo"
)

// State is the lifecycle of a Controller.
type State int32

const (
	Uninitialized State = iota
	Ready
	Degraded
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Degraded:
		return "degraded"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// ErrAlreadyLoaded is returned by a second call to Load.
var ErrAlreadyLoaded = errors.New("search index already loaded")

// Result is one rendered search result.
type Result struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

// Controller owns the loaded index and answers queries against it. The index
// is set once by Load; until then, and forever after a failed load, every
// query returns no results.
type Controller struct {
	log   *slog.Logger
	limit int

	mu      sync.Mutex
	started bool

	state atomic.Int32
	ix    atomic.Pointer[index.Index]
}

// NewController creates an uninitialized controller. limit caps results per
// query; zero means no cap.
func NewController(log *slog.Logger, limit int) *Controller {
	return &Controller{log: log, limit: limit}
}

// Load fetches the artifact and rebuilds the index. It may be called once.
// A failure leaves the controller degraded and is not retried.
func (c *Controller) Load(ctx context.Context, f Fetcher) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyLoaded
	}
	c.started = true
	c.mu.Unlock()

	log := c.log.With("source", f.String())

	rc, err := f.Fetch(ctx)
	if err != nil {
		return c.degrade(log, err)
	}
	defer rc.Close()

	ix, err := index.Load(rc)
	if err != nil {
		return c.degrade(log, err)
	}

	c.ix.Store(ix)
	c.state.Store(int32(Ready))
	log.Info("search index loaded", "documents", ix.Len())
	return nil
}

func (c *Controller) degrade(log *slog.Logger, err error) error {
	c.state.Store(int32(Degraded))
	log.Error("search index could not be loaded", "error", err)
	return err
}

// State reports the current lifecycle state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Documents returns the number of loaded documents.
func (c *Controller) Documents() int {
	if ix := c.ix.Load(); ix != nil {
		return ix.Len()
	}
	return 0
}

// Search runs the raw query string. Queries the index rejects are logged and
// produce no results.
func (c *Controller) Search(query string) []Result {
	ix := c.ix.Load()
	if c.State() != Ready || ix == nil {
		return []Result{}
	}

	hits, err := ix.Search(query, c.limit)
	if err != nil {
		c.log.Warn("query rejected", "query", query, "error", err)
		return []Result{}
	}
	return lo.Map(hits, func(h index.Hit, _ int) Result {
		return Result{ID: h.ID, Title: h.Title, URL: h.URL, Score: h.Score}
	})
}

// HandleInput answers one input event: it searches for query and writes the
// replacement content of the results container to w.
func (c *Controller) HandleInput(w io.Writer, query string) ([]Result, error) {
	results := c.Search(query)
	return results, Render(w, results, query)
}

// Close releases the loaded index, if any.
func (c *Controller) Close() error {
	if ix := c.ix.Swap(nil); ix != nil {
		return ix.Close()
	}
	return nil
}
