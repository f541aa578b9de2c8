package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/wardboard/internal/api"
	"github.com/rshade/wardboard/internal/logging"
	"github.com/rshade/wardboard/internal/pagination"
)

// DefaultPreloadConcurrency bounds concurrent fetches in PreloadAll.
const DefaultPreloadConcurrency = 4

// Fetcher loads a whole collection. out is a pointer to a slice.
type Fetcher interface {
	List(ctx context.Context, resource string, out any) error
}

// Mutator sends create, update, and delete requests.
type Mutator interface {
	Create(ctx context.Context, resource string, payload any) (api.MutationResult, error)
	Update(ctx context.Context, resource string, id int, payload any) (api.MutationResult, error)
	Delete(ctx context.Context, resource string, id int) (api.MutationResult, error)
}

// Notifier shows a blocking message to the user.
type Notifier interface {
	Alert(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Alert implements Notifier.
func (f NotifierFunc) Alert(message string) { f(message) }

// View is what a render callback receives.
type View struct {
	Key        string
	Page       int
	TotalPages int
	Len        int
}

// RenderFunc re-renders whatever displays a collection.
type RenderFunc func(View)

type collection struct {
	key  string
	path string

	items       any
	length      int
	page        int
	refreshedAt time.Time

	fetch func(ctx context.Context, f Fetcher, path string) (any, int, error)
	empty func() any

	subscribers map[int]RenderFunc
	nextSubID   int
}

// Store holds every registered collection.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	order       []string

	fetcher     Fetcher
	notifier    Notifier
	logger      zerolog.Logger
	pageSize    int
	concurrency int
}

// Option configures a Store.
type Option func(*Store)

// WithPageSize overrides pagination.DefaultPageSize.
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithPreloadConcurrency bounds concurrent fetches in PreloadAll.
func WithPreloadConcurrency(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New creates an empty Store. notifier may be nil.
func New(fetcher Fetcher, notifier Notifier, logger zerolog.Logger, opts ...Option) *Store {
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	s := &Store{
		collections: make(map[string]*collection),
		fetcher:     fetcher,
		notifier:    notifier,
		logger:      logging.ComponentLogger(logger, "store"),
		pageSize:    pagination.DefaultPageSize,
		concurrency: DefaultPreloadConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a collection of T fetched from resourcePath.
func Register[T any](s *Store, key, resourcePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}

	s.collections[key] = &collection{
		key:   key,
		path:  resourcePath,
		items: []T{},
		page:  pagination.DefaultPage,
		fetch: func(ctx context.Context, f Fetcher, path string) (any, int, error) {
			items := []T{}
			if err := f.List(ctx, path, &items); err != nil {
				return nil, 0, err
			}
			if items == nil {
				items = []T{}
			}
			return items, len(items), nil
		},
		empty:       func() any { return []T{} },
		subscribers: make(map[int]RenderFunc),
	}
	s.order = append(s.order, key)
	return nil
}

// Items returns the cached items of key, or nil when the key is unknown or
// holds a different type. The slice must not be modified.
func Items[T any](s *Store, key string) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[key]
	if !ok {
		return nil
	}
	items, _ := c.items.([]T)
	return items
}

// PageItems returns the items on the current page of key.
func PageItems[T any](s *Store, key string) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[key]
	if !ok {
		return nil
	}
	items, ok := c.items.([]T)
	if !ok {
		return nil
	}
	page := pagination.ClampPage(c.page, pagination.TotalPages(c.length, s.pageSize))
	return pagination.Paginate(items, page, s.pageSize)
}

// Replace installs items as the new copy of key and re-renders it. The
// stored page number is left as is.
func Replace[T any](s *Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}

	s.mu.Lock()
	c, ok := s.collections[key]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if _, typed := c.items.([]T); !typed {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTypeMismatch, key)
	}
	c.items = items
	c.length = len(items)
	c.refreshedAt = time.Now()
	view, subs := s.snapshotLocked(c)
	s.mu.Unlock()

	notify(view, subs)
	return nil
}

// PageSize returns the number of rows per page.
func (s *Store) PageSize() int {
	return s.pageSize
}

// Keys returns registered keys in registration order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Path returns the resource path of key.
func (s *Store) Path(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[key]
	if !ok {
		return "", false
	}
	return c.path, true
}

// Len returns the number of cached items of key.
func (s *Store) Len(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.collections[key]; ok {
		return c.length
	}
	return 0
}

// TotalPages returns ceil(Len/pageSize) for key.
func (s *Store) TotalPages(key string) int {
	return pagination.TotalPages(s.Len(key), s.pageSize)
}

// Page returns the effective page of key, clamped into [1, TotalPages].
func (s *Store) Page(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[key]
	if !ok {
		return pagination.DefaultPage
	}
	return pagination.ClampPage(c.page, pagination.TotalPages(c.length, s.pageSize))
}

// RefreshedAt returns when key was last replaced, or the zero time.
func (s *Store) RefreshedAt(key string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.collections[key]; ok {
		return c.refreshedAt
	}
	return time.Time{}
}

// View returns the current render view of key.
func (s *Store) View(key string) View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[key]
	if !ok {
		return View{Key: key, Page: pagination.DefaultPage}
	}
	view, _ := s.snapshotLocked(c)
	return view
}

// ChangePage moves key to page and re-renders it. Pages outside
// [1, TotalPages] and unknown keys are ignored. It reports whether the page
// was applied.
func (s *Store) ChangePage(key string, page int) bool {
	s.mu.Lock()
	c, ok := s.collections[key]
	if !ok {
		s.mu.Unlock()
		return false
	}
	total := pagination.TotalPages(c.length, s.pageSize)
	if page < 1 || page > total {
		s.mu.Unlock()
		return false
	}
	c.page = page
	view, subs := s.snapshotLocked(c)
	s.mu.Unlock()

	notify(view, subs)
	return true
}

// Subscribe registers fn to be called whenever key is re-rendered. The
// returned function removes the subscription.
func (s *Store) Subscribe(key string, fn RenderFunc) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[key]
	if !ok || fn == nil {
		return func() {}
	}
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// Refresh re-fetches key and replaces the cached copy. On failure the user
// is alerted once, the previous items are kept, and the error is returned.
func (s *Store) Refresh(ctx context.Context, key string) error {
	s.mu.RLock()
	c, ok := s.collections[key]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	items, n, err := c.fetch(ctx, s.fetcher, c.path)
	if err != nil {
		s.reportFetchError(ctx, key, c.path, err)
		return fmt.Errorf("refreshing %s: %w", key, err)
	}

	s.install(c, items, n)
	return nil
}

// PreloadAll fetches every registered collection concurrently. A collection
// whose fetch fails is reset to empty and reported; the others still load.
// The returned error joins every failure.
func (s *Store) PreloadAll(ctx context.Context) error {
	keys := s.Keys()

	var (
		errMu sync.Mutex
		errs  []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, key := range keys {
		g.Go(func() error {
			s.mu.RLock()
			c := s.collections[key]
			s.mu.RUnlock()

			items, n, err := c.fetch(gctx, s.fetcher, c.path)
			if err != nil {
				s.reportFetchError(gctx, key, c.path, err)
				s.install(c, c.empty(), 0)
				errMu.Lock()
				errs = append(errs, fmt.Errorf("preloading %s: %w", key, err))
				errMu.Unlock()
				return nil
			}
			s.install(c, items, n)
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Debug().
		Int("collections", len(keys)).
		Int("failed", len(errs)).
		Msg("preload finished")

	return errors.Join(errs...)
}

// Create posts an already-validated payload to the resource of key. On
// success the backend message is shown and key is refreshed.
func (s *Store) Create(ctx context.Context, key string, payload any) (api.MutationResult, error) {
	return s.mutate(ctx, key, "create", func(m Mutator, path string) (api.MutationResult, error) {
		return m.Create(ctx, path, payload)
	})
}

// Update sends payload for record id of key and refreshes key on success.
func (s *Store) Update(ctx context.Context, key string, id int, payload any) (api.MutationResult, error) {
	return s.mutate(ctx, key, "update", func(m Mutator, path string) (api.MutationResult, error) {
		return m.Update(ctx, path, id, payload)
	})
}

// Delete removes record id of key and refreshes key on success.
func (s *Store) Delete(ctx context.Context, key string, id int) (api.MutationResult, error) {
	return s.mutate(ctx, key, "delete", func(m Mutator, path string) (api.MutationResult, error) {
		return m.Delete(ctx, path, id)
	})
}

func (s *Store) mutate(
	ctx context.Context,
	key, op string,
	send func(Mutator, string) (api.MutationResult, error),
) (api.MutationResult, error) {
	path, ok := s.Path(key)
	if !ok {
		return api.MutationResult{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	m, ok := s.fetcher.(Mutator)
	if !ok {
		return api.MutationResult{}, ErrReadOnly
	}

	res, err := send(m, path)
	if err != nil {
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Str("collection", key).
			Str("operation", op).
			Str(logging.TraceIDField, logging.TraceIDFromContext(ctx)).
			Msg("mutation failed")
		s.notifier.Alert("Error: " + err.Error())
		return res, fmt.Errorf("%s %s: %w", op, key, err)
	}

	s.logger.Info().
		Str("collection", key).
		Str("operation", op).
		Int("id", res.ID).
		Msg("mutation succeeded")
	if res.Message != "" {
		s.notifier.Alert(res.Message)
	}

	// A failed follow-up refresh alerts on its own and keeps the stale copy.
	_ = s.Refresh(ctx, key)
	return res, nil
}

func (s *Store) reportFetchError(ctx context.Context, key, path string, err error) {
	s.logger.Error().
		Ctx(ctx).
		Err(err).
		Str("collection", key).
		Str("path", path).
		Str(logging.TraceIDField, logging.TraceIDFromContext(ctx)).
		Msg("fetch failed")
	s.notifier.Alert("Error fetching data: " + err.Error())
}

func (s *Store) install(c *collection, items any, n int) {
	s.mu.Lock()
	c.items = items
	c.length = n
	c.refreshedAt = time.Now()
	view, subs := s.snapshotLocked(c)
	s.mu.Unlock()

	s.logger.Debug().Str("collection", c.key).Int("items", n).Msg("collection replaced")
	notify(view, subs)
}

// snapshotLocked captures the view and subscriber list. Caller holds s.mu.
func (s *Store) snapshotLocked(c *collection) (View, []RenderFunc) {
	total := pagination.TotalPages(c.length, s.pageSize)
	view := View{
		Key:        c.key,
		Page:       pagination.ClampPage(c.page, total),
		TotalPages: total,
		Len:        c.length,
	}

	subs := make([]RenderFunc, 0, len(c.subscribers))
	for id := 0; id < c.nextSubID; id++ {
		if fn, ok := c.subscribers[id]; ok {
			subs = append(subs, fn)
		}
	}
	return view, subs
}

func notify(view View, subs []RenderFunc) {
	for _, fn := range subs {
		fn(view)
	}
}
