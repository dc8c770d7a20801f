package storefront

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/you/storefront/domain"
)

// Line is one keyed entry of a remote collection
type Line interface {
	Key() string
}

// Resource describes a remote collection's endpoints and behavior.
// An empty Update or Clear path marks the operation unsupported.
type Resource struct {
	Name   string
	List   string
	Add    string
	Update string
	Remove string
	Clear  string

	// AddByPath puts the product id in the add path instead of a
	// {product_id, quantity} body.
	AddByPath bool
	// RequiresAuth resources read as empty while anonymous and reject
	// mutations with ErrAuth without a request.
	RequiresAuth bool
	// OpensDrawer opens the drawer after a confirmed add.
	OpensDrawer bool
}

// listing is the wire shape of a collection read
type listing[L Line] struct {
	Items []L   `json:"items"`
	Total int64 `json:"total"`
}

type lineQuantity struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Collection mirrors one remote collection resource. Local state is only
// ever replaced by a confirmed server read (or emptied by a confirmed
// clear), so failed mutations never show up locally.
//
// Mutations are queued and reach the server in submission order. Reads are
// sequence numbered: a response that started before the last applied one
// is dropped, so the latest started read wins.
type Collection[L Line] struct {
	res    Resource
	api    API
	auth   Authenticator
	events domain.EventSink
	logger *zap.Logger

	mutations *semaphore.Weighted
	reads     singleflight.Group

	lifetime context.Context
	cancel   context.CancelFunc
	closed   atomic.Bool

	mu         sync.RWMutex
	items      []L
	total      int64
	pending    int
	drawerOpen bool
	started    uint64
	applied    uint64
}

// NewCollection creates an empty mirror of res. Nothing is fetched until
// Fetch is called.
func NewCollection[L Line](res Resource, api API, auth Authenticator, events domain.EventSink, logger *zap.Logger) *Collection[L] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Collection[L]{
		res:       res,
		api:       api,
		auth:      auth,
		events:    events,
		logger:    logger.With(zap.String("resource", res.Name)),
		mutations: semaphore.NewWeighted(1),
		lifetime:  ctx,
		cancel:    cancel,
	}
}

// Fetch replaces local state with the server's. Concurrent standalone
// fetches share one request.
func (c *Collection[L]) Fetch(ctx context.Context) error {
	if c.closed.Load() {
		return domain.ErrClosed
	}
	ch := c.reads.DoChan("fetch", func() (any, error) {
		return nil, c.fetch(c.lifetime)
	})
	select {
	case r := <-ch:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Collection[L]) fetch(ctx context.Context) error {
	c.mu.Lock()
	c.started++
	seq := c.started
	c.mu.Unlock()

	if c.res.RequiresAuth && !c.auth.IsAuthenticated() {
		return c.apply(ctx, seq, nil, 0)
	}

	ctx, stop := c.bind(ctx)
	defer stop()

	var resp listing[L]
	if err := c.api.Get(ctx, c.res.List, &resp); err != nil {
		if c.closed.Load() {
			return domain.ErrClosed
		}
		c.publish(ctx, domain.NewEvent(domain.CollectionRefreshFailureEvent).WithError(err))
		return err
	}
	if key, dup := duplicateKey(resp.Items); dup {
		err := &domain.APIError{
			Op:     "GET " + c.res.List,
			Detail: fmt.Sprintf("duplicate line for product %s", key),
			Kind:   domain.ErrServer,
		}
		c.logger.Error("rejected collection read", zap.Error(err))
		c.publish(ctx, domain.NewEvent(domain.CollectionRefreshFailureEvent).WithError(err))
		return err
	}
	return c.apply(ctx, seq, resp.Items, resp.Total)
}

// apply installs a read result unless a newer one already landed
func (c *Collection[L]) apply(ctx context.Context, seq uint64, items []L, total int64) error {
	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		return domain.ErrClosed
	}
	if seq <= c.applied {
		c.mu.Unlock()
		c.logger.Debug("dropped stale read", zap.Uint64("seq", seq))
		return nil
	}
	c.applied = seq
	c.items = items
	c.total = total
	count := len(items)
	c.mu.Unlock()

	c.publish(ctx, domain.NewEvent(domain.CollectionRefreshedEvent).WithCount(count))
	return nil
}

// Add adds quantity of productID and refreshes
func (c *Collection[L]) Add(ctx context.Context, productID string, quantity int) error {
	if err := c.check(productID); err != nil {
		return err
	}
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	return c.mutate(ctx, "add", productID, func(ctx context.Context) error {
		if c.res.AddByPath {
			return c.api.Post(ctx, c.res.Add+"/"+productID, nil, nil)
		}
		return c.api.Post(ctx, c.res.Add, lineQuantity{ProductID: productID, Quantity: quantity}, nil)
	}, func(ctx context.Context) {
		c.refresh(ctx)
		if c.res.OpensDrawer {
			c.SetDrawerOpen(true)
			c.publish(ctx, domain.NewEvent(domain.CartDrawerOpenedEvent).WithProduct(productID))
		}
	})
}

// UpdateQuantity sets the quantity of an existing line. Quantities below one
// are rejected before any request; use Remove to drop a line.
func (c *Collection[L]) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if c.res.Update == "" {
		return fmt.Errorf("%s update: %w", c.res.Name, domain.ErrUnsupported)
	}
	if err := c.check(productID); err != nil {
		return err
	}
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	return c.mutate(ctx, "update", productID, func(ctx context.Context) error {
		return c.api.Put(ctx, c.res.Update, lineQuantity{ProductID: productID, Quantity: quantity}, nil)
	}, c.refresh)
}

// Remove drops the line for productID
func (c *Collection[L]) Remove(ctx context.Context, productID string) error {
	if err := c.check(productID); err != nil {
		return err
	}
	return c.mutate(ctx, "remove", productID, func(ctx context.Context) error {
		return c.api.Delete(ctx, c.res.Remove+"/"+productID, nil)
	}, c.refresh)
}

// Clear empties the collection. The confirmed empty state is set directly.
func (c *Collection[L]) Clear(ctx context.Context) error {
	if c.res.Clear == "" {
		return fmt.Errorf("%s clear: %w", c.res.Name, domain.ErrUnsupported)
	}
	if c.closed.Load() {
		return domain.ErrClosed
	}
	return c.mutate(ctx, "clear", "", func(ctx context.Context) error {
		return c.api.Delete(ctx, c.res.Clear, nil)
	}, func(ctx context.Context) {
		c.mu.Lock()
		c.started++
		seq := c.started
		c.mu.Unlock()
		_ = c.apply(ctx, seq, nil, 0)
	})
}

func (c *Collection[L]) check(productID string) error {
	if c.closed.Load() {
		return domain.ErrClosed
	}
	if strings.TrimSpace(productID) == "" {
		return fmt.Errorf("%w: product id is required", domain.ErrValidation)
	}
	return nil
}

// mutate runs call in queue order. then runs only after a confirmed call.
func (c *Collection[L]) mutate(ctx context.Context, op, productID string, call func(context.Context) error, then func(context.Context)) error {
	if c.res.RequiresAuth && !c.auth.IsAuthenticated() {
		return fmt.Errorf("%s %s: %w", c.res.Name, op, domain.ErrAuth)
	}

	c.mu.Lock()
	c.pending++
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.pending--
		c.mu.Unlock()
	}()

	ctx, stop := c.bind(ctx)
	defer stop()

	if err := c.mutations.Acquire(ctx, 1); err != nil {
		return c.closedOr(err)
	}
	defer c.mutations.Release(1)

	if err := call(ctx); err != nil {
		if c.closed.Load() {
			return domain.ErrClosed
		}
		c.logger.Debug("mutation failed", zap.String("op", op), zap.String("product_id", productID), zap.Error(err))
		c.publish(ctx, domain.NewEvent(domain.CollectionMutationFailedEvent).
			WithProduct(productID).WithMetadata("op", op).WithError(err))
		return err
	}

	c.publish(ctx, domain.NewEvent(domain.CollectionMutatedEvent).WithProduct(productID).WithMetadata("op", op))
	then(ctx)
	return nil
}

// refresh re-reads after a confirmed mutation. It bypasses the shared read
// so a read that started before the mutation cannot stand in for it. A
// failed refresh is reported by event; the mutation itself stands.
func (c *Collection[L]) refresh(ctx context.Context) {
	if err := c.fetch(ctx); err != nil && !errors.Is(err, domain.ErrClosed) {
		c.logger.Warn("refresh after mutation failed", zap.Error(err))
	}
}

// bind ties ctx to the collection's lifetime
func (c *Collection[L]) bind(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.lifetime, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (c *Collection[L]) closedOr(err error) error {
	if c.closed.Load() {
		return domain.ErrClosed
	}
	return err
}

func (c *Collection[L]) publish(ctx context.Context, event *domain.Event) {
	if c.events != nil {
		c.events.Publish(ctx, event.WithResource(c.res.Name))
	}
}

// Close ends the collection's lifetime. In-flight requests are cancelled,
// late responses are ignored, and later calls return ErrClosed.
func (c *Collection[L]) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.cancel()
}

// Items returns a copy of the current lines
func (c *Collection[L]) Items() []L {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.items == nil {
		return []L{}
	}
	return append([]L(nil), c.items...)
}

// Total is the server-computed total of the last applied read
func (c *Collection[L]) Total() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.total
}

// Line returns the line for productID
func (c *Collection[L]) Line(productID string) (L, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, l := range c.items {
		if l.Key() == productID {
			return l, true
		}
	}
	var zero L
	return zero, false
}

// Contains reports whether productID has a line
func (c *Collection[L]) Contains(productID string) bool {
	_, ok := c.Line(productID)
	return ok
}

// Len is the number of lines
func (c *Collection[L]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Loading is true while any mutation is queued or running
func (c *Collection[L]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pending > 0
}

// DrawerOpen reports the drawer flag
func (c *Collection[L]) DrawerOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.drawerOpen
}

// SetDrawerOpen sets the drawer flag
func (c *Collection[L]) SetDrawerOpen(open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drawerOpen = open
}

func duplicateKey[L Line](items []L) (string, bool) {
	seen := make(map[string]struct{}, len(items))
	for _, l := range items {
		k := l.Key()
		if _, ok := seen[k]; ok {
			return k, true
		}
		seen[k] = struct{}{}
	}
	return "", false
}

func isAuthError(err error) bool {
	return errors.Is(err, domain.ErrAuth)
}
