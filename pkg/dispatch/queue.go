package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dmitrymomot/notifyq/pkg/breaker"
	"github.com/dmitrymomot/notifyq/pkg/logger"
	"github.com/dmitrymomot/notifyq/pkg/metrics"
	"github.com/dmitrymomot/notifyq/pkg/notification"
	"github.com/dmitrymomot/notifyq/pkg/ratelimit"
)

// rateLimitKey is the shared fixed-window bucket for the dispatch budget.
const rateLimitKey = "dispatch"

// queued wraps a buffered notification with its retry bookkeeping.
type queued struct {
	item    notification.CreateNotification
	attempt int
}

// sendFailure pairs a failed item with the provider error.
type sendFailure struct {
	queued queued
	err    error
}

// Queue is a priority dispatch queue. A single background worker drains
// the buffer in batches; it starts on the first Enqueue and exits when
// the buffer empties. Safe for concurrent use.
type Queue struct {
	senders Senders

	batchSize     int
	maxSize       int
	rateLimit     int
	retryAttempts int
	retryDelay    time.Duration
	sendTimeout   time.Duration
	smsInterval   time.Duration

	log         *slog.Logger
	monitor     *metrics.Monitor
	breaker     *breaker.Breaker
	throttle    ratelimit.Limiter
	dropHandler DropHandler

	limiterStore ratelimit.Store
	ownsStore    bool
	limiter      ratelimit.Limiter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	buf     []queued
	running bool
	closed  bool
}

// New creates a Queue delivering through the given senders. Nil sender
// fields become no-ops.
func New(senders Senders, opts ...Option) *Queue {
	q := &Queue{
		senders:       senders.withDefaults(),
		batchSize:     DefaultBatchSize,
		maxSize:       DefaultMaxSize,
		rateLimit:     DefaultRateLimit,
		retryAttempts: DefaultRetryAttempts,
		retryDelay:    DefaultRetryDelay,
		sendTimeout:   DefaultSendTimeout,
		smsInterval:   DefaultSMSInterval,
		log:           slog.Default().With(logger.Component("dispatch")),
	}
	for _, opt := range opts {
		opt(q)
	}

	// A batch larger than the per-minute budget could never be admitted.
	if q.batchSize > q.rateLimit {
		q.batchSize = q.rateLimit
	}

	if q.limiterStore == nil {
		q.limiterStore = ratelimit.NewMemoryStore()
		q.ownsStore = true
	}

	limiter, err := ratelimit.NewFixedWindow(q.limiterStore, q.rateLimit, time.Minute)
	if err != nil {
		// Unreachable: store and limit are validated above.
		panic(err)
	}
	q.limiter = limiter

	q.ctx, q.cancel = context.WithCancel(context.Background())
	return q
}

// Enqueue buffers items for delivery and returns how many were accepted.
// The buffer is kept sorted by priority rank with FIFO order inside each
// tier; when it exceeds MaxSize the lowest-priority tail is dropped.
// Returns ErrQueueClosed after Stop.
func (q *Queue) Enqueue(ctx context.Context, items ...notification.CreateNotification) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	accepted := items
	if q.throttle != nil {
		accepted = q.applyThrottle(ctx, items)
	}
	if len(accepted) == 0 {
		return 0, nil
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0, ErrQueueClosed
	}

	for _, item := range accepted {
		q.buf = append(q.buf, queued{item: item})
	}
	sort.SliceStable(q.buf, func(i, j int) bool {
		return q.buf[i].item.Priority.Rank() < q.buf[j].item.Priority.Rank()
	})

	overflow := len(q.buf) - q.maxSize
	if overflow > 0 {
		q.buf = q.buf[:q.maxSize]
	}

	size := len(q.buf)
	start := !q.running
	if start {
		q.running = true
		q.wg.Add(1)
	}
	q.mu.Unlock()

	if overflow > 0 {
		q.log.WarnContext(ctx, "queue overflow, dropping lowest-priority tail",
			slog.Int("dropped", overflow))
		if q.monitor != nil {
			q.monitor.Record(metrics.MetricDroppedOverflow, float64(overflow))
		}
	}
	if q.monitor != nil {
		q.monitor.Record(metrics.MetricQueueSize, float64(size))
	}
	if start {
		go q.worker()
	}
	return len(accepted), nil
}

// applyThrottle filters out items whose per-user budget is exhausted.
// Limiter errors fail open: delivery matters more than the cap.
func (q *Queue) applyThrottle(ctx context.Context, items []notification.CreateNotification) []notification.CreateNotification {
	accepted := make([]notification.CreateNotification, 0, len(items))
	for _, item := range items {
		key := fmt.Sprintf("throttle:%s:%s:%s", item.UserID, item.Type, item.Channel)
		res, err := q.throttle.Allow(ctx, key)
		if err != nil {
			q.log.WarnContext(ctx, "throttle check failed, allowing item", logger.Error(err))
			accepted = append(accepted, item)
			continue
		}
		if !res.Allowed {
			q.log.DebugContext(ctx, "notification throttled",
				logger.UserID(item.UserID),
				logger.NotificationType(item.Type),
				logger.Channel(item.Channel))
			continue
		}
		accepted = append(accepted, item)
	}
	return accepted
}

// Len reports the number of buffered notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// Running reports whether the background worker is active.
func (q *Queue) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// Stop closes the queue, cancels in-flight sends, and waits for the
// worker to exit. Buffered items are discarded. Idempotent.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()

	if q.ownsStore {
		if closer, ok := q.limiterStore.(io.Closer); ok {
			_ = closer.Close()
		}
	}
}

// worker drains the buffer one batch at a time and exits when empty.
func (q *Queue) worker() {
	defer q.wg.Done()
	defer func() {
		q.mu.Lock()
		q.running = false
		q.mu.Unlock()
	}()

	for {
		batch := q.popBatch()
		if len(batch) == 0 {
			return
		}

		if err := q.awaitBudget(len(batch)); err != nil {
			return
		}

		start := time.Now()
		failures := q.dispatchBatch(batch)
		elapsed := time.Since(start)

		if q.monitor != nil {
			q.monitor.Record(metrics.MetricProcessingTime, float64(elapsed.Milliseconds()))
			q.monitor.Record(metrics.MetricErrorRate, float64(len(failures))/float64(len(batch)))
			q.monitor.Record(metrics.MetricQueueSize, float64(q.Len()))
		}

		q.handleFailures(failures)

		// Spread batches evenly across the rate window.
		if err := q.sleep(time.Minute / time.Duration(q.rateLimit)); err != nil {
			return
		}
	}
}

// popBatch removes up to batchSize items from the head of the buffer.
// When the buffer is empty it clears the running flag in the same
// critical section, so a concurrent Enqueue either sees the worker
// running or starts a new one.
func (q *Queue) popBatch() []queued {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.buf) == 0 {
		q.running = false
		return nil
	}

	n := min(q.batchSize, len(q.buf))
	batch := make([]queued, n)
	copy(batch, q.buf[:n])
	q.buf = append(q.buf[:0], q.buf[n:]...)
	return batch
}

// awaitBudget blocks until the rate window admits n sends or the queue
// is stopped. Limiter errors fail open.
func (q *Queue) awaitBudget(n int) error {
	for {
		res, err := q.limiter.AllowN(q.ctx, rateLimitKey, n)
		if err != nil {
			if q.ctx.Err() != nil {
				return q.ctx.Err()
			}
			q.log.Warn("rate limiter check failed, proceeding", logger.Error(err))
			return nil
		}
		if res.Allowed {
			return nil
		}
		if err := q.sleep(q.retryDelay); err != nil {
			return err
		}
	}
}

// dispatchBatch routes the batch to channel senders, one goroutine per
// channel group, and waits for every group to settle.
func (q *Queue) dispatchBatch(batch []queued) []sendFailure {
	groups := make(map[notification.Channel][]queued)
	for _, item := range batch {
		groups[item.item.Channel] = append(groups[item.item.Channel], item)
	}

	var (
		mu       sync.Mutex
		failures []sendFailure
		wg       sync.WaitGroup
	)
	for ch, items := range groups {
		wg.Add(1)
		go func(ch notification.Channel, items []queued) {
			defer wg.Done()
			failed := q.dispatchChannel(ch, items)
			if len(failed) > 0 {
				mu.Lock()
				failures = append(failures, failed...)
				mu.Unlock()
			}
		}(ch, items)
	}
	wg.Wait()
	return failures
}

func (q *Queue) dispatchChannel(ch notification.Channel, items []queued) []sendFailure {
	switch ch {
	case notification.ChannelPush:
		return q.dispatchPush(items)
	case notification.ChannelEmail:
		return q.dispatchEmail(items)
	case notification.ChannelSMS:
		return q.dispatchSMS(items)
	case notification.ChannelInApp:
		return q.dispatchInApp(items)
	default:
		return failAll(items, fmt.Errorf("unknown channel %q", ch))
	}
}

// dispatchPush groups items per user so each user's devices receive one
// batched delivery.
func (q *Queue) dispatchPush(items []queued) []sendFailure {
	byUser := make(map[string][]queued)
	order := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := byUser[item.item.UserID]; !ok {
			order = append(order, item.item.UserID)
		}
		byUser[item.item.UserID] = append(byUser[item.item.UserID], item)
	}

	var failures []sendFailure
	for _, userID := range order {
		group := byUser[userID]
		err := q.send(func(ctx context.Context) error {
			return q.senders.Push.SendBatch(ctx, userID, unwrap(group))
		})
		if err != nil {
			failures = append(failures, failAll(group, err)...)
		}
	}
	return failures
}

// dispatchEmail groups items per template so each template renders one
// digest send.
func (q *Queue) dispatchEmail(items []queued) []sendFailure {
	byType := make(map[notification.Type][]queued)
	order := make([]notification.Type, 0, len(items))
	for _, item := range items {
		if _, ok := byType[item.item.Type]; !ok {
			order = append(order, item.item.Type)
		}
		byType[item.item.Type] = append(byType[item.item.Type], item)
	}

	var failures []sendFailure
	for _, t := range order {
		group := byType[t]
		err := q.send(func(ctx context.Context) error {
			return q.senders.Email.SendBatch(ctx, t, unwrap(group))
		})
		if err != nil {
			failures = append(failures, failAll(group, err)...)
		}
	}
	return failures
}

// dispatchSMS sends sequentially with a pacing interval; SMS gateways
// rate-limit aggressively.
func (q *Queue) dispatchSMS(items []queued) []sendFailure {
	var failures []sendFailure
	for i, item := range items {
		if i > 0 && q.smsInterval > 0 {
			if err := q.sleep(q.smsInterval); err != nil {
				failures = append(failures, failAll(items[i:], err)...)
				return failures
			}
		}
		it := item
		err := q.send(func(ctx context.Context) error {
			return q.senders.SMS.Send(ctx, it.item)
		})
		if err != nil {
			failures = append(failures, sendFailure{queued: it, err: err})
		}
	}
	return failures
}

func (q *Queue) dispatchInApp(items []queued) []sendFailure {
	err := q.send(func(ctx context.Context) error {
		return q.senders.InApp.SendBatch(ctx, unwrap(items))
	})
	if err != nil {
		return failAll(items, err)
	}
	return nil
}

// send timeboxes a provider call and routes it through the breaker when
// one is configured.
func (q *Queue) send(op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(q.ctx, q.sendTimeout)
	defer cancel()

	if q.breaker != nil {
		return q.breaker.Execute(ctx, op)
	}
	return op(ctx)
}

// handleFailures requeues items that still have retry budget at the
// front of the buffer and hands exhausted ones to the drop handler.
func (q *Queue) handleFailures(failures []sendFailure) {
	if len(failures) == 0 {
		return
	}

	var retry []queued
	var dropped int
	for _, f := range failures {
		if errors.Is(f.err, context.Canceled) {
			// Shutdown interruption, not a provider verdict: the item
			// keeps its retry budget.
			retry = append(retry, f.queued)
			continue
		}
		if f.queued.attempt < q.retryAttempts {
			retry = append(retry, queued{item: f.queued.item, attempt: f.queued.attempt + 1})
			q.log.Warn("notification send failed, requeued",
				logger.UserID(f.queued.item.UserID),
				logger.Channel(f.queued.item.Channel),
				logger.RetryCount(f.queued.attempt+1),
				logger.Error(f.err))
			continue
		}

		dropped++
		q.log.Error("notification dropped after exhausting retries",
			logger.UserID(f.queued.item.UserID),
			logger.NotificationType(f.queued.item.Type),
			logger.Channel(f.queued.item.Channel),
			logger.RetryCount(f.queued.attempt),
			logger.Error(f.err))
		if q.dropHandler != nil {
			q.dropHandler(f.queued.item, fmt.Errorf("%w: %v", ErrSendFailed, f.err))
		}
	}

	if dropped > 0 && q.monitor != nil {
		q.monitor.Record(metrics.MetricDropped, float64(dropped))
	}
	if len(retry) > 0 {
		q.mu.Lock()
		q.buf = append(retry, q.buf...)
		q.mu.Unlock()
	}
}

// sleep waits for d unless the queue context is cancelled first.
func (q *Queue) sleep(d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-q.ctx.Done():
		return q.ctx.Err()
	case <-t.C:
		return nil
	}
}

func unwrap(items []queued) []notification.CreateNotification {
	out := make([]notification.CreateNotification, len(items))
	for i, item := range items {
		out[i] = item.item
	}
	return out
}

func failAll(items []queued, err error) []sendFailure {
	failures := make([]sendFailure, len(items))
	for i, item := range items {
		failures[i] = sendFailure{queued: item, err: err}
	}
	return failures
}
