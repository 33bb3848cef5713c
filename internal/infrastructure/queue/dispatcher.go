package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sevakendra/portal-api/internal/api/metrics"
	"github.com/sevakendra/portal-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes status notifications to a fixed set of workers using
// consistent hashing on the application ID, guaranteeing per-application
// delivery order.
type Dispatcher struct {
	workers  []chan ports.StatusNotification
	notifier ports.StatusNotifier
	log      zerolog.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.StatusNotifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.StatusNotification, numWorkers),
		notifier: notifier,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.StatusNotification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands n to the worker responsible for its application. It never
// blocks: when that worker's buffer is full the notification is dropped and
// false is returned.
func (d *Dispatcher) Enqueue(n ports.StatusNotification) bool {
	idx := d.shardIndex(n.ApplicationID)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	default:
		metrics.NotificationsDroppedTotal.Inc()
		d.log.Warn().Str("application_id", n.ApplicationID).Int("worker_id", idx).Msg("notification queue full")
		return false
	}
}

// shardIndex maps an application ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(applicationID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(applicationID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.StatusNotification) {
	defer d.wg.Done()
	depth := metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))

			start := time.Now()
			err := d.notifier.NotifyStatusChange(ctx, n)
			result := "ok"
			if err != nil {
				result = "error"
				d.log.Error().Err(err).
					Str("application_id", n.ApplicationID).
					Int("worker_id", id).
					Msg("status notification failed")
			}
			metrics.NotificationDeliveryDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
		}
	}
}
