package processing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"handoc/internal/logger"
)

var tracer = otel.Tracer("handoc/internal/processing")

var (
	ErrQueueFull      = errors.New("processing queue is full")
	ErrPoolNotStarted = errors.New("processing pool is not running")
)

// Handler processes one document. *Processor satisfies it.
type Handler interface {
	Process(ctx context.Context, documentID string) error
}

type poolMetrics struct {
	processed  *prometheus.CounterVec
	duration   prometheus.Histogram
	queueDepth prometheus.GaugeFunc
}

// Pool is a fixed set of workers draining a bounded queue of document IDs.
type Pool struct {
	handler Handler
	workers int
	queue   chan string
	log     *logger.Logger
	metrics poolMetrics

	mu      sync.RWMutex
	running bool
	wg      sync.WaitGroup
}

func NewPool(h Handler, workers, queueSize int, log *logger.Logger, reg prometheus.Registerer) (*Pool, error) {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	p := &Pool{
		handler: h,
		workers: workers,
		queue:   make(chan string, queueSize),
		log:     log.With("processing"),
	}
	p.metrics = poolMetrics{
		processed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "documents_processed_total",
				Help: "Documents that finished processing, by outcome.",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "document_processing_seconds",
			Help:    "Time from dequeue to completion of a document.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300},
		}),
		queueDepth: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "processing_queue_depth",
			Help: "Documents waiting for a worker.",
		}, func() float64 { return float64(len(p.queue)) }),
	}
	for _, c := range []prometheus.Collector{p.metrics.processed, p.metrics.duration, p.metrics.queueDepth} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Start launches the workers. They exit when ctx is cancelled; Wait blocks until then.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	p.running = true
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work(ctx, i)
	}

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()
}

// Wait blocks until every worker has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Enqueue never blocks: it returns ErrQueueFull when no slot is free.
func (p *Pool) Enqueue(documentID string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running {
		return ErrPoolNotStarted
	}
	select {
	case p.queue <- documentID:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *Pool) work(ctx context.Context, n int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-p.queue:
			p.handle(ctx, n, id)
		}
	}
}

func (p *Pool) handle(ctx context.Context, worker int, id string) {
	ctx, span := tracer.Start(ctx, "process_document",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("document.id", id),
			attribute.Int("worker", worker),
		),
	)
	defer span.End()

	start := time.Now()
	err := p.handler.Process(ctx, id)
	elapsed := time.Since(start)
	p.metrics.duration.Observe(elapsed.Seconds())

	fields := map[string]any{
		"document_id": id,
		"worker":      worker,
		"duration_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.metrics.processed.WithLabelValues("failed").Inc()
		p.log.Error("document_processing_failed", err, fields)
		return
	}
	p.metrics.processed.WithLabelValues("completed").Inc()
	p.log.Info("document_processed", fields)
}
