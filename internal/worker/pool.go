package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueConciliacion = "jobs:conciliacion"
	QueueTicket       = "jobs:ticket"
	QueueAlerta       = "jobs:alerta"
)

// maxJobAttempts bounds re-enqueues of a failing job before it lands in
// the dead letter queue.
const maxJobAttempts = 5

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueConciliacion pushes a pending-movement reconciliation job.
func (d *Dispatcher) EnqueueConciliacion(ctx context.Context, payload any) error {
	return d.enqueue(ctx, QueueConciliacion, "conciliacion", payload)
}

// EnqueueTicket pushes a receipt-generation job.
func (d *Dispatcher) EnqueueTicket(ctx context.Context, payload any) error {
	return d.enqueue(ctx, QueueTicket, "ticket", payload)
}

// EnqueueAlertaStock pushes a low-stock alert job.
func (d *Dispatcher) EnqueueAlertaStock(ctx context.Context, payload any) error {
	return d.enqueue(ctx, QueueAlerta, "alerta", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Conciliador replays the pending ledger append of a venta.
type Conciliador interface {
	ReconciliarMovimiento(ctx context.Context, ventaID uuid.UUID) error
}

// TicketEmitter renders the printable receipt of a venta.
type TicketEmitter interface {
	EmitirTicket(ctx context.Context, ventaID uuid.UUID) (string, error)
}

// AlertaSender notifies when a product drops to its minimum stock.
type AlertaSender interface {
	EnviarAlertaStock(ctx context.Context, nombre string, stock int) error
}

// Pool consumes the job queues with a fixed set of goroutines, each
// blocking on BRPOP — zero CPU when idle.
type Pool struct {
	rdb         *redis.Client
	conciliador Conciliador
	tickets     TicketEmitter
	alertas     AlertaSender
}

func NewPool(rdb *redis.Client, conciliador Conciliador, tickets TicketEmitter, alertas AlertaSender) *Pool {
	return &Pool{rdb: rdb, conciliador: conciliador, tickets: tickets, alertas: alertas}
}

// Start launches numWorkers goroutines consuming all queues. It respects
// the context for graceful shutdown.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.runWorker(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	queues := []string{QueueConciliacion, QueueTicket, QueueAlerta}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.processJob(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	err := p.handle(ctx, queue, job)
	if err == nil {
		return
	}

	job.Attempts++
	if job.Attempts >= maxJobAttempts {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}

	log.Warn().Str("queue", queue).Str("type", job.Type).Int("attempts", job.Attempts).
		Err(err).Msg("job failed, re-enqueueing")
	if encoded, mErr := json.Marshal(job); mErr == nil {
		_ = p.rdb.LPush(ctx, queue, encoded).Err()
	}
}

func (p *Pool) handle(ctx context.Context, queue string, job Job) error {
	switch queue {
	case QueueConciliacion:
		var payload struct {
			VentaID string `json:"venta_id"`
		}
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return err
		}
		id, err := uuid.Parse(payload.VentaID)
		if err != nil {
			return err
		}
		return p.conciliador.ReconciliarMovimiento(ctx, id)

	case QueueTicket:
		var payload struct {
			VentaID string `json:"venta_id"`
		}
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return err
		}
		id, err := uuid.Parse(payload.VentaID)
		if err != nil {
			return err
		}
		path, err := p.tickets.EmitirTicket(ctx, id)
		if err != nil {
			return err
		}
		log.Info().Str("venta_id", payload.VentaID).Str("path", path).Msg("ticket generado")
		return nil

	case QueueAlerta:
		var payload struct {
			Nombre string `json:"nombre"`
			Stock  int    `json:"stock"`
		}
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return err
		}
		return p.alertas.EnviarAlertaStock(ctx, payload.Nombre, payload.Stock)
	}

	log.Error().Str("queue", queue).Str("type", job.Type).Msg("unknown job queue")
	return nil
}
