package worker

// reconcile_cron.go
// Background goroutine that periodically retries the ledger append of
// ventas flagged movimientoPendiente: stock already moved, the caja
// movement did not land. The append is idempotent per venta id, so a
// tick that overlaps a queued conciliación job is harmless.

import (
	"context"
	"time"

	"github.com/clehider/BazarMundoVictor/internal/model"
	"github.com/clehider/BazarMundoVictor/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	reconcileTickInterval = 30 * time.Second
	reconcileBatchSize    = 10
)

// ReconcileCronConfig holds all dependencies for the reconciliation goroutine.
type ReconcileCronConfig struct {
	VentaRepo   repository.VentaRepository
	Conciliador Conciliador
}

// StartReconcileCron launches a background goroutine that ticks every 30s
// and replays pending ledger appends. It respects the context for graceful
// shutdown.
func StartReconcileCron(ctx context.Context, cfg ReconcileCronConfig) {
	go func() {
		ticker := time.NewTicker(reconcileTickInterval)
		defer ticker.Stop()

		log.Info().Msg("reconcile_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("reconcile_cron: shutting down")
				return
			case <-ticker.C:
				processPendientes(ctx, cfg)
			}
		}
	}()
}

func processPendientes(ctx context.Context, cfg ReconcileCronConfig) {
	pendientes, err := cfg.VentaRepo.ListPendientes(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reconcile_cron: failed to query pending ventas")
		return
	}
	if len(pendientes) == 0 {
		return
	}
	if len(pendientes) > reconcileBatchSize {
		pendientes = pendientes[:reconcileBatchSize]
	}

	log.Info().Int("count", len(pendientes)).Msg("reconcile_cron: processing pending ventas")

	for i := range pendientes {
		venta := &pendientes[i]
		if venta.Estado != model.VentaCompletada {
			continue
		}
		if err := cfg.Conciliador.ReconciliarMovimiento(ctx, venta.ID); err != nil {
			log.Warn().Err(err).
				Str("venta_id", venta.ID.String()).
				Msg("reconcile_cron: ledger append still failing")
			continue
		}
		log.Info().
			Str("venta_id", venta.ID.String()).
			Msg("reconcile_cron: movimiento conciliado")
	}
}
