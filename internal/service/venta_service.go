package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clehider/BazarMundoVictor/internal/dto"
	"github.com/clehider/BazarMundoVictor/internal/model"
	"github.com/clehider/BazarMundoVictor/internal/repository"
	"github.com/clehider/BazarMundoVictor/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type VentaService interface {
	RegistrarVenta(ctx context.Context, usuario string, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	AnularVenta(ctx context.Context, usuario string, id uuid.UUID, motivo string) error
	ListVentas(ctx context.Context) (*dto.VentaListResponse, error)
	FindVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)

	// ReconciliarMovimiento retries the ledger append of a venta flagged
	// movimientoPendiente. Safe to call any number of times.
	ReconciliarMovimiento(ctx context.Context, ventaID uuid.UUID) error
}

type ventaService struct {
	repo         repository.VentaRepository
	cajaRepo     repository.CajaRepository
	productoRepo repository.ProductoRepository
	dispatcher   *worker.Dispatcher
}

func NewVentaService(
	repo repository.VentaRepository,
	cajaRepo repository.CajaRepository,
	productoRepo repository.ProductoRepository,
	dispatcher *worker.Dispatcher,
) VentaService {
	return &ventaService{
		repo:         repo,
		cajaRepo:     cajaRepo,
		productoRepo: productoRepo,
		dispatcher:   dispatcher,
	}
}

// ─── RegistrarVenta ──────────────────────────────────────────────────────────
// The store has no multi-key transaction, so a sale commits as a sequence of
// conditional single-key writes with explicit compensation:
//
//  1. require an open caja
//  2. resolve the cart against the catalog (pre-flight, no writes)
//  3. decrement stock per product; on any failure, restore every decrement
//     already taken and abort
//  4. persist the venta document
//  5. append the "venta" movement to the caja ledger
//
// A failure at step 5 does NOT roll back: stock already moved and the goods
// left the counter. The venta stands flagged movimientoPendiente and the
// conciliación worker replays the append, which is idempotent per venta id.

func (s *ventaService) RegistrarVenta(ctx context.Context, usuario string, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	if len(req.Items) == 0 {
		return nil, ErrCarritoVacio
	}

	caja, err := s.cajaRepo.CajaAbierta(ctx)
	if err != nil {
		return nil, err
	}

	// Collapse duplicate lines so each product is decremented once.
	cantidades := make(map[uuid.UUID]int)
	orden := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("productoId inválido: %w", err)
		}
		if _, visto := cantidades[pid]; !visto {
			orden = append(orden, pid)
		}
		cantidades[pid] += item.Cantidad
	}

	// Pre-flight: resolve every product before touching stock. Prices and
	// names are snapshotted here; later catalog edits never alter the sale.
	items := make([]model.VentaItem, 0, len(orden))
	total := decimal.Zero
	for _, pid := range orden {
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, err
		}
		if !p.Activo {
			return nil, fmt.Errorf("%w: producto %s inactivo", repository.ErrEstadoInvalido, p.Nombre)
		}
		cantidad := cantidades[pid]
		if p.Stock < cantidad {
			return nil, fmt.Errorf("%w: %s (stock %d, pedido %d)",
				repository.ErrStockInsuficiente, p.Nombre, p.Stock, cantidad)
		}
		subtotal := p.Precio.Mul(decimal.NewFromInt(int64(cantidad)))
		items = append(items, model.VentaItem{
			ProductoID: pid,
			Codigo:     p.Codigo,
			Nombre:     p.Nombre,
			Precio:     p.Precio,
			Cantidad:   cantidad,
			Subtotal:   subtotal,
		})
		total = total.Add(subtotal)
	}

	// The venta id exists before any write so stock restorations and the
	// ledger idempotency key can reference it.
	ventaID := uuid.New()

	// Decrement stock line by line. The pre-flight check above cannot hold
	// under concurrency; the conditional decrement is what actually decides.
	descontados := make([]model.VentaItem, 0, len(items))
	for _, item := range items {
		if _, err := s.productoRepo.DescontarStock(ctx, item.ProductoID, item.Cantidad); err != nil {
			s.compensarStock(ctx, ventaID, descontados)
			return nil, fmt.Errorf("descontando stock de %s: %w", item.Nombre, err)
		}
		descontados = append(descontados, item)
	}

	venta := &model.Venta{
		ID:      ventaID,
		CajaID:  caja.ID,
		Items:   items,
		Total:   total,
		Fecha:   time.Now().UTC(),
		Usuario: usuario,
		Estado:  model.VentaCompletada,
	}
	if err := s.repo.Create(ctx, venta); err != nil {
		s.compensarStock(ctx, ventaID, descontados)
		return nil, err
	}

	mov := model.Movimiento{
		ID:           uuid.New(),
		Tipo:         model.MovimientoVenta,
		Monto:        total,
		Fecha:        venta.Fecha,
		Usuario:      usuario,
		Descripcion:  fmt.Sprintf("Venta %s", ventaID),
		ReferenciaID: &ventaID,
	}
	if err := s.cajaRepo.RegistrarMovimiento(ctx, caja.ID, mov); err != nil {
		// Stock and venta already committed; the sale stands. Flag it and
		// let conciliación replay the append.
		log.Error().Err(err).Str("venta_id", ventaID.String()).
			Msg("movimiento de caja no registrado; venta queda pendiente")
		if markErr := s.repo.MarcarMovimientoPendiente(ctx, ventaID, true); markErr != nil {
			log.Error().Err(markErr).Str("venta_id", ventaID.String()).
				Msg("no se pudo marcar movimiento pendiente")
		} else {
			venta.MovimientoPendiente = true
		}
		if s.dispatcher != nil {
			_ = s.dispatcher.EnqueueConciliacion(ctx, map[string]any{"venta_id": ventaID.String()})
		}
		resp := ventaToResponse(venta)
		return resp, nil
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueTicket(ctx, map[string]any{"venta_id": ventaID.String()})
		s.alertarBajoStock(ctx, items)
	}

	return ventaToResponse(venta), nil
}

// compensarStock undoes the decrements of an aborted sale. Each restoration
// is recorded per (venta, producto), so replaying the whole loop is harmless.
func (s *ventaService) compensarStock(ctx context.Context, ventaID uuid.UUID, descontados []model.VentaItem) {
	for _, item := range descontados {
		if err := s.productoRepo.RestaurarStock(ctx, ventaID, item.ProductoID, item.Cantidad); err != nil {
			log.Error().Err(err).
				Str("venta_id", ventaID.String()).
				Str("producto_id", item.ProductoID.String()).
				Msg("restaurar stock falló")
		}
	}
}

func (s *ventaService) alertarBajoStock(ctx context.Context, items []model.VentaItem) {
	for _, item := range items {
		p, err := s.productoRepo.FindByID(ctx, item.ProductoID)
		if err != nil || !p.BajoStock() {
			continue
		}
		_ = s.dispatcher.EnqueueAlertaStock(ctx, map[string]any{
			"producto_id": p.ID.String(),
			"nombre":      p.Nombre,
			"stock":       p.Stock,
		})
	}
}

// ─── AnularVenta ─────────────────────────────────────────────────────────────
// Cancellation never edits history: it restores the stock the sale took
// (idempotent per item), appends a compensating "anulacion" movement that
// folds negative against totalVentas, and only then flips the estado. The
// flip comes last so a failed restore or append leaves the venta completada
// and the whole call can simply be retried: the already-applied steps replay
// as no-ops.

func (s *ventaService) AnularVenta(ctx context.Context, usuario string, id uuid.UUID, motivo string) error {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if venta.Estado == model.VentaAnulada {
		return ErrVentaYaAnulada
	}

	for _, item := range venta.Items {
		if err := s.productoRepo.RestaurarStock(ctx, id, item.ProductoID, item.Cantidad); err != nil {
			return fmt.Errorf("restaurando stock de %s: %w", item.Nombre, err)
		}
	}

	mov := model.Movimiento{
		ID:           uuid.New(),
		Tipo:         model.MovimientoAnulacion,
		Monto:        venta.Total,
		Fecha:        time.Now().UTC(),
		Usuario:      usuario,
		Descripcion:  fmt.Sprintf("Anulación venta %s: %s", id, motivo),
		ReferenciaID: &id,
	}
	if err := s.cajaRepo.RegistrarMovimiento(ctx, venta.CajaID, mov); err != nil {
		if errors.Is(err, repository.ErrCajaCerrada) {
			// The caja closed between sale and cancellation. Stock is back;
			// the accounting correction is a manual gasto on the next caja.
			log.Warn().Str("venta_id", id.String()).
				Msg("anulación sobre caja cerrada; sin movimiento compensatorio")
		} else {
			return err
		}
	}

	// CambiarEstado is the race arbiter: of two concurrent anulaciones only
	// one observes estado=completada. The loser's restores and movement were
	// deduped above, so nothing double-applies.
	if err := s.repo.CambiarEstado(ctx, id, model.VentaCompletada, model.VentaAnulada); err != nil {
		if errors.Is(err, repository.ErrEstadoInvalido) {
			return ErrVentaYaAnulada
		}
		return err
	}
	return nil
}

// ─── Conciliación ────────────────────────────────────────────────────────────

func (s *ventaService) ReconciliarMovimiento(ctx context.Context, ventaID uuid.UUID) error {
	venta, err := s.repo.FindByID(ctx, ventaID)
	if err != nil {
		return err
	}
	if !venta.MovimientoPendiente {
		return nil
	}

	mov := model.Movimiento{
		ID:           uuid.New(),
		Tipo:         model.MovimientoVenta,
		Monto:        venta.Total,
		Fecha:        venta.Fecha,
		Usuario:      venta.Usuario,
		Descripcion:  fmt.Sprintf("Venta %s (conciliación)", ventaID),
		ReferenciaID: &ventaID,
	}
	// RegistrarMovimiento dedupes on ReferenciaID, so the pending flag can
	// be cleared even when a previous retry half-succeeded.
	if err := s.cajaRepo.RegistrarMovimiento(ctx, venta.CajaID, mov); err != nil {
		return err
	}
	return s.repo.MarcarMovimientoPendiente(ctx, ventaID, false)
}

// ─── Queries ─────────────────────────────────────────────────────────────────

func (s *ventaService) ListVentas(ctx context.Context) (*dto.VentaListResponse, error) {
	ventas, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.VentaListResponse{Data: make([]dto.VentaResponse, 0, len(ventas)), Total: len(ventas)}
	for i := range ventas {
		resp.Data = append(resp.Data, *ventaToResponse(&ventas[i]))
	}
	return resp, nil
}

func (s *ventaService) FindVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ventaToResponse(venta), nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, dto.ItemVentaResponse{
			ProductoID: item.ProductoID.String(),
			Codigo:     item.Codigo,
			Nombre:     item.Nombre,
			Precio:     item.Precio,
			Cantidad:   item.Cantidad,
			Subtotal:   item.Subtotal,
		})
	}
	return &dto.VentaResponse{
		ID:                  v.ID.String(),
		CajaID:              v.CajaID.String(),
		Items:               items,
		Total:               v.Total,
		Fecha:               v.Fecha.Format(time.RFC3339),
		Usuario:             v.Usuario,
		Estado:              v.Estado,
		MovimientoPendiente: v.MovimientoPendiente,
	}
}
