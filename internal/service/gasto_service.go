package service

import (
	"context"
	"fmt"
	"time"

	"github.com/clehider/BazarMundoVictor/internal/dto"
	"github.com/clehider/BazarMundoVictor/internal/model"
	"github.com/clehider/BazarMundoVictor/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type GastoService interface {
	RegistrarGasto(ctx context.Context, usuario string, req dto.RegistrarGastoRequest) (*dto.GastoResponse, error)
	ListGastos(ctx context.Context) (*dto.GastoListResponse, error)
}

type gastoService struct {
	repo     repository.GastoRepository
	cajaRepo repository.CajaRepository
}

func NewGastoService(repo repository.GastoRepository, cajaRepo repository.CajaRepository) GastoService {
	return &gastoService{repo: repo, cajaRepo: cajaRepo}
}

// RegistrarGasto takes cash out of the open drawer. The gasto document and
// its ledger movement share the gasto id, so a replayed ledger append after
// a partial failure cannot double-count.
func (s *gastoService) RegistrarGasto(ctx context.Context, usuario string, req dto.RegistrarGastoRequest) (*dto.GastoResponse, error) {
	if !req.Monto.IsPositive() {
		return nil, fmt.Errorf("%w: el gasto debe ser mayor a cero", repository.ErrMontoInvalido)
	}
	caja, err := s.cajaRepo.CajaAbierta(ctx)
	if err != nil {
		return nil, err
	}

	gasto := &model.Gasto{
		ID:          uuid.New(),
		CajaID:      caja.ID,
		Descripcion: req.Descripcion,
		Monto:       req.Monto,
		Fecha:       time.Now().UTC(),
		Usuario:     usuario,
	}
	if err := s.repo.Create(ctx, gasto); err != nil {
		return nil, err
	}

	mov := model.Movimiento{
		ID:           uuid.New(),
		Tipo:         model.MovimientoGasto,
		Monto:        gasto.Monto,
		Fecha:        gasto.Fecha,
		Usuario:      usuario,
		Descripcion:  gasto.Descripcion,
		ReferenciaID: &gasto.ID,
	}
	if err := s.cajaRepo.RegistrarMovimiento(ctx, caja.ID, mov); err != nil {
		// The ledger is the authority: a gasto whose movement never landed
		// must not stay visible, or a retry would record it twice.
		if delErr := s.repo.Delete(ctx, gasto.ID); delErr != nil {
			log.Error().Err(delErr).Str("gasto_id", gasto.ID.String()).
				Msg("no se pudo retirar el gasto sin movimiento")
		}
		return nil, err
	}
	return gastoToResponse(gasto), nil
}

func (s *gastoService) ListGastos(ctx context.Context) (*dto.GastoListResponse, error) {
	gastos, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.GastoListResponse{Data: make([]dto.GastoResponse, 0, len(gastos)), Total: len(gastos)}
	for i := range gastos {
		resp.Data = append(resp.Data, *gastoToResponse(&gastos[i]))
	}
	return resp, nil
}

func gastoToResponse(g *model.Gasto) *dto.GastoResponse {
	return &dto.GastoResponse{
		ID:          g.ID.String(),
		CajaID:      g.CajaID.String(),
		Descripcion: g.Descripcion,
		Monto:       g.Monto,
		Fecha:       g.Fecha.Format(time.RFC3339),
		Usuario:     g.Usuario,
	}
}
