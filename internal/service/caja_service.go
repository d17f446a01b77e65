package service

import (
	"context"
	"fmt"
	"time"

	"github.com/clehider/BazarMundoVictor/internal/dto"
	"github.com/clehider/BazarMundoVictor/internal/model"
	"github.com/clehider/BazarMundoVictor/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CajaService interface {
	Abrir(ctx context.Context, usuario string, req dto.AbrirCajaRequest) (*dto.CajaResponse, error)
	Cerrar(ctx context.Context, usuario string) (*dto.CajaResponse, error)
	CajaActual(ctx context.Context) (*dto.CajaResponse, error)
	FindCaja(ctx context.Context, id uuid.UUID) (*dto.CajaResponse, error)
	ListCajas(ctx context.Context) (*dto.CajaListResponse, error)
	RegistrarAbono(ctx context.Context, usuario string, req dto.RegistrarAbonoRequest) (*dto.MovimientoResponse, error)
}

type cajaService struct {
	repo repository.CajaRepository
}

func NewCajaService(repo repository.CajaRepository) CajaService {
	return &cajaService{repo: repo}
}

func (s *cajaService) Abrir(ctx context.Context, usuario string, req dto.AbrirCajaRequest) (*dto.CajaResponse, error) {
	caja, err := s.repo.Abrir(ctx, req.MontoInicial, usuario)
	if err != nil {
		return nil, err
	}
	return cajaToResponse(caja), nil
}

func (s *cajaService) Cerrar(ctx context.Context, usuario string) (*dto.CajaResponse, error) {
	caja, err := s.repo.Cerrar(ctx, usuario)
	if err != nil {
		return nil, err
	}
	return cajaToResponse(caja), nil
}

func (s *cajaService) CajaActual(ctx context.Context) (*dto.CajaResponse, error) {
	caja, err := s.repo.CajaAbierta(ctx)
	if err != nil {
		return nil, err
	}
	return cajaToResponse(caja), nil
}

func (s *cajaService) FindCaja(ctx context.Context, id uuid.UUID) (*dto.CajaResponse, error) {
	caja, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return cajaToResponse(caja), nil
}

func (s *cajaService) ListCajas(ctx context.Context) (*dto.CajaListResponse, error) {
	cajas, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.CajaListResponse{Data: make([]dto.CajaResponse, 0, len(cajas)), Total: len(cajas)}
	for i := range cajas {
		resp.Data = append(resp.Data, *cajaToResponse(&cajas[i]))
	}
	return resp, nil
}

// RegistrarAbono deposits cash into the open drawer outside of a sale
// (vueltos, reposición de cambio, cobros de deuda).
func (s *cajaService) RegistrarAbono(ctx context.Context, usuario string, req dto.RegistrarAbonoRequest) (*dto.MovimientoResponse, error) {
	if !req.Monto.IsPositive() {
		return nil, fmt.Errorf("%w: el abono debe ser mayor a cero", repository.ErrMontoInvalido)
	}
	caja, err := s.repo.CajaAbierta(ctx)
	if err != nil {
		return nil, err
	}
	mov := model.Movimiento{
		ID:          uuid.New(),
		Tipo:        model.MovimientoAbono,
		Monto:       req.Monto,
		Fecha:       time.Now().UTC(),
		Usuario:     usuario,
		Descripcion: req.Descripcion,
	}
	if err := s.repo.RegistrarMovimiento(ctx, caja.ID, mov); err != nil {
		return nil, err
	}
	resp := movimientoToResponse(mov)
	return &resp, nil
}

func cajaToResponse(c *model.Caja) *dto.CajaResponse {
	movimientos := make([]dto.MovimientoResponse, 0, len(c.Movimientos))
	for _, m := range c.Movimientos {
		movimientos = append(movimientos, movimientoToResponse(m))
	}
	var fechaCierre *string
	if c.FechaCierre != nil {
		fc := c.FechaCierre.Format(time.RFC3339)
		fechaCierre = &fc
	}
	var totalGeneral *decimal.Decimal
	if c.TotalGeneral != nil {
		tg := *c.TotalGeneral
		totalGeneral = &tg
	}
	return &dto.CajaResponse{
		ID:              c.ID.String(),
		Estado:          c.Estado,
		MontoInicial:    c.MontoInicial,
		TotalVentas:     c.TotalVentas,
		TotalGastos:     c.TotalGastos,
		TotalAbonos:     c.TotalAbonos,
		TotalGeneral:    totalGeneral,
		SaldoActual:     c.SaldoActual(),
		FechaApertura:   c.FechaApertura.Format(time.RFC3339),
		FechaCierre:     fechaCierre,
		UsuarioApertura: c.UsuarioApertura,
		UsuarioCierre:   c.UsuarioCierre,
		Movimientos:     movimientos,
	}
}

func movimientoToResponse(m model.Movimiento) dto.MovimientoResponse {
	var ref *string
	if m.ReferenciaID != nil {
		r := m.ReferenciaID.String()
		ref = &r
	}
	return dto.MovimientoResponse{
		ID:           m.ID.String(),
		Tipo:         m.Tipo,
		Monto:        m.Monto,
		Fecha:        m.Fecha.Format(time.RFC3339),
		Usuario:      m.Usuario,
		Descripcion:  m.Descripcion,
		ReferenciaID: ref,
	}
}
