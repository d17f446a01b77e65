package service

import (
	"context"
	"time"

	"github.com/clehider/BazarMundoVictor/internal/dto"
	"github.com/clehider/BazarMundoVictor/internal/model"
	"github.com/clehider/BazarMundoVictor/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReporteService interface {
	// ReporteCaja replays the movement ledger of a caja and contrasts it
	// against the stored totals. Cuadra=false means drawer drift.
	ReporteCaja(ctx context.Context, cajaID uuid.UUID) (*dto.ReporteCajaResponse, error)
	ResumenVentas(ctx context.Context, fecha time.Time) (*dto.ResumenVentasResponse, error)
}

type reporteService struct {
	cajaRepo  repository.CajaRepository
	ventaRepo repository.VentaRepository
}

func NewReporteService(cajaRepo repository.CajaRepository, ventaRepo repository.VentaRepository) ReporteService {
	return &reporteService{cajaRepo: cajaRepo, ventaRepo: ventaRepo}
}

func (s *reporteService) ReporteCaja(ctx context.Context, cajaID uuid.UUID) (*dto.ReporteCajaResponse, error) {
	caja, err := s.cajaRepo.FindByID(ctx, cajaID)
	if err != nil {
		return nil, err
	}
	replay := caja.TotalesDesdeMovimientos()
	cuadra := replay.Ventas.Equal(caja.TotalVentas) &&
		replay.Gastos.Equal(caja.TotalGastos) &&
		replay.Abonos.Equal(caja.TotalAbonos)

	return &dto.ReporteCajaResponse{
		Caja:             *cajaToResponse(caja),
		TotalMovimientos: len(caja.Movimientos),
		VentasReplay:     replay.Ventas,
		GastosReplay:     replay.Gastos,
		AbonosReplay:     replay.Abonos,
		Cuadra:           cuadra,
	}, nil
}

func (s *reporteService) ResumenVentas(ctx context.Context, fecha time.Time) (*dto.ResumenVentasResponse, error) {
	ventas, err := s.ventaRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	y, m, d := fecha.UTC().Date()
	total := decimal.Zero
	delDia := make([]dto.VentaResponse, 0)
	for i := range ventas {
		v := &ventas[i]
		vy, vm, vd := v.Fecha.UTC().Date()
		if vy != y || vm != m || vd != d || v.Estado != model.VentaCompletada {
			continue
		}
		total = total.Add(v.Total)
		delDia = append(delDia, *ventaToResponse(v))
	}

	return &dto.ResumenVentasResponse{
		Fecha:          fecha.UTC().Format("2006-01-02"),
		TotalVentas:    total,
		CantidadVentas: len(delDia),
		Ventas:         delDia,
	}, nil
}
