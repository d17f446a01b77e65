package service

import (
	"context"

	"github.com/clehider/BazarMundoVictor/internal/infra"
	"github.com/clehider/BazarMundoVictor/internal/repository"

	"github.com/google/uuid"
)

// TicketService renders printable receipts for completed ventas. It runs
// from the worker pool, never on the request path.
type TicketService interface {
	EmitirTicket(ctx context.Context, ventaID uuid.UUID) (string, error)
}

type ticketService struct {
	ventaRepo   repository.VentaRepository
	configRepo  repository.ConfiguracionRepository
	storagePath string
}

func NewTicketService(ventaRepo repository.VentaRepository, configRepo repository.ConfiguracionRepository, storagePath string) TicketService {
	return &ticketService{ventaRepo: ventaRepo, configRepo: configRepo, storagePath: storagePath}
}

func (s *ticketService) EmitirTicket(ctx context.Context, ventaID uuid.UUID) (string, error) {
	venta, err := s.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		return "", err
	}
	empresa, err := s.configRepo.GetEmpresa(ctx)
	if err != nil {
		return "", err
	}
	return infra.GenerateTicketPDF(venta, empresa, s.storagePath)
}
