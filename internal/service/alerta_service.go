package service

import (
	"context"

	"github.com/clehider/BazarMundoVictor/internal/infra"
)

// AlertaService mails low-stock warnings. The breaker keeps a downed SMTP
// relay from stalling the worker pool with slow failures.
type AlertaService interface {
	EnviarAlertaStock(ctx context.Context, nombre string, stock int) error
}

type alertaService struct {
	mailer  *infra.Mailer
	breaker *infra.Breaker
}

func NewAlertaService(mailer *infra.Mailer, breaker *infra.Breaker) AlertaService {
	return &alertaService{mailer: mailer, breaker: breaker}
}

func (s *alertaService) EnviarAlertaStock(_ context.Context, nombre string, stock int) error {
	return s.breaker.Do(func() error {
		return s.mailer.SendAlertaStock(nombre, stock)
	})
}
