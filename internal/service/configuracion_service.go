package service

import (
	"context"

	"github.com/clehider/BazarMundoVictor/internal/dto"
	"github.com/clehider/BazarMundoVictor/internal/model"
	"github.com/clehider/BazarMundoVictor/internal/repository"
)

type ConfiguracionService interface {
	Empresa(ctx context.Context) (*dto.EmpresaResponse, error)
	GuardarEmpresa(ctx context.Context, req dto.EmpresaRequest) (*dto.EmpresaResponse, error)
}

type configuracionService struct {
	repo repository.ConfiguracionRepository
}

func NewConfiguracionService(repo repository.ConfiguracionRepository) ConfiguracionService {
	return &configuracionService{repo: repo}
}

func (s *configuracionService) Empresa(ctx context.Context) (*dto.EmpresaResponse, error) {
	e, err := s.repo.GetEmpresa(ctx)
	if err != nil {
		return nil, err
	}
	return empresaToResponse(e), nil
}

func (s *configuracionService) GuardarEmpresa(ctx context.Context, req dto.EmpresaRequest) (*dto.EmpresaResponse, error) {
	e := &model.Empresa{
		Nombre:    req.Nombre,
		Direccion: req.Direccion,
		Telefono:  req.Telefono,
		Email:     req.Email,
		Moneda:    req.Moneda,
	}
	if err := s.repo.SaveEmpresa(ctx, e); err != nil {
		return nil, err
	}
	return empresaToResponse(e), nil
}

func empresaToResponse(e *model.Empresa) *dto.EmpresaResponse {
	return &dto.EmpresaResponse{
		Nombre:    e.Nombre,
		Direccion: e.Direccion,
		Telefono:  e.Telefono,
		Email:     e.Email,
		Moneda:    e.Moneda,
	}
}
