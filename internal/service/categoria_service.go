package service

import (
	"context"

	"github.com/clehider/BazarMundoVictor/internal/dto"
	"github.com/clehider/BazarMundoVictor/internal/model"
	"github.com/clehider/BazarMundoVictor/internal/repository"

	"github.com/google/uuid"
)

type CategoriaService interface {
	CrearCategoria(ctx context.Context, req dto.CategoriaRequest) (*dto.CategoriaResponse, error)
	ActualizarCategoria(ctx context.Context, id uuid.UUID, req dto.CategoriaRequest) (*dto.CategoriaResponse, error)
	EliminarCategoria(ctx context.Context, id uuid.UUID) error
	ListCategorias(ctx context.Context) ([]dto.CategoriaResponse, error)
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

func (s *categoriaService) CrearCategoria(ctx context.Context, req dto.CategoriaRequest) (*dto.CategoriaResponse, error) {
	c := &model.Categoria{Nombre: req.Nombre}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return &dto.CategoriaResponse{ID: c.ID.String(), Nombre: c.Nombre}, nil
}

func (s *categoriaService) ActualizarCategoria(ctx context.Context, id uuid.UUID, req dto.CategoriaRequest) (*dto.CategoriaResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Nombre = req.Nombre
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return &dto.CategoriaResponse{ID: c.ID.String(), Nombre: c.Nombre}, nil
}

func (s *categoriaService) EliminarCategoria(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *categoriaService) ListCategorias(ctx context.Context) ([]dto.CategoriaResponse, error) {
	categorias, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoriaResponse, 0, len(categorias))
	for _, c := range categorias {
		out = append(out, dto.CategoriaResponse{ID: c.ID.String(), Nombre: c.Nombre})
	}
	return out, nil
}
