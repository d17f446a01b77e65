package service

import (
	"context"

	"github.com/clehider/BazarMundoVictor/internal/dto"
	"github.com/clehider/BazarMundoVictor/internal/model"
	"github.com/clehider/BazarMundoVictor/internal/repository"

	"github.com/google/uuid"
)

type ProductoService interface {
	CrearProducto(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ActualizarProducto(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error)
	DesactivarProducto(ctx context.Context, id uuid.UUID) error
	FindProducto(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	FindPorCodigo(ctx context.Context, codigo string) (*dto.ProductoResponse, error)
	ListProductos(ctx context.Context, incluirInactivos bool) (*dto.ProductoListResponse, error)
	BajoStock(ctx context.Context) (*dto.BajoStockResponse, error)
}

type productoService struct {
	repo repository.ProductoRepository
}

func NewProductoService(repo repository.ProductoRepository) ProductoService {
	return &productoService{repo: repo}
}

func (s *productoService) CrearProducto(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if _, err := s.repo.FindByCodigo(ctx, req.Codigo); err == nil {
		return nil, repository.ErrCodigoDuplicado
	}
	p := &model.Producto{
		Codigo:      req.Codigo,
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Categoria:   req.Categoria,
		Precio:      req.Precio,
		Stock:       req.Stock,
		StockMinimo: req.StockMinimo,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) ActualizarProducto(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Codigo != p.Codigo {
		if otro, err := s.repo.FindByCodigo(ctx, req.Codigo); err == nil && otro.ID != id {
			return nil, repository.ErrCodigoDuplicado
		}
	}
	p.Codigo = req.Codigo
	p.Nombre = req.Nombre
	p.Descripcion = req.Descripcion
	p.Categoria = req.Categoria
	p.Precio = req.Precio
	p.StockMinimo = req.StockMinimo
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	// Update preserves the live stock counter; re-read for the response.
	p, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error) {
	if err := s.repo.AjustarStock(ctx, id, req.Delta); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) DesactivarProducto(ctx context.Context, id uuid.UUID) error {
	return s.repo.Desactivar(ctx, id)
}

func (s *productoService) FindProducto(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) FindPorCodigo(ctx context.Context, codigo string) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) ListProductos(ctx context.Context, incluirInactivos bool) (*dto.ProductoListResponse, error) {
	productos, err := s.repo.List(ctx, incluirInactivos)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductoListResponse{Data: make([]dto.ProductoResponse, 0, len(productos)), Total: len(productos)}
	for i := range productos {
		resp.Data = append(resp.Data, *productoToResponse(&productos[i]))
	}
	return resp, nil
}

func (s *productoService) BajoStock(ctx context.Context) (*dto.BajoStockResponse, error) {
	productos, err := s.repo.BajoStockMinimo(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.BajoStockResponse{Data: make([]dto.ProductoResponse, 0, len(productos)), Total: len(productos)}
	for i := range productos {
		resp.Data = append(resp.Data, *productoToResponse(&productos[i]))
	}
	return resp, nil
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:          p.ID.String(),
		Codigo:      p.Codigo,
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		Categoria:   p.Categoria,
		Precio:      p.Precio,
		Stock:       p.Stock,
		StockMinimo: p.StockMinimo,
		Activo:      p.Activo,
		BajoStock:   p.BajoStock(),
	}
}
