package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/clehider/BazarMundoVictor/internal/kvstore"
	"github.com/clehider/BazarMundoVictor/internal/model"

	"github.com/google/uuid"
)

var ErrCategoriaNoEncontrada = errors.New("categoría no encontrada")

type CategoriaRepository interface {
	Create(ctx context.Context, c *model.Categoria) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Categoria, error)
	List(ctx context.Context) ([]model.Categoria, error)
	Update(ctx context.Context, c *model.Categoria) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoriaRepo struct{ store kvstore.Store }

func NewCategoriaRepository(store kvstore.Store) CategoriaRepository {
	return &categoriaRepo{store: store}
}

func (r *categoriaRepo) Create(ctx context.Context, c *model.Categoria) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := r.store.CompareAndSwap(ctx, keyCategoria(c.ID), marshal(c), 0)
	return err
}

func (r *categoriaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Categoria, error) {
	data, _, err := r.store.Get(ctx, keyCategoria(id))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, ErrCategoriaNoEncontrada
	}
	if err != nil {
		return nil, err
	}
	var c model.Categoria
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoriaRepo) List(ctx context.Context) ([]model.Categoria, error) {
	kvs, err := r.store.List(ctx, prefixCategorias)
	if err != nil {
		return nil, err
	}
	categorias := make([]model.Categoria, 0, len(kvs))
	for _, kv := range kvs {
		var c model.Categoria
		if err := json.Unmarshal(kv.Value, &c); err != nil {
			return nil, err
		}
		categorias = append(categorias, c)
	}
	sort.Slice(categorias, func(i, j int) bool { return categorias[i].Nombre < categorias[j].Nombre })
	return categorias, nil
}

func (r *categoriaRepo) Update(ctx context.Context, c *model.Categoria) error {
	if _, err := r.FindByID(ctx, c.ID); err != nil {
		return err
	}
	c.UpdatedAt = time.Now().UTC()
	return r.store.Put(ctx, keyCategoria(c.ID), marshal(c))
}

func (r *categoriaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return r.store.Delete(ctx, keyCategoria(id))
}
