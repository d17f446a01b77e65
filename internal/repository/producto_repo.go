package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/clehider/BazarMundoVictor/internal/kvstore"
	"github.com/clehider/BazarMundoVictor/internal/model"

	"github.com/google/uuid"
)

// ProductoRepository is the stock store. DescontarStock is the system's one
// truly contended write: it must never let two concurrent sales both take
// the last unit, and it never drives stock below zero.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error)
	List(ctx context.Context, incluirInactivos bool) ([]model.Producto, error)
	Update(ctx context.Context, p *model.Producto) error
	Desactivar(ctx context.Context, id uuid.UUID) error

	// DescontarStock conditionally decrements stock and returns the
	// pre-decrement value for compensation bookkeeping.
	DescontarStock(ctx context.Context, id uuid.UUID, cantidad int) (int, error)

	// RestaurarStock re-adds stock taken by ventaID. Replaying it for the
	// same (venta, producto) pair is a no-op.
	RestaurarStock(ctx context.Context, ventaID, id uuid.UUID, cantidad int) error

	// AjustarStock applies a manual delta (positive or negative).
	AjustarStock(ctx context.Context, id uuid.UUID, delta int) error

	BajoStockMinimo(ctx context.Context) ([]model.Producto, error)
}

type productoRepo struct{ store kvstore.Store }

func NewProductoRepository(store kvstore.Store) ProductoRepository {
	return &productoRepo{store: store}
}

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Activo = true
	// Create-only write: an id collision must not silently overwrite.
	_, err := r.store.CompareAndSwap(ctx, keyProducto(p.ID), marshal(p), 0)
	return err
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	p, _, err := r.get(ctx, id)
	return p, err
}

func (r *productoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error) {
	productos, err := r.List(ctx, false)
	if err != nil {
		return nil, err
	}
	for i := range productos {
		if productos[i].Codigo == codigo {
			return &productos[i], nil
		}
	}
	return nil, ErrProductoNoEncontrado
}

func (r *productoRepo) List(ctx context.Context, incluirInactivos bool) ([]model.Producto, error) {
	kvs, err := r.store.List(ctx, prefixProductos)
	if err != nil {
		return nil, err
	}
	productos := make([]model.Producto, 0, len(kvs))
	for _, kv := range kvs {
		var p model.Producto
		if err := json.Unmarshal(kv.Value, &p); err != nil {
			return nil, err
		}
		if !p.Activo && !incluirInactivos {
			continue
		}
		productos = append(productos, p)
	}
	return productos, nil
}

// Update writes catalog fields. The current stock is carried over from the
// stored document so a concurrent sale can never be clobbered by an edit.
func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	for i := 0; i < maxCASRetries; i++ {
		current, ver, err := r.get(ctx, p.ID)
		if err != nil {
			return err
		}
		p.Stock = current.Stock
		p.Restauraciones = current.Restauraciones
		p.CreatedAt = current.CreatedAt
		p.UpdatedAt = time.Now().UTC()
		_, err = r.store.CompareAndSwap(ctx, keyProducto(p.ID), marshal(p), ver)
		if errors.Is(err, kvstore.ErrVersionConflict) {
			continue
		}
		return err
	}
	return ErrConflictoTransitorio
}

func (r *productoRepo) Desactivar(ctx context.Context, id uuid.UUID) error {
	for i := 0; i < maxCASRetries; i++ {
		p, ver, err := r.get(ctx, id)
		if err != nil {
			return err
		}
		p.Activo = false
		p.UpdatedAt = time.Now().UTC()
		_, err = r.store.CompareAndSwap(ctx, keyProducto(id), marshal(p), ver)
		if errors.Is(err, kvstore.ErrVersionConflict) {
			continue
		}
		return err
	}
	return ErrConflictoTransitorio
}

func (r *productoRepo) DescontarStock(ctx context.Context, id uuid.UUID, cantidad int) (int, error) {
	if cantidad <= 0 {
		return 0, ErrMontoInvalido
	}
	for i := 0; i < maxCASRetries; i++ {
		p, ver, err := r.get(ctx, id)
		if err != nil {
			return 0, err
		}
		if p.Stock < cantidad {
			return 0, ErrStockInsuficiente
		}
		antes := p.Stock
		p.Stock -= cantidad
		p.UpdatedAt = time.Now().UTC()
		_, err = r.store.CompareAndSwap(ctx, keyProducto(id), marshal(p), ver)
		if errors.Is(err, kvstore.ErrVersionConflict) {
			continue // another sale landed first, re-read and retry
		}
		if err != nil {
			return 0, err
		}
		return antes, nil
	}
	return 0, ErrConflictoTransitorio
}

func (r *productoRepo) RestaurarStock(ctx context.Context, ventaID, id uuid.UUID, cantidad int) error {
	// The increment and the record of it live in the same document, so one
	// CAS commits both. A replay after a failed write re-reads a document
	// without the venta id and applies the increment again; a replay after a
	// successful write finds the id and stops.
	for i := 0; i < maxCASRetries; i++ {
		p, ver, err := r.get(ctx, id)
		if err != nil {
			return err
		}
		if p.RestauracionAplicada(ventaID) {
			return nil
		}
		p.Stock += cantidad
		p.Restauraciones = append(p.Restauraciones, ventaID)
		p.UpdatedAt = time.Now().UTC()
		_, err = r.store.CompareAndSwap(ctx, keyProducto(id), marshal(p), ver)
		if errors.Is(err, kvstore.ErrVersionConflict) {
			continue
		}
		return err
	}
	return ErrConflictoTransitorio
}

func (r *productoRepo) AjustarStock(ctx context.Context, id uuid.UUID, delta int) error {
	for i := 0; i < maxCASRetries; i++ {
		p, ver, err := r.get(ctx, id)
		if err != nil {
			return err
		}
		if p.Stock+delta < 0 {
			return ErrStockInsuficiente
		}
		p.Stock += delta
		p.UpdatedAt = time.Now().UTC()
		_, err = r.store.CompareAndSwap(ctx, keyProducto(id), marshal(p), ver)
		if errors.Is(err, kvstore.ErrVersionConflict) {
			continue
		}
		return err
	}
	return ErrConflictoTransitorio
}

func (r *productoRepo) BajoStockMinimo(ctx context.Context) ([]model.Producto, error) {
	productos, err := r.List(ctx, false)
	if err != nil {
		return nil, err
	}
	var bajos []model.Producto
	for _, p := range productos {
		if p.BajoStock() {
			bajos = append(bajos, p)
		}
	}
	return bajos, nil
}

func (r *productoRepo) get(ctx context.Context, id uuid.UUID) (*model.Producto, uint64, error) {
	data, ver, err := r.store.Get(ctx, keyProducto(id))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, 0, ErrProductoNoEncontrado
	}
	if err != nil {
		return nil, 0, err
	}
	var p model.Producto
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, 0, err
	}
	return &p, ver, nil
}
