package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/clehider/BazarMundoVictor/internal/kvstore"
	"github.com/clehider/BazarMundoVictor/internal/model"

	"github.com/google/uuid"
)

type VentaRepository interface {
	Create(ctx context.Context, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	List(ctx context.Context) ([]model.Venta, error)

	// CambiarEstado transitions a venta from one estado to another; it
	// fails with ErrEstadoInvalido when the stored estado is not desde,
	// so two concurrent anulaciones cannot both succeed.
	CambiarEstado(ctx context.Context, id uuid.UUID, desde, hasta string) error

	// MarcarMovimientoPendiente flags/unflags a venta whose caja movement
	// has not landed yet; the reconciliation cron scans for the flag.
	MarcarMovimientoPendiente(ctx context.Context, id uuid.UUID, pendiente bool) error
	ListPendientes(ctx context.Context) ([]model.Venta, error)
}

type ventaRepo struct{ store kvstore.Store }

func NewVentaRepository(store kvstore.Store) VentaRepository {
	return &ventaRepo{store: store}
}

func (r *ventaRepo) Create(ctx context.Context, v *model.Venta) error {
	_, err := r.store.CompareAndSwap(ctx, keyVenta(v.ID), marshal(v), 0)
	return err
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	v, _, err := r.get(ctx, id)
	return v, err
}

func (r *ventaRepo) List(ctx context.Context) ([]model.Venta, error) {
	kvs, err := r.store.List(ctx, prefixVentas)
	if err != nil {
		return nil, err
	}
	ventas := make([]model.Venta, 0, len(kvs))
	for _, kv := range kvs {
		var v model.Venta
		if err := json.Unmarshal(kv.Value, &v); err != nil {
			return nil, err
		}
		ventas = append(ventas, v)
	}
	sort.Slice(ventas, func(i, j int) bool { return ventas[i].Fecha.After(ventas[j].Fecha) })
	return ventas, nil
}

func (r *ventaRepo) CambiarEstado(ctx context.Context, id uuid.UUID, desde, hasta string) error {
	for i := 0; i < maxCASRetries; i++ {
		v, ver, err := r.get(ctx, id)
		if err != nil {
			return err
		}
		if v.Estado != desde {
			return ErrEstadoInvalido
		}
		v.Estado = hasta
		_, err = r.store.CompareAndSwap(ctx, keyVenta(id), marshal(v), ver)
		if errors.Is(err, kvstore.ErrVersionConflict) {
			continue
		}
		return err
	}
	return ErrConflictoTransitorio
}

func (r *ventaRepo) MarcarMovimientoPendiente(ctx context.Context, id uuid.UUID, pendiente bool) error {
	for i := 0; i < maxCASRetries; i++ {
		v, ver, err := r.get(ctx, id)
		if err != nil {
			return err
		}
		if v.MovimientoPendiente == pendiente {
			return nil
		}
		v.MovimientoPendiente = pendiente
		_, err = r.store.CompareAndSwap(ctx, keyVenta(id), marshal(v), ver)
		if errors.Is(err, kvstore.ErrVersionConflict) {
			continue
		}
		return err
	}
	return ErrConflictoTransitorio
}

func (r *ventaRepo) ListPendientes(ctx context.Context) ([]model.Venta, error) {
	ventas, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var pendientes []model.Venta
	for _, v := range ventas {
		if v.MovimientoPendiente {
			pendientes = append(pendientes, v)
		}
	}
	return pendientes, nil
}

func (r *ventaRepo) get(ctx context.Context, id uuid.UUID) (*model.Venta, uint64, error) {
	data, ver, err := r.store.Get(ctx, keyVenta(id))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, 0, ErrVentaNoEncontrada
	}
	if err != nil {
		return nil, 0, err
	}
	var v model.Venta
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, 0, err
	}
	return &v, ver, nil
}
