package repository

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/clehider/BazarMundoVictor/internal/kvstore"
	"github.com/clehider/BazarMundoVictor/internal/model"

	"github.com/google/uuid"
)

type GastoRepository interface {
	Create(ctx context.Context, g *model.Gasto) error
	List(ctx context.Context) ([]model.Gasto, error)

	// Delete removes the gasto document with the given id. Deleting a
	// gasto that no longer exists is a no-op.
	Delete(ctx context.Context, id uuid.UUID) error
}

type gastoRepo struct{ store kvstore.Store }

func NewGastoRepository(store kvstore.Store) GastoRepository {
	return &gastoRepo{store: store}
}

// Gastos are a journal: ids never collide and nothing updates them in
// place, so documents land under store-generated keys in arrival order.
func (r *gastoRepo) Create(ctx context.Context, g *model.Gasto) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	_, err := r.store.Push(ctx, prefixGastos, marshal(g))
	return err
}

func (r *gastoRepo) List(ctx context.Context) ([]model.Gasto, error) {
	kvs, err := r.store.List(ctx, prefixGastos)
	if err != nil {
		return nil, err
	}
	gastos := make([]model.Gasto, 0, len(kvs))
	for _, kv := range kvs {
		var g model.Gasto
		if err := json.Unmarshal(kv.Value, &g); err != nil {
			return nil, err
		}
		gastos = append(gastos, g)
	}
	sort.Slice(gastos, func(i, j int) bool { return gastos[i].Fecha.After(gastos[j].Fecha) })
	return gastos, nil
}

func (r *gastoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	kvs, err := r.store.List(ctx, prefixGastos)
	if err != nil {
		return err
	}
	for _, kv := range kvs {
		var g model.Gasto
		if err := json.Unmarshal(kv.Value, &g); err != nil {
			return err
		}
		if g.ID == id {
			return r.store.Delete(ctx, kv.Key)
		}
	}
	return nil
}
