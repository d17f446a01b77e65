package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/clehider/BazarMundoVictor/internal/kvstore"
	"github.com/clehider/BazarMundoVictor/internal/model"
)

type ConfiguracionRepository interface {
	GetEmpresa(ctx context.Context) (*model.Empresa, error)
	SaveEmpresa(ctx context.Context, e *model.Empresa) error
}

type configuracionRepo struct{ store kvstore.Store }

func NewConfiguracionRepository(store kvstore.Store) ConfiguracionRepository {
	return &configuracionRepo{store: store}
}

// GetEmpresa returns the stored company document, or the factory default
// when nobody has saved one yet.
func (r *configuracionRepo) GetEmpresa(ctx context.Context) (*model.Empresa, error) {
	data, _, err := r.store.Get(ctx, keyEmpresa)
	if errors.Is(err, kvstore.ErrNotFound) {
		return &model.Empresa{
			Nombre: "Bazar Mundo Victor",
			Moneda: "BOB",
		}, nil
	}
	if err != nil {
		return nil, err
	}
	var e model.Empresa
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *configuracionRepo) SaveEmpresa(ctx context.Context, e *model.Empresa) error {
	e.UpdatedAt = time.Now().UTC()
	return r.store.Put(ctx, keyEmpresa, marshal(e))
}
