package repository

import (
	"context"
	"testing"
	"time"

	"github.com/clehider/BazarMundoVictor/internal/kvstore"
	"github.com/clehider/BazarMundoVictor/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGasto(t *testing.T, repo GastoRepository, desc string, fecha time.Time) *model.Gasto {
	t.Helper()
	g := &model.Gasto{
		CajaID:      uuid.New(),
		Descripcion: desc,
		Monto:       decimal.NewFromInt(10),
		Fecha:       fecha,
		Usuario:     "ana",
	}
	require.NoError(t, repo.Create(context.Background(), g))
	return g
}

func TestGastoCreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewGastoRepository(kvstore.NewMemory())

	ahora := time.Now().UTC()
	newGasto(t, repo, "bolsas", ahora.Add(-2*time.Hour))
	reciente := newGasto(t, repo, "limpieza", ahora)

	gastos, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, gastos, 2)
	assert.Equal(t, reciente.ID, gastos[0].ID, "newest first")
}

func TestGastoDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewGastoRepository(kvstore.NewMemory())

	ahora := time.Now().UTC()
	borrar := newGasto(t, repo, "bolsas", ahora)
	queda := newGasto(t, repo, "limpieza", ahora)

	require.NoError(t, repo.Delete(ctx, borrar.ID))

	gastos, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, gastos, 1)
	assert.Equal(t, queda.ID, gastos[0].ID)

	// deleting an id that no longer exists is a no-op
	require.NoError(t, repo.Delete(ctx, borrar.ID))
}
