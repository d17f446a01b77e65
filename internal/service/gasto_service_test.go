package service

import (
	"context"
	"testing"

	"github.com/clehider/BazarMundoVictor/internal/dto"
	"github.com/clehider/BazarMundoVictor/internal/kvstore"
	"github.com/clehider/BazarMundoVictor/internal/model"
	"github.com/clehider/BazarMundoVictor/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGastoFixture(t *testing.T) (GastoService, repository.CajaRepository, repository.GastoRepository) {
	t.Helper()
	store := kvstore.NewMemory()
	cajaRepo := repository.NewCajaRepository(store)
	gastoRepo := repository.NewGastoRepository(store)
	return NewGastoService(gastoRepo, cajaRepo), cajaRepo, gastoRepo
}

func TestRegistrarGasto(t *testing.T) {
	ctx := context.Background()
	svc, cajaRepo, gastoRepo := newGastoFixture(t)

	caja, err := cajaRepo.Abrir(ctx, decimal.NewFromInt(100), "ana")
	require.NoError(t, err)

	resp, err := svc.RegistrarGasto(ctx, "ana", dto.RegistrarGastoRequest{
		Descripcion: "compra de bolsas",
		Monto:       decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, caja.ID.String(), resp.CajaID)
	assert.True(t, resp.Monto.Equal(decimal.NewFromInt(10)))

	// document and ledger movement both exist and share the gasto id
	gastos, err := gastoRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, gastos, 1)

	got, err := cajaRepo.FindByID(ctx, caja.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalGastos.Equal(decimal.NewFromInt(10)))
	assert.True(t, got.SaldoActual().Equal(decimal.NewFromInt(90)))
	assert.True(t, got.TieneMovimientoPara(model.MovimientoGasto, uuid.MustParse(resp.ID)))
}

func TestRegistrarGastoMontoInvalido(t *testing.T) {
	ctx := context.Background()
	svc, cajaRepo, _ := newGastoFixture(t)
	_, err := cajaRepo.Abrir(ctx, decimal.NewFromInt(100), "ana")
	require.NoError(t, err)

	_, err = svc.RegistrarGasto(ctx, "ana", dto.RegistrarGastoRequest{
		Descripcion: "nada", Monto: decimal.Zero,
	})
	assert.ErrorIs(t, err, repository.ErrMontoInvalido)
}

func TestRegistrarGastoSinCaja(t *testing.T) {
	svc, _, gastoRepo := newGastoFixture(t)

	_, err := svc.RegistrarGasto(context.Background(), "ana", dto.RegistrarGastoRequest{
		Descripcion: "compra", Monto: decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, repository.ErrSinCajaAbierta)

	gastos, err := gastoRepo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gastos)
}

func TestRegistrarGastoMovimientoFallidoNoDejaHuerfano(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	cajaRepo := repository.NewCajaRepository(store)
	gastoRepo := repository.NewGastoRepository(store)

	caja, err := cajaRepo.Abrir(ctx, decimal.NewFromInt(100), "ana")
	require.NoError(t, err)

	conFallo := &cajaRepoConFallo{CajaRepository: cajaRepo, fallos: 1}
	svc := NewGastoService(gastoRepo, conFallo)

	_, err = svc.RegistrarGasto(ctx, "ana", dto.RegistrarGastoRequest{
		Descripcion: "compra de bolsas", Monto: decimal.NewFromInt(10),
	})
	require.Error(t, err)

	// the document must not outlive its missing movement
	gastos, err := gastoRepo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, gastos)

	got, err := cajaRepo.FindByID(ctx, caja.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalGastos.IsZero())

	// the retry records the gasto exactly once
	resp, err := svc.RegistrarGasto(ctx, "ana", dto.RegistrarGastoRequest{
		Descripcion: "compra de bolsas", Monto: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	gastos, err = gastoRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, gastos, 1)

	got, err = cajaRepo.FindByID(ctx, caja.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalGastos.Equal(decimal.NewFromInt(10)))
	assert.True(t, got.TieneMovimientoPara(model.MovimientoGasto, uuid.MustParse(resp.ID)))
}

func TestListGastos(t *testing.T) {
	ctx := context.Background()
	svc, cajaRepo, _ := newGastoFixture(t)
	_, err := cajaRepo.Abrir(ctx, decimal.NewFromInt(100), "ana")
	require.NoError(t, err)

	for _, desc := range []string{"bolsas", "limpieza", "transporte"} {
		_, err := svc.RegistrarGasto(ctx, "ana", dto.RegistrarGastoRequest{
			Descripcion: desc, Monto: decimal.NewFromInt(5),
		})
		require.NoError(t, err)
	}

	lista, err := svc.ListGastos(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, lista.Total)
}
