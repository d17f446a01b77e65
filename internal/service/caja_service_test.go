package service

import (
	"context"
	"testing"

	"github.com/clehider/BazarMundoVictor/internal/dto"
	"github.com/clehider/BazarMundoVictor/internal/kvstore"
	"github.com/clehider/BazarMundoVictor/internal/model"
	"github.com/clehider/BazarMundoVictor/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCajaService(t *testing.T) (CajaService, repository.CajaRepository) {
	t.Helper()
	repo := repository.NewCajaRepository(kvstore.NewMemory())
	return NewCajaService(repo), repo
}

func TestCajaServiceAbrirYConsultar(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCajaService(t)

	resp, err := svc.Abrir(ctx, "ana@mundovictor.com", dto.AbrirCajaRequest{
		MontoInicial: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	assert.Equal(t, model.CajaAbierta, resp.Estado)
	assert.True(t, resp.SaldoActual.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "ana@mundovictor.com", resp.UsuarioApertura)
	require.Len(t, resp.Movimientos, 1)
	assert.Equal(t, model.MovimientoApertura, resp.Movimientos[0].Tipo)

	actual, err := svc.CajaActual(ctx)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, actual.ID)
}

func TestCajaServiceAbrirDosVeces(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCajaService(t)

	_, err := svc.Abrir(ctx, "ana", dto.AbrirCajaRequest{MontoInicial: decimal.NewFromInt(100)})
	require.NoError(t, err)

	_, err = svc.Abrir(ctx, "beto", dto.AbrirCajaRequest{MontoInicial: decimal.NewFromInt(50)})
	assert.ErrorIs(t, err, repository.ErrEstadoInvalido)
}

func TestCajaServiceRegistrarAbono(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCajaService(t)

	abierta, err := svc.Abrir(ctx, "ana", dto.AbrirCajaRequest{MontoInicial: decimal.NewFromInt(100)})
	require.NoError(t, err)

	mov, err := svc.RegistrarAbono(ctx, "ana", dto.RegistrarAbonoRequest{
		Monto:       decimal.NewFromInt(20),
		Descripcion: "reposición de cambio",
	})
	require.NoError(t, err)
	assert.Equal(t, model.MovimientoAbono, mov.Tipo)
	assert.True(t, mov.Monto.Equal(decimal.NewFromInt(20)))

	caja, err := repo.CajaAbierta(ctx)
	require.NoError(t, err)
	assert.Equal(t, abierta.ID, caja.ID.String())
	assert.True(t, caja.TotalAbonos.Equal(decimal.NewFromInt(20)))
	assert.True(t, caja.SaldoActual().Equal(decimal.NewFromInt(120)))
}

func TestCajaServiceAbonoInvalido(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCajaService(t)
	_, err := svc.Abrir(ctx, "ana", dto.AbrirCajaRequest{MontoInicial: decimal.NewFromInt(100)})
	require.NoError(t, err)

	_, err = svc.RegistrarAbono(ctx, "ana", dto.RegistrarAbonoRequest{
		Monto: decimal.Zero, Descripcion: "nada",
	})
	assert.ErrorIs(t, err, repository.ErrMontoInvalido)

	_, err = svc.RegistrarAbono(ctx, "ana", dto.RegistrarAbonoRequest{
		Monto: decimal.NewFromInt(-5), Descripcion: "negativo",
	})
	assert.ErrorIs(t, err, repository.ErrMontoInvalido)
}

func TestCajaServiceAbonoSinCaja(t *testing.T) {
	svc, _ := newCajaService(t)
	_, err := svc.RegistrarAbono(context.Background(), "ana", dto.RegistrarAbonoRequest{
		Monto: decimal.NewFromInt(20), Descripcion: "abono",
	})
	assert.ErrorIs(t, err, repository.ErrSinCajaAbierta)
}

func TestCajaServiceCerrarCalculaTotalGeneral(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCajaService(t)

	_, err := svc.Abrir(ctx, "ana", dto.AbrirCajaRequest{MontoInicial: decimal.NewFromInt(100)})
	require.NoError(t, err)
	_, err = svc.RegistrarAbono(ctx, "ana", dto.RegistrarAbonoRequest{
		Monto: decimal.NewFromInt(20), Descripcion: "abono",
	})
	require.NoError(t, err)

	cerrada, err := svc.Cerrar(ctx, "beto")
	require.NoError(t, err)
	assert.Equal(t, model.CajaCerrada, cerrada.Estado)
	require.NotNil(t, cerrada.TotalGeneral)
	assert.True(t, cerrada.TotalGeneral.Equal(decimal.NewFromInt(120)))
	require.NotNil(t, cerrada.FechaCierre)

	_, err = svc.CajaActual(ctx)
	assert.ErrorIs(t, err, repository.ErrSinCajaAbierta)
}

func TestCajaServiceListHistorial(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCajaService(t)

	for i := 0; i < 2; i++ {
		_, err := svc.Abrir(ctx, "ana", dto.AbrirCajaRequest{MontoInicial: decimal.NewFromInt(100)})
		require.NoError(t, err)
		_, err = svc.Cerrar(ctx, "ana")
		require.NoError(t, err)
	}

	lista, err := svc.ListCajas(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, lista.Total)
}
