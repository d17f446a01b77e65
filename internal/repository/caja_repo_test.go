package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/clehider/BazarMundoVictor/internal/kvstore"
	"github.com/clehider/BazarMundoVictor/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestCajaAbrirYConsultar(t *testing.T) {
	ctx := context.Background()
	repo := NewCajaRepository(kvstore.NewMemory())

	caja, err := repo.Abrir(ctx, d(100), "ana@mundovictor.com")
	require.NoError(t, err)
	assert.Equal(t, model.CajaAbierta, caja.Estado)
	assert.True(t, caja.MontoInicial.Equal(d(100)))
	require.Len(t, caja.Movimientos, 1)
	assert.Equal(t, model.MovimientoApertura, caja.Movimientos[0].Tipo)

	abierta, err := repo.CajaAbierta(ctx)
	require.NoError(t, err)
	assert.Equal(t, caja.ID, abierta.ID)
}

func TestCajaAbrirMontoNegativo(t *testing.T) {
	repo := NewCajaRepository(kvstore.NewMemory())
	_, err := repo.Abrir(context.Background(), d(-1), "ana")
	assert.ErrorIs(t, err, ErrMontoInvalido)
}

func TestCajaAbrirSegundaFalla(t *testing.T) {
	ctx := context.Background()
	repo := NewCajaRepository(kvstore.NewMemory())

	_, err := repo.Abrir(ctx, d(100), "ana")
	require.NoError(t, err)

	_, err = repo.Abrir(ctx, d(50), "beto")
	assert.ErrorIs(t, err, ErrEstadoInvalido)
}

func TestCajaAbrirConcurrenteUnSoloGanador(t *testing.T) {
	ctx := context.Background()
	repo := NewCajaRepository(kvstore.NewMemory())

	const n = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	ganadores := 0

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Abrir(ctx, d(100), "op"); err == nil {
				mu.Lock()
				ganadores++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ganadores, "exactly one concurrent open may win")
}

func TestCajaSinAbierta(t *testing.T) {
	repo := NewCajaRepository(kvstore.NewMemory())
	_, err := repo.CajaAbierta(context.Background())
	assert.ErrorIs(t, err, ErrSinCajaAbierta)

	_, err = repo.Cerrar(context.Background(), "ana")
	assert.ErrorIs(t, err, ErrSinCajaAbierta)
}

func TestCajaPunteroHuerfanoSeSanea(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	repo := NewCajaRepository(store)

	// pointer exists but the caja document was never written
	_, err := store.CompareAndSwap(ctx, "cajas_abierta", []byte(uuid.NewString()), 0)
	require.NoError(t, err)

	_, err = repo.CajaAbierta(ctx)
	assert.ErrorIs(t, err, ErrSinCajaAbierta)

	// the stale pointer is gone, a new open succeeds
	_, err = repo.Abrir(ctx, d(100), "ana")
	require.NoError(t, err)
}

func TestCajaRegistrarMovimientoActualizaTotales(t *testing.T) {
	ctx := context.Background()
	repo := NewCajaRepository(kvstore.NewMemory())
	caja, err := repo.Abrir(ctx, d(100), "ana")
	require.NoError(t, err)

	require.NoError(t, repo.RegistrarMovimiento(ctx, caja.ID, model.Movimiento{
		Tipo: model.MovimientoVenta, Monto: d(50), Usuario: "ana", Descripcion: "venta",
	}))
	require.NoError(t, repo.RegistrarMovimiento(ctx, caja.ID, model.Movimiento{
		Tipo: model.MovimientoAbono, Monto: d(20), Usuario: "ana", Descripcion: "abono",
	}))
	require.NoError(t, repo.RegistrarMovimiento(ctx, caja.ID, model.Movimiento{
		Tipo: model.MovimientoGasto, Monto: d(10), Usuario: "ana", Descripcion: "gasto",
	}))

	totales, err := repo.Totales(ctx, caja.ID)
	require.NoError(t, err)
	assert.True(t, totales.Ventas.Equal(d(50)))
	assert.True(t, totales.Abonos.Equal(d(20)))
	assert.True(t, totales.Gastos.Equal(d(10)))

	got, err := repo.FindByID(ctx, caja.ID)
	require.NoError(t, err)
	assert.True(t, got.SaldoActual().Equal(d(160)), "100 + 50 + 20 - 10")
}

func TestCajaRegistrarMovimientoMontoInvalido(t *testing.T) {
	ctx := context.Background()
	repo := NewCajaRepository(kvstore.NewMemory())
	caja, err := repo.Abrir(ctx, d(100), "ana")
	require.NoError(t, err)

	err = repo.RegistrarMovimiento(ctx, caja.ID, model.Movimiento{
		Tipo: model.MovimientoVenta, Monto: d(0),
	})
	assert.ErrorIs(t, err, ErrMontoInvalido)

	err = repo.RegistrarMovimiento(ctx, caja.ID, model.Movimiento{
		Tipo: model.MovimientoGasto, Monto: d(-5),
	})
	assert.ErrorIs(t, err, ErrMontoInvalido)
}

func TestCajaRegistrarMovimientoIdempotentePorReferencia(t *testing.T) {
	ctx := context.Background()
	repo := NewCajaRepository(kvstore.NewMemory())
	caja, err := repo.Abrir(ctx, d(100), "ana")
	require.NoError(t, err)

	ventaID := uuid.New()
	mov := model.Movimiento{
		Tipo: model.MovimientoVenta, Monto: d(50), Usuario: "ana",
		Descripcion: "venta", ReferenciaID: &ventaID,
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.RegistrarMovimiento(ctx, caja.ID, mov))
	}

	got, err := repo.FindByID(ctx, caja.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalVentas.Equal(d(50)), "replayed appends must not double-count")
	// apertura + one venta
	assert.Len(t, got.Movimientos, 2)
}

func TestCajaMovimientosConcurrentesNoSePierden(t *testing.T) {
	ctx := context.Background()
	repo := NewCajaRepository(kvstore.NewMemory())
	caja, err := repo.Abrir(ctx, d(0), "ana")
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	resultados := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resultados <- repo.RegistrarMovimiento(ctx, caja.ID, model.Movimiento{
				Tipo: model.MovimientoVenta, Monto: d(1), Usuario: "op", Descripcion: "venta",
			})
		}()
	}
	wg.Wait()
	close(resultados)

	rechazados := 0
	for err := range resultados {
		if errors.Is(err, ErrConflictoTransitorio) {
			rechazados++
			continue
		}
		require.NoError(t, err)
	}

	got, err := repo.FindByID(ctx, caja.ID)
	require.NoError(t, err)

	aceptados := n - rechazados
	assert.True(t, got.TotalVentas.Equal(d(int64(aceptados))),
		"every accepted movement must be counted exactly once")

	// the stored totals always equal the ledger fold
	replay := got.TotalesDesdeMovimientos()
	assert.True(t, replay.Ventas.Equal(got.TotalVentas))
}

func TestCajaCerrarCalculaTotalGeneral(t *testing.T) {
	ctx := context.Background()
	repo := NewCajaRepository(kvstore.NewMemory())
	caja, err := repo.Abrir(ctx, d(100), "ana")
	require.NoError(t, err)

	require.NoError(t, repo.RegistrarMovimiento(ctx, caja.ID, model.Movimiento{
		Tipo: model.MovimientoVenta, Monto: d(50), Usuario: "ana", Descripcion: "venta",
	}))
	require.NoError(t, repo.RegistrarMovimiento(ctx, caja.ID, model.Movimiento{
		Tipo: model.MovimientoAbono, Monto: d(20), Usuario: "ana", Descripcion: "abono",
	}))
	require.NoError(t, repo.RegistrarMovimiento(ctx, caja.ID, model.Movimiento{
		Tipo: model.MovimientoGasto, Monto: d(10), Usuario: "ana", Descripcion: "gasto",
	}))

	cerrada, err := repo.Cerrar(ctx, "beto")
	require.NoError(t, err)
	assert.Equal(t, model.CajaCerrada, cerrada.Estado)
	require.NotNil(t, cerrada.TotalGeneral)
	assert.True(t, cerrada.TotalGeneral.Equal(d(160)))
	require.NotNil(t, cerrada.UsuarioCierre)
	assert.Equal(t, "beto", *cerrada.UsuarioCierre)

	// the slot is free again
	_, err = repo.CajaAbierta(ctx)
	assert.ErrorIs(t, err, ErrSinCajaAbierta)
	_, err = repo.Abrir(ctx, d(160), "ana")
	require.NoError(t, err)
}

func TestCajaCerradaRechazaMovimientos(t *testing.T) {
	ctx := context.Background()
	repo := NewCajaRepository(kvstore.NewMemory())
	caja, err := repo.Abrir(ctx, d(100), "ana")
	require.NoError(t, err)

	_, err = repo.Cerrar(ctx, "ana")
	require.NoError(t, err)

	err = repo.RegistrarMovimiento(ctx, caja.ID, model.Movimiento{
		Tipo: model.MovimientoVenta, Monto: d(50), Usuario: "ana", Descripcion: "venta",
	})
	assert.ErrorIs(t, err, ErrCajaCerrada)
}
