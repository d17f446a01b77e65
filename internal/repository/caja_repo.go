package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/clehider/BazarMundoVictor/internal/kvstore"
	"github.com/clehider/BazarMundoVictor/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CajaRepository owns the register lifecycle and its ledger.
//
// Two store-level mechanisms carry all the guarantees:
//
//   - cajas_abierta is a pointer key written create-only, so concurrent
//     Abrir calls produce exactly one winner system-wide.
//   - a caja document holds its totals AND its movement list, so the one
//     compare-and-swap that appends a movement also updates the total —
//     readers never see one without the other, and replaying the
//     movements always reproduces the stored totals.
type CajaRepository interface {
	Abrir(ctx context.Context, montoInicial decimal.Decimal, usuario string) (*model.Caja, error)
	Cerrar(ctx context.Context, usuario string) (*model.Caja, error)
	CajaAbierta(ctx context.Context) (*model.Caja, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error)
	List(ctx context.Context) ([]model.Caja, error)

	// RegistrarMovimiento appends mov to the caja ledger and bumps the
	// matching total in one conditional write. When mov carries a
	// ReferenciaID that already has a movement of the same tipo, the call
	// is a no-op — that is the idempotency the sale coordinator retries on.
	RegistrarMovimiento(ctx context.Context, cajaID uuid.UUID, mov model.Movimiento) error

	Totales(ctx context.Context, cajaID uuid.UUID) (model.Totales, error)
}

type cajaRepo struct{ store kvstore.Store }

func NewCajaRepository(store kvstore.Store) CajaRepository {
	return &cajaRepo{store: store}
}

func (r *cajaRepo) Abrir(ctx context.Context, montoInicial decimal.Decimal, usuario string) (*model.Caja, error) {
	if montoInicial.IsNegative() {
		return nil, ErrMontoInvalido
	}

	id := uuid.New()

	// Claim the open slot first. The create-only write is the single-winner
	// gate: the loser of a concurrent open sees the conflict and fails.
	_, err := r.store.CompareAndSwap(ctx, keyCajaAbierta, []byte(id.String()), 0)
	if errors.Is(err, kvstore.ErrVersionConflict) {
		return nil, ErrEstadoInvalido
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	caja := &model.Caja{
		ID:              id,
		Estado:          model.CajaAbierta,
		MontoInicial:    montoInicial,
		TotalVentas:     decimal.Zero,
		TotalGastos:     decimal.Zero,
		TotalAbonos:     decimal.Zero,
		FechaApertura:   now,
		UsuarioApertura: usuario,
		Movimientos: []model.Movimiento{{
			ID:          uuid.New(),
			Tipo:        model.MovimientoApertura,
			Monto:       montoInicial,
			Fecha:       now,
			Usuario:     usuario,
			Descripcion: "Apertura de caja",
		}},
	}
	if err := r.store.Put(ctx, keyCaja(id), marshal(caja)); err != nil {
		return nil, err
	}
	return caja, nil
}

func (r *cajaRepo) Cerrar(ctx context.Context, usuario string) (*model.Caja, error) {
	pointer, _, err := r.store.Get(ctx, keyCajaAbierta)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, ErrSinCajaAbierta
	}
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(string(pointer))
	if err != nil {
		return nil, ErrSinCajaAbierta
	}

	for i := 0; i < maxCASRetries; i++ {
		caja, ver, err := r.get(ctx, id)
		if err != nil {
			return nil, err
		}
		if caja.Estado != model.CajaAbierta {
			return nil, ErrEstadoInvalido
		}

		now := time.Now().UTC()
		total := caja.SaldoActual()
		caja.Estado = model.CajaCerrada
		caja.TotalGeneral = &total
		caja.FechaCierre = &now
		caja.UsuarioCierre = &usuario

		_, err = r.store.CompareAndSwap(ctx, keyCaja(id), marshal(caja), ver)
		if errors.Is(err, kvstore.ErrVersionConflict) {
			continue // a movement landed while closing, recompute
		}
		if err != nil {
			return nil, err
		}
		// Free the open slot. If the process dies before this delete,
		// CajaAbierta heals the stale pointer on its next read.
		if err := r.store.Delete(ctx, keyCajaAbierta); err != nil {
			return nil, err
		}
		return caja, nil
	}
	return nil, ErrConflictoTransitorio
}

func (r *cajaRepo) CajaAbierta(ctx context.Context) (*model.Caja, error) {
	pointer, _, err := r.store.Get(ctx, keyCajaAbierta)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, ErrSinCajaAbierta
	}
	if err != nil {
		return nil, err
	}

	id, parseErr := uuid.Parse(string(pointer))
	if parseErr != nil {
		_ = r.store.Delete(ctx, keyCajaAbierta)
		return nil, ErrSinCajaAbierta
	}
	caja, _, err := r.get(ctx, id)
	if errors.Is(err, ErrCajaNoEncontrada) || (err == nil && caja.Estado != model.CajaAbierta) {
		// Stale pointer: the open crashed before writing the document,
		// or the close crashed before deleting the pointer.
		_ = r.store.Delete(ctx, keyCajaAbierta)
		return nil, ErrSinCajaAbierta
	}
	if err != nil {
		return nil, err
	}
	return caja, nil
}

func (r *cajaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	caja, _, err := r.get(ctx, id)
	return caja, err
}

func (r *cajaRepo) List(ctx context.Context) ([]model.Caja, error) {
	kvs, err := r.store.List(ctx, prefixCajas)
	if err != nil {
		return nil, err
	}
	cajas := make([]model.Caja, 0, len(kvs))
	for _, kv := range kvs {
		var c model.Caja
		if err := json.Unmarshal(kv.Value, &c); err != nil {
			return nil, err
		}
		cajas = append(cajas, c)
	}
	return cajas, nil
}

func (r *cajaRepo) RegistrarMovimiento(ctx context.Context, cajaID uuid.UUID, mov model.Movimiento) error {
	if !mov.Monto.IsPositive() {
		return ErrMontoInvalido
	}

	for i := 0; i < maxCASRetries; i++ {
		caja, ver, err := r.get(ctx, cajaID)
		if err != nil {
			return err
		}
		if caja.Estado != model.CajaAbierta {
			return ErrCajaCerrada
		}
		if mov.ReferenciaID != nil && caja.TieneMovimientoPara(mov.Tipo, *mov.ReferenciaID) {
			return nil // already appended for this venta
		}

		if mov.ID == uuid.Nil {
			mov.ID = uuid.New()
		}
		if mov.Fecha.IsZero() {
			mov.Fecha = time.Now().UTC()
		}
		caja.Movimientos = append(caja.Movimientos, mov)

		switch mov.Tipo {
		case model.MovimientoVenta:
			caja.TotalVentas = caja.TotalVentas.Add(mov.Monto)
		case model.MovimientoAnulacion:
			caja.TotalVentas = caja.TotalVentas.Sub(mov.Monto)
		case model.MovimientoGasto:
			caja.TotalGastos = caja.TotalGastos.Add(mov.Monto)
		case model.MovimientoAbono:
			caja.TotalAbonos = caja.TotalAbonos.Add(mov.Monto)
		}

		_, err = r.store.CompareAndSwap(ctx, keyCaja(cajaID), marshal(caja), ver)
		if errors.Is(err, kvstore.ErrVersionConflict) {
			continue // lost against a concurrent movement, re-read and retry
		}
		return err
	}
	return ErrConflictoTransitorio
}

func (r *cajaRepo) Totales(ctx context.Context, cajaID uuid.UUID) (model.Totales, error) {
	caja, _, err := r.get(ctx, cajaID)
	if err != nil {
		return model.Totales{}, err
	}
	return model.Totales{
		Ventas: caja.TotalVentas,
		Gastos: caja.TotalGastos,
		Abonos: caja.TotalAbonos,
	}, nil
}

func (r *cajaRepo) get(ctx context.Context, id uuid.UUID) (*model.Caja, uint64, error) {
	data, ver, err := r.store.Get(ctx, keyCaja(id))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, 0, ErrCajaNoEncontrada
	}
	if err != nil {
		return nil, 0, err
	}
	var caja model.Caja
	if err := json.Unmarshal(data, &caja); err != nil {
		return nil, 0, err
	}
	return &caja, ver, nil
}
