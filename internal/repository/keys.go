package repository

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Key layout of the document tree. It mirrors the paths the data has always
// lived under: productos/, cajas/, ventas/, gastos/, usuarios/, categorias/,
// configuracion/. cajas_abierta is the single pointer key whose create-only
// write decides which caja wins the "abierta" slot.
const (
	prefixProductos  = "productos"
	prefixCajas      = "cajas"
	prefixVentas     = "ventas"
	prefixGastos     = "gastos"
	prefixUsuarios   = "usuarios"
	prefixCategorias = "categorias"

	keyCajaAbierta = "cajas_abierta"
	keyEmpresa     = "configuracion/empresa"
)

func keyProducto(id uuid.UUID) string  { return prefixProductos + "/" + id.String() }
func keyCaja(id uuid.UUID) string      { return prefixCajas + "/" + id.String() }
func keyVenta(id uuid.UUID) string     { return prefixVentas + "/" + id.String() }
func keyUsuario(id uuid.UUID) string   { return prefixUsuarios + "/" + id.String() }
func keyCategoria(id uuid.UUID) string { return prefixCategorias + "/" + id.String() }

func marshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// Models are plain structs; marshal can only fail on programmer error.
		panic(fmt.Sprintf("repository: marshal %T: %v", v, err))
	}
	return b
}
