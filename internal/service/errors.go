package service

import "errors"

var (
	ErrCarritoVacio          = errors.New("el carrito está vacío")
	ErrCredencialesInvalidas = errors.New("credenciales inválidas")
	ErrVentaYaAnulada        = errors.New("la venta ya está anulada")
)
