package handler

import (
	"net/http"

	"github.com/clehider/BazarMundoVictor/internal/dto"
	"github.com/clehider/BazarMundoVictor/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductoHandler struct{ svc service.ProductoService }

func NewProductoHandler(svc service.ProductoService) *ProductoHandler {
	return &ProductoHandler{svc: svc}
}

func (h *ProductoHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearProducto(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProductoHandler) Actualizar(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarProducto(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductoHandler) AjustarStock(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AjustarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AjustarStock(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductoHandler) Desactivar(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DesactivarProducto(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductoHandler) Obtener(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.FindProducto(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PorCodigo resolves a barcode scan to a product.
func (h *ProductoHandler) PorCodigo(c *gin.Context) {
	resp, err := h.svc.FindPorCodigo(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductoHandler) Listar(c *gin.Context) {
	incluirInactivos := c.Query("inactivos") == "true"
	resp, err := h.svc.ListProductos(c.Request.Context(), incluirInactivos)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductoHandler) BajoStock(c *gin.Context) {
	resp, err := h.svc.BajoStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
