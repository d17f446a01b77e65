package handler

import (
	"net/http"

	"github.com/clehider/BazarMundoVictor/internal/dto"
	"github.com/clehider/BazarMundoVictor/internal/middleware"
	"github.com/clehider/BazarMundoVictor/internal/service"

	"github.com/gin-gonic/gin"
)

type VentaHandler struct{ svc service.VentaService }

func NewVentaHandler(svc service.VentaService) *VentaHandler { return &VentaHandler{svc: svc} }

func (h *VentaHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.RegistrarVenta(c.Request.Context(), claims.Email, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *VentaHandler) Anular(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AnularVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	if err := h.svc.AnularVenta(c.Request.Context(), claims.Email, id, req.Motivo); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *VentaHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListVentas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentaHandler) Obtener(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.FindVenta(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReintentarMovimiento replays the pending ledger append of a venta on
// demand, without waiting for the reconciliation cron.
func (h *VentaHandler) ReintentarMovimiento(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.ReconciliarMovimiento(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
