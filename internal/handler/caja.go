package handler

import (
	"net/http"

	"github.com/clehider/BazarMundoVictor/internal/dto"
	"github.com/clehider/BazarMundoVictor/internal/middleware"
	"github.com/clehider/BazarMundoVictor/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.Abrir(c.Request.Context(), claims.Email, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CajaHandler) Cerrar(c *gin.Context) {
	claims := middleware.GetClaims(c)

	resp, err := h.svc.Cerrar(c.Request.Context(), claims.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actual returns the currently open caja, movements included.
func (h *CajaHandler) Actual(c *gin.Context) {
	resp, err := h.svc.CajaActual(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajaHandler) Obtener(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.FindCaja(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajaHandler) Historial(c *gin.Context) {
	resp, err := h.svc.ListCajas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajaHandler) RegistrarAbono(c *gin.Context) {
	var req dto.RegistrarAbonoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.RegistrarAbono(c.Request.Context(), claims.Email, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
