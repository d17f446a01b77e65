package handler

import (
	"net/http"

	"github.com/clehider/BazarMundoVictor/internal/dto"
	"github.com/clehider/BazarMundoVictor/internal/middleware"
	"github.com/clehider/BazarMundoVictor/internal/service"

	"github.com/gin-gonic/gin"
)

type GastoHandler struct{ svc service.GastoService }

func NewGastoHandler(svc service.GastoService) *GastoHandler { return &GastoHandler{svc: svc} }

func (h *GastoHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarGastoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.RegistrarGasto(c.Request.Context(), claims.Email, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *GastoHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListGastos(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
