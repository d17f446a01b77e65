package handler

import (
	"net/http"

	"github.com/clehider/BazarMundoVictor/internal/dto"
	"github.com/clehider/BazarMundoVictor/internal/service"

	"github.com/gin-gonic/gin"
)

type ConfiguracionHandler struct{ svc service.ConfiguracionService }

func NewConfiguracionHandler(svc service.ConfiguracionService) *ConfiguracionHandler {
	return &ConfiguracionHandler{svc: svc}
}

func (h *ConfiguracionHandler) Empresa(c *gin.Context) {
	resp, err := h.svc.Empresa(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ConfiguracionHandler) GuardarEmpresa(c *gin.Context) {
	var req dto.EmpresaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.GuardarEmpresa(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
