package handler

import (
	"net/http"

	"github.com/clehider/BazarMundoVictor/internal/dto"
	"github.com/clehider/BazarMundoVictor/internal/service"

	"github.com/gin-gonic/gin"
)

type CategoriaHandler struct{ svc service.CategoriaService }

func NewCategoriaHandler(svc service.CategoriaService) *CategoriaHandler {
	return &CategoriaHandler{svc: svc}
}

func (h *CategoriaHandler) Crear(c *gin.Context) {
	var req dto.CategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearCategoria(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CategoriaHandler) Actualizar(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarCategoria(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CategoriaHandler) Eliminar(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.EliminarCategoria(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CategoriaHandler) Listar(c *gin.Context) {
	categorias, err := h.svc.ListCategorias(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categorias, "total": len(categorias)})
}
