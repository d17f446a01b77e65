package handler

import (
	"net/http"
	"time"

	"github.com/clehider/BazarMundoVictor/internal/apierror"
	"github.com/clehider/BazarMundoVictor/internal/service"

	"github.com/gin-gonic/gin"
)

type ReporteHandler struct{ svc service.ReporteService }

func NewReporteHandler(svc service.ReporteService) *ReporteHandler {
	return &ReporteHandler{svc: svc}
}

// ReporteCaja replays the caja ledger against its stored totals.
func (h *ReporteHandler) ReporteCaja(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ReporteCaja(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResumenVentas summarizes completed sales of a day (?fecha=YYYY-MM-DD,
// default today).
func (h *ReporteHandler) ResumenVentas(c *gin.Context) {
	fecha := time.Now().UTC()
	if raw := c.Query("fecha"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("fecha inválida, use YYYY-MM-DD"))
			return
		}
		fecha = parsed
	}
	resp, err := h.svc.ResumenVentas(c.Request.Context(), fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
