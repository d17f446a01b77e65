package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/clehider/BazarMundoVictor/internal/apierror"
	"github.com/clehider/BazarMundoVictor/internal/repository"
	"github.com/clehider/BazarMundoVictor/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps the typed failures of the commit core onto HTTP
// statuses. Anything unrecognized falls through to the ErrorHandler
// middleware as a 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrProductoNoEncontrado),
		errors.Is(err, repository.ErrVentaNoEncontrada),
		errors.Is(err, repository.ErrCajaNoEncontrada),
		errors.Is(err, repository.ErrCategoriaNoEncontrada),
		errors.Is(err, repository.ErrUsuarioNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))

	case errors.Is(err, repository.ErrStockInsuficiente),
		errors.Is(err, repository.ErrMontoInvalido),
		errors.Is(err, repository.ErrCodigoDuplicado),
		errors.Is(err, repository.ErrEmailDuplicado),
		errors.Is(err, service.ErrCarritoVacio),
		errors.Is(err, service.ErrVentaYaAnulada):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))

	case errors.Is(err, repository.ErrEstadoInvalido),
		errors.Is(err, repository.ErrCajaCerrada),
		errors.Is(err, repository.ErrSinCajaAbierta):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))

	case errors.Is(err, repository.ErrConflictoTransitorio):
		// The caller may simply retry.
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, apierror.New(err.Error()))

	default:
		_ = c.Error(err)
	}
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}
