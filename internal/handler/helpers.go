package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"tireshop/internal/apierror"
	"tireshop/internal/middleware"
	"tireshop/internal/money"
	"tireshop/internal/service"
	"tireshop/internal/serviceorder"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// gte=0.01 work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// cents: no fraction of a cent. Runs on the float64 produced above;
	// NewFromFloat recovers the shortest decimal form of that float.
	_ = validate.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.Float64 {
			return true
		}
		return money.IsCents(decimal.NewFromFloat(fl.Field().Float()))
	})

	// Report fields by their wire names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeBadRequest, "JSON inválido"))
		return false
	}
	return validateRequest(c, req)
}

// bindQuery is bindAndValidate for query strings; form defaults apply.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeBadRequest, "Parâmetros de consulta inválidos"))
		return false
	}
	return validateRequest(c, req)
}

func validateRequest(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeBadRequest, "Requisição inválida"))
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = tagWithParam(fe)
	}
	c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
	return false
}

// fieldPath drops the struct type name: "items[0].id", not
// "CreateServiceOrderRequest.items[0].id".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func tagWithParam(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeBadRequest, "ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// actorID is the signed-in user; routes using it sit behind JWTAuth.
func actorID(c *gin.Context) uuid.UUID {
	if sess := middleware.GetSession(c); sess != nil {
		return sess.UserID()
	}
	return uuid.Nil
}

// respondError maps the service error taxonomy onto HTTP. Anything not
// recognised is a 500 with a generic message; the cause was already logged
// by the service.
func respondError(c *gin.Context, err error) {
	var verr *serviceorder.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(verr.Fields))
	case errors.Is(err, serviceorder.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, apierror.WithCode(apierror.CodeValidation, serviceorder.ErrValidation.Error()))
	case errors.Is(err, serviceorder.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, apierror.WithCode(apierror.CodeInvalidTransition, err.Error()))
	case errors.Is(err, serviceorder.ErrEmptyOrder):
		c.JSON(http.StatusUnprocessableEntity, apierror.WithCode(apierror.CodeEmptyOrder, serviceorder.ErrEmptyOrder.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.WithCode(apierror.CodeNotFound, service.ErrNotFound.Error()))
	case errors.Is(err, service.ErrInsufficientStock):
		c.JSON(http.StatusConflict, apierror.WithCode(apierror.CodeInsufficientStock, service.ErrInsufficientStock.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, apierror.WithCode(apierror.CodeConflict, service.ErrConflict.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, apierror.WithCode(apierror.CodeUnauthorized, service.ErrInvalidCredentials.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.WithCode(apierror.CodeInternal, "Erro interno do servidor"))
	}
}
