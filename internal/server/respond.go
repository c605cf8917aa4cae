package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pinobite/storefront/internal/accounts"
	"github.com/pinobite/storefront/internal/auth"
	"github.com/pinobite/storefront/internal/checkout"
	"github.com/pinobite/storefront/internal/models"
	"github.com/pinobite/storefront/internal/passwordreset"
	"github.com/pinobite/storefront/internal/store"
	"gorm.io/gorm"
)

var validationOnce sync.Once

// registerValidation makes validator report JSON field names.
func registerValidation() {
	validationOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
}

// bindJSON decodes and validates the body, answering 400 itself on failure.
func (s *Server) bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var (
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
	)
	if errors.As(err, &verrs) || errors.As(err, &typeErr) {
		s.fail(c, err)
	} else {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
	}
	return false
}

func validationFields(errs validator.ValidationErrors) models.FieldErrors {
	fields := models.FieldErrors{}
	for _, fe := range errs {
		// Drop the root struct name: "InitiateInput.items[0].quantity".
		name := fe.Namespace()
		if _, rest, ok := strings.Cut(name, "."); ok {
			name = rest
		}
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[name] = rule
	}
	return fields
}

// fail maps a service error onto the HTTP error taxonomy.
func (s *Server) fail(c *gin.Context, err error) {
	var (
		verrs    validator.ValidationErrors
		fields   models.FieldErrors
		typeErr  *json.UnmarshalTypeError
		notFound *checkout.ProductNotFoundError
	)

	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": validationFields(verrs)})
	case errors.As(err, &fields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
	case errors.As(err, &typeErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": models.FieldErrors{typeErr.Field: "type=" + typeErr.Type.String()}})
	case errors.As(err, &notFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": notFound.Error(), "product_id": notFound.ID})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, checkout.ErrSignatureInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": checkout.ErrSignatureInvalid.Error()})
	case errors.Is(err, checkout.ErrGateway):
		s.logger.Error("payment gateway failure", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusBadGateway, gin.H{"error": checkout.ErrGateway.Error()})
	case errors.Is(err, checkout.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrRequestInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": checkout.ErrRequestInProgress.Error()})
	case errors.Is(err, accounts.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, passwordreset.ErrInvalidOTP):
		c.JSON(http.StatusBadRequest, gin.H{"error": passwordreset.InvalidOTPMessage})
	case errors.Is(err, accounts.ErrDuplicateUser), errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		c.JSON(http.StatusBadRequest, gin.H{"error": "referenced record does not exist"})
	default:
		s.logger.Error("request failed", "error", err, "method", c.Request.Method, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
	c.Abort()
}

// intQuery reads an integer query parameter clamped to [min, max].
func intQuery(c *gin.Context, key string, def, min, max int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

func page(c *gin.Context) (limit, offset int) {
	return intQuery(c, "limit", 100, 1, 500), intQuery(c, "offset", 0, 0, 1<<30)
}

// idParam parses the :id path segment, answering 404 for anything that is
// not a positive integer.
func (s *Server) idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		s.fail(c, store.ErrNotFound)
		return 0, false
	}
	return id, true
}
