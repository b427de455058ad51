package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestValidationDetails(t *testing.T) {
	type address struct {
		City string `json:"city" binding:"required"`
	}
	type payload struct {
		Email    string   `json:"email" binding:"required,email"`
		Quantity int      `json:"quantity" binding:"required,min=1"`
		Name     string   `json:"name" binding:"max=5"`
		Status   string   `form:"status" binding:"omitempty,oneof=draft active"`
		Address  *address `json:"address" binding:"required"`
	}

	SetupValidator()

	var captured error
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req payload
		captured = c.ShouldBindJSON(&req)
		c.Status(http.StatusBadRequest)
	})

	body := `{"email":"nope","quantity":0,"name":"too long name","address":{}}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body)))
	require.Error(t, captured)

	details := ValidationDetails(captured)
	byField := map[string]string{}
	for _, d := range details {
		byField[d.Field] = d.Message
	}

	assert.Equal(t, "Invalid email format", byField["email"])
	assert.Equal(t, "This field is required", byField["quantity"])
	assert.Equal(t, "Must be at most 5 characters", byField["name"])
	assert.Equal(t, "This field is required", byField["address.city"])
}

func TestValidationDetails_NonValidationError(t *testing.T) {
	assert.Nil(t, ValidationDetails(assert.AnError))
}
