package httpserver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"farmmarket/internal/domain"
	"farmmarket/internal/service/account"
)

func TestWriteErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", domain.Validationf("bad input"), http.StatusBadRequest},
		{"stock", &domain.StockError{ProductID: "p", Requested: 5, Available: 2}, http.StatusConflict},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"conflict", domain.ErrAlreadyExists, http.StatusConflict},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"bad credentials", account.ErrBadCredentials, http.StatusUnauthorized},
		{"wrapped not found", errors.Join(errors.New("ctx"), domain.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			writeError(c, tc.err)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestStockErrorBodyCarriesQuantities(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	writeError(c, &domain.StockError{ProductID: "prod-1", Requested: 7, Available: 3})

	assert.Contains(t, w.Body.String(), `"requested":7`)
	assert.Contains(t, w.Body.String(), `"available":3`)
	assert.Contains(t, w.Body.String(), `"product_id":"prod-1"`)
}
