package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"farmmarket/internal/domain"
	"farmmarket/internal/service/account"
)

// writeError maps domain errors onto HTTP statuses. Anything unmapped is
// a 500 with a generic body so internals do not leak.
func writeError(c *gin.Context, err error) {
	var validation *domain.ValidationError
	var stock *domain.StockError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Msg})
	case errors.As(err, &stock):
		c.JSON(http.StatusConflict, gin.H{
			"error":      err.Error(),
			"product_id": stock.ProductID,
			"requested":  stock.Requested,
			"available":  stock.Available,
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, account.ErrBadCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
