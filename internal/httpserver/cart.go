package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cartsvc "farmmarket/internal/service/cart"
)

func getCartHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Get(c.Request.Context(), callerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

type addToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

func addToCartHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in addToCartRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "product_id and quantity are required")
			return
		}
		item, err := svc.Add(c.Request.Context(), callerID(c), in.ProductID, in.Quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func setCartQuantityHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in setQuantityRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "quantity is required")
			return
		}
		item, err := svc.SetQuantity(c.Request.Context(), callerID(c), c.Param("id"), in.Quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		if item == nil {
			c.JSON(http.StatusOK, gin.H{"status": "removed"})
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func removeCartItemHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Remove(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "removed"})
	}
}
