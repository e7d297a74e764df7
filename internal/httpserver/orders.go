package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ordersvc "farmmarket/internal/service/order"
	walletsvc "farmmarket/internal/service/wallet"
)

func listOrdersHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.ListFor(c.Request.Context(), callerID(c), callerRole(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

func getOrderHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Get(c.Request.Context(), c.Param("id"), callerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func updateOrderStatusHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ordersvc.UpdateStatusInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "status is required")
			return
		}
		o, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), callerID(c), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

type verifyDeliveryRequest struct {
	Received *bool `json:"received" binding:"required"`
}

func verifyDeliveryHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in verifyDeliveryRequest
		if err := c.ShouldBindJSON(&in); err != nil || in.Received == nil {
			badRequest(c, "received is required")
			return
		}
		result, err := svc.VerifyDelivery(c.Request.Context(), c.Param("id"), callerID(c), *in.Received)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func vendorSalesHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := svc.VendorSales(c.Request.Context(), callerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func customerPurchasesHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := svc.CustomerPurchases(c.Request.Context(), callerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func walletBalanceHandler(svc *walletsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := svc.Balance(c.Request.Context(), callerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

type withdrawRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

func walletWithdrawHandler(svc *walletsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in withdrawRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "amount is required")
			return
		}
		result, err := svc.Withdraw(c.Request.Context(), callerID(c), in.Amount)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
