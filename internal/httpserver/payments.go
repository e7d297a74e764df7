package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmmarket/internal/mpesa"
	checkoutsvc "farmmarket/internal/service/checkout"
	paymentsvc "farmmarket/internal/service/payment"
)

func checkoutHandler(svc *checkoutsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkoutsvc.CheckoutInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		result, err := svc.Checkout(c.Request.Context(), callerID(c), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// mpesaCallbackHandler always acknowledges with 200 so the gateway stops
// retrying; failures are logged for operators instead.
func mpesaCallbackHandler(svc *paymentsvc.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cb mpesa.Callback
		if err := c.ShouldBindJSON(&cb); err != nil {
			logger.Warn("unparseable mpesa callback", zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
			return
		}
		if err := svc.HandleCallback(c.Request.Context(), &cb); err != nil {
			logger.Error("mpesa callback processing failed",
				zap.String("checkout_request_id", cb.Body.StkCallback.CheckoutRequestID),
				zap.Error(err))
		}
		c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
	}
}

func paymentStatusHandler(svc *paymentsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		txn, err := svc.Status(c.Request.Context(), callerID(c), c.Param("checkoutRequestID"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, txn)
	}
}

type processCompletedRequest struct {
	CheckoutRequestID string `json:"checkout_request_id" binding:"required"`
}

func processCompletedHandler(svc *paymentsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in processCompletedRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "checkout_request_id is required")
			return
		}
		txn, err := svc.ProcessCompleted(c.Request.Context(), callerID(c), in.CheckoutRequestID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, txn)
	}
}

func paymentHistoryHandler(svc *paymentsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		txns, err := svc.History(c.Request.Context(), callerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"transactions": txns})
	}
}
