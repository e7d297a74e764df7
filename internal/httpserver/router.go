package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"farmmarket/internal/auth"
	"farmmarket/internal/domain"
	"farmmarket/internal/idempotency"
	"farmmarket/internal/logging"
	"farmmarket/internal/service/account"
	adminsvc "farmmarket/internal/service/admin"
	cartsvc "farmmarket/internal/service/cart"
	"farmmarket/internal/service/catalog"
	checkoutsvc "farmmarket/internal/service/checkout"
	messagesvc "farmmarket/internal/service/message"
	ordersvc "farmmarket/internal/service/order"
	paymentsvc "farmmarket/internal/service/payment"
	reportsvc "farmmarket/internal/service/report"
	reviewsvc "farmmarket/internal/service/review"
	socialsvc "farmmarket/internal/service/social"
	walletsvc "farmmarket/internal/service/wallet"
)

// Deps carries everything the router needs.
type Deps struct {
	Tokens      *auth.TokenManager
	Idempotency *idempotency.Store

	Accounts  *account.Service
	Catalog   *catalog.Service
	Carts     *cartsvc.Service
	Checkout  *checkoutsvc.Service
	Payments  *paymentsvc.Service
	Orders    *ordersvc.Service
	Wallet    *walletsvc.Service
	Messages  *messagesvc.Service
	Reviews   *reviewsvc.Service
	Reports   *reportsvc.Service
	Social    *socialsvc.Service
	Admin     *adminsvc.Service
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(logging.RequestLogger(logger), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "Idempotency-Key")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api")

	// Public routes.
	api.POST("/auth/signup", signupHandler(deps.Accounts))
	api.POST("/auth/login", loginHandler(deps.Accounts))
	api.POST("/auth/request-password-reset", requestPasswordResetHandler(deps.Accounts))
	api.POST("/auth/reset-password", resetPasswordHandler(deps.Accounts))

	api.GET("/products", listProductsHandler(deps.Catalog))
	api.GET("/products/:id", getProductHandler(deps.Catalog))
	api.GET("/products/:id/reviews", productReviewsHandler(deps.Reviews))

	api.GET("/vendors/:id/profile", vendorProfileHandler(deps.Social))
	api.GET("/vendors/:id/products", vendorProductsHandler(deps.Catalog))
	api.GET("/vendors/:id/reviews", vendorReviewsHandler(deps.Reviews))
	api.GET("/vendors/:id/followers", followersHandler(deps.Social))

	api.POST("/mpesa/callback", mpesaCallbackHandler(deps.Payments, logger))

	// Authenticated routes.
	authed := api.Group("", requireAuth(deps.Tokens))

	authed.GET("/me", meHandler(deps.Accounts))
	authed.PUT("/me", updateProfileHandler(deps.Accounts))
	authed.POST("/me/password", changePasswordHandler(deps.Accounts))
	authed.GET("/me/following", followingHandler(deps.Social))

	authed.GET("/cart", getCartHandler(deps.Carts))
	authed.POST("/cart/items", addToCartHandler(deps.Carts))
	authed.PUT("/cart/items/:id", setCartQuantityHandler(deps.Carts))
	authed.DELETE("/cart/items/:id", removeCartItemHandler(deps.Carts))

	authed.POST("/checkout", idempotent(deps.Idempotency), checkoutHandler(deps.Checkout))
	authed.GET("/payments/status/:checkoutRequestID", paymentStatusHandler(deps.Payments))
	authed.POST("/payments/process-completed", processCompletedHandler(deps.Payments))
	authed.GET("/payments/history", paymentHistoryHandler(deps.Payments))

	authed.GET("/orders", listOrdersHandler(deps.Orders))
	authed.GET("/orders/:id", getOrderHandler(deps.Orders))
	authed.POST("/orders/:id/verify", idempotent(deps.Idempotency), verifyDeliveryHandler(deps.Orders))

	authed.GET("/wallet", walletBalanceHandler(deps.Wallet))
	authed.POST("/wallet/withdraw", walletWithdrawHandler(deps.Wallet))

	authed.POST("/messages", sendMessageHandler(deps.Messages))
	authed.GET("/messages/conversations", conversationsHandler(deps.Messages))
	authed.GET("/messages/unread-count", unreadCountHandler(deps.Messages))
	authed.GET("/messages/:partnerID", threadHandler(deps.Messages))

	authed.POST("/reviews", createReviewHandler(deps.Reviews))
	authed.GET("/my/reviews", myReviewsHandler(deps.Reviews))
	authed.POST("/reports", fileReportHandler(deps.Reports))

	authed.POST("/vendors/:id/follow", followVendorHandler(deps.Social))
	authed.DELETE("/vendors/:id/follow", unfollowVendorHandler(deps.Social))
	authed.GET("/vendors/:id/follow", isFollowingHandler(deps.Social))

	// Vendor routes.
	vendor := authed.Group("", requireRole(domain.RoleVendor, domain.RoleAdmin))
	vendor.POST("/products", createProductHandler(deps.Catalog))
	vendor.PUT("/products/:id", updateProductHandler(deps.Catalog))
	vendor.DELETE("/products/:id", deleteProductHandler(deps.Catalog))
	vendor.GET("/my/products", myProductsHandler(deps.Catalog))
	vendor.PUT("/orders/:id/status", updateOrderStatusHandler(deps.Orders))
	vendor.GET("/my/reports", myReportsHandler(deps.Reports))
	vendor.GET("/analytics/sales", vendorSalesHandler(deps.Orders))

	authed.GET("/analytics/purchases", customerPurchasesHandler(deps.Orders))

	// Admin routes.
	admin := authed.Group("/admin", requireRole(domain.RoleAdmin))
	admin.GET("/users", adminListUsersHandler(deps.Admin))
	admin.GET("/vendors/pending", adminPendingVendorsHandler(deps.Admin))
	admin.POST("/vendors/:id/approve", adminApproveVendorHandler(deps.Admin))
	admin.POST("/users/:id/ban", adminBanHandler(deps.Admin))
	admin.PUT("/users/:id/role", adminUpdateRoleHandler(deps.Admin))
	admin.POST("/users/:id/reset-password", adminResetPasswordHandler(deps.Admin))
	admin.DELETE("/users/:id", adminDeleteUserHandler(deps.Admin))
	admin.GET("/reports", adminListReportsHandler(deps.Reports))
	admin.PUT("/reports/:id", adminResolveReportHandler(deps.Reports))
	admin.GET("/carts", adminAllCartsHandler(deps.Carts))

	return router
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func readyHandler(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "db not configured"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "db not reachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
