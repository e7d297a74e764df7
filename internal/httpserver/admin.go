package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farmmarket/internal/domain"
	adminsvc "farmmarket/internal/service/admin"
	cartsvc "farmmarket/internal/service/cart"
	reportsvc "farmmarket/internal/service/report"
)

func adminListUsersHandler(svc *adminsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.ListUsers(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users})
	}
}

func adminPendingVendorsHandler(svc *adminsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		vendors, err := svc.PendingVendors(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"vendors": vendors})
	}
}

func adminApproveVendorHandler(svc *adminsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.ApproveVendor(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

type banRequest struct {
	Banned *bool `json:"banned" binding:"required"`
}

func adminBanHandler(svc *adminsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in banRequest
		if err := c.ShouldBindJSON(&in); err != nil || in.Banned == nil {
			badRequest(c, "banned is required")
			return
		}
		u, err := svc.SetBanned(c.Request.Context(), c.Param("id"), *in.Banned)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

func adminUpdateRoleHandler(svc *adminsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in roleRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "role is required")
			return
		}
		u, err := svc.UpdateRole(c.Request.Context(), c.Param("id"), domain.Role(in.Role))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

func adminResetPasswordHandler(svc *adminsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		temp, err := svc.ResetPassword(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"temporary_password": temp})
	}
}

func adminDeleteUserHandler(svc *adminsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}

func adminListReportsHandler(svc *reportsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		reports, err := svc.ListAll(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reports": reports})
	}
}

func adminResolveReportHandler(svc *reportsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in reportsvc.ResolveInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "status is required")
			return
		}
		r, err := svc.Resolve(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

func adminAllCartsHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.All(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		if items == nil {
			items = []domain.CartItem{}
		}
		c.JSON(http.StatusOK, gin.H{"cart_items": items})
	}
}
