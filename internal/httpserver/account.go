package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farmmarket/internal/service/account"
)

func signupHandler(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in account.SignupInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		result, err := svc.Signup(c.Request.Context(), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in loginRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "username and password are required")
			return
		}
		result, err := svc.Login(c.Request.Context(), in.Username, in.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func meHandler(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.Get(c.Request.Context(), callerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

func updateProfileHandler(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in account.UpdateProfileInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		u, err := svc.UpdateProfile(c.Request.Context(), callerID(c), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func changePasswordHandler(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in changePasswordRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "current and new password are required")
			return
		}
		if err := svc.ChangePassword(c.Request.Context(), callerID(c), in.CurrentPassword, in.NewPassword); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "password changed"})
	}
}

type resetRequestBody struct {
	Username string `json:"username" binding:"required"`
}

func requestPasswordResetHandler(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in resetRequestBody
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "username is required")
			return
		}
		if err := svc.RequestPasswordReset(c.Request.Context(), in.Username); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "if the account exists, a reset code has been sent"})
	}
}

type resetPasswordBody struct {
	Username    string `json:"username" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func resetPasswordHandler(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in resetPasswordBody
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "username, code and new password are required")
			return
		}
		if err := svc.ResetPassword(c.Request.Context(), in.Username, in.Code, in.NewPassword); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "password reset"})
	}
}
