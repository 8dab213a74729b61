package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/vnb-store/internal/httpx"
	"github.com/MikeMC777/vnb-store/internal/logx"
	"github.com/MikeMC777/vnb-store/internal/user"
)

// messageBody is a plain acknowledgement.
// swagger:model messageBody
type messageBody struct {
	Message string `json:"message" example:"Logout successful"`
}

// loginResponse is a session plus the greeting the storefront shows.
// swagger:model loginResponse
type loginResponse struct {
	Message string `json:"message"`
	*user.Session
}

// emailRequest carries an email that may be missing; handlers report that
// themselves.
type emailRequest struct {
	Email string `json:"email"`
}

const resetRequestedMsg = "If an account exists for this email, a reset link has been sent."

// registerHandler godoc
// @Summary      Create an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body  user.RegisterRequest  true  "account"
// @Success      201  {object}  user.Session
// @Failure      400  {object}  httpx.ErrorBody
// @Failure      409  {object}  httpx.ErrorBody
// @Router       /accounts/users [post]
func registerHandler(svc *user.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.RegisterRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		s, err := svc.Register(c.Request.Context(), req)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, s)
	}
}

// loginHandler godoc
// @Summary      Exchange credentials for a bearer token
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body  user.LoginRequest  true  "credentials"
// @Success      200  {object}  loginResponse
// @Failure      400  {object}  httpx.ErrorBody
// @Failure      401  {object}  httpx.ErrorBody
// @Failure      404  {object}  httpx.ErrorBody
// @Router       /accounts/users/login [post]
func loginHandler(svc *user.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.LoginRequest
		_ = c.ShouldBindJSON(&req)
		s, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, loginResponse{Message: "Login successful", Session: s})
	}
}

// logoutHandler godoc
// @Summary      End the session; tokens are stateless so the client drops its copy
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageBody
// @Router       /accounts/users/logout [post]
func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, messageBody{Message: "Logout successful"})
	}
}

// checkEmailHandler godoc
// @Summary      Whether an account uses this email
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body  emailRequest  true  "email"
// @Success      200  {object}  map[string]bool
// @Failure      400  {object}  httpx.ErrorBody
// @Router       /accounts/users/check_email [post]
func checkEmailHandler(svc *user.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req emailRequest
		_ = c.ShouldBindJSON(&req)
		if strings.TrimSpace(req.Email) == "" {
			c.JSON(http.StatusBadRequest, httpx.ErrorBody{Error: "Email is required"})
			return
		}
		exists, err := svc.CheckEmail(c.Request.Context(), req.Email)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"exists": exists})
	}
}

// meHandler godoc
// @Summary      The authenticated account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  user.Account
// @Failure      401  {object}  httpx.ErrorBody
// @Router       /accounts/users/me [get]
func meHandler(svc *user.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, err := svc.Me(c.Request.Context(), httpx.MustCurrent(c).UserID)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, acc)
	}
}

// updateMeHandler godoc
// @Summary      Update names and profile; omitted fields keep their value
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  user.UpdateMeRequest  true  "changes"
// @Success      200  {object}  user.Account
// @Failure      400  {object}  httpx.ErrorBody
// @Router       /accounts/users/me [patch]
func updateMeHandler(svc *user.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.UpdateMeRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		acc, err := svc.UpdateMe(c.Request.Context(), httpx.MustCurrent(c).UserID, req)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, acc)
	}
}

// requestResetHandler godoc
// @Summary      Send a password reset token; the reply never says whether the email is known
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body  user.PasswordResetRequest  true  "email"
// @Success      200  {object}  messageBody
// @Failure      400  {object}  httpx.ErrorBody
// @Router       /accounts/users/request_password_reset [post]
func requestResetHandler(svc *user.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.PasswordResetRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		if err := svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, messageBody{Message: resetRequestedMsg})
	}
}

// resetPasswordHandler godoc
// @Summary      Set a new password with a reset token
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body  user.ResetPasswordRequest  true  "token and new password"
// @Success      200  {object}  messageBody
// @Failure      400  {object}  httpx.ErrorBody
// @Router       /accounts/users/reset_password [post]
func resetPasswordHandler(svc *user.Service, log *logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.ResetPasswordRequest
		if !httpx.BindJSON(c, &req) {
			return
		}
		if err := svc.ResetPassword(c.Request.Context(), req); err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, messageBody{Message: "Password has been reset"})
	}
}
