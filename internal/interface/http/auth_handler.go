package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/runplanner/internal/domain/auth"
)

// Register creates an athlete account.
func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	athlete, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err, "register_failed"))
		return
	}
	c.JSON(http.StatusCreated, athlete)
}

// Login exchanges credentials for tokens.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err, "login_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh rotates tokens using a refresh token.
func (h *Handler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWithError(c, fromAppError(err, "refresh_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated athlete's profile.
func (h *Handler) Me(c *gin.Context) {
	id, ok := athleteID(c)
	if !ok {
		return
	}
	profile, err := h.authSvc.Profile(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromAppError(err, "profile_failed"))
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateMe changes the caller's name or home location.
func (h *Handler) UpdateMe(c *gin.Context) {
	id, ok := athleteID(c)
	if !ok {
		return
	}
	var req auth.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	profile, err := h.authSvc.UpdateProfile(c.Request.Context(), id, req)
	if err != nil {
		abortWithError(c, fromAppError(err, "profile_failed"))
		return
	}
	c.JSON(http.StatusOK, profile)
}
