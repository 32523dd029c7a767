package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/cadence/internal/auth"
	"github.com/zfogg/cadence/internal/util"
)

// Register creates a listener account
// POST /api/v1/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "all fields are required: "+err.Error())
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "register")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login exchanges a username and password for a token
// POST /api/v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "username and password are required")
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "login")
		return
	}
	c.JSON(http.StatusOK, resp)
}
