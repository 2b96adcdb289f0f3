package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// register creates a new user account.
func (s *Server) register(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	userID, err := s.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"userId": userID})
}

// login authenticates a user and returns an access token.
func (s *Server) login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	tok, u, err := s.auth.LoginWithIP(c.Request.Context(), req.Username, req.Password, c.ClientIP())
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, loginResp{
		UserID:      u.ID.String(),
		Username:    u.Username,
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.ExpiresAt,
	})
}
