package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"watchvault/pkg/session"
)

// server bundles the handler dependencies. Handlers hang off it so tests can
// assemble one against in-memory stores.
type server struct {
	cfg     Config
	log     zerolog.Logger
	manager *session.Manager
	codec   *session.Codec
	watches watchStore
}

func setupRoutes(r *gin.Engine, s *server) {
	auth := r.Group("/auth")
	auth.POST("/register", s.registerHandler)
	auth.POST("/login", s.loginHandler)
	auth.POST("/refresh", s.refreshHandler)
	auth.POST("/logout", s.authRequired(), s.logoutHandler)

	api := r.Group("")
	api.Use(s.authRequired())
	api.GET("/watches", s.listWatchesHandler)
	api.POST("/watches", s.createWatchHandler)
	api.PATCH("/watches/:watchId", s.updateWatchHandler)
	api.DELETE("/watches/:watchId", s.deleteWatchHandler)
	api.POST("/watches/:watchId/photo", s.uploadPhotoHandler)
	api.GET("/watches/:watchId/photos", s.listPhotosHandler)
}

// authRequired verifies the bearer access token and stores the caller's user
// id in the request context.
func (s *server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		userID, err := s.codec.VerifyAccessToken(authHeader[len("Bearer "):])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}

func callerID(c *gin.Context) string {
	v, _ := c.Get("userID")
	id, _ := v.(string)
	return id
}

type authBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	UserID string         `json:"userId"`
	Tokens tokensResponse `json:"tokens"`
}

func toAuthResponse(res session.AuthResult) authResponse {
	return authResponse{
		UserID: res.UserID,
		Tokens: tokensResponse{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken},
	}
}

func (s *server) registerHandler(c *gin.Context) {
	var req authBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}
	res, err := s.manager.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAuthResponse(res))
}

func (s *server) loginHandler(c *gin.Context) {
	var req authBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}
	res, err := s.manager.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAuthResponse(res))
}

func (s *server) refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}
	res, err := s.manager.Rotate(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAuthResponse(res))
}

func (s *server) logoutHandler(c *gin.Context) {
	if _, err := s.manager.RevokeAll(c.Request.Context(), callerID(c)); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// writeError maps the session error taxonomy to HTTP statuses. Anything
// outside the taxonomy is a persistence failure: logged, and reported with a
// generic message outside development.
func (s *server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, session.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	default:
		s.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		msg := "something went wrong"
		if s.cfg.Env == "development" {
			msg = err.Error()
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
