package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pinobite/storefront/internal/accounts"
	"github.com/pinobite/storefront/internal/auth"
	"github.com/pinobite/storefront/internal/store"
)

type tokenRequest struct {
	// Username may also hold the account's email address.
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (s *Server) register(c *gin.Context) {
	var in accounts.RegisterInput
	if !s.bindJSON(c, &in) {
		return
	}
	user, err := s.deps.Accounts.Register(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) obtainToken(c *gin.Context) {
	var in tokenRequest
	if !s.bindJSON(c, &in) {
		return
	}
	user, err := s.deps.Accounts.Authenticate(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	pair, err := s.deps.Tokens.Issue(user)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (s *Server) refreshToken(c *gin.Context) {
	var in refreshRequest
	if !s.bindJSON(c, &in) {
		return
	}
	access, err := s.deps.Tokens.Refresh(c.Request.Context(), in.Refresh, s.deps.Accounts.Get)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (s *Server) listUsers(c *gin.Context) {
	limit, offset := page(c)
	users, err := s.deps.Accounts.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) me(c *gin.Context) {
	p, _ := auth.CurrentUser(c)
	user, err := s.deps.Accounts.Get(c.Request.Context(), p.UserID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// getUser lets staff read any account and everyone else only their own.
func (s *Server) getUser(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}
	p, _ := auth.CurrentUser(c)
	if !p.Staff && p.UserID != id {
		s.fail(c, store.ErrNotFound)
		return
	}
	user, err := s.deps.Accounts.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) updateProfile(c *gin.Context) {
	var patch accounts.ProfilePatch
	if !s.bindJSON(c, &patch) {
		return
	}
	p, _ := auth.CurrentUser(c)
	profile, err := s.deps.Accounts.UpdateProfile(c.Request.Context(), p.UserID, patch, p.Staff)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
