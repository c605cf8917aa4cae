package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pinobite/storefront/internal/passwordreset"
)

type resetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetVerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type resetConfirmRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// requestReset answers the same way whether or not the account exists.
func (s *Server) requestReset(c *gin.Context) {
	var in resetRequest
	if !s.bindJSON(c, &in) {
		return
	}
	if err := s.deps.PasswordReset.Request(c.Request.Context(), in.Email); err != nil {
		s.logger.Error("password reset request failed", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": passwordreset.RequestAcceptedMessage})
}

func (s *Server) verifyReset(c *gin.Context) {
	var in resetVerifyRequest
	if !s.bindJSON(c, &in) {
		return
	}
	if err := s.deps.PasswordReset.Verify(c.Request.Context(), in.Email, in.OTP); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP verified."})
}

func (s *Server) confirmReset(c *gin.Context) {
	var in resetConfirmRequest
	if !s.bindJSON(c, &in) {
		return
	}
	if err := s.deps.PasswordReset.Confirm(c.Request.Context(), in.Email, in.OTP, in.NewPassword); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset."})
}
