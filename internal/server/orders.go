package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pinobite/storefront/internal/auth"
	"github.com/pinobite/storefront/internal/checkout"
	"github.com/pinobite/storefront/internal/models"
)

const maxIdempotencyKey = 255

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func viewer(c *gin.Context) checkout.Viewer {
	p, _ := auth.CurrentUser(c)
	return checkout.Viewer{UserID: p.UserID, Staff: p.Staff}
}

func (s *Server) listOrders(c *gin.Context) {
	limit, offset := page(c)
	orders, err := s.deps.Checkout.List(c.Request.Context(), viewer(c), limit, offset)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) getOrder(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}
	order, err := s.deps.Checkout.Get(c.Request.Context(), viewer(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}
	var in statusRequest
	if !s.bindJSON(c, &in) {
		return
	}
	status, err := models.ParseOrderStatus(in.Status)
	if err != nil {
		s.fail(c, models.FieldErrors{"status": "oneof=PENDING PROCESSING SHIPPED DELIVERED CANCELLED"})
		return
	}

	order, err := s.deps.Checkout.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) initiateOrder(c *gin.Context) {
	var in checkout.InitiateInput
	if !s.bindJSON(c, &in) {
		return
	}
	in.IdempotencyKey = strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if len(in.IdempotencyKey) > maxIdempotencyKey {
		s.fail(c, models.FieldErrors{"Idempotency-Key": "max=255"})
		return
	}

	p, _ := auth.CurrentUser(c)
	result, err := s.deps.Checkout.Initiate(c.Request.Context(), p.UserID, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) verifyOrder(c *gin.Context) {
	var in checkout.VerifyInput
	if !s.bindJSON(c, &in) {
		return
	}
	order, err := s.deps.Checkout.Verify(c.Request.Context(), viewer(c), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "payment verified", "order": order})
}
