package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	// Amount is in major units (rupees); converted before hitting the provider.
	Amount int64 `json:"amount"`
}

func (s *Server) CreateOrder(c *gin.Context) {
	req := createOrderRequest{Amount: s.cfg.UnlockAmount}
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}
	if req.Amount <= 0 {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "amount must be positive"))
		return
	}

	order, err := s.paymentSvc.CreateOrder(c.Request.Context(), req.Amount*100)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       order.ID,
		"amount":   order.Amount,
		"currency": order.Currency,
	})
}

func (s *Server) PaymentStatus(c *gin.Context) {
	orderID := strings.TrimSpace(c.Query("order_id"))
	if orderID == "" {
		AbortWithError(c, newValidationError("order_id", "invalid_order_id", "order_id is required"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"paid": s.paymentSvc.ConfirmPaid(c.Request.Context(), orderID),
	})
}

func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	// The signature covers the exact bytes on the wire; read them untouched.
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, ErrInternal)
		return
	}

	if err := s.paymentSvc.IngestWebhook(c.Request.Context(), payload, c.Request.Header); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
