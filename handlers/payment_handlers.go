package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/casualfootball/cffa-backend/middleware"
	"github.com/casualfootball/cffa-backend/models"
	"github.com/casualfootball/cffa-backend/services"
	"github.com/casualfootball/cffa-backend/utils"
)

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	paymentService *services.PaymentService
	ledgerService  *services.LedgerService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService, ledgerService *services.LedgerService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, ledgerService: ledgerService}
}

type autopayRequest struct {
	Booker string `json:"booker"`
}

// ListPayments handles GET /payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	payments, err := h.paymentService.ListPayments(c.Request.Context(), middleware.TeamID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, payments)
}

// RecentPayments handles GET /payments/recent
func (h *PaymentHandler) RecentPayments(c *gin.Context) {
	payments, err := h.ledgerService.RecentPayments(c.Request.Context(), middleware.TeamID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, payments)
}

// CreatePayment handles POST /payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req models.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := h.paymentService.AddPayment(c.Request.Context(), middleware.TeamID(c), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleCreated(c, payment)
}

// PreviewAutopay handles GET /payments/autopay?booker=Name. The booker
// defaults to the caller.
func (h *PaymentHandler) PreviewAutopay(c *gin.Context) {
	booker := c.Query("booker")
	if booker == "" {
		booker = middleware.CurrentUser(c).Name
	}

	preview, err := h.paymentService.PreviewAutopay(c.Request.Context(), middleware.TeamID(c), booker)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, preview)
}

// ConfirmAutopay handles POST /payments/autopay
func (h *PaymentHandler) ConfirmAutopay(c *gin.Context) {
	var req autopayRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	if req.Booker == "" {
		req.Booker = middleware.CurrentUser(c).Name
	}

	payment, err := h.paymentService.ConfirmAutopay(c.Request.Context(), middleware.TeamID(c), req.Booker)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleCreated(c, payment)
}
