package handler

import (
	"net/http"
	"strings"

	"bhms-backend/internal/gateway"
	"bhms-backend/internal/middleware"
	"bhms-backend/internal/service"
	"bhms-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// maxProofSize caps the uploaded transfer-proof image at 2 MB.
const maxProofSize = 2 << 20

type PaymentHandler struct {
	paymentService service.PaymentService
	invoiceService service.InvoiceService
}

func NewPaymentHandler(paymentService service.PaymentService, invoiceService service.InvoiceService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		invoiceService: invoiceService,
	}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/api/payments", middleware.RequireStaff())
	{
		payments.PUT("/:id/confirm", h.ConfirmPayment)
	}

	invoices := router.Group("/api/invoices", middleware.RequireStaff())
	{
		invoices.GET("/:id/payments", h.ListInvoicePayments)
	}

	// Public payment surface: reached from the invoice e-mail link, no auth.
	public := router.Group("/api/public")
	{
		public.GET("/invoices/:id", h.GetPublicInvoice)
		public.POST("/invoices/:id/payments", h.SubmitPayment)
		public.POST("/payments/notification", h.GatewayNotification)
	}
}

// ConfirmPayment marks a payment as verified and settles its invoice
// @Summary      Confirm payment
// @Description  Confirms a submitted payment and marks the invoice PAID. Confirming an already-confirmed payment is a no-op.
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.Response{data=service.PaymentResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/payments/{id}/confirm [put]
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	userID, _ := c.Get("userID")
	actorID, _ := userID.(string)

	payment, err := h.paymentService.Confirm(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// ListInvoicePayments returns the payment attempts recorded against an invoice
// @Summary      List invoice payments
// @Description  Lists all payment submissions for an invoice, newest first.
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=[]service.PaymentResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/invoices/{id}/payments [get]
func (h *PaymentHandler) ListInvoicePayments(c *gin.Context) {
	payments, err := h.paymentService.ListByInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payments))
}

// GetPublicInvoice returns an invoice for the public payment page
// @Summary      Get invoice (public)
// @Description  Returns invoice details for the tenant-facing payment page. The invoice UUID in the e-mail link is the access token.
// @Tags         public
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/public/invoices/{id} [get]
func (h *PaymentHandler) GetPublicInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// SubmitPayment records a tenant's payment attempt against an invoice
// @Summary      Submit payment (public)
// @Description  Submits a payment for an invoice. QR_TRANSFER requires a proof image (jpeg/png, max 2 MB) as multipart field "proof". GATEWAY returns a checkout token.
// @Tags         public
// @Accept       multipart/form-data
// @Produce      json
// @Param        id      path      string  true   "Invoice ID"
// @Param        method  formData  string  true   "Payment method (QR_TRANSFER, CASH, GATEWAY)"
// @Param        proof   formData  file    false  "Transfer proof image"
// @Success      201     {object}  response.Response{data=service.PaymentResponse}
// @Failure      400     {object}  response.Response
// @Failure      409     {object}  response.Response
// @Router       /api/public/invoices/{id}/payments [post]
func (h *PaymentHandler) SubmitPayment(c *gin.Context) {
	method := c.PostForm("method")
	if method == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Payment method is required"))
		return
	}

	var proof *service.ProofUpload
	fileHeader, err := c.FormFile("proof")
	if err == nil && fileHeader != nil {
		if fileHeader.Size > maxProofSize {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Proof image must not exceed 2 MB"))
			return
		}
		if !isImageFilename(fileHeader.Filename) {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Proof must be a jpeg or png image"))
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to read proof image"))
			return
		}
		defer file.Close()

		proof = &service.ProofUpload{
			Filename: fileHeader.Filename,
			Reader:   file,
		}
	}

	payment, err := h.paymentService.Submit(c.Request.Context(), c.Param("id"), method, proof)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, payment))
}

// GatewayNotification receives the payment gateway's server-to-server callback
// @Summary      Gateway notification (public)
// @Description  Handles the payment gateway's settlement callback. The signature is verified before any state changes.
// @Tags         public
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/public/payments/notification [post]
func (h *PaymentHandler) GatewayNotification(c *gin.Context) {
	var n gateway.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid notification payload"))
		return
	}

	if err := h.paymentService.HandleGatewayNotification(c.Request.Context(), n); err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "OK"))
}

func isImageFilename(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".jpg") ||
		strings.HasSuffix(lower, ".jpeg") ||
		strings.HasSuffix(lower, ".png")
}
