package payments

import (
	"errors"
	"net/http"

	"gatherly/internal/bookings"
	"gatherly/internal/coupons"
	"gatherly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// InitiatePayment handles POST /api/v1/payments/initiate
func (c *Controller) InitiatePayment(ctx *gin.Context) {
	var req InitiatePaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := c.service.InitiatePayment(ctx.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Booking not found", nil, nil)
		case errors.Is(err, bookings.ErrBookingNotPending):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Booking is not pending", nil, nil)
		case errors.Is(err, coupons.ErrCouponNotFound),
			errors.Is(err, coupons.ErrCouponInactive),
			errors.Is(err, coupons.ErrCouponExpired),
			errors.Is(err, coupons.ErrCouponLimitReached),
			errors.Is(err, coupons.ErrCouponInapplicable):
			response.RespondJSON(ctx, "error", http.StatusBadRequest, err.Error(), nil, nil)
		case errors.Is(err, ErrGatewayUnavailable):
			response.RespondJSON(ctx, "error", http.StatusBadGateway, "Payment gateway unavailable, please retry", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to initiate payment", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment initiated successfully", result, nil)
}

// VerifyPayment handles POST /api/v1/payments/verify. The one synchronous
// transport: the caller gets a definitive confirmed/failed/pending answer.
func (c *Controller) VerifyPayment(ctx *gin.Context) {
	var req VerifyPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := c.service.VerifyPayment(ctx.Request.Context(), req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Booking not found", nil, nil)
		case errors.Is(err, ErrGatewayUnavailable):
			response.RespondJSON(ctx, "error", http.StatusBadGateway, "Payment gateway unavailable, please retry", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to verify payment", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment status retrieved", result, nil)
}

// Callback handles POST /api/v1/payments/callback. The gateway only needs
// a bare acknowledgment, so this always returns 200 regardless of outcome.
func (c *Controller) Callback(ctx *gin.Context) {
	var req CallbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}

	xVerify := ctx.GetHeader("X-VERIFY")
	_ = c.service.HandleCallback(ctx.Request.Context(), req.Response, xVerify)

	ctx.JSON(http.StatusOK, gin.H{"status": "received"})
}

// Redirect handles the browser's return from the gateway. It always ends
// in a 302 to the client's status page with a coarse status flag.
func (c *Controller) Redirect(ctx *gin.Context) {
	orderID := ctx.Query("order_id")
	if orderID == "" {
		orderID = ctx.Query("merchantTransactionId")
	}
	if orderID == "" {
		orderID = ctx.PostForm("merchantTransactionId")
	}

	dest, err := c.service.HandleRedirect(ctx.Request.Context(), orderID)
	if err != nil {
		ctx.Redirect(http.StatusFound, "/?status=unknown")
		return
	}

	ctx.Redirect(http.StatusFound, dest)
}
