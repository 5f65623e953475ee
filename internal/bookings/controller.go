package bookings

import (
	"errors"
	"net/http"

	"gatherly/internal/coupons"
	"gatherly/internal/events"
	"gatherly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateBooking handles POST /api/v1/bookings. Guests may book without a
// token, so the user id is taken from context only when present.
func (c *Controller) CreateBooking(ctx *gin.Context) {
	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	var userID *uuid.UUID
	if raw, exists := ctx.Get("user_id"); exists {
		if str, ok := raw.(string); ok {
			if id, err := uuid.Parse(str); err == nil {
				userID = &id
			}
		}
	}

	booking, err := c.service.CreateBooking(ctx.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, events.ErrEventNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Event not found", nil, nil)
		case errors.Is(err, ErrEventNotBookable),
			errors.Is(err, ErrUnknownPassType),
			errors.Is(err, ErrAttendeeCountInvalid),
			errors.Is(err, ErrAttendeePassInvalid),
			errors.Is(err, coupons.ErrCouponNotFound),
			errors.Is(err, coupons.ErrCouponInactive),
			errors.Is(err, coupons.ErrCouponExpired),
			errors.Is(err, coupons.ErrCouponLimitReached),
			errors.Is(err, coupons.ErrCouponInapplicable):
			response.RespondJSON(ctx, "error", http.StatusBadRequest, err.Error(), nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to create booking", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking created successfully", booking, nil)
}

// GetBooking handles GET /api/v1/bookings/:orderId
func (c *Controller) GetBooking(ctx *gin.Context) {
	orderID := ctx.Param("orderId")

	booking, err := c.service.GetBooking(ctx.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Booking not found", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get booking", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

// GetMyBookings handles GET /api/v1/bookings
func (c *Controller) GetMyBookings(ctx *gin.Context) {
	raw, exists := ctx.Get("user_id")
	if !exists {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}
	userID, err := uuid.Parse(raw.(string))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Invalid user identity", nil, nil)
		return
	}

	userBookings, err := c.service.GetUserBookings(ctx.Request.Context(), userID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get bookings", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", userBookings, nil)
}

// ApplyCoupon handles POST /api/v1/bookings/:orderId/apply-coupon. An
// empty coupon code clears the current discount.
func (c *Controller) ApplyCoupon(ctx *gin.Context) {
	orderID := ctx.Param("orderId")

	var req ApplyCouponRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	booking, err := c.service.ApplyCoupon(ctx.Request.Context(), orderID, req.CouponCode)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Booking not found", nil, nil)
		case errors.Is(err, ErrBookingNotPending):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Booking is not pending", nil, nil)
		case errors.Is(err, coupons.ErrCouponNotFound),
			errors.Is(err, coupons.ErrCouponInactive),
			errors.Is(err, coupons.ErrCouponExpired),
			errors.Is(err, coupons.ErrCouponLimitReached),
			errors.Is(err, coupons.ErrCouponInapplicable):
			response.RespondJSON(ctx, "error", http.StatusBadRequest, err.Error(), nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to apply coupon", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Coupon applied successfully", booking, nil)
}

// CancelBooking handles POST /api/v1/bookings/:orderId/cancel. Only a
// PENDING booking may be cancelled.
func (c *Controller) CancelBooking(ctx *gin.Context) {
	orderID := ctx.Param("orderId")

	if err := c.service.CancelBooking(ctx.Request.Context(), orderID); err != nil {
		if errors.Is(err, ErrBookingNotPending) {
			response.RespondJSON(ctx, "error", http.StatusConflict, "Booking is not pending", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to cancel booking", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking cancelled successfully", nil, nil)
}
