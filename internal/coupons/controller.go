package coupons

import (
	"errors"
	"net/http"

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

// CreateCoupon handles POST /api/v1/admin/coupons
func (c *Controller) CreateCoupon(ctx *gin.Context) {
	var req CreateCouponRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	coupon, err := c.service.CreateCoupon(ctx.Request.Context(), req)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to create coupon", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Coupon created successfully", coupon, nil)
}

// ListCoupons handles GET /api/v1/admin/coupons
func (c *Controller) ListCoupons(ctx *gin.Context) {
	var query CouponListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	result, err := c.service.ListCoupons(ctx.Request.Context(), query)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list coupons", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Coupons retrieved successfully", result, nil)
}

// DeactivateCoupon handles DELETE /api/v1/admin/coupons/:id
func (c *Controller) DeactivateCoupon(ctx *gin.Context) {
	couponID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid coupon ID", nil, nil)
		return
	}

	if err := c.service.DeactivateCoupon(ctx.Request.Context(), couponID); err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Coupon not found", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to deactivate coupon", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Coupon deactivated successfully", nil, nil)
}
