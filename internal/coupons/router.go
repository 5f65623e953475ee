package coupons

import (
	"gatherly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCouponRoutes(router *gin.RouterGroup, controller *Controller) {
	adminCoupons := router.Group("/admin/coupons")
	adminCoupons.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminCoupons.POST("", controller.CreateCoupon)
		adminCoupons.GET("", controller.ListCoupons)
		adminCoupons.DELETE("/:id", controller.DeactivateCoupon)
	}
}
