package bookings

import (
	"gatherly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupBookingRoutes(router *gin.RouterGroup, controller *Controller) {
	bookingRoutes := router.Group("/bookings")
	{
		// Guest bookings are allowed: auth is optional on create/read
		bookingRoutes.POST("", middleware.OptionalAuth(), controller.CreateBooking)
		bookingRoutes.GET("/:orderId", controller.GetBooking)
		bookingRoutes.POST("/:orderId/apply-coupon", middleware.OptionalAuth(), controller.ApplyCoupon)
		bookingRoutes.POST("/:orderId/cancel", middleware.OptionalAuth(), controller.CancelBooking)

		// Listing bookings requires a signed-in user
		bookingRoutes.GET("", middleware.JWTAuth(), controller.GetMyBookings)
	}
}
