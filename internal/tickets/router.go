package tickets

import (
	"gatherly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupTicketRoutes(router *gin.RouterGroup, controller *Controller) {
	ticketRoutes := router.Group("/tickets")
	ticketRoutes.Use(middleware.JWTAuth())
	{
		ticketRoutes.GET("/booking/:bookingId", controller.GetBookingTickets)
	}

	// Check-in is a gate-staff operation
	adminTickets := router.Group("/admin/tickets")
	adminTickets.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminTickets.POST("/check-in", controller.CheckIn)
	}
}
