package payments

import (
	"github.com/gin-gonic/gin"
)

func SetupPaymentRoutes(router *gin.RouterGroup, controller *Controller) {
	paymentRoutes := router.Group("/payments")
	{
		paymentRoutes.POST("/initiate", controller.InitiatePayment)
		paymentRoutes.POST("/verify", controller.VerifyPayment)

		// Gateway-facing endpoints: no auth, the checksum is the trust anchor
		paymentRoutes.POST("/callback", controller.Callback)
		paymentRoutes.GET("/redirect", controller.Redirect)
		paymentRoutes.POST("/redirect", controller.Redirect)
	}
}
