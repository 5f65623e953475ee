package tickets

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

// GetBookingTickets handles GET /api/v1/tickets/booking/:bookingId
func (c *Controller) GetBookingTickets(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("bookingId"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	ticketList, err := c.service.GetTicketsForBooking(ctx.Request.Context(), bookingID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get tickets", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Tickets retrieved successfully", ticketList, nil)
}

// CheckIn handles POST /api/v1/admin/tickets/check-in
func (c *Controller) CheckIn(ctx *gin.Context) {
	var req CheckInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := c.service.VerifyAndCheckIn(ctx.Request.Context(), req.QRCode)
	if err != nil {
		switch {
		case errors.Is(err, ErrTicketNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Ticket not found", nil, nil)
		case errors.Is(err, ErrTicketNotActive):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Ticket already used or cancelled", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Ticket verification failed", nil, err.Error())
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket checked in successfully", result, nil)
}
