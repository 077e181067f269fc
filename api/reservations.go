package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mkravets/flightdesk/internal/service/booking"
)

type ReservationHandler struct {
	service booking.BookingUseCase
}

type bookRequest struct {
	ItineraryID int `json:"itinerary_id"`
}

type reservationResponse struct {
	ID         int64  `json:"id"`
	Paid       bool   `json:"paid"`
	DayOfMonth int    `json:"day_of_month"`
	FlightID1  int64  `json:"flight_id1"`
	FlightID2  *int64 `json:"flight_id2,omitempty"`
}

func NewReservationHandler(service booking.BookingUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("/reservations", h.book)
	router.POST("/reservations/:id/pay", h.pay)
	router.GET("/reservations", h.list)
}

func (h *ReservationHandler) book(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.service.Book(c.Request.Context(), token(c), req.ItineraryID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reservationResponse{
		ID:         res.ID,
		Paid:       res.Paid,
		DayOfMonth: res.DayOfMonth,
		FlightID1:  res.FlightID1,
		FlightID2:  res.FlightID2,
	})
}

func (h *ReservationHandler) pay(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return
	}

	remaining, err := h.service.Pay(c.Request.Context(), token(c), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reservation_id": id, "balance_remaining": remaining})
}

func (h *ReservationHandler) list(c *gin.Context) {
	reservations, err := h.service.ListReservations(c.Request.Context(), token(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": reservations})
}
