package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/dto"
	BookingApp "eventmarket/internal/app/handlers/bookings"
	"eventmarket/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	SupplierID    string    `json:"supplier_id"`
	PackageID     string    `json:"package_id"`
	EventName     string    `json:"event_name"`
	EventDate     time.Time `json:"event_date"`
	EventTime     string    `json:"event_time"`
	EventLocation string    `json:"event_location"`
	Notes         string    `json:"notes"`
	TotalAmount   int64     `json:"total_amount"`
	Currency      string    `json:"currency"`
}

type recordPaymentRequest struct {
	PaymentID string    `json:"payment_id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Method    string    `json:"method"`
	Reference string    `json:"reference"`
	PaidAt    time.Time `json:"paid_at"`
	Notes     string    `json:"notes"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type cancelBookingRequest struct {
	Reason   string `json:"reason"`
	Override bool   `json:"override"`
}

func (h BookingHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := BookingApp.CreateBookingCommand{
		Actor:         actor,
		SupplierID:    req.SupplierID,
		PackageID:     req.PackageID,
		EventName:     req.EventName,
		EventDate:     req.EventDate,
		EventTime:     req.EventTime,
		EventLocation: req.EventLocation,
		Notes:         req.Notes,
		TotalAmount:   req.TotalAmount,
		Currency:      req.Currency,
		RequestID:     c.GetHeader(idempotencyHeader),
	}
	result, err := commands.Dispatch[BookingApp.CreateBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	q := BookingApp.GetBookingQuery{Actor: actor, BookingID: c.Param("id")}
	result, err := queries.Ask[BookingApp.GetBookingQuery, *dto.BookingDetail](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) List(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	q := BookingApp.ListBookingsQuery{Actor: actor, Role: c.Query("role")}
	result, err := queries.Ask[BookingApp.ListBookingsQuery, []dto.BookingListItem](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if result == nil {
		result = []dto.BookingListItem{}
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

func (h BookingHandler) RecordPayment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	paymentID := req.PaymentID
	if paymentID == "" {
		paymentID = c.GetHeader(idempotencyHeader)
	}
	cmd := BookingApp.RecordPaymentCommand{
		Actor:     actor,
		BookingID: c.Param("id"),
		PaymentID: paymentID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Method:    req.Method,
		Reference: req.Reference,
		PaidAt:    req.PaidAt,
		Notes:     req.Notes,
	}
	result, err := commands.Dispatch[BookingApp.RecordPaymentCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) UpdateStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := BookingApp.UpdateBookingStatusCommand{Actor: actor, BookingID: c.Param("id"), Status: req.Status}
	result, err := commands.Dispatch[BookingApp.UpdateBookingStatusCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req cancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err)
			return
		}
	}
	cmd := BookingApp.CancelBookingCommand{Actor: actor, BookingID: c.Param("id"), Reason: req.Reason, Override: req.Override}
	result, err := commands.Dispatch[BookingApp.CancelBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) MarkRefunded(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	cmd := BookingApp.MarkRefundedCommand{Actor: actor, BookingID: c.Param("id")}
	result, err := commands.Dispatch[BookingApp.MarkRefundedCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Schedule(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	installments := 0
	if raw := c.Query("installments"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		installments = n
	}
	q := BookingApp.PaymentScheduleQuery{Actor: actor, BookingID: c.Param("id"), Installments: installments}
	result, err := queries.Ask[BookingApp.PaymentScheduleQuery, *dto.PaymentSchedule](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) RefundQuote(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	q := BookingApp.RefundQuoteQuery{Actor: actor, BookingID: c.Param("id")}
	result, err := queries.Ask[BookingApp.RefundQuoteQuery, *dto.RefundQuote](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
