package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/dto"
	OfferApp "eventmarket/internal/app/handlers/offers"
	"eventmarket/internal/app/queries"
)

type OfferHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createOfferRequest struct {
	SellerID        string    `json:"seller_id"`
	BuyerID         string    `json:"buyer_id"`
	SellerName      string    `json:"seller_name"`
	BuyerName       string    `json:"buyer_name"`
	PriceAmount     int64     `json:"price_amount"`
	Currency        string    `json:"currency"`
	Description     string    `json:"description"`
	BasePackageID   string    `json:"base_package_id"`
	BasePackageName string    `json:"base_package_name"`
	DeliveryTime    string    `json:"delivery_time"`
	ValidUntil      time.Time `json:"valid_until"`
	EventDate       time.Time `json:"event_date"`
	ConversationID  string    `json:"conversation_id"`
	InitiatedBy     string    `json:"initiated_by"`
}

type acceptOfferRequest struct {
	EventName     string    `json:"event_name"`
	EventDate     time.Time `json:"event_date"`
	EventTime     string    `json:"event_time"`
	EventLocation string    `json:"event_location"`
	Notes         string    `json:"notes"`
}

type rejectOfferRequest struct {
	Reason string `json:"reason"`
}

func (h OfferHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req createOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := OfferApp.CreateOfferCommand{
		Actor:           actor,
		SellerID:        req.SellerID,
		BuyerID:         req.BuyerID,
		SellerName:      req.SellerName,
		BuyerName:       req.BuyerName,
		PriceAmount:     req.PriceAmount,
		Currency:        req.Currency,
		Description:     req.Description,
		BasePackageID:   req.BasePackageID,
		BasePackageName: req.BasePackageName,
		DeliveryTime:    req.DeliveryTime,
		ValidUntil:      req.ValidUntil,
		EventDate:       req.EventDate,
		ConversationID:  req.ConversationID,
		InitiatedBy:     req.InitiatedBy,
		RequestID:       c.GetHeader(idempotencyHeader),
	}
	result, err := commands.Dispatch[OfferApp.CreateOfferCommand, *dto.Offer](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h OfferHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	q := OfferApp.GetOfferQuery{Actor: actor, OfferID: c.Param("id")}
	result, err := queries.Ask[OfferApp.GetOfferQuery, *dto.Offer](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h OfferHandler) List(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	q := OfferApp.ListOffersQuery{Actor: actor, Status: c.Query("status")}
	result, err := queries.Ask[OfferApp.ListOffersQuery, []dto.Offer](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if result == nil {
		result = []dto.Offer{}
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

func (h OfferHandler) Accept(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req acceptOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := OfferApp.AcceptOfferCommand{
		Actor:         actor,
		OfferID:       c.Param("id"),
		EventName:     req.EventName,
		EventDate:     req.EventDate,
		EventTime:     req.EventTime,
		EventLocation: req.EventLocation,
		Notes:         req.Notes,
		RequestID:     c.GetHeader(idempotencyHeader),
	}
	result, err := commands.Dispatch[OfferApp.AcceptOfferCommand, *OfferApp.AcceptOfferResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h OfferHandler) Reject(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req rejectOfferRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err)
			return
		}
	}
	cmd := OfferApp.RejectOfferCommand{Actor: actor, OfferID: c.Param("id"), Reason: req.Reason}
	result, err := commands.Dispatch[OfferApp.RejectOfferCommand, *dto.Offer](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h OfferHandler) Cancel(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	cmd := OfferApp.CancelOfferCommand{Actor: actor, OfferID: c.Param("id")}
	result, err := commands.Dispatch[OfferApp.CancelOfferCommand, *dto.Offer](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ OfferHTTP = OfferHandler{}
