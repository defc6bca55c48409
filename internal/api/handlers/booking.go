package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stayfinder/backend/internal/middleware"
	"github.com/stayfinder/backend/internal/models"
	"github.com/stayfinder/backend/internal/repository"
	"github.com/stayfinder/backend/pkg/utils"
	"gorm.io/gorm"
)

type BookingHandler struct {
	repoManager *repository.RepositoryManager
	logger      *logrus.Logger
}

func NewBookingHandler(repoManager *repository.RepositoryManager, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		repoManager: repoManager,
		logger:      logger,
	}
}

// HandleCreateBooking books an offer found through a search. The whole
// hotel/room/offer chain is re-validated so a stale result page cannot book
// an offer that no longer matches.
func (h *BookingHandler) HandleCreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	userID := c.GetString(middleware.UserIDKey)

	searchRecord, err := h.repoManager.Search.GetByID(req.SearchID)
	if err != nil {
		h.respondLookup(c, err, "Search")
		return
	}

	hotel, err := h.repoManager.Hotel.GetByID(req.HotelID)
	if err != nil {
		h.respondLookup(c, err, "Hotel")
		return
	}

	room, err := h.repoManager.Room.GetByID(req.RoomID)
	if err != nil || room.HotelID != hotel.ID {
		h.respondChainLookup(c, err, "Room")
		return
	}

	offer, err := h.repoManager.Offer.GetByID(req.OfferID)
	if err != nil || offer.RoomID != room.ID {
		h.respondChainLookup(c, err, "Offer")
		return
	}

	if !offer.Availability {
		utils.ErrorResponse(c, http.StatusBadRequest, "Offer is no longer available", nil)
		return
	}

	booking := &models.Booking{
		UserID:     userID,
		SearchID:   searchRecord.ID,
		HotelID:    hotel.ID,
		RoomID:     room.ID,
		OfferID:    offer.ID,
		StartsOn:   searchRecord.StartsOn,
		EndsOn:     searchRecord.EndsOn,
		Capacity:   searchRecord.Capacity,
		TotalPrice: offer.EffectivePrice,
		Status:     models.BookingStatusConfirmed,
	}

	if err := h.repoManager.Booking.Create(booking); err != nil {
		h.logger.WithError(err).Error("Failed to create booking")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to create booking", err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"user_id":    userID,
		"offer_id":   offer.ID,
	}).Info("Booking created")

	utils.SuccessResponse(c, http.StatusCreated, "Booking created", gin.H{
		"booking_id": booking.ID,
		"booking":    booking,
	})
}

// HandleGetBooking returns one booking with its related entities.
func (h *BookingHandler) HandleGetBooking(c *gin.Context) {
	booking, err := h.repoManager.Booking.GetByID(c.Param("booking_id"))
	if err != nil {
		h.respondLookup(c, err, "Booking")
		return
	}

	if booking.UserID != c.GetString(middleware.UserIDKey) {
		utils.ErrorResponse(c, http.StatusForbidden, "Unauthorized", nil)
		return
	}

	hotel, _ := h.repoManager.Hotel.GetByID(booking.HotelID)
	room, _ := h.repoManager.Room.GetByID(booking.RoomID)
	offer, _ := h.repoManager.Offer.GetByID(booking.OfferID)
	searchRecord, _ := h.repoManager.Search.GetByID(booking.SearchID)

	utils.SuccessResponse(c, http.StatusOK, "Booking retrieved", gin.H{
		"booking": booking,
		"hotel":   hotel,
		"room":    room,
		"offer":   offer,
		"search":  searchRecord,
	})
}

func (h *BookingHandler) respondLookup(c *gin.Context, err error, entity string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ErrorResponse(c, http.StatusNotFound, entity+" not found", nil)
		return
	}
	h.logger.WithError(err).Error(entity + " lookup failed")
	utils.ErrorResponse(c, http.StatusInternalServerError, entity+" lookup failed", err)
}

// respondChainLookup treats a broken parent reference the same as not found.
func (h *BookingHandler) respondChainLookup(c *gin.Context, err error, entity string) {
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ErrorResponse(c, http.StatusNotFound, entity+" not found", nil)
		return
	}
	h.logger.WithError(err).Error(entity + " lookup failed")
	utils.ErrorResponse(c, http.StatusInternalServerError, entity+" lookup failed", err)
}
