// backend/internal/api/handlers/search.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stayfinder/backend/internal/jobs"
	"github.com/stayfinder/backend/internal/middleware"
	"github.com/stayfinder/backend/internal/models"
	"github.com/stayfinder/backend/internal/repository"
	"github.com/stayfinder/backend/internal/search"
	"github.com/stayfinder/backend/pkg/utils"
	"gorm.io/gorm"
)

// SearchCache is the read side of the result cache the HTTP surface needs.
// database.Cache satisfies it.
type SearchCache interface {
	GetSearchResult(ctx context.Context, fingerprint string) (*models.CachedResult, error)
	GetSearchAlias(ctx context.Context, id string) (string, error)
}

// SearchQueue dispatches search jobs. jobs.Queue satisfies it.
type SearchQueue interface {
	Enqueue(job jobs.Job) error
}

type SearchHandler struct {
	searchService *search.Service
	queue         SearchQueue
	repoManager   *repository.RepositoryManager
	cache         SearchCache
	logger        *logrus.Logger
}

func NewSearchHandler(
	searchService *search.Service,
	queue SearchQueue,
	repoManager *repository.RepositoryManager,
	cache SearchCache,
	logger *logrus.Logger,
) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		queue:         queue,
		repoManager:   repoManager,
		cache:         cache,
		logger:        logger,
	}
}

// HandleCreateSearch accepts a search request and dispatches the matching
// job. Identical queries with an unexpired cached result short-circuit to
// the existing search without creating a row.
func (h *SearchHandler) HandleCreateSearch(c *gin.Context) {
	var req models.CreateSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	startsOn, err := search.ParseDate(req.StartsOn)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid starts_on date", err)
		return
	}
	endsOn, err := search.ParseDate(req.EndsOn)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid ends_on date", err)
		return
	}
	if !endsOn.After(startsOn) {
		utils.ErrorResponse(c, http.StatusBadRequest, "Stay must end after it starts", nil)
		return
	}

	if _, err := h.repoManager.Location.GetByID(req.LocationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Location not found", nil)
			return
		}
		h.logger.WithError(err).Error("Location lookup failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Location lookup failed", err)
		return
	}

	userID := c.GetString(middleware.UserIDKey)

	searchRecord := &models.Search{
		UserID:     userID,
		LocationID: req.LocationID,
		StartsOn:   startsOn,
		EndsOn:     endsOn,
		Capacity:   req.Capacity,
		Status:     models.SearchStatusPending,
	}

	// A cached result for the same parameters means an identical search
	// already ran; hand back its id instead of spawning a new job.
	cached, err := h.cache.GetSearchResult(c.Request.Context(), searchRecord.Fingerprint())
	if err != nil {
		h.logger.WithError(err).Error("Cache lookup failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Cache lookup failed", err)
		return
	}
	if cached != nil {
		h.logger.WithFields(logrus.Fields{
			"search_id": cached.Search.ID,
			"user_id":   userID,
		}).Info("Search served from cache")
		utils.SuccessResponse(c, http.StatusOK, "Search already computed", models.CreateSearchResponse{
			SearchID: cached.Search.ID,
		})
		return
	}

	if err := h.repoManager.Search.Create(searchRecord); err != nil {
		h.logger.WithError(err).Error("Failed to create search")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to create search", err)
		return
	}

	if err := h.queue.Enqueue(search.NewJob(h.searchService, searchRecord)); err != nil {
		h.logger.WithError(err).WithField("search_id", searchRecord.ID).Error("Failed to enqueue search job")
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Search queue unavailable", err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"search_id":   searchRecord.ID,
		"location_id": searchRecord.LocationID,
		"capacity":    searchRecord.Capacity,
	}).Info("Search job dispatched")

	utils.SuccessResponse(c, http.StatusOK, "Search dispatched", models.CreateSearchResponse{
		SearchID: searchRecord.ID,
	})
}

// HandleGetSearch returns the search state and, once the job finished, the
// cached hotel results. Deduplicated search ids resolve through their alias
// to the surviving search.
func (h *SearchHandler) HandleGetSearch(c *gin.Context) {
	searchID := c.Param("search_id")

	if alias, err := h.cache.GetSearchAlias(c.Request.Context(), searchID); err != nil {
		h.logger.WithError(err).Error("Alias lookup failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Alias lookup failed", err)
		return
	} else if alias != "" {
		searchID = alias
	}

	searchRecord, err := h.repoManager.Search.GetByID(searchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Search not found", nil)
			return
		}
		h.logger.WithError(err).Error("Search lookup failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Search lookup failed", err)
		return
	}

	// Completed status is only trusted together with a present cache entry.
	cached, err := h.cache.GetSearchResult(c.Request.Context(), searchRecord.Fingerprint())
	if err != nil {
		h.logger.WithError(err).Error("Cache lookup failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Cache lookup failed", err)
		return
	}

	response := models.SearchResultResponse{
		Search: searchRecord,
		Hotels: []models.HotelResult{},
	}
	if cached != nil {
		response.Search = &cached.Search
		response.Hotels = cached.Hotels
	}

	utils.SuccessResponse(c, http.StatusOK, "Search retrieved", response)
}
