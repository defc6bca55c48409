package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stayfinder/backend/internal/models"
	"github.com/stayfinder/backend/internal/repository"
	"github.com/stayfinder/backend/pkg/utils"
)

const autocompleteLimit = 10

type LocationHandler struct {
	repoManager *repository.RepositoryManager
	logger      *logrus.Logger
}

func NewLocationHandler(repoManager *repository.RepositoryManager, logger *logrus.Logger) *LocationHandler {
	return &LocationHandler{
		repoManager: repoManager,
		logger:      logger,
	}
}

// HandleAutocomplete suggests locations matching the query against name,
// city and country. Queries shorter than two characters return nothing.
func (h *LocationHandler) HandleAutocomplete(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if len(query) < 2 {
		utils.SuccessResponse(c, http.StatusOK, "Suggestions retrieved", gin.H{
			"locations": []models.LocationSuggestion{},
		})
		return
	}

	locations, err := h.repoManager.Location.Autocomplete(query, autocompleteLimit)
	if err != nil {
		h.logger.WithError(err).Error("Location autocomplete failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Autocomplete failed", err)
		return
	}

	suggestions := make([]models.LocationSuggestion, 0, len(locations))
	for _, location := range locations {
		suggestions = append(suggestions, models.LocationSuggestion{
			ID:      location.ID,
			Name:    location.Name,
			City:    location.City,
			Country: location.Country,
			Label:   fmt.Sprintf("%s, %s", location.City, location.Country),
		})
	}

	utils.SuccessResponse(c, http.StatusOK, "Suggestions retrieved", gin.H{
		"locations": suggestions,
	})
}
