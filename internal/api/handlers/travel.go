package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tripwise/travel-agent/internal/api/dto"
	"github.com/tripwise/travel-agent/internal/services/intent"
	"github.com/tripwise/travel-agent/internal/services/lookup"
)

// TravelHandler serves the read-only catalog endpoints.
type TravelHandler struct {
	lookup  *lookup.Service
	catalog *intent.Catalog
}

// NewTravelHandler creates a new TravelHandler.
func NewTravelHandler(svc *lookup.Service, catalog *intent.Catalog) *TravelHandler {
	return &TravelHandler{lookup: svc, catalog: catalog}
}

// Destinations lists the cities with data.
// @Summary List travel destinations
// @Tags Travel
// @Produce json
// @Success 200 {object} dto.DestinationsResponse
// @Router /api/travel-destinations [get]
func (h *TravelHandler) Destinations(c *gin.Context) {
	destinations := h.lookup.Destinations()
	out := make([]dto.DestinationResponse, 0, len(destinations))
	for _, d := range destinations {
		out = append(out, dto.DestinationResponse{
			City:                 d.City,
			Country:              d.Country,
			HotelsAvailable:      d.HotelsAvailable,
			AttractionsAvailable: d.AttractionsAvailable,
		})
	}

	c.JSON(http.StatusOK, dto.DestinationsResponse{
		Success:      true,
		Destinations: out,
		TotalCities:  len(out),
	})
}

// Functions lists the travel functions offered to the language model.
// @Summary List travel functions
// @Tags Travel
// @Produce json
// @Success 200 {object} dto.FunctionsResponse
// @Router /api/functions [get]
func (h *TravelHandler) Functions(c *gin.Context) {
	functions := h.catalog.Functions()
	out := make([]dto.FunctionResponse, 0, len(functions))
	for _, f := range functions {
		out = append(out, dto.FunctionResponse{
			Name:        f.Name,
			Description: f.Description,
			Parameters:  f.ParametersMap(),
		})
	}

	c.JSON(http.StatusOK, dto.FunctionsResponse{
		Functions: out,
		Scope:     intent.Scope,
	})
}
