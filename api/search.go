package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mkravets/flightdesk/internal/service/search"
)

type SearchHandler struct {
	service      search.SearchUseCase
	sessions     SessionStore
	defaultCount int
}

func NewSearchHandler(service search.SearchUseCase, sessions SessionStore, defaultCount int) *SearchHandler {
	return &SearchHandler{service: service, sessions: sessions, defaultCount: defaultCount}
}

func (h *SearchHandler) Register(router *gin.RouterGroup) {
	router.GET("/search", h.search)
}

// search runs an itinerary search and snapshots the results into the
// session, so a later booking by result number refers to exactly this list.
func (h *SearchHandler) search(c *gin.Context) {
	sess, err := h.sessions.Get(c.Request.Context(), token(c))
	if err != nil {
		writeError(c, err)
		return
	}

	origin := c.Query("origin")
	dest := c.Query("dest")
	if origin == "" || dest == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin and dest are required"})
		return
	}

	day, err := strconv.Atoi(c.Query("day"))
	if err != nil || day < 1 || day > 31 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day"})
		return
	}

	directOnly := c.Query("direct") == "true"

	count := h.defaultCount
	if raw := c.Query("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil || count < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid count"})
			return
		}
	}

	itineraries, err := h.service.Search(c.Request.Context(), search.SearchInput{
		OriginCity: origin,
		DestCity:   dest,
		DayOfMonth: day,
		DirectOnly: directOnly,
		Count:      count,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.sessions.SaveItineraries(c.Request.Context(), sess, itineraries); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"itineraries": itineraries})
}
