package gestation

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/phases", h.GetPhases)
}

type phaseResponse struct {
	Summary
	Insight Insight `json:"insight"`
}

// GetPhases lists every phase, or classifies one week when ?week= is set.
func (h *Handler) GetPhases(c echo.Context) error {
	raw := c.QueryParam("week")
	if raw == "" {
		out := make([]phaseResponse, 0, len(Phases()))
		for _, p := range Phases() {
			lo, _ := p.Range()
			out = append(out, phaseResponse{Summary: Summarize(lo), Insight: SelectInsight(p)})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"data": out})
	}

	week, err := strconv.Atoi(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "week must be an integer")
	}
	return c.JSON(http.StatusOK, phaseResponse{
		Summary: Summarize(week),
		Insight: SelectInsight(Classify(week)),
	})
}
