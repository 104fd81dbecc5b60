package anthropometry

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
	api.GET("/bmi", h.GetBMI)
}

// GetBMI computes and classifies BMI from ?height_cm= and ?weight_kg=.
func (h *Handler) GetBMI(c echo.Context) error {
	height, err := strconv.ParseFloat(c.QueryParam("height_cm"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "height_cm must be a number")
	}
	weight, err := strconv.ParseFloat(c.QueryParam("weight_kg"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "weight_kg must be a number")
	}
	res, err := Assess(height, weight)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}
