package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type metaResponse struct {
	Project string `json:"project"`
	Status  string `json:"status"`
	Version string `json:"version"`
	Message string `json:"message"`
	Docs    string `json:"docs"`
}

// Root returns static service metadata.
//
// @Summary  Service metadata
// @Tags     meta
// @Produce  json
// @Success  200  {object}  metaResponse
// @Router   / [get]
func Root(version string) echo.HandlerFunc {
	body := metaResponse{
		Project: "AutoResolve Helpdesk",
		Status:  "running",
		Version: version,
		Message: "Server is working!",
		Docs:    "/swagger/index.html",
	}
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, body)
	}
}
