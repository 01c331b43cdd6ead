package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// DemoHandler serves the public and protected sample endpoints.
type DemoHandler struct {
	now func() time.Time
}

// NewDemoHandler creates a new demo handler.
func NewDemoHandler() *DemoHandler {
	return &DemoHandler{now: time.Now}
}

// PublicResponse is returned by the public endpoint.
type PublicResponse struct {
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
	Authenticated bool      `json:"authenticated"`
}

// ProtectedResponse echoes the caller's identity.
type ProtectedResponse struct {
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
	Authenticated bool      `json:"authenticated"`
	Username      string    `json:"username"`
	Authorities   []string  `json:"authorities"`
}

// Public godoc
// @Summary Public endpoint
// @Tags demo
// @Produce json
// @Success 200 {object} PublicResponse
// @Router /api/public [get]
func (h *DemoHandler) Public(c echo.Context) error {
	return c.JSON(http.StatusOK, PublicResponse{
		Message:       "This is a public endpoint - no authentication required",
		Timestamp:     h.now(),
		Authenticated: false,
	})
}

// Protected godoc
// @Summary Protected endpoint
// @Tags demo
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProtectedResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/protected [get]
func (h *DemoHandler) Protected(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ProtectedResponse{
		Message:       "This is a protected endpoint - authentication required",
		Timestamp:     h.now(),
		Authenticated: true,
		Username:      id.Username,
		Authorities:   id.Authorities(),
	})
}
