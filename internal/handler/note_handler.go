package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"notekeeper/internal/auth"
	"notekeeper/internal/errors"
	"notekeeper/internal/model"
	"notekeeper/internal/service"
)

// NoteHandler handles note endpoints.
type NoteHandler struct {
	noteService service.NoteService
}

// NewNoteHandler creates a new note handler.
func NewNoteHandler(noteService service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

// NoteRequest represents a create or update payload.
type NoteRequest struct {
	Title   string `json:"title" validate:"max=255"`
	Content string `json:"content"`
}

// NoteResponse represents a note as returned to its owner.
type NoteResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   *string   `json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toNoteResponse(n *model.Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Summary:   n.Summary,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// CreateNote godoc
// @Summary Create note
// @Description Stores a note for the caller. A summary is attached when the summarizer succeeds.
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body NoteRequest true "Note payload"
// @Success 201 {object} NoteResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/notes [post]
func (h *NoteHandler) CreateNote(c echo.Context) error {
	owner, err := currentIdentity(c)
	if err != nil {
		return err
	}
	req, err := bindNoteRequest(c)
	if err != nil {
		return err
	}

	note, err := h.noteService.Create(c.Request().Context(), owner, req.Title, req.Content)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, toNoteResponse(note))
}

// ListNotes godoc
// @Summary List notes
// @Description Lists the caller's notes, newest first.
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} NoteResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/notes [get]
func (h *NoteHandler) ListNotes(c echo.Context) error {
	owner, err := currentIdentity(c)
	if err != nil {
		return err
	}

	notes, err := h.noteService.List(c.Request().Context(), owner)
	if err != nil {
		return mapError(err)
	}

	resp := make([]NoteResponse, 0, len(notes))
	for i := range notes {
		resp = append(resp, toNoteResponse(&notes[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetNote godoc
// @Summary Get note by id
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Success 200 {object} NoteResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/notes/{id} [get]
func (h *NoteHandler) GetNote(c echo.Context) error {
	owner, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := noteID(c)
	if err != nil {
		return err
	}

	note, err := h.noteService.Get(c.Request().Context(), owner, id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toNoteResponse(note))
}

// UpdateNote godoc
// @Summary Update note
// @Description Replaces title and content. The previous summary is kept if a new one cannot be generated.
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Param request body NoteRequest true "Note payload"
// @Success 200 {object} NoteResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/notes/{id} [put]
func (h *NoteHandler) UpdateNote(c echo.Context) error {
	owner, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := noteID(c)
	if err != nil {
		return err
	}
	req, err := bindNoteRequest(c)
	if err != nil {
		return err
	}

	note, err := h.noteService.Update(c.Request().Context(), owner, id, req.Title, req.Content)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toNoteResponse(note))
}

// DeleteNote godoc
// @Summary Delete note
// @Tags notes
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/notes/{id} [delete]
func (h *NoteHandler) DeleteNote(c echo.Context) error {
	owner, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := noteID(c)
	if err != nil {
		return err
	}

	if err := h.noteService.Delete(c.Request().Context(), owner, id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func bindNoteRequest(c echo.Context) (*NoteRequest, error) {
	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}
	return &req, nil
}

// noteID parses the path id. A malformed id cannot name an owned note, so it
// is reported exactly like a missing one.
func noteID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, mapError(service.ErrNoteNotFound)
	}
	return id, nil
}

func currentIdentity(c echo.Context) (auth.Identity, error) {
	id, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return auth.Identity{}, mapError(auth.ErrInvalidToken)
	}
	return id, nil
}

func mapError(err error) *echo.HTTPError {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode == http.StatusUnauthorized {
		// an owner that vanished after the token was issued
		httpErr = errors.MapErrorToHTTP(auth.ErrInvalidToken)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
