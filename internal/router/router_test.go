package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notekeeper/internal/auth"
	"notekeeper/internal/handler"
	"notekeeper/internal/model"
	"notekeeper/internal/repository/memory"
	"notekeeper/internal/service"
	"notekeeper/internal/summarizer"
)

const testSecret = "router-test-secret"

type fakeSummarizer struct {
	summary string
}

func (f fakeSummarizer) Summarize(ctx context.Context, title, content string) summarizer.Result {
	if f.summary == "" {
		return summarizer.Absent()
	}
	return summarizer.Found(f.summary)
}

func newTestServer(t *testing.T, sum service.Summarizer) *echo.Echo {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := memory.New()

	accounts := append([]service.SeedAccount{
		{Username: "bob", Password: "bobpw", Role: model.RoleUser},
	}, service.DefaultAccounts...)
	_, _, err := service.Bootstrap(context.Background(), db.Users(), accounts, logger)
	require.NoError(t, err)

	jwtService := auth.NewJWTService(testSecret, time.Hour)
	authService := service.NewAuthService(db.Users(), jwtService)
	noteService := service.NewNoteService(db.Users(), db.Notes(), sum, nil, logger)

	e := echo.New()
	Register(e, logger, jwtService,
		handler.NewAuthHandler(authService),
		handler.NewNoteHandler(noteService),
		handler.NewDemoHandler(),
	)
	return e
}

func do(e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, e *echo.Echo, username, password string) string {
	t.Helper()
	rec := do(e, http.MethodPost, "/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handler.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func createNote(t *testing.T, e *echo.Echo, token, title, content string) handler.NoteResponse {
	t.Helper()
	rec := do(e, http.MethodPost, "/api/notes", token, map[string]string{"title": title, "content": content})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var note handler.NoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &note))
	return note
}

func TestLogin(t *testing.T) {
	e := newTestServer(t, fakeSummarizer{})

	rec := do(e, http.MethodPost, "/login", "", map[string]string{"username": "demo", "password": "demo"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handler.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "demo", resp.Username)
	assert.Equal(t, model.RoleUser, resp.Role)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
}

func TestLogin_FailuresLookAlike(t *testing.T) {
	e := newTestServer(t, fakeSummarizer{})

	for _, creds := range []map[string]string{
		{"username": "demo", "password": "wrong"},
		{"username": "ghost", "password": "demo"},
		{"username": "", "password": ""},
	} {
		rec := do(e, http.MethodPost, "/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid username or password", rec.Body.String())
	}
}

func TestLogin_MalformedBody(t *testing.T) {
	e := newTestServer(t, fakeSummarizer{})

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotes_CRUD(t *testing.T) {
	e := newTestServer(t, fakeSummarizer{summary: "short"})
	token := login(t, e, "demo", "demo")

	note := createNote(t, e, token, "Groceries", "milk, eggs")
	require.NotNil(t, note.Summary)
	assert.Equal(t, "short", *note.Summary)
	assert.NotEqual(t, uuid.Nil, note.ID)

	rec := do(e, http.MethodGet, "/api/notes/"+note.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPut, "/api/notes/"+note.ID.String(), token, map[string]string{"title": "Groceries v2", "content": "bread"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated handler.NoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Groceries v2", updated.Title)
	assert.Equal(t, "bread", updated.Content)
	assert.Equal(t, note.CreatedAt.Unix(), updated.CreatedAt.Unix())

	rec = do(e, http.MethodDelete, "/api/notes/"+note.ID.String(), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(e, http.MethodGet, "/api/notes/"+note.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotes_SummaryIsNullWhenSummarizerFails(t *testing.T) {
	e := newTestServer(t, fakeSummarizer{})
	token := login(t, e, "demo", "demo")

	rec := do(e, http.MethodPost, "/api/notes", token, map[string]string{"title": "t", "content": "c"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	v, present := raw["summary"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestNotes_ListNewestFirstAndEmptyArray(t *testing.T) {
	e := newTestServer(t, fakeSummarizer{})
	token := login(t, e, "demo", "demo")

	rec := do(e, http.MethodGet, "/api/notes", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	first := createNote(t, e, token, "first", "")
	second := createNote(t, e, token, "second", "")

	rec = do(e, http.MethodGet, "/api/notes", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var notes []handler.NoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notes))
	require.Len(t, notes, 2)
	assert.Equal(t, second.ID, notes[0].ID)
	assert.Equal(t, first.ID, notes[1].ID)
}

func TestNotes_OtherUsersNotesAreNotFound(t *testing.T) {
	e := newTestServer(t, fakeSummarizer{})
	demo := login(t, e, "demo", "demo")
	bob := login(t, e, "bob", "bobpw")

	note := createNote(t, e, demo, "private", "secret")
	path := "/api/notes/" + note.ID.String()

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, path, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPut, path, bob, map[string]string{"title": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodDelete, path, bob, nil).Code)

	rec := do(e, http.MethodGet, "/api/notes", bob, nil)
	assert.JSONEq(t, "[]", rec.Body.String())

	// still intact for its owner
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, path, demo, nil).Code)
}

func TestNotes_UnknownAndMalformedIDs(t *testing.T) {
	e := newTestServer(t, fakeSummarizer{})
	token := login(t, e, "demo", "demo")

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodDelete, "/api/notes/"+uuid.NewString(), token, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/api/notes/not-a-uuid", token, nil).Code)
}

func TestNotes_TitleRules(t *testing.T) {
	e := newTestServer(t, fakeSummarizer{})
	token := login(t, e, "demo", "demo")

	// an empty or missing title is stored as given
	note := createNote(t, e, token, "", "untitled")
	assert.Equal(t, "", note.Title)
	rec := do(e, http.MethodPost, "/api/notes", token, map[string]string{"content": "no title"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodPut, "/api/notes/"+note.ID.String(), token, map[string]string{"title": "", "content": "still untitled"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// the column holds at most 255 characters
	long := strings.Repeat("x", 256)
	rec = do(e, http.MethodPost, "/api/notes", token, map[string]string{"title": long})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(e, http.MethodPut, "/api/notes/"+note.ID.String(), token, map[string]string{"title": long})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/api/notes", token, map[string]string{"title": strings.Repeat("x", 255)})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSecuredRoutesRequireToken(t *testing.T) {
	e := newTestServer(t, fakeSummarizer{})

	expired, _, err := auth.NewJWTService(testSecret, time.Nanosecond).Issue("demo", model.RoleUser)
	require.NoError(t, err)
	forged, _, err := auth.NewJWTService("other-secret", time.Hour).Issue("demo", model.RoleUser)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"missing": "",
		"garbage": "not.a.jwt",
		"expired": expired,
		"forged":  forged,
	} {
		rec := do(e, http.MethodGet, "/api/notes", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)

		rec = do(e, http.MethodGet, "/api/protected", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}

func TestDemoEndpoints(t *testing.T) {
	e := newTestServer(t, fakeSummarizer{})

	rec := do(e, http.MethodGet, "/api/public", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var public handler.PublicResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &public))
	assert.False(t, public.Authenticated)

	token := login(t, e, "admin", "admin")
	rec = do(e, http.MethodGet, "/api/protected", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var protected handler.ProtectedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &protected))
	assert.True(t, protected.Authenticated)
	assert.Equal(t, "admin", protected.Username)
	assert.Equal(t, []string{model.RoleAdmin}, protected.Authorities)
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t, fakeSummarizer{})
	rec := do(e, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
