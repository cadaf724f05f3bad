package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-display/handlers"
	"github.com/Dosada05/tournament-display/live"
	"github.com/Dosada05/tournament-display/models"
	"github.com/Dosada05/tournament-display/routes"
	"github.com/Dosada05/tournament-display/services"
)

type fakeUpstream struct {
	page      models.PageInfo
	snapshots map[string]*models.TournamentSnapshot
}

func (f *fakeUpstream) FetchPage(ctx context.Context) (*models.PageInfo, error) {
	page := f.page
	return &page, nil
}

func (f *fakeUpstream) FetchTournament(ctx context.Context, id string) (*models.TournamentSnapshot, error) {
	return f.snapshots[id], nil
}

type stubExport struct {
	result *services.ExportResult
	err    error
}

func (s *stubExport) Export(ctx context.Context) (*services.ExportResult, error) {
	return s.result, s.err
}

func newTestRouter(t *testing.T, exportSvc services.ExportService) *chi.Mux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := live.NewHub(logger)

	client := &fakeUpstream{
		page: models.PageInfo{
			Name:        "Vereinsturnier",
			Tournaments: []models.TournamentSummary{{ID: "t1", Name: "Sommercup"}},
		},
		snapshots: map[string]*models.TournamentSnapshot{
			"t1": {
				Name: "Sommercup",
				Qualifying: []models.QualifyingGroup{{
					Standings: []models.Standing{{ID: "a", Name: "Alpha"}},
				}},
			},
		},
	}

	displaySvc := services.NewDisplayService(client, hub, logger, 10*time.Second, time.Hour)
	require.NoError(t, displaySvc.LoadPage(context.Background()))

	router := chi.NewRouter()
	routes.SetupRoutes(
		router,
		handlers.NewDisplayHandler(displaySvc),
		handlers.NewExportHandler(exportSvc),
		handlers.NewWebSocketHandler(hub, logger),
	)
	return router
}

func TestGetPage(t *testing.T) {
	router := newTestRouter(t, &stubExport{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/page", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var page models.PageInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "Vereinsturnier", page.Name)
	require.Len(t, page.Tournaments, 1)
}

func TestSelectTournamentAndGetDisplay(t *testing.T) {
	router := newTestRouter(t, &stubExport{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/display/tournament", strings.NewReader(`{"id":"t1"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/display", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		SelectedID string            `json:"selected_id"`
		Name       string            `json:"name"`
		Standings  []models.Standing `json:"standings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "t1", resp.SelectedID)
	assert.Equal(t, "Sommercup", resp.Name)
	require.Len(t, resp.Standings, 1)
}

func TestSelectUnknownTournamentReturns404(t *testing.T) {
	router := newTestRouter(t, &stubExport{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/display/tournament", strings.NewReader(`{"id":"nope"}`))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelectTournamentRejectsEmptyBody(t *testing.T) {
	router := newTestRouter(t, &stubExport{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/display/tournament", strings.NewReader(`{}`))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportCreated(t *testing.T) {
	router := newTestRouter(t, &stubExport{result: &services.ExportResult{ID: "job", Pages: 3}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/export", nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	var result services.ExportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 3, result.Pages)
}

func TestExportInFlightReturnsConflict(t *testing.T) {
	router := newTestRouter(t, &stubExport{err: services.ErrExportInFlight})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/export", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, &stubExport{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
