package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/tournament-display/models"
	"github.com/Dosada05/tournament-display/services"
	"github.com/Dosada05/tournament-display/views"
)

var errEmptyTournamentID = errors.New("tournament id is required")

type DisplayHandler struct {
	displayService services.DisplayService
}

func NewDisplayHandler(displayService services.DisplayService) *DisplayHandler {
	return &DisplayHandler{displayService: displayService}
}

// GetPage отдаёт заголовок дисплея и список доступных турниров
// (закэшированы со старта; обновляются ручным Refresh).
func (h *DisplayHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, h.displayService.Page(), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type bracketView struct {
	ID      string                 `json:"id"`
	Name    string                 `json:"name"`
	Winner  []models.BracketColumn `json:"winner"`
	Loser   []models.BracketColumn `json:"loser,omitempty"`
	Results []models.ResultRow     `json:"results,omitempty"`
}

type displayResponse struct {
	SelectedID  string                           `json:"selected_id"`
	Name        string                           `json:"name,omitempty"`
	FetchedAt   string                           `json:"fetched_at,omitempty"`
	FetchFailed bool                             `json:"fetch_failed"`
	Standings   []models.Standing                `json:"standings,omitempty"`
	Changes     map[string]models.PositionChange `json:"changes,omitempty"`
	Current     []models.Match                   `json:"current_matches,omitempty"`
	Next        []models.Match                   `json:"next_matches,omitempty"`
	Brackets    []bracketView                    `json:"brackets,omitempty"`
}

// GetDisplay returns the current display state with all three derived
// views. Display clients poll this once and then follow WebSocket pushes.
func (h *DisplayHandler) GetDisplay(w http.ResponseWriter, r *http.Request) {
	state := h.displayService.State()

	resp := displayResponse{
		SelectedID:  state.SelectedID,
		FetchFailed: state.FetchFailed,
		Changes:     state.Changes,
	}

	if s := state.Snapshot; s != nil {
		resp.Name = s.Name
		resp.FetchedAt = state.FetchedAt.Format("2006-01-02T15:04:05Z07:00")
		standings := views.GroupStandings(s)
		resp.Standings = standings
		resp.Current = views.CurrentMatches(s)
		resp.Next = views.NextMatches(s)
		for i := range s.KO {
			b := &s.KO[i]
			resp.Brackets = append(resp.Brackets, bracketView{
				ID:      b.ID,
				Name:    b.Name,
				Winner:  views.WinnerColumns(b),
				Loser:   views.LoserColumns(b),
				Results: views.ResultRows(b, standings),
			})
		}
	}

	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type selectTournamentRequest struct {
	ID string `json:"id"`
}

func (h *DisplayHandler) SelectTournament(w http.ResponseWriter, r *http.Request) {
	var req selectTournamentRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if req.ID == "" {
		badRequestResponse(w, r, errEmptyTournamentID)
		return
	}

	if err := h.displayService.SelectTournament(r.Context(), req.ID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.GetDisplay(w, r)
}

// Refresh forces an immediate poll of the tournament list and the
// selected tournament, outside the fixed interval.
func (h *DisplayHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.displayService.Refresh(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.GetDisplay(w, r)
}
