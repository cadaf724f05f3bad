package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/tournament-display/live"
	"github.com/Dosada05/tournament-display/models"
	"github.com/Dosada05/tournament-display/tracker"
	"github.com/Dosada05/tournament-display/upstream"
	"github.com/Dosada05/tournament-display/views"
)

// DisplayService owns the current display state: the selected tournament,
// its latest snapshot and the position-change tags. All mutation goes
// through it; readers get value copies.
type DisplayService interface {
	// Run polls the selected tournament on a fixed interval until the
	// context is cancelled. The poll interval is also the retry
	// mechanism: a failed fetch keeps the previous snapshot and is
	// retried on the next tick.
	Run(ctx context.Context)

	// LoadPage fetches the page title and the tournament list. Called
	// once at startup and again on manual refresh.
	LoadPage(ctx context.Context) error

	Page() models.PageInfo
	SelectTournament(ctx context.Context, id string) error
	Refresh(ctx context.Context) error
	State() models.DisplayState
}

type displayService struct {
	client       upstream.Client
	hub          *live.Hub
	logger       *slog.Logger
	pollInterval time.Duration
	decay        time.Duration

	mu      sync.Mutex
	page    models.PageInfo
	state   models.DisplayState
	trk     *tracker.Tracker
	seq     uint64 // последний инициированный опрос
	applied uint64 // последний применённый ответ
}

func NewDisplayService(
	client upstream.Client,
	hub *live.Hub,
	logger *slog.Logger,
	pollInterval time.Duration,
	decay time.Duration,
) DisplayService {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &displayService{
		client:       client,
		hub:          hub,
		logger:       logger,
		pollInterval: pollInterval,
		decay:        decay,
		trk:          tracker.New(decay),
	}
}

func (s *displayService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	defer s.stopTracker()

	s.logger.Info("display poll loop started", slog.Duration("interval", s.pollInterval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("display poll loop stopped")
			return
		case <-ticker.C:
			if err := s.poll(ctx); err != nil {
				s.logger.Error("poll failed", slog.Any("error", err))
			}
		}
	}
}

func (s *displayService) LoadPage(ctx context.Context) error {
	page, err := s.client.FetchPage(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	s.mu.Lock()
	s.page = *page
	s.mu.Unlock()
	s.logger.Info("page info loaded",
		slog.String("name", page.Name),
		slog.Int("tournaments", len(page.Tournaments)))
	return nil
}

func (s *displayService) Page() models.PageInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// SelectTournament switches the display to another tournament and
// triggers an immediate fetch. The previous tournament's position
// baseline is discarded; a late response for the old selection is
// dropped by the sequence check in poll.
func (s *displayService) SelectTournament(ctx context.Context, id string) error {
	s.mu.Lock()
	found := false
	for _, t := range s.page.Tournaments {
		if t.ID == id {
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return ErrTournamentNotFound
	}
	s.trk.Stop()
	s.trk = tracker.New(s.decay)
	s.state = models.DisplayState{SelectedID: id}
	s.mu.Unlock()

	return s.poll(ctx)
}

// Refresh re-fetches the tournament list and the current snapshot on
// operator demand.
func (s *displayService) Refresh(ctx context.Context) error {
	if err := s.LoadPage(ctx); err != nil {
		return err
	}
	return s.poll(ctx)
}

// State returns a copy of the display state. Position tags are read
// live from the tracker, not from the last poll: the decay clears them
// between polls and the API has to see that immediately.
func (s *displayService) State() models.DisplayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Changes = s.trk.Changes()
	return st
}

// poll fetches the selected tournament's snapshot and applies it.
// Каждый инициированный запрос получает порядковый номер; ответ
// применяется только если с момента его старта не был применён более
// новый и выбор турнира не поменялся. Это гарантирует, что опоздавший
// ответ для прежнего выбора никогда не перезапишет более свежий.
func (s *displayService) poll(ctx context.Context) error {
	s.mu.Lock()
	id := s.state.SelectedID
	if id == "" {
		s.mu.Unlock()
		return nil
	}
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	snapshot, fetchErr := s.client.FetchTournament(ctx, id)

	s.mu.Lock()
	if seq < s.applied || id != s.state.SelectedID {
		s.mu.Unlock()
		s.logger.Warn("dropping stale poll response",
			slog.String("tournament", id), slog.Uint64("seq", seq))
		return nil
	}
	s.applied = seq

	if fetchErr != nil {
		// Снапшот не трогаем: лучше показывать устаревшие данные, чем
		// ничего. Индикатор ошибки снимется при следующем успехе.
		s.state.FetchFailed = true
		s.mu.Unlock()
		s.hub.BroadcastToRoom(id, live.Message{Type: live.MessageFetchError})
		return fmt.Errorf("%w: %v", ErrFetchFailed, fetchErr)
	}

	s.trk.Apply(views.GroupStandings(snapshot))
	s.state = models.DisplayState{
		SelectedID:  id,
		Snapshot:    snapshot,
		FetchedAt:   time.Now(),
		FetchFailed: false,
	}
	s.mu.Unlock()

	s.hub.BroadcastToRoom(id, live.Message{Type: live.MessageSnapshotUpdated})
	return nil
}

func (s *displayService) stopTracker() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trk.Stop()
}
