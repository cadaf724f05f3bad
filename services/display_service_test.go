package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-display/live"
	"github.com/Dosada05/tournament-display/models"
)

type fakeUpstream struct {
	mu        sync.Mutex
	page      models.PageInfo
	pageErr   error
	snapshots map[string]*models.TournamentSnapshot
	delays    map[string]time.Duration
	fetchErr  error
}

func newFakeUpstream(ids ...string) *fakeUpstream {
	f := &fakeUpstream{
		snapshots: make(map[string]*models.TournamentSnapshot),
		delays:    make(map[string]time.Duration),
	}
	for _, id := range ids {
		f.page.Tournaments = append(f.page.Tournaments, models.TournamentSummary{ID: id, Name: "Turnier " + id})
		f.snapshots[id] = &models.TournamentSnapshot{Name: "Turnier " + id}
	}
	return f
}

func (f *fakeUpstream) FetchPage(ctx context.Context) (*models.PageInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	page := f.page
	return &page, nil
}

func (f *fakeUpstream) FetchTournament(ctx context.Context, id string) (*models.TournamentSnapshot, error) {
	f.mu.Lock()
	delay := f.delays[id]
	fetchErr := f.fetchErr
	snap := f.snapshots[id]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	if snap == nil {
		return nil, errors.New("unexpected status: 404")
	}
	return snap, nil
}

func (f *fakeUpstream) setFetchErr(err error) {
	f.mu.Lock()
	f.fetchErr = err
	f.mu.Unlock()
}

func (f *fakeUpstream) setSnapshot(id string, s *models.TournamentSnapshot) {
	f.mu.Lock()
	f.snapshots[id] = s
	f.mu.Unlock()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDisplay(t *testing.T, client *fakeUpstream) DisplayService {
	t.Helper()
	logger := testLogger()
	hub := live.NewHub(logger)
	svc := NewDisplayService(client, hub, logger, 10*time.Second, time.Hour)
	require.NoError(t, svc.LoadPage(context.Background()))
	return svc
}

func TestSelectTournamentAppliesSnapshot(t *testing.T) {
	client := newFakeUpstream("x")
	svc := newTestDisplay(t, client)

	require.NoError(t, svc.SelectTournament(context.Background(), "x"))

	state := svc.State()
	require.NotNil(t, state.Snapshot)
	assert.Equal(t, "Turnier x", state.Snapshot.Name)
	assert.Equal(t, "x", state.SelectedID)
	assert.False(t, state.FetchFailed)
}

func TestSelectUnknownTournament(t *testing.T) {
	client := newFakeUpstream("x")
	svc := newTestDisplay(t, client)

	err := svc.SelectTournament(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestFetchFailurePreservesSnapshot(t *testing.T) {
	client := newFakeUpstream("x")
	svc := newTestDisplay(t, client)
	require.NoError(t, svc.SelectTournament(context.Background(), "x"))

	client.setFetchErr(errors.New("network down"))
	err := svc.Refresh(context.Background())
	require.ErrorIs(t, err, ErrFetchFailed)

	// Устаревшие данные лучше пустого экрана: снапшот остаётся,
	// индикатор ошибки взводится.
	state := svc.State()
	require.NotNil(t, state.Snapshot)
	assert.Equal(t, "Turnier x", state.Snapshot.Name)
	assert.True(t, state.FetchFailed)

	// Следующий успешный опрос снимает индикатор.
	client.setFetchErr(nil)
	require.NoError(t, svc.Refresh(context.Background()))
	assert.False(t, svc.State().FetchFailed)
}

func TestStaleResponseDropped(t *testing.T) {
	client := newFakeUpstream("x", "y")
	client.mu.Lock()
	client.delays["x"] = 150 * time.Millisecond
	client.mu.Unlock()
	svc := newTestDisplay(t, client)

	// Выбор X стартует медленный запрос; не дожидаясь ответа выбираем Y.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = svc.SelectTournament(context.Background(), "x")
	}()
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, svc.SelectTournament(context.Background(), "y"))
	wg.Wait()

	// Ответ X пришёл после ответа Y и обязан быть отброшен.
	state := svc.State()
	require.NotNil(t, state.Snapshot)
	assert.Equal(t, "y", state.SelectedID)
	assert.Equal(t, "Turnier y", state.Snapshot.Name)
}

func TestPositionChangesTrackStandings(t *testing.T) {
	client := newFakeUpstream("x")
	client.setSnapshot("x", &models.TournamentSnapshot{
		Name: "Turnier x",
		Qualifying: []models.QualifyingGroup{{
			Standings: []models.Standing{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
		}},
	})
	svc := newTestDisplay(t, client)
	require.NoError(t, svc.SelectTournament(context.Background(), "x"))
	assert.Empty(t, svc.State().Changes)

	client.setSnapshot("x", &models.TournamentSnapshot{
		Name: "Turnier x",
		Qualifying: []models.QualifyingGroup{{
			Standings: []models.Standing{{ID: "b", Name: "B"}, {ID: "a", Name: "A"}},
		}},
	})
	require.NoError(t, svc.Refresh(context.Background()))

	changes := svc.State().Changes
	assert.Equal(t, models.PositionUp, changes["b"])
	assert.Equal(t, models.PositionDown, changes["a"])
}

func TestPositionChangesDecayWithoutPoll(t *testing.T) {
	client := newFakeUpstream("x")
	client.setSnapshot("x", &models.TournamentSnapshot{
		Name: "Turnier x",
		Qualifying: []models.QualifyingGroup{{
			Standings: []models.Standing{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
		}},
	})
	logger := testLogger()
	svc := NewDisplayService(client, live.NewHub(logger), logger, 10*time.Second, 40*time.Millisecond)
	require.NoError(t, svc.LoadPage(context.Background()))
	require.NoError(t, svc.SelectTournament(context.Background(), "x"))

	client.setSnapshot("x", &models.TournamentSnapshot{
		Name: "Turnier x",
		Qualifying: []models.QualifyingGroup{{
			Standings: []models.Standing{{ID: "b", Name: "B"}, {ID: "a", Name: "A"}},
		}},
	})
	require.NoError(t, svc.Refresh(context.Background()))
	require.NotEmpty(t, svc.State().Changes)

	// Пометки гаснут по таймеру затухания, не дожидаясь следующего
	// опроса: State читает их напрямую из трекера.
	assert.Eventually(t, func() bool {
		return len(svc.State().Changes) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestRunPollsOnInterval(t *testing.T) {
	client := newFakeUpstream("x")
	logger := testLogger()
	hub := live.NewHub(logger)
	svc := NewDisplayService(client, hub, logger, 20*time.Millisecond, time.Hour)
	require.NoError(t, svc.LoadPage(context.Background()))
	require.NoError(t, svc.SelectTournament(context.Background(), "x"))

	client.setSnapshot("x", &models.TournamentSnapshot{Name: "Aktualisiert"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	assert.Eventually(t, func() bool {
		s := svc.State().Snapshot
		return s != nil && s.Name == "Aktualisiert"
	}, time.Second, 10*time.Millisecond)
}
