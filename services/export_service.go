package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tournament-display/export"
	"github.com/Dosada05/tournament-display/live"
	"github.com/Dosada05/tournament-display/models"
	"github.com/Dosada05/tournament-display/storage"
	"github.com/Dosada05/tournament-display/views"
)

// CaptureRenderer rasterizes the three display views. Satisfied by
// export.Renderer; an interface so tests can substitute slow or failing
// captures.
type CaptureRenderer interface {
	RenderResults(title string, rows []models.ResultRow) ([]byte, error)
	RenderBracket(title string, b *models.EliminationBracket) ([]byte, error)
	RenderStandings(title string, standings []models.Standing) ([]byte, error)
}

type ExportResult struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	Location string `json:"location,omitempty"`
	Pages    int    `json:"pages"`
}

// ExportService produces the 3-page PDF document of the current display
// state. The operation is exclusive: only one export may be in flight.
type ExportService interface {
	Export(ctx context.Context) (*ExportResult, error)
}

type exportService struct {
	display   DisplayService
	renderer  CaptureRenderer
	uploader  storage.FileUploader // nil: документы остаются только на диске
	hub       *live.Hub
	logger    *slog.Logger
	exportDir string

	inFlight atomic.Bool

	// Ключ последнего загруженного документа. Доступ сериализован
	// флагом inFlight, отдельный мьютекс не нужен.
	lastUploadedKey string
}

func NewExportService(
	display DisplayService,
	renderer CaptureRenderer,
	uploader storage.FileUploader,
	hub *live.Hub,
	logger *slog.Logger,
	exportDir string,
) ExportService {
	return &exportService{
		display:   display,
		renderer:  renderer,
		uploader:  uploader,
		hub:       hub,
		logger:    logger,
		exportDir: exportDir,
	}
}

func (s *exportService) Export(ctx context.Context) (*ExportResult, error) {
	// Single-flight: повторный запрос во время работающего экспорта
	// отклоняется, а не ставится в очередь.
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrExportInFlight
	}
	defer s.inFlight.Store(false)

	state := s.display.State()
	if state.SelectedID == "" {
		return nil, ErrNoTournamentSelected
	}
	if state.Snapshot == nil {
		return nil, ErrNoSnapshot
	}
	snapshot := state.Snapshot

	standings := views.GroupStandings(snapshot)
	var bracket *models.EliminationBracket
	if len(snapshot.KO) > 0 {
		bracket = &snapshot.KO[0]
	}
	resultRows := views.ResultRows(bracket, standings)

	// Три снимка рендерятся параллельно. Отказ одного снимка не
	// отменяет экспорт: его страница просто пропускается.
	var captures export.Captures
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		img, err := s.renderer.RenderResults(snapshot.Name, resultRows)
		if err != nil {
			s.logger.Warn("results capture failed, skipping page", slog.Any("error", err))
			return nil
		}
		captures.Results = img
		return nil
	})
	g.Go(func() error {
		if bracket == nil {
			return nil
		}
		img, err := s.renderer.RenderBracket(snapshot.Name, bracket)
		if err != nil {
			s.logger.Warn("bracket capture failed, skipping page", slog.Any("error", err))
			return nil
		}
		captures.Bracket = img
		return nil
	})
	g.Go(func() error {
		img, err := s.renderer.RenderStandings(snapshot.Name, standings)
		if err != nil {
			s.logger.Warn("standings capture failed, skipping page", slog.Any("error", err))
			return nil
		}
		captures.Standings = img
		return nil
	})
	_ = g.Wait()

	doc, pages, err := export.BuildDocument(captures)
	if err != nil {
		return nil, err
	}
	if pages == 0 {
		return nil, ErrExportEmpty
	}

	fileName := fmt.Sprintf("%s_%s.pdf", sanitizeFileName(snapshot.Name), time.Now().Format("2006-01-02"))

	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	localPath := filepath.Join(s.exportDir, fileName)
	if err := os.WriteFile(localPath, doc, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write export document: %w", err)
	}

	result := &ExportResult{
		ID:       uuid.NewString(),
		FileName: fileName,
		Pages:    pages,
	}

	if s.uploader != nil {
		uploaded, err := s.uploader.Upload(ctx, "exports/"+fileName, "application/pdf", bytes.NewReader(doc))
		if err != nil {
			// Загрузка в объектное хранилище не критична: локальный
			// файл уже записан.
			s.logger.Error("failed to upload export document", slog.Any("error", err))
		} else {
			result.Location = uploaded.Location
			// В хранилище держим только актуальный документ: ключ
			// предыдущего экспорта вычищается после успешной загрузки.
			if s.lastUploadedKey != "" && s.lastUploadedKey != uploaded.Key {
				if err := s.uploader.Delete(ctx, s.lastUploadedKey); err != nil {
					s.logger.Warn("failed to delete superseded export document",
						slog.String("key", s.lastUploadedKey), slog.Any("error", err))
				}
			}
			s.lastUploadedKey = uploaded.Key
		}
	}

	s.logger.Info("export finished",
		slog.String("file", fileName),
		slog.Int("pages", pages))
	s.hub.BroadcastToRoom(state.SelectedID, live.Message{
		Type:    live.MessageExportFinished,
		Payload: result,
	})

	return result, nil
}

// sanitizeFileName keeps the tournament name readable while staying safe
// as a file name.
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "tournament"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "tournament"
	}
	return b.String()
}
