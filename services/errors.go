package services

import "errors"

// Общие ошибки сервисного слоя; их маппинг в HTTP-статусы живёт в handlers.
var (
	// Выбор турнира
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrNoTournamentSelected = errors.New("no tournament selected")

	// Опрос вышестоящего API. Не фатально: предыдущий снапшот остаётся
	// на экране, индикатор ошибки снимается при следующем успехе.
	ErrFetchFailed = errors.New("failed to fetch tournament data")

	// Экспорт
	ErrExportInFlight = errors.New("an export is already in progress")
	ErrNoSnapshot     = errors.New("no snapshot available to export")
	ErrExportEmpty    = errors.New("export produced no pages")
)
