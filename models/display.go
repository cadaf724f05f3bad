package models

import "time"

// PositionChange classifies a team's movement between two consecutive
// standings snapshots. The empty value means "no animation".
type PositionChange string

const (
	PositionUp   PositionChange = "up"
	PositionDown PositionChange = "down"
	PositionNone PositionChange = ""
)

// Medal is the podium tier of a team in the results view.
type Medal string

const (
	MedalGold   Medal = "gold"
	MedalSilver Medal = "silver"
	MedalBronze Medal = "bronze"
	MedalFourth Medal = "fourth"
	MedalNone   Medal = ""
)

// DisplayState: неизменяемая запись текущего состояния дисплея.
// Каждое обновление создаёт новую запись целиком; обработчики HTTP и
// экспорт работают с копией и никогда не мутируют снапшот.
type DisplayState struct {
	SelectedID  string                    `json:"selected_id"`
	Snapshot    *TournamentSnapshot       `json:"snapshot,omitempty"`
	FetchedAt   time.Time                 `json:"fetched_at"`
	FetchFailed bool                      `json:"fetch_failed"`
	Changes     map[string]PositionChange `json:"changes,omitempty"`
}

// BracketColumn is one rendered column of the elimination bracket view.
type BracketColumn struct {
	RawName string  `json:"raw_name"`
	Name    string  `json:"name"` // localized via views.RoundDisplayName
	Matches []Match `json:"matches"`
	// BronzeForLoser marks the loser-bracket placement round: advancing
	// there means elimination into 3rd place, so the medal goes to the
	// loser of each match, not the winner.
	BronzeForLoser bool `json:"bronze_for_loser"`
}

// ResultRow is one line of the подиум/results view: bracket placements
// first, then qualifying teams that never reached the KO stage.
type ResultRow struct {
	Place int    `json:"place"`
	Name  string `json:"name"`
	Medal Medal  `json:"medal,omitempty"`
}
