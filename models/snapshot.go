package models

import "time"

// TournamentSnapshot это полное состояние турнира, как его отдаёт внешний
// API. Снапшот неизменяем после получения и целиком заменяется при
// каждом опросе; производные представления только читают его.
type TournamentSnapshot struct {
	Name       string               `json:"name"`
	KO         []EliminationBracket `json:"ko"`
	Qualifying []QualifyingGroup    `json:"qualifying"`
}

// QualifyingGroup: квалификационная группа. Standings уже отсортированы
// вышестоящей системой (index 0 = первое место), мы их не пересортировываем.
type QualifyingGroup struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Standings []Standing `json:"standings"`
	Rounds    []Round    `json:"rounds,omitempty"`
}

// Standing is one ranked team inside a group or a bracket's final table.
type Standing struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	TeamStats
}

type TeamStats struct {
	Played   int `json:"played"`
	Wins     int `json:"wins"`
	Losses   int `json:"losses"`
	Draws    int `json:"draws"`
	Goals    int `json:"goals"`
	GoalsIn  int `json:"goals_in"`
	GoalDiff int `json:"goal_diff"`
	Points   int `json:"points"`
	Place    int `json:"place"`
}

// TeamRef identifies one side of a match. Nil in the Match means the slot
// is still TBD (waiting for an earlier match to finish).
type TeamRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TableRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Match struct {
	ID         string     `json:"id"`
	Team1      *TeamRef   `json:"team1,omitempty"`
	Team2      *TeamRef   `json:"team2,omitempty"`
	Score1     int        `json:"score1"`
	Score2     int        `json:"score2"`
	Finished   bool       `json:"finished"`
	Table      *TableRef  `json:"table,omitempty"`
	FinishedAt *time.Time `json:"time_end,omitempty"`
}

// IsCurrent: матч идёт прямо сейчас, то есть не завершён, назначен стол и обе
// команды известны.
func (m *Match) IsCurrent() bool {
	return !m.Finished && m.Table != nil && m.Team1 != nil && m.Team2 != nil
}

// IsUpcoming: матч ещё не начался, но обе команды уже определены.
// Назначен стол или нет, не важно; фильтрация против текущих матчей
// происходит на уровне представления.
func (m *Match) IsUpcoming() bool {
	return !m.Finished && m.Team1 != nil && m.Team2 != nil
}

// Round (уровень) сетки или группы. Name используется для классификации
// раунда ("final", "platz 3", ...) подстрочным сравнением.
type Round struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Matches []Match `json:"matches"`
}

// EliminationBracket: сетка плей-офф. Left содержит раунды верхней
// (winner) сетки от раннего к финалу, Right содержит раунды нижней (loser)
// сетки, присутствует только при double elimination.
type EliminationBracket struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Size              int        `json:"size"`
	ThirdPlace        bool       `json:"third_place"`
	DoubleElimination bool       `json:"double_elimination"`
	Finished          bool       `json:"finished"`
	Standings         []Standing `json:"standings,omitempty"`
	Left              []Round    `json:"left"`
	Right             []Round    `json:"right,omitempty"`
	ThirdPlaceRound   *Round     `json:"third,omitempty"`
}

// TournamentSummary: элемент списка доступных турниров.
type TournamentSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Date            string `json:"date"`
	NumParticipants int    `json:"num_participants"`
}

// PageInfo: заголовок страницы дисплея и список турниров.
type PageInfo struct {
	Name        string              `json:"name"`
	Tournaments []TournamentSummary `json:"tournaments"`
}
