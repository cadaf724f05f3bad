// Package views derives the three presentation views (group standings,
// current/upcoming matches, elimination bracket with podium) from a
// tournament snapshot. All functions are pure: they only read the
// snapshot and never mutate it.
package views

import (
	"sort"

	"github.com/Dosada05/tournament-display/models"
)

const upcomingLimit = 8

// GroupStandings returns the first qualifying group's standings exactly
// as reported upstream, or nil if the snapshot has no qualifying групп.
// Порядок не пересчитывается: place уже согласован с сортировкой по
// (points, goal_diff, goals) на стороне вышестоящей системы.
func GroupStandings(s *models.TournamentSnapshot) []models.Standing {
	if s == nil || len(s.Qualifying) == 0 {
		return nil
	}
	return s.Qualifying[0].Standings
}

// CurrentMatches returns all matches that are being played right now,
// in encounter order across qualifying groups and brackets.
func CurrentMatches(s *models.TournamentSnapshot) []models.Match {
	var out []models.Match
	forEachMatch(s, func(m models.Match) bool {
		if m.IsCurrent() {
			out = append(out, m)
		}
		return true
	})
	return out
}

// UpcomingMatches returns the first matches with both teams resolved and
// no result yet, capped at 8 in encounter order. Matches already running
// are still included here; NextMatches filters them out for display.
func UpcomingMatches(s *models.TournamentSnapshot) []models.Match {
	var out []models.Match
	forEachMatch(s, func(m models.Match) bool {
		if m.IsUpcoming() {
			out = append(out, m)
		}
		return len(out) < upcomingLimit
	})
	return out
}

// NextMatches возвращает список "далее играют": предстоящие матчи без тех, что
// уже идут. Текущие матчи имеют приоритет на экране.
func NextMatches(s *models.TournamentSnapshot) []models.Match {
	var out []models.Match
	for _, m := range UpcomingMatches(s) {
		if !m.IsCurrent() {
			out = append(out, m)
		}
	}
	return out
}

// forEachMatch flattens all rounds in a fixed order: qualifying groups
// first, then per bracket the winner side, loser side and third-place
// round. Visit returns false to stop early.
func forEachMatch(s *models.TournamentSnapshot, visit func(models.Match) bool) {
	if s == nil {
		return
	}
	visitRounds := func(rounds []models.Round) bool {
		for _, r := range rounds {
			for _, m := range r.Matches {
				if !visit(m) {
					return false
				}
			}
		}
		return true
	}
	for _, g := range s.Qualifying {
		if !visitRounds(g.Rounds) {
			return
		}
	}
	for _, b := range s.KO {
		if !visitRounds(b.Left) {
			return
		}
		if !visitRounds(b.Right) {
			return
		}
		if b.ThirdPlaceRound != nil {
			if !visitRounds([]models.Round{*b.ThirdPlaceRound}) {
				return
			}
		}
	}
}

// MedalClass returns the podium tier of a team, but only inside a round
// that decides the podium (the final or the third-place match). In every
// other round the answer is always MedalNone, even for teams currently
// occupying a top-4 place.
func MedalClass(teamName string, standings []models.Standing, roundName string) models.Medal {
	if !isFinalRound(roundName) && !isThirdPlaceRound(roundName) {
		return models.MedalNone
	}
	for i, st := range standings {
		if st.Name != teamName {
			continue
		}
		switch i {
		case 0:
			return models.MedalGold
		case 1:
			return models.MedalSilver
		case 2:
			return models.MedalBronze
		case 3:
			return models.MedalFourth
		}
		break
	}
	return models.MedalNone
}

// MatchMedals returns the medal tags for both sides of a match inside a
// bracket column. In a placement column the medal is inverted: the loser
// is the one eliminated into 3rd place, the winner keeps playing.
func MatchMedals(col models.BracketColumn, m models.Match, finalStandings []models.Standing) (models.Medal, models.Medal) {
	if col.BronzeForLoser {
		if !m.Finished || m.Team1 == nil || m.Team2 == nil || m.Score1 == m.Score2 {
			return models.MedalNone, models.MedalNone
		}
		if m.Score1 > m.Score2 {
			return models.MedalNone, models.MedalBronze
		}
		return models.MedalBronze, models.MedalNone
	}
	var m1, m2 models.Medal
	if m.Team1 != nil {
		m1 = MedalClass(m.Team1.Name, finalStandings, col.RawName)
	}
	if m.Team2 != nil {
		m2 = MedalClass(m.Team2.Name, finalStandings, col.RawName)
	}
	return m1, m2
}

// WinnerColumns returns the winner-side rounds of a bracket as render
// columns, earliest round first (left to right).
func WinnerColumns(b *models.EliminationBracket) []models.BracketColumn {
	if b == nil {
		return nil
	}
	cols := make([]models.BracketColumn, 0, len(b.Left))
	for _, r := range b.Left {
		cols = append(cols, column(r))
	}
	return cols
}

// LoserColumns returns the loser-side rounds in reverse order (final
// loser round first), with the third-place round prepended leftmost when
// present. Для single elimination остаётся только колонка за 3-е место.
func LoserColumns(b *models.EliminationBracket) []models.BracketColumn {
	if b == nil {
		return nil
	}
	var cols []models.BracketColumn
	if b.ThirdPlaceRound != nil {
		cols = append(cols, column(*b.ThirdPlaceRound))
	}
	for i := len(b.Right) - 1; i >= 0; i-- {
		cols = append(cols, column(b.Right[i]))
	}
	return cols
}

func column(r models.Round) models.BracketColumn {
	return models.BracketColumn{
		RawName:        r.Name,
		Name:           RoundDisplayName(r.Name),
		Matches:        r.Matches,
		BronzeForLoser: isPlacementRound(r.Name),
	}
}

// наивысший ранг для команд без места в квалификации: сортируются в конец
const missingPlaceRank = 999

// ResultRows builds the results/podium view: the bracket's final
// standings first (place 1..Size with medals), then qualifying teams
// that never made the KO stage, renumbered continuously from Size+1 and
// ordered by their qualifying place.
func ResultRows(b *models.EliminationBracket, qualifying []models.Standing) []models.ResultRow {
	if b == nil {
		return nil
	}

	rows := make([]models.ResultRow, 0, len(b.Standings))
	inBracket := make(map[string]bool, len(b.Standings))
	for i, st := range b.Standings {
		inBracket[standingKey(st)] = true
		medal := models.MedalNone
		switch i {
		case 0:
			medal = models.MedalGold
		case 1:
			medal = models.MedalSilver
		case 2:
			medal = models.MedalBronze
		case 3:
			medal = models.MedalFourth
		}
		rows = append(rows, models.ResultRow{Place: i + 1, Name: st.Name, Medal: medal})
	}

	var overflow []models.Standing
	for _, st := range qualifying {
		if !inBracket[standingKey(st)] {
			overflow = append(overflow, st)
		}
	}
	sort.SliceStable(overflow, func(i, j int) bool {
		return overflowRank(overflow[i]) < overflowRank(overflow[j])
	})

	// Нумерация продолжается от размера сетки, а не от "сырых" мест в
	// квалификации: места 9 и 11 при сетке на 8 становятся 9 и 10.
	for i, st := range overflow {
		rows = append(rows, models.ResultRow{Place: b.Size + 1 + i, Name: st.Name})
	}
	return rows
}

func overflowRank(st models.Standing) int {
	if st.Place <= 0 {
		return missingPlaceRank
	}
	return st.Place
}

func standingKey(st models.Standing) string {
	if st.ID != "" {
		return st.ID
	}
	return st.Name
}
