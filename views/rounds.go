package views

import "strings"

// Локализованные названия раундов. Вышестоящая система именует раунды по
// соглашению "finals-1-N" либо свободным текстом; сопоставление идёт по
// подстрокам без учёта регистра, от самого специфичного шаблона к самому
// общему ("finals-1-16" обязан проверяться раньше "finals-1-1").
var roundNames = []struct {
	patterns []string
	label    string
}{
	{[]string{"finals-1-16"}, "Sechzehntelfinale"},
	{[]string{"finals-1-8", "achtelfinale"}, "Achtelfinale"},
	{[]string{"finals-1-4", "viertelfinale", "quarter"}, "Viertelfinale"},
	{[]string{"finals-1-2", "halbfinale", "semi"}, "Halbfinale"},
	{[]string{"platz 3", "third", "bronze"}, "Spiel um Platz 3"},
	{[]string{"finals-1-1", "finale", "final"}, "Finale"},
}

// RoundDisplayName maps an upstream round name to its display label.
// Total function: unmatched names pass through unchanged.
func RoundDisplayName(raw string) string {
	lower := strings.ToLower(raw)
	for _, rn := range roundNames {
		for _, p := range rn.patterns {
			if strings.Contains(lower, p) {
				return rn.label
			}
		}
	}
	return raw
}

func isFinalRound(raw string) bool {
	return RoundDisplayName(raw) == "Finale"
}

func isThirdPlaceRound(raw string) bool {
	return RoundDisplayName(raw) == "Spiel um Platz 3"
}

// isPlacementRound отмечает раунд нижней сетки, продвижение в котором
// означает вылет на 3-е место (бронза достаётся проигравшему).
func isPlacementRound(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.Contains(lower, "platz") || strings.Contains(lower, "third")
}
