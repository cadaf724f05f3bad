// Package export turns the current display views into raster captures
// and assembles them into a fixed-layout 3-page PDF document.
package export

import (
	"bytes"
	"fmt"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Dosada05/tournament-display/models"
	"github.com/Dosada05/tournament-display/views"
)

// Коэффициенты растеризации: портретные страницы снимаются в 2x, более
// широкая сетка в 1.5x. Фон всегда принудительно белый.
const (
	portraitScale = 2.0
	bracketScale  = 1.5
)

var (
	colorText  = drawing.Color{R: 32, G: 32, B: 32, A: 255}
	colorMuted = drawing.Color{R: 120, G: 120, B: 120, A: 255}
	colorLine  = drawing.Color{R: 200, G: 200, B: 200, A: 255}
)

// Renderer rasterizes the three presentation views to PNG using the
// go-chart raster backend.
type Renderer struct {
	font *truetype.Font
}

func NewRenderer() (*Renderer, error) {
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load default font: %w", err)
	}
	return &Renderer{font: font}, nil
}

// canvas wraps a go-chart renderer with a uniform scale factor so the
// layout below can work in logical pixels.
type canvas struct {
	r     chart.Renderer
	scale float64
}

func (r *Renderer) newCanvas(width, height int, scale float64) (*canvas, error) {
	raster, err := chart.PNG(int(float64(width)*scale), int(float64(height)*scale))
	if err != nil {
		return nil, err
	}
	raster.SetFont(r.font)

	c := &canvas{r: raster, scale: scale}
	c.fillRect(0, 0, width, height, drawing.ColorWhite)
	return c, nil
}

func (c *canvas) px(v int) int { return int(float64(v) * c.scale) }

func (c *canvas) fillRect(x, y, w, h int, color drawing.Color) {
	c.r.SetFillColor(color)
	c.r.MoveTo(c.px(x), c.px(y))
	c.r.LineTo(c.px(x+w), c.px(y))
	c.r.LineTo(c.px(x+w), c.px(y+h))
	c.r.LineTo(c.px(x), c.px(y+h))
	c.r.Close()
	c.r.Fill()
}

func (c *canvas) line(x1, y1, x2, y2 int, color drawing.Color) {
	c.r.SetStrokeColor(color)
	c.r.SetStrokeWidth(c.scale)
	c.r.MoveTo(c.px(x1), c.px(y1))
	c.r.LineTo(c.px(x2), c.px(y2))
	c.r.Stroke()
}

func (c *canvas) text(body string, x, y int, size float64, color drawing.Color) {
	c.r.SetFontSize(size * c.scale)
	c.r.SetFontColor(color)
	c.r.Text(body, c.px(x), c.px(y))
}

func (c *canvas) save() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.r.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const (
	pageMarginX = 40
	titleY      = 48
	rowHeight   = 30
	headerGap   = 84
)

// RenderStandings draws the group standings table.
func (r *Renderer) RenderStandings(title string, standings []models.Standing) ([]byte, error) {
	width := 820
	height := headerGap + rowHeight*(len(standings)+1) + pageMarginX
	c, err := r.newCanvas(width, height, portraitScale)
	if err != nil {
		return nil, err
	}

	c.text(title, pageMarginX, titleY, 20, colorText)

	// Шапка таблицы
	y := headerGap
	cols := []struct {
		label string
		x     int
	}{
		{"#", pageMarginX},
		{"Team", pageMarginX + 40},
		{"Sp.", 440},
		{"S", 500},
		{"U", 545},
		{"N", 590},
		{"Tore", 635},
		{"Diff.", 705},
		{"Pkt.", 765},
	}
	for _, col := range cols {
		c.text(col.label, col.x, y, 12, colorMuted)
	}
	c.line(pageMarginX, y+8, width-pageMarginX, y+8, colorLine)

	for i, st := range standings {
		y += rowHeight
		c.text(fmt.Sprintf("%d.", i+1), pageMarginX, y, 13, colorText)
		c.text(st.Name, pageMarginX+40, y, 13, colorText)
		c.text(fmt.Sprintf("%d", st.Played), 440, y, 13, colorText)
		c.text(fmt.Sprintf("%d", st.Wins), 500, y, 13, colorText)
		c.text(fmt.Sprintf("%d", st.Draws), 545, y, 13, colorText)
		c.text(fmt.Sprintf("%d", st.Losses), 590, y, 13, colorText)
		c.text(fmt.Sprintf("%d:%d", st.Goals, st.GoalsIn), 635, y, 13, colorText)
		c.text(fmt.Sprintf("%+d", st.GoalDiff), 705, y, 13, colorText)
		c.text(fmt.Sprintf("%d", st.Points), 765, y, 13, colorText)
	}

	return c.save()
}

var medalLabels = map[models.Medal]string{
	models.MedalGold:   "Gold",
	models.MedalSilver: "Silber",
	models.MedalBronze: "Bronze",
	models.MedalFourth: "4. Platz",
}

// RenderResults draws the podium/results list including the non-KO
// overflow teams.
func (r *Renderer) RenderResults(title string, rows []models.ResultRow) ([]byte, error) {
	width := 820
	height := headerGap + rowHeight*len(rows) + pageMarginX
	c, err := r.newCanvas(width, height, portraitScale)
	if err != nil {
		return nil, err
	}

	c.text(title, pageMarginX, titleY, 20, colorText)

	y := headerGap
	for _, row := range rows {
		c.text(fmt.Sprintf("%d.", row.Place), pageMarginX, y, 14, colorText)
		c.text(row.Name, pageMarginX+50, y, 14, colorText)
		if label, ok := medalLabels[row.Medal]; ok {
			c.text(label, 640, y, 13, colorMuted)
		}
		y += rowHeight
	}

	return c.save()
}

const (
	bracketColWidth   = 250
	bracketMatchH     = 58
	bracketTeamOffset = 18
)

// RenderBracket draws winner- and loser-side columns side by side, the
// loser side below the winner side when both are present.
func (r *Renderer) RenderBracket(title string, b *models.EliminationBracket) ([]byte, error) {
	winner := views.WinnerColumns(b)
	loser := views.LoserColumns(b)

	numCols := len(winner)
	if len(loser) > numCols {
		numCols = len(loser)
	}
	if numCols == 0 {
		return nil, fmt.Errorf("bracket has no rounds")
	}

	maxMatches := 0
	for _, col := range winner {
		if len(col.Matches) > maxMatches {
			maxMatches = len(col.Matches)
		}
	}

	width := pageMarginX*2 + bracketColWidth*numCols
	height := headerGap + (maxMatches+1)*bracketMatchH + pageMarginX
	if len(loser) > 0 {
		height += 60 + 3*bracketMatchH
	}

	c, err := r.newCanvas(width, height, bracketScale)
	if err != nil {
		return nil, err
	}

	c.text(title, pageMarginX, titleY, 20, colorText)

	y := headerGap
	r.drawColumns(c, winner, b.Standings, y)

	if len(loser) > 0 {
		y += (maxMatches+1)*bracketMatchH + 40
		c.text("Verliererrunde", pageMarginX, y-12, 14, colorMuted)
		r.drawColumns(c, loser, b.Standings, y)
	}

	return c.save()
}

func (r *Renderer) drawColumns(c *canvas, cols []models.BracketColumn, standings []models.Standing, top int) {
	for i, col := range cols {
		x := pageMarginX + i*bracketColWidth
		c.text(col.Name, x, top, 13, colorMuted)
		c.line(x, top+8, x+bracketColWidth-30, top+8, colorLine)

		y := top + 30
		for _, m := range cols[i].Matches {
			m1, m2 := views.MatchMedals(col, m, standings)
			c.text(teamLine(m.Team1, m.Score1, m1), x, y, 12, colorText)
			c.text(teamLine(m.Team2, m.Score2, m2), x, y+bracketTeamOffset, 12, colorText)
			y += bracketMatchH
		}
	}
}

func teamLine(team *models.TeamRef, score int, medal models.Medal) string {
	name := "—"
	if team != nil {
		name = team.Name
	}
	line := fmt.Sprintf("%s  %d", name, score)
	if label, ok := medalLabels[medal]; ok {
		line += "  (" + label + ")"
	}
	return line
}
