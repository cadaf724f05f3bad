package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Captures are the rasterized views going into the document. A nil slice
// means the capture failed or the view is not available; its page is
// skipped instead of aborting the whole export.
type Captures struct {
	Results   []byte // страница 1, портрет
	Bracket   []byte // страница 2, альбом
	Standings []byte // страница 3, портрет
}

const pageMarginMM = 10.0

// A4 в миллиметрах
const (
	a4WidthMM  = 210.0
	a4HeightMM = 297.0
)

// BuildDocument assembles the captures into a 3-page PDF. Each image is
// scaled to the page width minus a fixed margin and clipped to the page
// height if its aspect ratio would overflow. Returns the document bytes
// and the number of pages actually produced.
func BuildDocument(captures Captures) ([]byte, int, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	pages := []struct {
		name      string
		image     []byte
		landscape bool
	}{
		{"results", captures.Results, false},
		{"bracket", captures.Bracket, true},
		{"standings", captures.Standings, false},
	}

	count := 0
	for _, p := range pages {
		if len(p.image) == 0 {
			continue
		}
		addImagePage(pdf, p.name, p.image, p.landscape)
		count++
	}

	if err := pdf.Error(); err != nil {
		return nil, 0, fmt.Errorf("failed to assemble document: %w", err)
	}
	if count == 0 {
		return nil, 0, nil
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("failed to write document: %w", err)
	}
	return buf.Bytes(), count, nil
}

func addImagePage(pdf *fpdf.Fpdf, name string, image []byte, landscape bool) {
	pageW, pageH := a4WidthMM, a4HeightMM
	orientation := "P"
	if landscape {
		pageW, pageH = a4HeightMM, a4WidthMM
		orientation = "L"
	}
	pdf.AddPageFormat(orientation, fpdf.SizeType{Wd: pageW, Ht: pageH})

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(image))
	if info == nil {
		return
	}

	// Масштабируем по ширине страницы; высоту отдаём на откуп клипу.
	drawW := pageW - 2*pageMarginMM
	maxH := pageH - 2*pageMarginMM
	drawH := drawW * info.Height() / info.Width()

	if drawH > maxH {
		pdf.ClipRect(pageMarginMM, pageMarginMM, drawW, maxH, false)
		pdf.ImageOptions(name, pageMarginMM, pageMarginMM, drawW, 0, false, opts, 0, "")
		pdf.ClipEnd()
		return
	}
	pdf.ImageOptions(name, pageMarginMM, pageMarginMM, drawW, 0, false, opts, 0, "")
}
