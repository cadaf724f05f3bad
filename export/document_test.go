package export

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestBuildDocumentThreePages(t *testing.T) {
	captures := Captures{
		Results:   testImage(t, 100, 140),
		Bracket:   testImage(t, 280, 100),
		Standings: testImage(t, 100, 140),
	}

	doc, pages, err := BuildDocument(captures)
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestBuildDocumentSkipsMissingCaptures(t *testing.T) {
	captures := Captures{Standings: testImage(t, 100, 140)}

	doc, pages, err := BuildDocument(captures)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
	assert.NotEmpty(t, doc)
}

func TestBuildDocumentEmpty(t *testing.T) {
	doc, pages, err := BuildDocument(Captures{})
	require.NoError(t, err)
	assert.Zero(t, pages)
	assert.Nil(t, doc)
}

func TestBuildDocumentClipsOverflowingImage(t *testing.T) {
	// Очень высокий снимок: по ширине страницы его высота превысила бы
	// страницу, документ всё равно собирается в одну страницу.
	captures := Captures{Standings: testImage(t, 100, 4000)}

	doc, pages, err := BuildDocument(captures)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
	assert.NotEmpty(t, doc)
}
