package textextract

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/ai/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVision struct {
	text   string
	images int
}

func (f *fakeVision) CompleteWithImages(_ context.Context, _ llm.Request, images [][]byte) (string, error) {
	f.images = len(images)
	return f.text, nil
}

func TestExtractPlainText(t *testing.T) {
	e := NewExtractor(nil)
	res, err := e.Extract(context.Background(), "cv.TXT", []byte("  Jane Doe\nGo developer \xff "))
	require.NoError(t, err)
	assert.Equal(t, MethodPlain, res.Method)
	assert.Equal(t, "Jane Doe\nGo developer", res.Text)
}

func TestExtractUnsupported(t *testing.T) {
	e := NewExtractor(nil)
	for _, name := range []string{"cv.rtf", "cv", "photo.png"} {
		t.Run(name, func(t *testing.T) {
			_, err := e.Extract(context.Background(), name, []byte("data"))
			assert.ErrorIs(t, err, ErrUnsupportedFormat)
		})
	}
}

func TestExtractImageUsesVision(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	vision := &fakeVision{text: " Jane Doe \n Engineer "}
	e := NewExtractor(vision)

	res, err := e.Extract(context.Background(), "scan.png", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, MethodImage, res.Method)
	assert.Equal(t, "Jane Doe \n Engineer", res.Text)
	assert.Equal(t, 1, vision.images)
}

func TestSupportedExtensions(t *testing.T) {
	assert.NotContains(t, NewExtractor(nil).SupportedExtensions(), ".png")
	assert.Contains(t, NewExtractor(&fakeVision{}).SupportedExtensions(), ".png")
}

func TestDocxXMLToText(t *testing.T) {
	xml := `<w:document><w:body>` +
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Go &amp; SQL</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Line</w:t><w:br/><w:t>Break</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	assert.Equal(t, "Jane Doe\nSkills:\tGo & SQL\nLine\nBreak", docxXMLToText(xml))
}

func TestImageHelpers(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	format, err := DetectImageFormat(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	jpg, err := ConvertImageToJPEG(buf.Bytes())
	require.NoError(t, err)
	format, err = DetectImageFormat(jpg)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestExtractTextRejectsShortOutput(t *testing.T) {
	e := NewExtractor(nil)
	_, err := e.ExtractText(context.Background(), "cv.txt", []byte("  hi  "))
	assert.ErrorIs(t, err, ErrNoText)

	text, err := e.ExtractText(context.Background(), "cv.txt", []byte("Jane Doe, Go developer"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe, Go developer", text)
}
