// Package textextract turns uploaded resume files into plain text.
package textextract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/ai/llm"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/logx"
	"github.com/nguyenthenguyen/docx"
)

// MinTextLength is the shortest extraction treated as a readable resume
const MinTextLength = 10

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoText            = errors.New("no readable text")
)

// Method records how the text was obtained
type Method string

const (
	MethodPDFText   Method = "pdf_text"
	MethodPDFVision Method = "pdf_vision"
	MethodDocx      Method = "docx"
	MethodPlain     Method = "txt"
	MethodImage     Method = "image_vision"
)

type Result struct {
	Text   string
	Method Method
}

const transcribePrompt = `Transcribe all text visible in these resume pages exactly as written.
Keep the reading order, one line per visual line. Return only the transcribed text.`

// Extractor picks an extraction strategy by file extension. A nil vision
// completer disables OCR of scanned PDFs and images.
type Extractor struct {
	vision llm.VisionCompleter
}

func NewExtractor(vision llm.VisionCompleter) *Extractor {
	return &Extractor{vision: vision}
}

// SupportedExtensions lists the accepted upload extensions
func (e *Extractor) SupportedExtensions() []string {
	exts := []string{".pdf", ".docx", ".doc", ".txt"}
	if e.vision != nil {
		exts = append(exts, ".jpg", ".jpeg", ".png")
	}
	return exts
}

func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".pdf":
		return e.extractPDF(ctx, data)
	case ".docx", ".doc":
		text, err := ExtractDocx(data)
		if err != nil {
			return nil, err
		}
		return &Result{Text: text, Method: MethodDocx}, nil
	case ".txt":
		return &Result{Text: strings.TrimSpace(strings.ToValidUTF8(string(data), "")), Method: MethodPlain}, nil
	case ".jpg", ".jpeg", ".png":
		if e.vision == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
		}
		return e.extractImage(ctx, data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

// ExtractText is Extract without the method, rejecting near-empty output
func (e *Extractor) ExtractText(ctx context.Context, filename string, data []byte) (string, error) {
	res, err := e.Extract(ctx, filename, data)
	if err != nil {
		return "", err
	}
	if len(res.Text) < MinTextLength {
		return "", ErrNoText
	}
	return res.Text, nil
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte) (*Result, error) {
	text, err := ExtractPDFText(data)
	if err != nil {
		return nil, err
	}
	if len(text) >= MinTextLength || e.vision == nil {
		return &Result{Text: text, Method: MethodPDFText}, nil
	}

	logx.Infof("PDF has no text layer, transcribing %d page(s) with vision", maxRenderedPages)
	images, err := ConvertPDFToImages(data, maxRenderedPages)
	if err != nil {
		return nil, err
	}
	text, err = e.vision.CompleteWithImages(ctx, llm.Request{User: transcribePrompt, Temperature: 0}, images)
	if err != nil {
		return nil, fmt.Errorf("vision transcription failed: %w", err)
	}
	return &Result{Text: strings.TrimSpace(text), Method: MethodPDFVision}, nil
}

func (e *Extractor) extractImage(ctx context.Context, data []byte) (*Result, error) {
	format, err := DetectImageFormat(data)
	if err != nil {
		return nil, fmt.Errorf("unreadable image: %w", err)
	}
	if format != "jpeg" {
		if data, err = ConvertImageToJPEG(data); err != nil {
			return nil, err
		}
	}
	text, err := e.vision.CompleteWithImages(ctx, llm.Request{User: transcribePrompt, Temperature: 0}, [][]byte{data})
	if err != nil {
		return nil, fmt.Errorf("vision transcription failed: %w", err)
	}
	return &Result{Text: strings.TrimSpace(text), Method: MethodImage}, nil
}

// ExtractPDFText concatenates the text layer of every page
func ExtractPDFText(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		page, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		b.WriteString(page)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>`)
	tabTag       = regexp.MustCompile(`<w:tab/>`)
	breakTag     = regexp.MustCompile(`<w:br[^>]*/>`)
	anyTag       = regexp.MustCompile(`<[^>]+>`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
)

// ExtractDocx returns the paragraph text of a .docx document
func ExtractDocx(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}
	defer r.Close()

	return docxXMLToText(r.Editable().GetContent()), nil
}

// docxXMLToText flattens WordprocessingML into one line per paragraph
func docxXMLToText(content string) string {
	content = paragraphEnd.ReplaceAllString(content, "\n")
	content = breakTag.ReplaceAllString(content, "\n")
	content = tabTag.ReplaceAllString(content, "\t")
	content = anyTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = blankLines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
