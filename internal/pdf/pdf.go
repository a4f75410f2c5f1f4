// Package pdf validates uploaded PDFs and extracts their text.
//
// Extraction is pure Go (github.com/ledongthuc/pdf), so the API binary and the
// CLI need no cgo toolchain.
package pdf

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrNotPDF means the data does not start with the %PDF- magic bytes.
	ErrNotPDF = errors.New("not a PDF file")
	// ErrOpen means the parser could not read the document structure.
	ErrOpen = errors.New("PDF 파일을 읽을 수 없습니다")
	// ErrNoPages means the document parsed but has no pages.
	ErrNoPages = errors.New("PDF has no pages")
	// ErrNoText means the document contains no extractable text, typically a scanned image.
	ErrNoText = errors.New("텍스트를 추출할 수 없습니다. 이미지 기반 PDF일 수 있습니다")
)

// Metadata holds the document information dictionary.
type Metadata struct {
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Creator  string `json:"creator,omitempty"`
	Producer string `json:"producer,omitempty"`
}

// Result is the text of a document plus basic counts.
type Result struct {
	Text           string
	Pages          []string
	PageCount      int
	WordCount      int
	CharacterCount int
	Metadata       Metadata
}

// Extract reads every page in order. Text items within a row are joined with
// spaces, rows are joined with single spaces and pages with newlines.
func Extract(data []byte) (res *Result, err error) {
	if !hasMagic(data) {
		return nil, ErrNotPDF
	}

	// the parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("%w: %v", ErrOpen, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}

	n := reader.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrOpen, i, err)
		}
		items := make([]string, 0, len(rows))
		for _, row := range rows {
			if s := joinRow(row.Content); s != "" {
				items = append(items, s)
			}
		}
		pages = append(pages, strings.Join(items, " "))
	}

	res, err = FromPages(pages)
	if err != nil {
		return nil, err
	}
	res.Metadata = readMetadata(reader)
	return res, nil
}

// wordGap is the horizontal gap, as a fraction of the font size, above which
// two glyphs belong to separate text items.
const wordGap = 0.15

// joinRow rebuilds the text items of a row from its glyphs. The parser emits
// one Text per glyph, so a space is inserted wherever the pen jumps forward
// by more than wordGap or moves backwards.
func joinRow(glyphs []pdf.Text) string {
	var sb strings.Builder
	for i, t := range glyphs {
		if i > 0 && !strings.HasSuffix(sb.String(), " ") && !strings.HasPrefix(t.S, " ") {
			prev := glyphs[i-1]
			gap := t.X - (prev.X + prev.W)
			if gap > wordGap*t.FontSize || t.X < prev.X {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(t.S)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// ExtractFile is Extract for a file on disk.
func ExtractFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Extract(data)
}

// FromPages assembles per-page text into a Result. A document whose text is
// blank after trimming yields ErrNoText no matter how many pages it has.
func FromPages(pages []string) (*Result, error) {
	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}
	return &Result{
		Text:           text,
		Pages:          pages,
		PageCount:      len(pages),
		WordCount:      len(strings.Fields(text)),
		CharacterCount: utf8.RuneCountInString(text),
	}, nil
}

// Validate checks the magic bytes and that the document opens with at least one page.
func Validate(data []byte) (err error) {
	if !hasMagic(data) {
		return ErrNotPDF
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrOpen, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOpen, err)
	}
	if reader.NumPage() == 0 {
		return ErrNoPages
	}
	return nil
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hasMagic(data []byte) bool {
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

func readMetadata(r *pdf.Reader) Metadata {
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return Metadata{}
	}
	return Metadata{
		Title:    info.Key("Title").Text(),
		Author:   info.Key("Author").Text(),
		Subject:  info.Key("Subject").Text(),
		Creator:  info.Key("Creator").Text(),
		Producer: info.Key("Producer").Text(),
	}
}
