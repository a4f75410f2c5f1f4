package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"handoc/internal/model"
)

const (
	pdfContentType = "application/pdf"

	// DefaultMaxFileSize mirrors the server's default MAX_FILE_SIZE.
	DefaultMaxFileSize int64 = 10 * 1024 * 1024
)

// ProgressFunc receives upload progress in percent (0..100).
type ProgressFunc func(percent int)

// ContentType guesses the MIME type of name from its extension.
func ContentType(name string) string {
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if ct == "" {
		return "application/octet-stream"
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ct
	}
	return mediaType
}

// ValidateUpload applies the server's upload rules before any bytes are sent.
// An empty contentType is derived from the file name.
func ValidateUpload(name, contentType string, size, maxSize int64) error {
	if contentType == "" {
		contentType = ContentType(name)
	}
	if contentType != pdfContentType {
		return ErrInvalidFileType
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if size > maxSize {
		return fmt.Errorf("%w. 최대 %dMB까지 가능합니다.", ErrFileTooLarge, maxSize/(1024*1024))
	}
	return nil
}

// UploadFile validates and uploads a PDF from disk.
func (c *Client) UploadFile(ctx context.Context, path string, progress ProgressFunc) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapError(err, "UploadFile")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, wrapError(err, "UploadFile")
	}
	name := filepath.Base(path)
	if err := ValidateUpload(name, "", info.Size(), DefaultMaxFileSize); err != nil {
		return nil, err
	}
	return c.Upload(ctx, name, f, progress)
}

// Upload sends r as multipart field "file". progress, when set, is called as
// the request body is consumed.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader, progress ProgressFunc) (*UploadResult, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", ContentType(name))
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, wrapError(err, "Upload")
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, wrapError(fmt.Errorf("read file: %w", err), "Upload")
	}
	if err := w.Close(); err != nil {
		return nil, wrapError(err, "Upload")
	}

	total := int64(body.Len())
	var reader io.Reader = &body
	if progress != nil {
		reader = &progressReader{r: &body, total: total, fn: progress, last: -1}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/documents/upload", nil), reader)
	if err != nil {
		return nil, wrapError(err, "Upload")
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", w.FormDataContentType())

	var res UploadResult
	if err := c.do(req, &res); err != nil {
		return nil, wrapError(err, "Upload")
	}
	if progress != nil {
		progress(100)
	}
	return &res, nil
}

// progressReader reports the share of bytes read, once per percent step.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	last  int
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if pct != p.last {
			p.last = pct
			p.fn(pct)
		}
	}
	return n, err
}

func (o ListDocumentsOptions) values() url.Values {
	q := url.Values{}
	setInt(q, "page", o.Page)
	setInt(q, "limit", o.Limit)
	setString(q, "status", o.Status)
	setString(q, "language", o.Language)
	setString(q, "sort_by", o.SortBy)
	setString(q, "sort_order", o.SortOrder)
	return q
}

func setInt(q url.Values, key string, v int) {
	if v > 0 {
		q.Set(key, strconv.Itoa(v))
	}
}

func setString(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}

func (c *Client) ListDocuments(ctx context.Context, opts ListDocumentsOptions) (*model.ListResult[model.Document], error) {
	var res model.ListResult[model.Document]
	if err := c.doJSON(ctx, http.MethodGet, "/documents", opts.values(), nil, &res); err != nil {
		return nil, wrapError(err, "ListDocuments")
	}
	return &res, nil
}

func (c *Client) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	if err := c.doJSON(ctx, http.MethodGet, "/documents/"+url.PathEscape(id), nil, nil, &doc); err != nil {
		return nil, wrapError(err, "GetDocument")
	}
	return &doc, nil
}

func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return wrapError(c.doJSON(ctx, http.MethodDelete, "/documents/"+url.PathEscape(id), nil, nil, nil), "DeleteDocument")
}

func (c *Client) DocumentStatus(ctx context.Context, id string) (*model.DocumentProgress, error) {
	var p model.DocumentProgress
	if err := c.doJSON(ctx, http.MethodGet, "/documents/"+url.PathEscape(id)+"/status", nil, nil, &p); err != nil {
		return nil, wrapError(err, "DocumentStatus")
	}
	return &p, nil
}

func (c *Client) ReprocessDocument(ctx context.Context, id string) error {
	return wrapError(c.doJSON(ctx, http.MethodPost, "/documents/"+url.PathEscape(id)+"/reprocess", nil, nil, nil), "ReprocessDocument")
}

func (c *Client) DocumentStats(ctx context.Context) (*model.DocumentStats, error) {
	var st model.DocumentStats
	if err := c.doJSON(ctx, http.MethodGet, "/documents/stats/overview", nil, nil, &st); err != nil {
		return nil, wrapError(err, "DocumentStats")
	}
	return &st, nil
}
