package ingestion

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Loader extracts text from PDF files. The zero value uses the OS temp dir.
type Loader struct {
	// TempDir receives the scoped copy of each upload.
	TempDir string
}

// NewLoader creates a Loader that stages uploads under tempDir.
func NewLoader(tempDir string) *Loader {
	return &Loader{TempDir: tempDir}
}

// pageSource is the subset of a PDF reader needed to collect page text.
type pageSource interface {
	NumPage() int
	// PageText returns the plain text of page i (1-based); ok is false for null pages.
	PageText(i int) (text string, ok bool, err error)
}

type pdfPages struct {
	r *pdf.Reader
}

func (p pdfPages) NumPage() int {
	return p.r.NumPage()
}

func (p pdfPages) PageText(i int) (string, bool, error) {
	page := p.r.Page(i)
	if page.V.IsNull() {
		return "", false, nil
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", true, err
	}
	return text, true, nil
}

// ExtractUpload copies the upload into a scoped temporary file, extracts the
// text of every page, and removes the file before returning.
func (l *Loader) ExtractUpload(ctx context.Context, upload io.Reader) (*Document, error) {
	tmp, err := os.CreateTemp(l.TempDir, "cv-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	sum := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, sum), upload)
	if err != nil {
		return nil, &DocumentError{Message: "failed to read upload", Cause: err}
	}

	doc, err := extract(ctx, tmp, size)
	if err != nil {
		return nil, err
	}
	return newDocument(doc.text, doc.pages, sum), nil
}

// ExtractFile extracts the text of every page of the PDF at path.
func (l *Loader) ExtractFile(ctx context.Context, path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sum := sha256.New()
	size, err := io.Copy(sum, f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	doc, err := extract(ctx, f, size)
	if err != nil {
		return nil, err
	}
	return newDocument(doc.text, doc.pages, sum), nil
}

type extracted struct {
	text  string
	pages int
}

// extract parses the PDF held by r. Panics raised by the PDF library on
// malformed input are returned as a DocumentError.
func extract(ctx context.Context, r io.ReaderAt, size int64) (result extracted, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = extracted{}
			err = &DocumentError{Message: "malformed PDF", Cause: fmt.Errorf("%v", rec)}
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return extracted{}, &DocumentError{Message: "failed to open PDF", Cause: err}
	}

	src := pdfPages{r: reader}
	text, err := concatPages(ctx, src)
	if err != nil {
		return extracted{}, err
	}
	return extracted{text: text, pages: src.NumPage()}, nil
}

// concatPages joins the text of pages 1..N in order with no separator.
func concatPages(ctx context.Context, src pageSource) (string, error) {
	var sb strings.Builder
	for i := 1; i <= src.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, ok, err := src.PageText(i)
		if err != nil {
			return "", &DocumentError{Message: fmt.Sprintf("failed to read page %d", i), Cause: err}
		}
		if !ok {
			continue
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
