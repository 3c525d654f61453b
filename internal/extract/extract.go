// Package extract pulls plain text out of uploaded resume files.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"code.sajari.com/docconv"
	"github.com/google/uuid"

	"github.com/terra-clan/ats-engine/internal/metrics"
)

// MinTextLength is the minimum number of characters, after trimming,
// an extracted resume must contain
const MinTextLength = 50

// Common errors
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrExtractionTimeout   = errors.New("file processing timeout")
	ErrNoReadableText      = errors.New("No readable text found in file.")
)

// Supported reports whether a file name has an extension the extractor handles
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx", ".txt":
		return true
	}
	return false
}

// Extractor converts uploaded files to text
type Extractor struct {
	uploadDir string
	timeout   time.Duration
	convert   func(path string) (string, error)
}

// NewExtractor creates an Extractor that stages uploads in uploadDir
func NewExtractor(uploadDir string, timeout time.Duration) *Extractor {
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &Extractor{
		uploadDir: uploadDir,
		timeout:   timeout,
		convert:   convertDocument,
	}
}

// Extract returns the text of the file read from r. The file type is taken
// from the extension of filename and checked before r is consumed.
func (e *Extractor) Extract(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !Supported(filename) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, filename)
	}

	start := time.Now()
	defer func() {
		metrics.ExtractionDuration.WithLabelValues(ext).Observe(time.Since(start).Seconds())
	}()

	var (
		text string
		err  error
	)
	if ext == ".txt" {
		text, err = readText(r)
	} else {
		text, err = e.extractDocument(ctx, filename, r)
	}
	if err != nil {
		return "", err
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextLength {
		return "", ErrNoReadableText
	}

	return text, nil
}

func (e *Extractor) extractDocument(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := os.MkdirAll(e.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	path := filepath.Join(e.uploadDir, uuid.New().String()+"-"+filepath.Base(filename))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	// The converter owns the staged file and removes it when it returns,
	// which may be after a timeout has already been reported
	go func() {
		text, err := e.convert(path)
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			slog.Warn("failed to remove staged upload", "path", path, "error", rmErr)
		}
		done <- result{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("failed to parse document: %w", res.err)
		}
		return res.text, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrExtractionTimeout
		}
		return "", ctx.Err()
	}
}

func convertDocument(path string) (string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", err
	}
	return res.Body, nil
}

func readText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read text file: %w", err)
	}
	if !utf8.Valid(data) {
		return "", ErrNoReadableText
	}
	return string(data), nil
}
