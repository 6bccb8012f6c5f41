// Package resume reads a candidate résumé into text for the analysis pipeline.
package resume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-advisor/internal/extraction"
)

// ToolName is the name the ingestor is registered under in the pipeline.
const ToolName = "resume_file_parser"

// Ingestor reads résumé documents from local paths or s3:// locations.
type Ingestor struct {
	logger   *zap.Logger
	s3       ObjectGetter
	maxChars int
}

// Options configures an Ingestor.
type Options struct {
	// S3 is used for s3:// paths. When nil such paths fail with an error result.
	S3 ObjectGetter
	// MaxChars caps the ingested text. Zero keeps the full document.
	MaxChars int
}

// New creates an Ingestor.
func New(logger *zap.Logger, opts Options) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Ingestor{
		logger:   logger,
		s3:       opts.S3,
		maxChars: opts.MaxChars,
	}
}

func (i *Ingestor) Name() string { return ToolName }

func (i *Ingestor) Description() string {
	return "Parse and extract text content from a local resume file."
}

// Call implements the pipeline tool contract.
func (i *Ingestor) Call(ctx context.Context, input string) extraction.Result {
	return i.Ingest(ctx, input)
}

// Ingest reads the document at path. It never returns a Go error: every
// failure is reported inside the result.
func (i *Ingestor) Ingest(ctx context.Context, path string) extraction.Result {
	path = NormalizePath(path)
	if path == "" {
		return extraction.Failure(extraction.KindInvalid, nil, "Resume path is empty. Please provide a path to your resume file.")
	}

	var (
		data []byte
		res  *extraction.Result
	)

	if IsS3Path(path) {
		data, res = i.readS3(ctx, path)
	} else {
		data, res = readLocal(path)
	}
	if res != nil {
		i.logger.Debug("resume read failed", zap.String("path", path), zap.String("kind", string(res.Err.Kind)))
		return *res
	}

	text, encoding, err := decodeDocument(path, data)
	if err != nil {
		return extraction.Failure(extraction.KindDecode, err, "Could not decode file. Details: %v", err)
	}

	if strings.TrimSpace(text) == "" {
		return extraction.Failure(extraction.KindEmpty, nil, "The file is empty. Please provide a resume with content.")
	}

	text, truncated := extraction.Truncate(text, i.maxChars)

	i.logger.Debug("resume read",
		zap.String("path", path),
		zap.Int("bytes", len(data)),
		zap.String("encoding", encoding),
		zap.Bool("truncated", truncated),
	)

	return extraction.Success(text, truncated)
}

// NormalizePath trims whitespace and enclosing quotes left over from
// copy-pasted paths.
func NormalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, `"`)
	path = strings.Trim(path, `'`)
	return path
}

func readLocal(path string) ([]byte, *extraction.Result) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, failure(extraction.KindNotFound, err, "File not found at '%s'. Please check the path and try again.", path)
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, failure(extraction.KindPermission, err, "Permission denied when trying to read '%s'.", path)
		}
		return nil, failure(extraction.KindUnknown, err, "Could not read file '%s': %v", path, err)
	}

	if info.IsDir() {
		return nil, failure(extraction.KindNotFound, nil, "File not found at '%s'. The path points to a directory.", path)
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, failure(extraction.KindPermission, err, "Permission denied when trying to read '%s'.", path)
		}
		return nil, failure(extraction.KindUnknown, err, "Could not read file '%s': %v", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, failure(extraction.KindUnknown, err, "Could not read file '%s': %v", path, err)
	}

	return data, nil
}

func failure(kind extraction.Kind, cause error, format string, args ...any) *extraction.Result {
	res := extraction.Failure(kind, cause, format, args...)
	return &res
}

// Stage writes raw résumé text to a temporary file so it can flow through the
// same file-based tool as a path. The returned cleanup removes the file.
func Stage(text string) (string, func(), error) {
	file, err := os.CreateTemp("", "resume_*.txt")
	if err != nil {
		return "", func() {}, fmt.Errorf("create temp resume file: %w", err)
	}

	name := file.Name()
	cleanup := func() { _ = os.Remove(name) }

	if _, err := file.WriteString(text); err != nil {
		file.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("write temp resume file: %w", err)
	}

	if err := file.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("close temp resume file: %w", err)
	}

	return filepath.Clean(name), cleanup, nil
}
