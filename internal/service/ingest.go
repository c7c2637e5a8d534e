package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"pdfqa/internal/extract"
	"pdfqa/internal/model"
	"pdfqa/internal/repository"
	"pdfqa/internal/storage"
)

const pdfContentType = "application/pdf"

// readChunkSize bounds each read so oversized bodies are rejected without
// buffering them whole.
const readChunkSize = 1 << 20

// IngestResult reports a successful ingestion. Filename is the resolved name,
// which can differ from the one the caller supplied.
type IngestResult struct {
	Filename   string
	Size       int64
	TextLength int
}

// IngestService validates an uploaded PDF, resolves filename collisions,
// retains the file, extracts its text, and persists the document record.
type IngestService interface {
	Ingest(ctx context.Context, r io.Reader, filename, contentType string) (*IngestResult, error)
}

type ingestService struct {
	files          storage.FileStore
	repo           repository.DocumentRepository
	extractor      extract.Extractor
	maxSize        int64
	extractTimeout time.Duration
}

// NewIngestService constructs an IngestService. maxSize is the upload size
// ceiling in bytes; extractTimeout bounds the external extraction call.
func NewIngestService(files storage.FileStore, repo repository.DocumentRepository, extractor extract.Extractor, maxSize int64, extractTimeout time.Duration) IngestService {
	return &ingestService{
		files:          files,
		repo:           repo,
		extractor:      extractor,
		maxSize:        maxSize,
		extractTimeout: extractTimeout,
	}
}

// Ingest runs the upload pipeline. Each step is a hard gate: the first
// failure aborts and performs no further side effects. A file already written
// when a later step fails is removed best-effort; removal failures are logged
// and never replace the original error.
func (s *ingestService) Ingest(ctx context.Context, r io.Reader, filename, contentType string) (*IngestResult, error) {
	if contentType != pdfContentType {
		return nil, fmt.Errorf("%w: invalid file type %q, only PDF files are allowed", ErrValidation, contentType)
	}

	data, err := s.readBounded(r)
	if err != nil {
		return nil, err
	}

	if filename == "" {
		return nil, fmt.Errorf("%w: no filename provided", ErrValidation)
	}
	ext := filepath.Ext(filename)
	if !strings.EqualFold(ext, ".pdf") {
		return nil, fmt.Errorf("%w: file must have .pdf extension", ErrValidation)
	}

	resolved, err := s.resolveFilename(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := s.files.Save(ctx, resolved, data); err != nil {
		return nil, fmt.Errorf("%w: save file: %v", ErrStorage, err)
	}

	text, err := s.extractText(ctx, data)
	if err != nil {
		s.removeFile(ctx, resolved)
		return nil, err
	}

	doc, err := s.repo.Create(ctx, &model.Document{Filename: resolved, Content: text})
	if err != nil {
		// Includes the uniqueness backstop: two concurrent uploads of the same
		// name can both pass resolveFilename; the constraint decides the loser.
		s.removeFile(ctx, resolved)
		return nil, fmt.Errorf("%w: save document: %v", ErrStorage, err)
	}

	return &IngestResult{
		Filename:   doc.Filename,
		Size:       int64(len(data)),
		TextLength: len(text),
	}, nil
}

// readBounded consumes the body incrementally and aborts as soon as the
// cumulative size exceeds the ceiling, before the full body is buffered.
func (s *ingestService) readBounded(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			if int64(buf.Len())+int64(n) > s.maxSize {
				return nil, fmt.Errorf("%w: file size exceeds maximum limit of %dMB", ErrValidation, s.maxSize/(1024*1024))
			}
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read upload: %v", ErrStorage, err)
		}
	}
}

// resolveFilename finds a candidate that is absent from both the file store
// and the documents table, rewriting {base}_{n}{ext} until both checks pass
// for the same candidate. The check-then-reserve sequence is deliberately not
// serialized; see Ingest for the backstop.
func (s *ingestService) resolveFilename(ctx context.Context, filename string) (string, error) {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	candidate := filename
	for counter := 1; ; counter++ {
		onDisk, err := s.files.Exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check file store: %w", err)
		}
		inStore := false
		if !onDisk {
			inStore, err = s.repo.ExistsByFilename(ctx, candidate)
			if err != nil {
				return "", fmt.Errorf("check document store: %w", err)
			}
		}
		if !onDisk && !inStore {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d%s", base, counter, ext)
	}
}

func (s *ingestService) extractText(ctx context.Context, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.extractTimeout)
	defer cancel()

	text, err := s.extractor.Extract(ctx, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no text could be extracted from the PDF", ErrExtraction)
	}
	return text, nil
}

// removeFile is the compensating action for a file written before a later
// step failed. Best-effort: its own failure is logged, never escalated.
func (s *ingestService) removeFile(ctx context.Context, name string) {
	if err := s.files.Remove(ctx, name); err != nil {
		logJSON(map[string]any{
			"level":    "error",
			"msg":      "cleanup_failed",
			"filename": name,
			"error":    err.Error(),
		})
	}
}

func logJSON(fields map[string]any) {
	fields["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	b, err := json.Marshal(fields)
	if err != nil {
		log.Printf("failed to marshal log entry: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
