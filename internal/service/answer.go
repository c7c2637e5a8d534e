package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pdfqa/internal/qa"
	"pdfqa/internal/repository"
)

// answerConfidence is the fixed confidence reported with every answer. The
// upstream model exposes no usable confidence signal, so this is a
// placeholder constant, not a computed metric.
const answerConfidence = 0.95

// AnswerResult is the outcome of a successful question.
type AnswerResult struct {
	Answer       string
	DocumentName string
	Confidence   float64
}

// AnswerService answers a question against the most recently uploaded document.
type AnswerService interface {
	Answer(ctx context.Context, question string) (*AnswerResult, error)
}

type answerService struct {
	repo          repository.DocumentRepository
	engine        qa.Engine
	answerTimeout time.Duration
}

// NewAnswerService constructs an AnswerService. answerTimeout bounds the
// retrieval/LLM call so a stalled provider cannot pin request capacity.
func NewAnswerService(repo repository.DocumentRepository, engine qa.Engine, answerTimeout time.Duration) AnswerService {
	return &answerService{repo: repo, engine: engine, answerTimeout: answerTimeout}
}

func (s *answerService) Answer(ctx context.Context, question string) (*AnswerResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question cannot be empty", ErrValidation)
	}

	doc, err := s.repo.FindLatest(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: please upload a PDF first", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: find latest document: %v", ErrStorage, err)
	}

	// Ingestion rejects empty text, but the store is the source of truth at
	// answer time.
	if strings.TrimSpace(doc.Content) == "" {
		return nil, ErrEmptyContent
	}

	engineCtx, cancel := context.WithTimeout(ctx, s.answerTimeout)
	defer cancel()

	answer, err := s.engine.Answer(engineCtx, question, doc.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngine, err)
	}

	return &AnswerResult{
		Answer:       answer,
		DocumentName: doc.Filename,
		Confidence:   answerConfidence,
	}, nil
}
