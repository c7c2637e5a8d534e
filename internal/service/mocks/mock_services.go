package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"pdfqa/internal/service"
)

type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) Ingest(ctx context.Context, r io.Reader, filename, contentType string) (*service.IngestResult, error) {
	args := m.Called(ctx, r, filename, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestResult), args.Error(1)
}

type MockAnswerService struct {
	mock.Mock
}

func (m *MockAnswerService) Answer(ctx context.Context, question string) (*service.AnswerResult, error) {
	args := m.Called(ctx, question)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnswerResult), args.Error(1)
}
