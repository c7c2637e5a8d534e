package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pdfqa/internal/model"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ExistsByFilename(ctx context.Context, filename string) (bool, error) {
	args := m.Called(ctx, filename)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) FindLatest(ctx context.Context) (*model.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}
