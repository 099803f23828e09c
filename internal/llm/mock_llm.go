package llm

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docqa/internal/prompt"
)

// MockClient is a mock implementation of Client using testify/mock.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Complete(ctx context.Context, req prompt.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
