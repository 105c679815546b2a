package pr

import (
	"context"
	"fmt"
	"sync"
)

// Comment is a comment recorded by MockProvider.
type Comment struct {
	ID   int
	Body string
}

// MockProvider is a mock implementation of Provider for testing.
// Without overrides, CreatePR returns sequentially numbered pull requests.
type MockProvider struct {
	CreatePRFunc   func(ctx context.Context, opts Options) (*PullRequest, error)
	AddCommentFunc func(ctx context.Context, id int, body string) error
	FindOpenPRFunc func(ctx context.Context, head, base string) (*PullRequest, error)

	mu       sync.Mutex
	Created  []Options
	Comments []Comment
	Lookups  []string
}

// CreatePR implements Provider.
func (m *MockProvider) CreatePR(ctx context.Context, opts Options) (*PullRequest, error) {
	m.mu.Lock()
	m.Created = append(m.Created, opts)
	n := len(m.Created)
	m.mu.Unlock()

	if m.CreatePRFunc != nil {
		return m.CreatePRFunc(ctx, opts)
	}
	return &PullRequest{
		ID:    n,
		URL:   fmt.Sprintf("https://example.com/pull/%d", n),
		Title: opts.Title,
		Head:  opts.Head,
		Base:  opts.base(),
		State: StateOpen,
	}, nil
}

// AddComment implements Provider.
func (m *MockProvider) AddComment(ctx context.Context, id int, body string) error {
	m.mu.Lock()
	m.Comments = append(m.Comments, Comment{ID: id, Body: body})
	m.mu.Unlock()

	if m.AddCommentFunc != nil {
		return m.AddCommentFunc(ctx, id, body)
	}
	return nil
}

// FindOpenPR implements Provider.
func (m *MockProvider) FindOpenPR(ctx context.Context, head, base string) (*PullRequest, error) {
	m.mu.Lock()
	m.Lookups = append(m.Lookups, head)
	m.mu.Unlock()

	if m.FindOpenPRFunc != nil {
		return m.FindOpenPRFunc(ctx, head, base)
	}
	return nil, ErrNotFound
}
