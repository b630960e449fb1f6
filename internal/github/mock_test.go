package github

import (
	"context"

	"github.com/google/go-github/v67/github"
	"github.com/stretchr/testify/mock"
)

// MockLabelService はLabelServiceインターフェースのモック
type MockLabelService struct {
	mock.Mock
}

// labelsResult はモックの戻り値をラベル一覧の3値に展開する
// 型アサーションはnil許容の2値形式で行い、Return(nil, ...)をそのまま扱えるようにする
func labelsResult(args mock.Arguments) ([]*github.Label, *github.Response, error) {
	labels, _ := args.Get(0).([]*github.Label)
	resp, _ := args.Get(1).(*github.Response)
	return labels, resp, args.Error(2)
}

func (m *MockLabelService) ListLabels(ctx context.Context, owner, repo string, opts *github.ListOptions) ([]*github.Label, *github.Response, error) {
	return labelsResult(m.Called(ctx, owner, repo, opts))
}

func (m *MockLabelService) ListLabelsByIssue(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.Label, *github.Response, error) {
	return labelsResult(m.Called(ctx, owner, repo, number, opts))
}

func (m *MockLabelService) AddLabelsToIssue(ctx context.Context, owner, repo string, number int, labels []string) ([]*github.Label, *github.Response, error) {
	return labelsResult(m.Called(ctx, owner, repo, number, labels))
}

func (m *MockLabelService) RemoveLabelForIssue(ctx context.Context, owner, repo string, number int, label string) (*github.Response, error) {
	args := m.Called(ctx, owner, repo, number, label)
	resp, _ := args.Get(0).(*github.Response)
	return resp, args.Error(1)
}

func (m *MockLabelService) CreateLabel(ctx context.Context, owner, repo string, label *github.Label) (*github.Label, *github.Response, error) {
	args := m.Called(ctx, owner, repo, label)
	created, _ := args.Get(0).(*github.Label)
	resp, _ := args.Get(1).(*github.Response)
	return created, resp, args.Error(2)
}

// テスト用のヘルパー関数

func newTestLabel(name string) *github.Label {
	return &github.Label{Name: github.String(name)}
}

func newTestLabels(names ...string) []*github.Label {
	labels := make([]*github.Label, 0, len(names))
	for _, name := range names {
		labels = append(labels, newTestLabel(name))
	}
	return labels
}

func newTestResponse(nextPage int) *github.Response {
	return &github.Response{NextPage: nextPage}
}
