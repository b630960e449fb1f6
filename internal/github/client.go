package github

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/go-github/v67/github"
	"golang.org/x/oauth2"

	"github.com/douhashi/fuda/internal/logger"
)

// Client はGitHub APIクライアントのラッパー
type Client struct {
	github *github.Client
	logger logger.Logger
	rate   *rateTracker
}

// ClientOption はクライアントの設定オプション
type ClientOption func(*clientOptions)

type clientOptions struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// WithBaseURL はAPIのベースURLを設定するオプション（GitHub Enterprise用）
func WithBaseURL(baseURL string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = baseURL
	}
}

// WithLogger はロガーを設定するオプション
// 設定するとHTTPリクエスト/レスポンスの詳細がデバッグログに出力される
func WithLogger(log logger.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = log
	}
}

// WithHTTPClient はベースのHTTPクライアントを設定するオプション
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}

// NewClient は新しいGitHub APIクライアントを作成する
func NewClient(token string, opts ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, errors.New("GitHub token is required")
	}

	options := &clientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	ctx := context.Background()
	if options.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, options.httpClient)
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	// ロガーが設定されている場合はリクエストログを出力する
	if options.logger != nil {
		tc.Transport = newAPITransport(tc.Transport, options.logger)
	}

	// レスポンスのレート制限ヘッダーを追跡する
	rate := newRateTracker(tc.Transport)
	tc.Transport = rate

	ghClient := github.NewClient(tc)
	if options.baseURL != "" {
		var err error
		ghClient, err = ghClient.WithEnterpriseURLs(options.baseURL, options.baseURL)
		if err != nil {
			return nil, err
		}
	}

	return &Client{
		github: ghClient,
		logger: options.logger,
		rate:   rate,
	}, nil
}

// GetRepository はリポジトリ情報を取得する
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error) {
	if owner == "" {
		return nil, errors.New("owner is required")
	}
	if repo == "" {
		return nil, errors.New("repo is required")
	}

	repository, _, err := c.github.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, ClassifyError(err)
	}

	return repository, nil
}

// GetRateLimit はGitHub APIのレート制限情報を取得する
func (c *Client) GetRateLimit(ctx context.Context) (*github.RateLimits, error) {
	rateLimit, _, err := c.github.RateLimit.Get(ctx)
	if err != nil {
		return nil, ClassifyError(err)
	}

	return rateLimit, nil
}

// GetRemainingPoints は直近のAPIレスポンスで通知された残りポイント数を返す
// まだAPIを呼び出していない場合は0を返す
func (c *Client) GetRemainingPoints() int {
	return c.rate.Remaining()
}

// LabelService はラベル操作のためのインターフェースを返す
// LabelManagerの生成に使用する
func (c *Client) LabelService() LabelService {
	return c.github.Issues
}
