package search

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/douhashi/fuda/internal/logger"
)

// rateLimit はGraphQLクエリのコスト情報
type rateLimit struct {
	Cost      int
	Remaining int
}

// Client はGitHub GraphQL APIで検索を行うクライアント
type Client struct {
	graphql *githubv4.Client
	logger  logger.Logger

	// ポーリングとメトリクス収集が並行に触るためロックで保護する
	mu              sync.Mutex
	requests        map[string]int
	totalCosts      map[string]int
	remainingPoints int
}

// Option はクライアントの設定オプション
type Option func(*clientOptions)

type clientOptions struct {
	endpoint   string
	httpClient *http.Client
	logger     logger.Logger
}

// WithEndpoint はGraphQL APIのエンドポイントを設定するオプション（GitHub Enterprise用）
func WithEndpoint(endpoint string) Option {
	return func(o *clientOptions) {
		o.endpoint = endpoint
	}
}

// WithHTTPClient はベースのHTTPクライアントを設定するオプション
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}

// WithLogger はロガーを設定するオプション
func WithLogger(log logger.Logger) Option {
	return func(o *clientOptions) {
		o.logger = log
	}
}

// NewClient は新しい検索クライアントを作成する
func NewClient(token string, opts ...Option) (*Client, error) {
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

	var graphql *githubv4.Client
	if options.endpoint != "" {
		graphql = githubv4.NewEnterpriseClient(options.endpoint, tc)
	} else {
		graphql = githubv4.NewClient(tc)
	}

	return &Client{
		graphql:    graphql,
		logger:     options.logger,
		requests:   map[string]int{},
		totalCosts: map[string]int{},
	}, nil
}

// GetRemainingPoints は直近のクエリ時点で残っていたAPIポイント数を返す
func (c *Client) GetRemainingPoints() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingPoints
}

// GetRequestCounts はクエリごとのリクエスト回数を返す
func (c *Client) GetRequestCounts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := make(map[string]int, len(c.requests))
	for k, v := range c.requests {
		counts[k] = v
	}
	return counts
}

// GetTotalCosts はクエリごとの累計コストを返す
func (c *Client) GetTotalCosts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	costs := make(map[string]int, len(c.totalCosts))
	for k, v := range c.totalCosts {
		costs[k] = v
	}
	return costs
}

func (c *Client) countRequest(key string, rl rateLimit) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests[key]++
	c.totalCosts[key] += rl.Cost
	c.remainingPoints = rl.Remaining
}
