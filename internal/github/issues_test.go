package github

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListIssuesByLabels(t *testing.T) {
	t.Run("正常系: ページネーションで全Issueを取得できる", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v3/repos/douhashi/fuda/issues", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "status:queued", r.URL.Query().Get("labels"))
			assert.Equal(t, "open", r.URL.Query().Get("state"))
			assert.Equal(t, "100", r.URL.Query().Get("per_page"))

			w.Header().Set("Content-Type", "application/json")
			if r.URL.Query().Get("page") == "2" {
				w.Write([]byte(`[{"number": 3, "title": "third"}]`))
				return
			}
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/api/v3/repos/douhashi/fuda/issues?page=2>; rel="next"`, r.Host))
			w.Write([]byte(`[{"number": 1, "title": "first"}, {"number": 2, "title": "second"}]`))
		})

		client, _ := newTestServerClient(t, mux)

		issues, err := client.ListIssuesByLabels(context.Background(), "douhashi", "fuda", []string{"status:queued"})
		require.NoError(t, err)
		require.Len(t, issues, 3)
		assert.Equal(t, 1, issues[0].GetNumber())
		assert.Equal(t, 2, issues[1].GetNumber())
		assert.Equal(t, 3, issues[2].GetNumber())
	})

	t.Run("正常系: 複数ラベルはAND条件としてAPIに渡される", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v3/repos/douhashi/fuda/issues", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "status:queued,priority:high", r.URL.Query().Get("labels"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"number": 5, "title": "urgent"}]`))
		})

		client, _ := newTestServerClient(t, mux)

		issues, err := client.ListIssuesByLabels(context.Background(), "douhashi", "fuda", []string{"status:queued", "priority:high"})
		require.NoError(t, err)
		require.Len(t, issues, 1)
		assert.Equal(t, 5, issues[0].GetNumber())
	})

	t.Run("異常系: ownerが空でエラーになる", func(t *testing.T) {
		client, err := NewClient("test-token")
		require.NoError(t, err)

		_, err = client.ListIssuesByLabels(context.Background(), "", "fuda", []string{"status:queued"})
		require.Error(t, err)
		assert.Equal(t, "owner is required", err.Error())
	})

	t.Run("異常系: repoが空でエラーになる", func(t *testing.T) {
		client, err := NewClient("test-token")
		require.NoError(t, err)

		_, err = client.ListIssuesByLabels(context.Background(), "douhashi", "", []string{"status:queued"})
		require.Error(t, err)
		assert.Equal(t, "repo is required", err.Error())
	})

	t.Run("異常系: サーバーエラーはリトライ可能なエラーに分類される", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v3/repos/douhashi/fuda/issues", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message": "Internal Server Error"}`))
		})

		client, _ := newTestServerClient(t, mux)

		_, err := client.ListIssuesByLabels(context.Background(), "douhashi", "fuda", []string{"status:queued"})
		require.Error(t, err)
		assert.True(t, IsRetryableError(err))
	})
}

func TestClient_ListIssuesByAnyLabel(t *testing.T) {
	t.Run("正常系: いずれかのラベルを持つIssueを重複なく取得できる", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v3/repos/douhashi/fuda/issues", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Query().Get("labels") {
			case "status:queued":
				w.Write([]byte(`[{"number": 1, "title": "first"}, {"number": 2, "title": "second"}]`))
			case "status:retry":
				w.Write([]byte(`[{"number": 2, "title": "second"}, {"number": 3, "title": "third"}]`))
			default:
				w.Write([]byte(`[]`))
			}
		})

		client, _ := newTestServerClient(t, mux)

		issues, err := client.ListIssuesByAnyLabel(context.Background(), "douhashi", "fuda", []string{"status:queued", "status:retry"})
		require.NoError(t, err)
		require.Len(t, issues, 3, "Issue #2は1回だけ含まれるべき")
		assert.Equal(t, 1, issues[0].GetNumber())
		assert.Equal(t, 2, issues[1].GetNumber())
		assert.Equal(t, 3, issues[2].GetNumber())
	})

	t.Run("異常系: ラベルが空でエラーになる", func(t *testing.T) {
		client, err := NewClient("test-token")
		require.NoError(t, err)

		_, err = client.ListIssuesByAnyLabel(context.Background(), "douhashi", "fuda", nil)
		require.Error(t, err)
		assert.Equal(t, "at least one label is required", err.Error())
	})
}

func TestClient_GetIssue(t *testing.T) {
	t.Run("正常系: Issueを取得できる", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v3/repos/douhashi/fuda/issues/42", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"number": 42, "title": "fix flaky test", "state": "open", "labels": [{"name": "status:queued"}]}`))
		})

		client, _ := newTestServerClient(t, mux)

		issue, err := client.GetIssue(context.Background(), "douhashi", "fuda", 42)
		require.NoError(t, err)
		assert.Equal(t, 42, issue.GetNumber())
		assert.Equal(t, "fix flaky test", issue.GetTitle())
		require.Len(t, issue.Labels, 1)
		assert.Equal(t, "status:queued", issue.Labels[0].GetName())
	})

	t.Run("異常系: issue番号が0以下でエラーになる", func(t *testing.T) {
		client, err := NewClient("test-token")
		require.NoError(t, err)

		_, err = client.GetIssue(context.Background(), "douhashi", "fuda", 0)
		require.Error(t, err)
		assert.Equal(t, "issue number must be positive", err.Error())
	})
}
