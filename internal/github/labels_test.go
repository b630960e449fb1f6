package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-github/v67/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListLabels(t *testing.T) {
	t.Run("正常系: ページネーションで全ラベルを取得できる", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v3/repos/douhashi/fuda/labels", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if r.URL.Query().Get("page") == "2" {
				w.Write([]byte(`[{"name": "status:running"}]`))
				return
			}
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/api/v3/repos/douhashi/fuda/labels?page=2>; rel="next"`, r.Host))
			w.Write([]byte(`[{"name": "status:queued"}, {"name": "status:retry"}]`))
		})

		client, _ := newTestServerClient(t, mux)

		labels, err := client.ListLabels(context.Background(), "douhashi", "fuda")
		require.NoError(t, err)
		require.Len(t, labels, 3)
		assert.Equal(t, "status:queued", labels[0].GetName())
		assert.Equal(t, "status:running", labels[2].GetName())
	})

	t.Run("異常系: ownerが空でエラーになる", func(t *testing.T) {
		client, err := NewClient("test-token")
		require.NoError(t, err)

		_, err = client.ListLabels(context.Background(), "", "fuda")
		require.Error(t, err)
		assert.Equal(t, "owner is required", err.Error())
	})
}

func TestClient_ListLabelsByIssue(t *testing.T) {
	t.Run("正常系: Issueのラベルを取得できる", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v3/repos/douhashi/fuda/issues/7/labels", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"name": "status:running"}, {"name": "bug"}]`))
		})

		client, _ := newTestServerClient(t, mux)

		labels, err := client.ListLabelsByIssue(context.Background(), "douhashi", "fuda", 7)
		require.NoError(t, err)
		require.Len(t, labels, 2)
		assert.Equal(t, "status:running", labels[0].GetName())
		assert.Equal(t, "bug", labels[1].GetName())
	})

	t.Run("異常系: issue番号が0以下でエラーになる", func(t *testing.T) {
		client, err := NewClient("test-token")
		require.NoError(t, err)

		_, err = client.ListLabelsByIssue(context.Background(), "douhashi", "fuda", -1)
		require.Error(t, err)
		assert.Equal(t, "issue number must be positive", err.Error())
	})
}

func TestClient_CreateLabel(t *testing.T) {
	t.Run("正常系: ラベルを作成できる", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v3/repos/douhashi/fuda/labels", func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "status:queued", body["name"])
			assert.Equal(t, "0052cc", body["color"])

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"name": "status:queued", "color": "0052cc"}`))
		})

		client, _ := newTestServerClient(t, mux)

		created, err := client.CreateLabel(context.Background(), "douhashi", "fuda", &github.Label{
			Name:  github.String("status:queued"),
			Color: github.String("0052cc"),
		})
		require.NoError(t, err)
		assert.Equal(t, "status:queued", created.GetName())
	})

	t.Run("異常系: ラベル名が空でエラーになる", func(t *testing.T) {
		client, err := NewClient("test-token")
		require.NoError(t, err)

		_, err = client.CreateLabel(context.Background(), "douhashi", "fuda", &github.Label{})
		require.Error(t, err)
		assert.Equal(t, "label name is required", err.Error())
	})

	t.Run("異常系: nilラベルでエラーになる", func(t *testing.T) {
		client, err := NewClient("test-token")
		require.NoError(t, err)

		_, err = client.CreateLabel(context.Background(), "douhashi", "fuda", nil)
		require.Error(t, err)
		assert.Equal(t, "label name is required", err.Error())
	})
}

func TestClient_AddLabel(t *testing.T) {
	t.Run("正常系: Issueにラベルを追加できる", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v3/repos/douhashi/fuda/issues/7/labels", func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)

			var body []string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, []string{"status:running"}, body)

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"name": "status:running"}]`))
		})

		client, _ := newTestServerClient(t, mux)

		err := client.AddLabel(context.Background(), "douhashi", "fuda", 7, "status:running")
		require.NoError(t, err)
	})

	t.Run("異常系: ラベルが空でエラーになる", func(t *testing.T) {
		client, err := NewClient("test-token")
		require.NoError(t, err)

		err = client.AddLabel(context.Background(), "douhashi", "fuda", 7, "")
		require.Error(t, err)
		assert.Equal(t, "label is required", err.Error())
	})
}

func TestClient_RemoveLabel(t *testing.T) {
	t.Run("正常系: Issueからラベルを削除できる", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v3/repos/douhashi/fuda/issues/7/labels/status:queued", func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodDelete, r.Method)
			w.WriteHeader(http.StatusOK)
		})

		client, _ := newTestServerClient(t, mux)

		err := client.RemoveLabel(context.Background(), "douhashi", "fuda", 7, "status:queued")
		require.NoError(t, err)
	})

	t.Run("正常系: 付与されていないラベルの削除は成功として扱う", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v3/repos/douhashi/fuda/issues/7/labels/status:queued", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message": "Label does not exist"}`))
		})

		client, _ := newTestServerClient(t, mux)

		err := client.RemoveLabel(context.Background(), "douhashi", "fuda", 7, "status:queued")
		require.NoError(t, err, "404は冪等に成功として扱われるべき")
	})

	t.Run("異常系: サーバーエラーはエラーになる", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v3/repos/douhashi/fuda/issues/7/labels/status:queued", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message": "Internal Server Error"}`))
		})

		client, _ := newTestServerClient(t, mux)

		err := client.RemoveLabel(context.Background(), "douhashi", "fuda", 7, "status:queued")
		require.Error(t, err)
	})

	t.Run("異常系: ラベルが空でエラーになる", func(t *testing.T) {
		client, err := NewClient("test-token")
		require.NoError(t, err)

		err = client.RemoveLabel(context.Background(), "douhashi", "fuda", 7, "")
		require.Error(t, err)
		assert.Equal(t, "label is required", err.Error())
	})
}
