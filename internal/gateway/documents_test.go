package gateway

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/VictorMH77/musicas-ippi-v2/internal/config"

	"github.com/VictorMH77/musicas-ippi-v2/pkg/appwrite"
)

// TestMusicas は楽曲ルートのテスト。
func TestMusicas(t *testing.T) {
	t.Parallel()

	t.Run("一覧をtotalとdocumentsの形で返す", func(t *testing.T) {
		t.Parallel()

		s, stub := newTestServer(t)
		stub.Seed(testDatabase, "musicas",
			appwrite.Document{"$id": "m1", "titulo": "Grandioso És Tu"},
			appwrite.Document{"$id": "m2", "titulo": "Porque Ele Vive"},
		)

		w := doRequest(t, s, http.MethodGet, "/api/musicas", "secret", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		result := decodeBody(t, w)
		if result["total"] != float64(2) {
			t.Errorf("total: got %v, want 2", result["total"])
		}
		if ids := documentIDs(t, result); !reflect.DeepEqual(ids, []string{"m1", "m2"}) {
			t.Errorf("ids: got %v", ids)
		}
		if reqs := stub.Requests(); len(reqs[0].Queries) != 0 {
			t.Errorf("楽曲一覧にクエリが付いている: %v", reqs[0].Queries)
		}
	})

	t.Run("作成でボディがそのままドキュメントになる", func(t *testing.T) {
		t.Parallel()

		s, stub := newTestServer(t)
		body := map[string]any{"titulo": "Castelo Forte", "autor": "Lutero", "tom": "C"}

		w := doRequest(t, s, http.MethodPost, "/api/musicas", "secret", body)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d (body=%s)", w.Code, http.StatusOK, w.Body.String())
		}
		result := decodeBody(t, w)
		for k, v := range body {
			if result[k] != v {
				t.Errorf("%s: got %v, want %v", k, result[k], v)
			}
		}
		id, _ := result["$id"].(string)
		if id == "" {
			t.Error("$idが空")
		}

		sent := stub.Requests()[0].Body
		if sent["documentId"] != id {
			t.Errorf("documentId: got %v, want %q", sent["documentId"], id)
		}
	})

	t.Run("空のボディでも空のドキュメントとして作成する", func(t *testing.T) {
		t.Parallel()

		s, stub := newTestServer(t)
		w := doRequest(t, s, http.MethodPost, "/api/musicas", "secret", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		data, ok := stub.Requests()[0].Body["data"].(map[string]any)
		if !ok || len(data) != 0 {
			t.Errorf("data: got %v, want {}", stub.Requests()[0].Body["data"])
		}
	})

	t.Run("不正なJSONは400でバックエンドを呼ばない", func(t *testing.T) {
		t.Parallel()

		s, stub := newTestServer(t)
		w := doRequest(t, s, http.MethodPost, "/api/musicas", "secret", `{"titulo":`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
		result := decodeBody(t, w)
		if result["type"] != "general_argument_invalid" {
			t.Errorf("type: got %v", result["type"])
		}
		if n := len(stub.Requests()); n != 0 {
			t.Errorf("バックエンドへのリクエスト数: got %d, want 0", n)
		}
	})

	t.Run("更新で変更後のドキュメントを返す", func(t *testing.T) {
		t.Parallel()

		s, stub := newTestServer(t)
		stub.Seed(testDatabase, "musicas", appwrite.Document{"$id": "m1", "titulo": "Hino", "tom": "D"})

		w := doRequest(t, s, http.MethodPut, "/api/musicas/m1", "secret", map[string]any{"tom": "E"})
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		result := decodeBody(t, w)
		if result["tom"] != "E" || result["titulo"] != "Hino" {
			t.Errorf("更新結果が不正: %v", result)
		}
	})

	t.Run("存在しない楽曲の更新は404を返す", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestServer(t)
		w := doRequest(t, s, http.MethodPut, "/api/musicas/none", "secret", map[string]any{"tom": "E"})

		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNotFound)
		}
		result := decodeBody(t, w)
		if result["type"] != "document_not_found" {
			t.Errorf("type: got %v, want %q", result["type"], "document_not_found")
		}
	})

	t.Run("削除でsuccessを返す", func(t *testing.T) {
		t.Parallel()

		s, stub := newTestServer(t)
		stub.Seed(testDatabase, "musicas", appwrite.Document{"$id": "m1"})

		w := doRequest(t, s, http.MethodDelete, "/api/musicas/m1", "secret", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		if result := decodeBody(t, w); result["success"] != true {
			t.Errorf("success: got %v, want true", result["success"])
		}

		list := decodeBody(t, doRequest(t, s, http.MethodGet, "/api/musicas", "secret", nil))
		if ids := documentIDs(t, list); len(ids) != 0 {
			t.Errorf("削除後も残っている: %v", ids)
		}
	})
}

// TestPlaylists はプレイリストルートのテスト。
func TestPlaylists(t *testing.T) {
	t.Parallel()

	t.Run("一覧を作成日時の新しい順で返す", func(t *testing.T) {
		t.Parallel()

		s, stub := newTestServer(t)
		stub.Seed(testDatabase, "playlists",
			appwrite.Document{"$id": "old", "$createdAt": "2025-01-01T10:00:00.000+00:00"},
			appwrite.Document{"$id": "newest", "$createdAt": "2025-03-01T10:00:00.000+00:00"},
			appwrite.Document{"$id": "middle", "$createdAt": "2025-02-01T10:00:00.000+00:00"},
		)

		w := doRequest(t, s, http.MethodGet, "/api/playlists", "secret", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		ids := documentIDs(t, decodeBody(t, w))
		if want := []string{"newest", "middle", "old"}; !reflect.DeepEqual(ids, want) {
			t.Errorf("並び順: got %v, want %v", ids, want)
		}

		queries := stub.Requests()[0].Queries
		if want := []string{`{"method":"orderDesc","attribute":"$createdAt"}`}; !reflect.DeepEqual(queries, want) {
			t.Errorf("queries: got %v, want %v", queries, want)
		}
	})

	t.Run("作成したプレイリストが一覧の先頭に来る", func(t *testing.T) {
		t.Parallel()

		s, stub := newTestServer(t)
		stub.Seed(testDatabase, "playlists", appwrite.Document{"$id": "p1", "nome": "Antiga"})

		created := decodeBody(t, doRequest(t, s, http.MethodPost, "/api/playlists", "secret", map[string]any{"nome": "Culto de Domingo"}))
		if created["nome"] != "Culto de Domingo" {
			t.Fatalf("作成結果が不正: %v", created)
		}

		ids := documentIDs(t, decodeBody(t, doRequest(t, s, http.MethodGet, "/api/playlists", "secret", nil)))
		if len(ids) != 2 || ids[0] != created["$id"] {
			t.Errorf("並び順: got %v, 先頭は %v であるべき", ids, created["$id"])
		}
	})

	t.Run("IDを指定して1件取得する", func(t *testing.T) {
		t.Parallel()

		s, stub := newTestServer(t)
		stub.Seed(testDatabase, "playlists", appwrite.Document{"$id": "p1", "nome": "Natal"})

		w := doRequest(t, s, http.MethodGet, "/api/playlists/p1", "secret", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		result := decodeBody(t, w)
		if result["$id"] != "p1" || result["nome"] != "Natal" {
			t.Errorf("取得結果が不正: %v", result)
		}
	})

	t.Run("存在しないプレイリストは404を返す", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestServer(t)
		w := doRequest(t, s, http.MethodGet, "/api/playlists/none", "secret", nil)

		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

// TestPlaylistMusicas はプレイリスト内楽曲ルートのテスト。
func TestPlaylistMusicas(t *testing.T) {
	t.Parallel()

	t.Run("指定したプレイリストの行だけをordemの昇順で返す", func(t *testing.T) {
		t.Parallel()

		s, stub := newTestServer(t)
		stub.Seed(testDatabase, "playlist_musicas",
			appwrite.Document{"$id": "e3", "playlist_id": "p1", "musica_id": "m3", "ordem": 3},
			appwrite.Document{"$id": "x1", "playlist_id": "p2", "musica_id": "m1", "ordem": 1},
			appwrite.Document{"$id": "e1", "playlist_id": "p1", "musica_id": "m1", "ordem": 1},
			appwrite.Document{"$id": "e10", "playlist_id": "p1", "musica_id": "m9", "ordem": 10},
			appwrite.Document{"$id": "e2", "playlist_id": "p1", "musica_id": "m2", "ordem": 2},
		)

		w := doRequest(t, s, http.MethodGet, "/api/playlist-musicas/p1", "secret", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		result := decodeBody(t, w)
		if ids := documentIDs(t, result); !reflect.DeepEqual(ids, []string{"e1", "e2", "e3", "e10"}) {
			t.Errorf("並び順: got %v", ids)
		}
		if result["total"] != float64(4) {
			t.Errorf("total: got %v, want 4", result["total"])
		}

		queries := stub.Requests()[0].Queries
		want := []string{
			`{"method":"equal","attribute":"playlist_id","values":["p1"]}`,
			`{"method":"orderAsc","attribute":"ordem"}`,
		}
		if !reflect.DeepEqual(queries, want) {
			t.Errorf("queries: got %v, want %v", queries, want)
		}
	})

	t.Run("該当する行が無い場合は空の一覧を返す", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestServer(t)
		result := decodeBody(t, doRequest(t, s, http.MethodGet, "/api/playlist-musicas/vazia", "secret", nil))

		if ids := documentIDs(t, result); len(ids) != 0 {
			t.Errorf("ids: got %v, want empty", ids)
		}
	})

	t.Run("追加した楽曲が一覧に含まれる", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestServer(t)
		body := map[string]any{"playlist_id": "p1", "musica_id": "m1", "ordem": 1}

		w := doRequest(t, s, http.MethodPost, "/api/playlist-musicas", "secret", body)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		created := decodeBody(t, w)

		ids := documentIDs(t, decodeBody(t, doRequest(t, s, http.MethodGet, "/api/playlist-musicas/p1", "secret", nil)))
		if len(ids) != 1 || ids[0] != created["$id"] {
			t.Errorf("ids: got %v, want [%v]", ids, created["$id"])
		}
	})
}

// TestDocumentRelay はバックエンドのレスポンスが値と形を変えずに返ることのテスト。
func TestDocumentRelay(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/documents") {
			_, _ = w.Write([]byte(`{"total":1,"documents":[{"$id":"a","numero":9007199254740993}],"extra":"x"}`))
			return
		}
		_, _ = w.Write([]byte(`{"$id":"a","numero":9007199254740993,"nested":{"n":12345678901234567890}}`))
	}))
	t.Cleanup(backend.Close)

	s, _ := newTestServer(t, func(cfg *config.Config) { cfg.Appwrite.Endpoint = backend.URL })

	t.Run("一覧の大きな整数と未知のフィールドを保持する", func(t *testing.T) {
		t.Parallel()

		w := doRequest(t, s, http.MethodGet, "/api/musicas", "secret", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		body := w.Body.String()
		for _, want := range []string{`"numero":9007199254740993`, `"extra":"x"`, `"total":1`} {
			if !strings.Contains(body, want) {
				t.Errorf("レスポンスに %s が含まれていない: %s", want, body)
			}
		}
	})

	t.Run("単一ドキュメントの数値を丸めない", func(t *testing.T) {
		t.Parallel()

		w := doRequest(t, s, http.MethodGet, "/api/playlists/a", "secret", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		body := w.Body.String()
		for _, want := range []string{`"numero":9007199254740993`, `"n":12345678901234567890`} {
			if !strings.Contains(body, want) {
				t.Errorf("レスポンスに %s が含まれていない: %s", want, body)
			}
		}
	})
}
