package appwritestub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/VictorMH77/musicas-ippi-v2/pkg/appwrite"
)

// Request はスタブが受け取ったリクエストの記録。
type Request struct {
	Method  string
	Path    string
	Queries []string
	Header  http.Header
	Body    map[string]any
}

// Server はインメモリのAppwriteサーバー。
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	collections map[string][]appwrite.Document
	users       map[string]appwrite.User
	sessions    map[string]appwrite.Session
	failures    map[string]appwrite.Error
	requests    []Request
	clock       time.Time
	sessionSeq  int
}

// Start はスタブサーバーを起動する。終了時にCloseを呼ぶこと。
func Start() *Server {
	s := &Server{
		collections: make(map[string][]appwrite.Document),
		users:       make(map[string]appwrite.User),
		sessions:    make(map[string]appwrite.Session),
		failures:    make(map[string]appwrite.Error),
		clock:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Endpoint はAppwriteクライアントに渡すベースURLを返す。
func (s *Server) Endpoint() string {
	return s.URL + "/v1"
}

// Seed はコレクションにドキュメントを追加する。
func (s *Server) Seed(databaseID, collectionID string, docs ...appwrite.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := collectionKey(databaseID, collectionID)
	for _, d := range docs {
		doc := appwrite.Document{}
		for k, v := range d {
			doc[k] = v
		}
		if _, ok := doc["$createdAt"]; !ok {
			doc["$createdAt"] = s.tick()
		}
		s.collections[key] = append(s.collections[key], doc)
	}
}

// Fail はメソッドとパスの組に対して固定のエラーを返させる。
func (s *Server) Fail(method, path string, apiErr appwrite.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = apiErr
}

// Requests は受け取ったリクエストの一覧を返す。
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// tick は単調増加する作成日時を返す。呼び出し側でロックを保持すること。
func (s *Server) tick() string {
	s.clock = s.clock.Add(time.Second)
	return s.clock.Format(time.RFC3339Nano)
}

// nextSessionID は重複しないセッションIDを返す。呼び出し側でロックを保持すること。
func (s *Server) nextSessionID() string {
	s.sessionSeq++
	return fmt.Sprintf("session-%d", s.sessionSeq)
}

func collectionKey(databaseID, collectionID string) string {
	return databaseID + "/" + collectionID
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1")

	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, Request{
		Method:  r.Method,
		Path:    path,
		Queries: r.URL.Query()["queries[]"],
		Header:  r.Header.Clone(),
		Body:    body,
	})

	if apiErr, ok := s.failures[r.Method+" "+path]; ok {
		writeError(w, apiErr.Code, apiErr.Message, apiErr.Type)
		return
	}

	if r.Header.Get("X-Appwrite-Project") == "" {
		writeError(w, http.StatusBadRequest, "Project ID not found", "general_argument_invalid")
		return
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(segments) >= 5 && segments[0] == "databases" && segments[2] == "collections" && segments[4] == "documents":
		s.serveDocuments(w, r, collectionKey(segments[1], segments[3]), segments[5:], body)
	case len(segments) >= 1 && segments[0] == "account":
		s.serveAccount(w, r, segments[1:], body)
	default:
		writeError(w, http.StatusNotFound, "The requested route was not found.", "general_route_not_found")
	}
}

func (s *Server) serveDocuments(w http.ResponseWriter, r *http.Request, key string, rest []string, body map[string]any) {
	if r.Header.Get("X-Appwrite-Session") == "" && r.Header.Get("X-Appwrite-Key") == "" {
		writeError(w, http.StatusUnauthorized, "The current user is not authorized to perform the requested action.", "user_unauthorized")
		return
	}

	if len(rest) == 0 {
		switch r.Method {
		case http.MethodGet:
			s.listDocuments(w, r, key)
		case http.MethodPost:
			data, _ := body["data"].(map[string]any)
			doc := appwrite.Document{}
			for k, v := range data {
				doc[k] = v
			}
			id, _ := body["documentId"].(string)
			doc["$id"] = id
			now := s.tick()
			doc["$createdAt"] = now
			doc["$updatedAt"] = now
			s.collections[key] = append(s.collections[key], doc)
			writeJSON(w, http.StatusCreated, doc)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed", "general_route_not_found")
		}
		return
	}

	id := rest[0]
	idx := -1
	for i, d := range s.collections[key] {
		if d["$id"] == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeError(w, http.StatusNotFound, "Document with the requested ID could not be found.", "document_not_found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.collections[key][idx])
	case http.MethodPatch:
		doc := s.collections[key][idx]
		data, _ := body["data"].(map[string]any)
		for k, v := range data {
			doc[k] = v
		}
		doc["$updatedAt"] = s.tick()
		writeJSON(w, http.StatusOK, doc)
	case http.MethodDelete:
		docs := s.collections[key]
		s.collections[key] = append(docs[:idx:idx], docs[idx+1:]...)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "general_route_not_found")
	}
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request, key string) {
	docs := make([]appwrite.Document, 0, len(s.collections[key]))
	docs = append(docs, s.collections[key]...)

	for _, raw := range r.URL.Query()["queries[]"] {
		var q query
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid query: %s", raw), "general_query_invalid")
			return
		}
		switch q.Method {
		case "equal":
			docs = filterEqual(docs, q.Attribute, q.Values)
		case "orderAsc":
			sortBy(docs, q.Attribute, false)
		case "orderDesc":
			sortBy(docs, q.Attribute, true)
		default:
			writeError(w, http.StatusBadRequest, "Invalid query method: "+q.Method, "general_query_invalid")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"total": len(docs), "documents": docs})
}

// query はクライアントが queries[] で送るJSON形式のクエリ。
type query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute"`
	Values    []any  `json:"values"`
}

func filterEqual(docs []appwrite.Document, attribute string, values []any) []appwrite.Document {
	out := docs[:0]
	for _, d := range docs {
		for _, v := range values {
			if fmt.Sprint(d[attribute]) == fmt.Sprint(v) {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

func sortBy(docs []appwrite.Document, attribute string, desc bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		if desc {
			return lessValue(docs[j][attribute], docs[i][attribute])
		}
		return lessValue(docs[i][attribute], docs[j][attribute])
	})
}

func lessValue(a, b any) bool {
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if aok && bok {
		return fa < fb
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func (s *Server) serveAccount(w http.ResponseWriter, r *http.Request, rest []string, body map[string]any) {
	route := r.Method + " /" + strings.Join(rest, "/")
	switch {
	case route == "POST /":
		email, _ := body["email"].(string)
		for _, u := range s.users {
			if u["email"] == email {
				writeError(w, http.StatusConflict, "A user with the same id, email, or phone already exists in this project.", "user_already_exists")
				return
			}
		}
		id, _ := body["userId"].(string)
		user := appwrite.User{
			"$id":        id,
			"$createdAt": s.tick(),
			"email":      email,
			"name":       body["name"],
			"password":   body["password"],
		}
		s.users[id] = user
		writeJSON(w, http.StatusCreated, publicUser(user))
	case route == "POST /sessions/email":
		email, _ := body["email"].(string)
		password, _ := body["password"].(string)
		for _, u := range s.users {
			if u["email"] == email && u["password"] == password {
				id := s.nextSessionID()
				session := appwrite.Session{
					"$id":    id,
					"userId": u["$id"],
					"secret": "secret-" + id,
				}
				s.sessions[id] = session
				writeJSON(w, http.StatusCreated, session)
				return
			}
		}
		writeError(w, http.StatusUnauthorized, "Invalid credentials. Please check the email and password.", "user_invalid_credentials")
	case route == "GET /":
		user, ok := s.sessionUser(r.Header.Get("X-Appwrite-Session"))
		if !ok {
			writeError(w, http.StatusUnauthorized, "User (role: guests) missing scope (account)", "general_unauthorized_scope")
			return
		}
		writeJSON(w, http.StatusOK, publicUser(user))
	case r.Method == http.MethodDelete && len(rest) == 2 && rest[0] == "sessions":
		id := rest[1]
		if id == "current" {
			for sid, sess := range s.sessions {
				if sess["secret"] == r.Header.Get("X-Appwrite-Session") {
					id = sid
				}
			}
		}
		if _, ok := s.sessions[id]; !ok {
			writeError(w, http.StatusNotFound, "The current user session could not be found.", "user_session_not_found")
			return
		}
		delete(s.sessions, id)
		w.WriteHeader(http.StatusNoContent)
	case route == "POST /recovery":
		email, _ := body["email"].(string)
		for _, u := range s.users {
			if u["email"] == email {
				writeJSON(w, http.StatusCreated, map[string]any{"$id": "token-1", "userId": u["$id"]})
				return
			}
		}
		writeError(w, http.StatusNotFound, "User with the requested ID could not be found.", "user_not_found")
	default:
		writeError(w, http.StatusNotFound, "The requested route was not found.", "general_route_not_found")
	}
}

// sessionUser はセッションシークレットからユーザーを引く。呼び出し側でロックを保持すること。
func (s *Server) sessionUser(secret string) (appwrite.User, bool) {
	if secret == "" {
		return nil, false
	}
	for _, sess := range s.sessions {
		if sess["secret"] == secret {
			id, _ := sess["userId"].(string)
			u, ok := s.users[id]
			return u, ok
		}
	}
	return nil, false
}

// AddSession はテスト用にユーザーとセッションを直接登録し、セッションシークレットを返す。
func (s *Server) AddSession(userID, email, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = appwrite.User{"$id": userID, "email": email, "name": name, "$createdAt": s.tick()}
	id := s.nextSessionID()
	secret := "secret-" + id
	s.sessions[id] = appwrite.Session{"$id": id, "userId": userID, "secret": secret}
	return secret
}

func publicUser(u appwrite.User) appwrite.User {
	out := appwrite.User{}
	for k, v := range u {
		if k != "password" {
			out[k] = v
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, typ string) {
	writeJSON(w, status, map[string]any{
		"message": message,
		"code":    status,
		"type":    typ,
		"version": "1.6.0",
	})
}
