package appwrite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Document はAppwriteのドキュメント。$id や $createdAt などのメタデータを含む。
type Document map[string]any

// DocumentList はドキュメント一覧のレスポンス。
type DocumentList struct {
	// Total は条件に一致するドキュメントの総数。
	Total int `json:"total"`
	// Documents は取得したドキュメント。
	Documents []Document `json:"documents"`
	// Extra は total と documents 以外のフィールド。エンコード時にそのまま戻す。
	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON は既知のフィールド以外もExtraに保持してデコードする。
func (l *DocumentList) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*l = DocumentList{}
	if raw, ok := fields["total"]; ok {
		if err := json.Unmarshal(raw, &l.Total); err != nil {
			return fmt.Errorf("total: %w", err)
		}
		delete(fields, "total")
	}
	if raw, ok := fields["documents"]; ok {
		if err := decodeJSON(raw, &l.Documents); err != nil {
			return fmt.Errorf("documents: %w", err)
		}
		delete(fields, "documents")
	}
	if len(fields) > 0 {
		l.Extra = fields
	}
	return nil
}

// MarshalJSON はExtraを含めてエンコードする。
func (l DocumentList) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(l.Extra)+2)
	for k, v := range l.Extra {
		out[k] = v
	}
	out["total"] = l.Total
	documents := l.Documents
	if documents == nil {
		documents = []Document{}
	}
	out["documents"] = documents
	return json.Marshal(out)
}

// Databases はドキュメント操作のAPI。
type Databases struct {
	client *Client
}

func documentsPath(databaseID, collectionID string) string {
	return "/databases/" + url.PathEscape(databaseID) + "/collections/" + url.PathEscape(collectionID) + "/documents"
}

// ListDocuments はコレクション内のドキュメントをクエリに従って取得する。
func (d *Databases) ListDocuments(ctx context.Context, databaseID, collectionID string, queries ...Query) (*DocumentList, error) {
	if err := requireParams("databaseId", databaseID, "collectionId", collectionID); err != nil {
		return nil, err
	}
	var params url.Values
	if len(queries) > 0 {
		params = url.Values{}
		for _, q := range queries {
			params.Add("queries[]", q.String())
		}
	}
	list := &DocumentList{}
	if err := d.client.call(ctx, http.MethodGet, documentsPath(databaseID, collectionID), params, nil, list); err != nil {
		return nil, err
	}
	if list.Documents == nil {
		list.Documents = []Document{}
	}
	return list, nil
}

// GetDocument はIDを指定してドキュメントを1件取得する。
func (d *Databases) GetDocument(ctx context.Context, databaseID, collectionID, documentID string) (Document, error) {
	if err := requireParams("databaseId", databaseID, "collectionId", collectionID, "documentId", documentID); err != nil {
		return nil, err
	}
	var doc Document
	path := documentsPath(databaseID, collectionID) + "/" + url.PathEscape(documentID)
	if err := d.client.call(ctx, http.MethodGet, path, nil, nil, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// CreateDocument はドキュメントを作成する。dataは任意のJSONオブジェクト。
func (d *Databases) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data any) (Document, error) {
	if err := requireParams("databaseId", databaseID, "collectionId", collectionID, "documentId", documentID); err != nil {
		return nil, err
	}
	body := map[string]any{
		"documentId": documentID,
		"data":       data,
	}
	var doc Document
	if err := d.client.call(ctx, http.MethodPost, documentsPath(databaseID, collectionID), nil, body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateDocument はドキュメントの一部の属性を更新する。
func (d *Databases) UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data any) (Document, error) {
	if err := requireParams("databaseId", databaseID, "collectionId", collectionID, "documentId", documentID); err != nil {
		return nil, err
	}
	body := map[string]any{"data": data}
	var doc Document
	path := documentsPath(databaseID, collectionID) + "/" + url.PathEscape(documentID)
	if err := d.client.call(ctx, http.MethodPatch, path, nil, body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocument はドキュメントを削除する。
func (d *Databases) DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error {
	if err := requireParams("databaseId", databaseID, "collectionId", collectionID, "documentId", documentID); err != nil {
		return err
	}
	path := documentsPath(databaseID, collectionID) + "/" + url.PathEscape(documentID)
	return d.client.call(ctx, http.MethodDelete, path, nil, nil, nil)
}
