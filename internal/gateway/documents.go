package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/VictorMH77/musicas-ippi-v2/pkg/appwrite"
)

// handleListDocuments はコレクションのドキュメント一覧を返すハンドラを返す。
// queriesは固定の並び順や絞り込み条件。
func (s *Server) handleListDocuments(collectionID string, queries ...appwrite.Query) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := s.sessionClient(c).Databases().ListDocuments(c.Request.Context(), s.cfg.Appwrite.DatabaseID, collectionID, queries...)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// handleListPlaylistMusicas はプレイリストに含まれる楽曲を ordem の昇順で返すハンドラを返す。
func (s *Server) handleListPlaylistMusicas() gin.HandlerFunc {
	return func(c *gin.Context) {
		queries := []appwrite.Query{
			appwrite.Equal("playlist_id", c.Param("playlistId")),
			appwrite.OrderAsc("ordem"),
		}
		list, err := s.sessionClient(c).Databases().ListDocuments(c.Request.Context(), s.cfg.Appwrite.DatabaseID, s.cfg.Appwrite.Collections.PlaylistMusicas, queries...)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// handleGetDocument はIDを指定してドキュメントを1件返すハンドラを返す。
func (s *Server) handleGetDocument(collectionID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := s.sessionClient(c).Databases().GetDocument(c.Request.Context(), s.cfg.Appwrite.DatabaseID, collectionID, c.Param("id"))
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

// handleCreateDocument はリクエストボディをそのままドキュメントとして作成するハンドラを返す。
func (s *Server) handleCreateDocument(collectionID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := readJSONBody(c)
		if err != nil {
			respondBadBody(c, err)
			return
		}

		doc, err := s.sessionClient(c).Databases().CreateDocument(c.Request.Context(), s.cfg.Appwrite.DatabaseID, collectionID, appwrite.UniqueID(), data)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

// handleUpdateDocument はリクエストボディの属性でドキュメントを更新するハンドラを返す。
func (s *Server) handleUpdateDocument(collectionID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := readJSONBody(c)
		if err != nil {
			respondBadBody(c, err)
			return
		}

		doc, err := s.sessionClient(c).Databases().UpdateDocument(c.Request.Context(), s.cfg.Appwrite.DatabaseID, collectionID, c.Param("id"), data)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

// handleDeleteDocument はドキュメントを削除するハンドラを返す。
func (s *Server) handleDeleteDocument(collectionID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.sessionClient(c).Databases().DeleteDocument(c.Request.Context(), s.cfg.Appwrite.DatabaseID, collectionID, c.Param("id")); err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
