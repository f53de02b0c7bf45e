package web

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/stupiduntilnot/sponsor/internal/chat"
	"github.com/stupiduntilnot/sponsor/internal/conversation"
	"github.com/stupiduntilnot/sponsor/internal/store"
)

//go:embed static
var staticFiles embed.FS

// Router exposes the chat core over HTTP: a submit/clear round-trip per the
// UI contract, stored-history retrieval, and the embedded single-page UI.
// Replies are returned whole; there is no token streaming.
type Router struct {
	mux      *http.ServeMux
	orch     *chat.Orchestrator
	sessions *SessionManager
	store    store.Store
}

// NewRouter wires handlers. st backs the /api/history read path and may be
// store.Nop.
func NewRouter(orch *chat.Orchestrator, sessions *SessionManager, st store.Store) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		orch:     orch,
		sessions: sessions,
		store:    st,
	}

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	r.mux.Handle("/", http.FileServer(http.FS(static)))
	r.mux.HandleFunc("/api/chat", r.handleChat)
	r.mux.HandleFunc("/api/clear", r.handleClear)
	r.mux.HandleFunc("/api/history", r.handleHistory)
	return r
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

type chatRequest struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	Message        string `json:"message"`
}

type chatResponse struct {
	ConversationID string               `json:"conversation_id"`
	History        conversation.History `json:"history"`
	Input          string               `json:"input"`
}

// handleChat is the onSubmit entry point: (message, history) in,
// (updatedHistory, clearedInput) out.
func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var in chatRequest
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if in.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	sess := r.sessions.GetOrCreate(in.ConversationID, in.UserID)
	input := chat.ClearedInput
	history := sess.WithHistory(func(h conversation.History) conversation.History {
		updated, cleared := r.orch.HandleTurn(req.Context(), sess.UserID, in.Message, h)
		input = cleared
		return updated
	})

	writeJSON(w, http.StatusOK, chatResponse{
		ConversationID: sess.ID,
		History:        history,
		Input:          input,
	})
}

type clearRequest struct {
	ConversationID string `json:"conversation_id"`
}

// handleClear is the onClear entry point: history and input both emptied.
func (r *Router) handleClear(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var in clearRequest
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if sess := r.sessions.Get(in.ConversationID); sess != nil {
		sess.Clear()
	}
	writeJSON(w, http.StatusOK, chatResponse{
		ConversationID: in.ConversationID,
		History:        conversation.History{},
		Input:          chat.ClearedInput,
	})
}

type historyResponse struct {
	Records []store.Record `json:"records"`
}

// handleHistory returns the stored records for a user, oldest first.
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := req.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	records, err := r.store.List(req.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("history read failed")
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Records: records})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}
