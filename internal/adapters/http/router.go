package httpadapter

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mindset-labs/rag-ai/internal/config"
	"github.com/mindset-labs/rag-ai/internal/core/ports"
	"github.com/mindset-labs/rag-ai/internal/observability/metrics"
)

const (
	maxUploadBytes      = 64 << 20
	maxInFlightRequests = 128
	backpressureWait    = 50 * time.Millisecond
)

// Services groups the application services the router exposes.
type Services struct {
	Chat      ports.ChatService
	Documents ports.DocumentService
	Ingestion ports.IngestionService
	Summaries ports.SummaryService
	Bots      ports.BotService

	// DocumentStore backs the read-only listing endpoints.
	DocumentStore ports.DocumentRepository
}

type Router struct {
	cfg     config.Config
	svc     Services
	logger  *slog.Logger
	metrics *metrics.HTTPServerMetrics
}

func NewRouter(cfg config.Config, svc Services, logger *slog.Logger, m *metrics.HTTPServerMetrics) *Router {
	return &Router{
		cfg:     cfg,
		svc:     svc,
		logger:  logger,
		metrics: m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/chat", rt.chat)
	mux.HandleFunc("/v1/conversations/", rt.deleteConversation)
	mux.HandleFunc("/v1/documents", rt.documents)
	mux.HandleFunc("/v1/documents/", rt.documentByID)
	mux.HandleFunc("/v1/embeddings", rt.deleteEmbeddings)
	mux.HandleFunc("/v1/summaries/regenerate", rt.regenerateSummaries)
	mux.HandleFunc("/v1/summaries/regenerate-missing", rt.regenerateMissingSummaries)
	mux.HandleFunc("/v1/bots", rt.createBot)
	mux.HandleFunc("/v1/bots/", rt.attachDocument)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.cfg.ServiceName, handler)
	}
	handler = backpressureMiddleware(handler, maxInFlightRequests, backpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	handler = accessLogMiddleware(rt.logger, handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		BotID          string `json:"bot_id"`
		ConversationID string `json:"conversation_id"`
		UserID         string `json:"user_id"`
		Query          string `json:"query"`
		PrivateMode    bool   `json:"private_mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.BotID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bot_id is required"})
		return
	}

	start := time.Now()
	resp, err := rt.svc.Chat.GetChatRagResponse(r.Context(), ports.ChatRequest{
		BotID:          req.BotID,
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
		UserQuery:      req.Query,
		PrivateMode:    req.PrivateMode,
	})
	if err != nil {
		rt.writeError(w, err)
		return
	}

	if rt.metrics != nil {
		mode := "persistent"
		if req.PrivateMode {
			mode = "private"
		}
		rt.metrics.RecordRAGModeRequest(rt.cfg.ServiceName, "/v1/chat", mode)
		rt.metrics.RecordRAGObservation(rt.cfg.ServiceName, "/v1/chat", len(resp.Chunks), time.Since(start))
		if resp.BlockedReason != "" {
			rt.metrics.RecordBlockedResponse(rt.cfg.ServiceName, "/v1/chat", resp.BlockedReason)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) deleteConversation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/conversations/")
	if err := rt.svc.Chat.DeleteChatData(r.Context(), id); err != nil {
		rt.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) documents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadDocument(w, r)
	case http.MethodGet:
		docs, err := rt.svc.DocumentStore.List(r.Context())
		if err != nil {
			rt.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, docs)
	default:
		methodNotAllowed(w)
	}
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	req, err := parseUploadRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	doc, err := rt.svc.Documents.Upload(r.Context(), req)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

// parseUploadRequest accepts either a multipart form with a "file" part
// or a plain JSON body with inline content.
func parseUploadRequest(r *http.Request) (ports.UploadRequest, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/") {
		var body struct {
			Name         string `json:"name"`
			Description  string `json:"description"`
			Type         string `json:"type"`
			Content      string `json:"content"`
			ChunkSize    int    `json:"chunk_size"`
			ChunkOverlap int    `json:"chunk_overlap"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return ports.UploadRequest{}, errInvalidJSON
		}
		return ports.UploadRequest{
			Name:         body.Name,
			Description:  body.Description,
			Type:         body.Type,
			Content:      []byte(body.Content),
			ChunkSize:    body.ChunkSize,
			ChunkOverlap: body.ChunkOverlap,
		}, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return ports.UploadRequest{}, errInvalidMultipart
	}

	req := ports.UploadRequest{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Type:        r.FormValue("type"),
	}
	req.ChunkSize, _ = strconv.Atoi(r.FormValue("chunk_size"))
	req.ChunkOverlap, _ = strconv.Atoi(r.FormValue("chunk_overlap"))

	file, fileHeader, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		content, readErr := io.ReadAll(file)
		if readErr != nil {
			return ports.UploadRequest{}, readErr
		}
		req.Content = content
		if req.Name == "" {
			req.Name = fileHeader.Filename
		}
		if req.Type == "" {
			req.Type = fileHeader.Header.Get("Content-Type")
		}
	}
	return req, nil
}

func (rt *Router) documentByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	if sub == "embeddings" {
		rt.createEmbeddings(w, r, id)
		return
	}
	if sub != "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		doc, err := rt.svc.Documents.Get(r.Context(), id)
		if err != nil {
			rt.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	case http.MethodPut:
		content, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unable to read request body"})
			return
		}
		doc, err := rt.svc.Documents.Replace(r.Context(), id, content)
		if err != nil {
			rt.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, doc)
	case http.MethodDelete:
		if err := rt.svc.Documents.Delete(r.Context(), id); err != nil {
			rt.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

func (rt *Router) createEmbeddings(w http.ResponseWriter, r *http.Request, documentID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		RegenerateSummaries bool `json:"regenerate_summaries"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
	}

	if err := rt.svc.Ingestion.CreateEmbeddings(r.Context(), documentID, req.RegenerateSummaries); err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

func (rt *Router) deleteEmbeddings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}

	documentID := r.URL.Query().Get("documentID")
	if err := rt.svc.Ingestion.DeleteEmbeddings(r.Context(), documentID); err != nil {
		rt.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) regenerateSummaries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		DocumentID string `json:"document_id"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
	}

	if err := rt.svc.Summaries.RegenerateSummaries(r.Context(), req.DocumentID); err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) regenerateMissingSummaries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	if err := rt.svc.Summaries.RegenerateMissingSummaries(r.Context()); err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) createBot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var bot domainBotRequest
	if err := json.NewDecoder(r.Body).Decode(&bot); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	created, err := rt.svc.Bots.CreateBot(r.Context(), bot.toDomain())
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (rt *Router) attachDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/bots/")
	botID, sub, _ := strings.Cut(rest, "/")
	if botID == "" || sub != "documents" {
		http.NotFound(w, r)
		return
	}

	var req struct {
		DocumentID string `json:"document_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	rel, err := rt.svc.Bots.AttachDocument(r.Context(), botID, req.DocumentID)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rel)
}

func (rt *Router) writeError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= 500 {
		rt.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
