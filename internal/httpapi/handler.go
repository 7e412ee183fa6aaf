// Package httpapi exposes the assistant over HTTP. It owns wire formats and
// session identifiers; all legal-domain logic stays in the assist package.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/nyayasetu/legal-assistant-rag/internal/assist"
	"github.com/nyayasetu/legal-assistant-rag/internal/index"
	"github.com/nyayasetu/legal-assistant-rag/internal/ingest"
)

// Assistant is the narrow contract the transport consumes.
type Assistant interface {
	Route(ctx context.Context, q assist.Query) (assist.Answer, error)
}

type Handler struct {
	assistant Assistant
	ingester  *ingest.Service
	idx       index.Index
	history   assist.HistoryStore
	timeout   time.Duration
	log       *logrus.Entry
}

func NewHandler(
	assistant Assistant,
	ingester *ingest.Service,
	idx index.Index,
	history assist.HistoryStore,
	timeout time.Duration,
	log *logrus.Logger,
) *Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handler{
		assistant: assistant,
		ingester:  ingester,
		idx:       idx,
		history:   history,
		timeout:   timeout,
		log:       log.WithField("component", "http"),
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type chatRequest struct {
	Message        string `json:"message"`
	Language       string `json:"language,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
}

type chatResponse struct {
	Response       string                  `json:"response"`
	Confidence     float64                 `json:"confidence"`
	Source         string                  `json:"source"`
	Language       string                  `json:"language"`
	ConversationID string                  `json:"conversationId"`
	Citations      []assist.RetrievedChunk `json:"citations"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	// The transport mints conversation ids so the core can key history.
	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ans, err := h.assistant.Route(ctx, assist.Query{
		Text:           req.Message,
		Language:       req.Language,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		if errors.Is(err, assist.ErrEmptyQuery) {
			http.Error(w, "message is required", http.StatusBadRequest)
			return
		}
		// The router converts every downstream failure into an Answer, so
		// anything else here is a programming error.
		h.log.WithError(err).Error("route failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	citations := ans.Citations
	if citations == nil {
		citations = []assist.RetrievedChunk{}
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:       ans.Response,
		Confidence:     ans.Confidence,
		Source:         ans.Source,
		Language:       ans.Language,
		ConversationID: req.ConversationID,
		Citations:      citations,
	})
}

type uploadResponse struct {
	TotalPages   int    `json:"totalPages"`
	TotalChunks  int    `json:"totalChunks"`
	VectorsAfter int    `json:"vectorsAfter"`
	Message      string `json:"message"`
}

func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	res, err := h.ingester.IngestPDF(ctx, header.Filename, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		h.log.WithError(err).WithField("document", header.Filename).Error("ingestion failed")
		http.Error(w, "failed to process document", http.StatusUnprocessableEntity)
		return
	}

	after, err := h.idx.Count(ctx, index.KindUpload)
	if err != nil {
		after = -1
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		TotalPages:   res.Pages,
		TotalChunks:  res.Chunks,
		VectorsAfter: after,
		Message:      "document processed successfully",
	})
}

func (h *Handler) ClearDocuments(w http.ResponseWriter, r *http.Request) {
	if err := h.idx.Clear(r.Context(), index.KindUpload); err != nil {
		h.log.WithError(err).Error("clear documents failed")
		http.Error(w, "failed to clear documents", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "uploaded documents cleared"})
}

func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	conversationID := mux.Vars(r)["id"]
	if conversationID == "" {
		http.Error(w, "conversation id is required", http.StatusBadRequest)
		return
	}

	if err := h.history.Clear(r.Context(), conversationID); err != nil {
		h.log.WithError(err).Error("clear history failed")
		http.Error(w, "failed to clear history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "conversation history cleared"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
