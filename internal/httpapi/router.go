package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

func NewRouter(h *Handler) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/chat", h.Chat).Methods(http.MethodPost)
	r.HandleFunc("/documents", h.UploadDocument).Methods(http.MethodPost)
	r.HandleFunc("/documents", h.ClearDocuments).Methods(http.MethodDelete)
	r.HandleFunc("/history/{id}", h.ClearHistory).Methods(http.MethodDelete)

	return r
}
