// Package api provides the HTTP handlers for the column hashing REST API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"colhash/internal/anonymize"
	"colhash/internal/domain"
	"colhash/internal/sqlast"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Anonymizer is the hashing service the handlers call into.
type Anonymizer interface {
	Hash(ctx context.Context, req anonymize.Request) (*anonymize.Result, error)
	Unhash(ctx context.Context, req anonymize.Request) (*anonymize.Result, error)
	ModifiedAST(ctx context.Context, sql string) (sqlast.Tree, error)
	RebuildQuery(ctx context.Context, tree sqlast.Tree) (string, error)
	ParseTree(sql string) (sqlast.Tree, error)
}

// Pinger reports whether the mapping store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the /v1 API and the health probe.
type Handler struct {
	svc    Anonymizer
	store  Pinger
	logger *slog.Logger
}

// NewHandler creates a Handler. store may be nil, in which case /health
// reports only that the process is up.
func NewHandler(svc Anonymizer, store Pinger, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, store: store, logger: logger}
}

// Routes registers the API endpoints on r. The caller mounts it under /v1.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/sql", h.SQL)
	r.Post("/parse", h.Parse)
	r.Post("/modify", h.Modify)
	r.Post("/rebuild", h.Rebuild)
	r.Get("/dialects", h.ListDialects)
}

// SQL hashes (hash=true) or unhashes (anything else) the column names of
// the statement in the JSON body.
func (h *Handler) SQL(w http.ResponseWriter, r *http.Request) {
	var req anonymize.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	hash, _ := strconv.ParseBool(r.URL.Query().Get("hash"))
	var (
		res *anonymize.Result
		err error
	)
	if hash {
		res, err = h.svc.Hash(r.Context(), req)
	} else {
		res, err = h.svc.Unhash(r.Context(), req)
	}
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Parse returns the raw tree of the SQL text body.
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	sql, err := readText(w, r)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	tree, err := h.svc.ParseTree(sql)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// Modify returns the tree of the SQL text body with its columns hashed.
func (h *Handler) Modify(w http.ResponseWriter, r *http.Request) {
	sql, err := readText(w, r)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	tree, err := h.svc.ModifiedAST(r.Context(), sql)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

type rebuildResponse struct {
	Query string `json:"query"`
}

// Rebuild prints the tree in the body with hashed columns restored.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	tree, err := sqlast.DecodeTree(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	query, err := h.svc.RebuildQuery(r.Context(), tree)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rebuildResponse{Query: query})
}

type dialectResponse struct {
	Name    string `json:"name"`
	Display string `json:"display"`
}

// ListDialects returns the supported dialects.
func (h *Handler) ListDialects(w http.ResponseWriter, _ *http.Request) {
	dialects := sqlast.Dialects()
	out := make([]dialectResponse, len(dialects))
	for i, d := range dialects {
		out[i] = dialectResponse{Name: d.Name, Display: d.Display}
	}
	writeJSON(w, http.StatusOK, out)
}

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store,omitempty"`
}

// Health reports liveness and, when a store is wired, its reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("health check: store unreachable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Store: "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Store: "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return domain.ErrValidation("invalid JSON body: %v", err)
	}
	return nil
}

func readText(w http.ResponseWriter, r *http.Request) (string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", domain.ErrValidation("request body exceeds %d bytes", tooLarge.Limit)
		}
		return "", domain.ErrValidation("read body: %v", err)
	}
	return string(body), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
