// Package ui serves the server-rendered SQL editor.
package ui

import (
	"context"
	"net/http"

	gomponents "maragu.dev/gomponents"

	"colhash/internal/anonymize"
	"colhash/internal/middleware"
	"colhash/internal/sqlast"
)

// Anonymizer is the subset of the hashing service the editor drives.
type Anonymizer interface {
	Hash(ctx context.Context, req anonymize.Request) (*anonymize.Result, error)
	Unhash(ctx context.Context, req anonymize.Request) (*anonymize.Result, error)
	ModifiedAST(ctx context.Context, sql string) (sqlast.Tree, error)
	RebuildQuery(ctx context.Context, tree sqlast.Tree) (string, error)
	ParseTree(sql string) (sqlast.Tree, error)
}

type Handler struct {
	Service        Anonymizer
	Validator      middleware.JWTValidator // nil disables sign-in
	DefaultDialect sqlast.Dialect
	Production     bool
}

func NewHandler(svc Anonymizer, validator middleware.JWTValidator, defaultDialect sqlast.Dialect, production bool) *Handler {
	return &Handler{
		Service:        svc,
		Validator:      validator,
		DefaultDialect: defaultDialect,
		Production:     production,
	}
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func (h *Handler) authEnabled() bool {
	return h.Validator != nil
}
