package ui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"colhash/internal/anonymize"
	"colhash/internal/domain"
	"colhash/internal/sqlast"
)

// Editor actions, one per form button.
const (
	actionHash    = "hash"
	actionUnhash  = "unhash"
	actionParse   = "parse"
	actionModify  = "modify"
	actionRebuild = "rebuild"
)

type editorState struct {
	SQL     string
	Dialect string
	Action  string
	Output  string
	Error   string
}

func (h *Handler) EditorPage(w http.ResponseWriter, r *http.Request) {
	state := editorState{Dialect: h.DefaultDialect.Name}
	if d, ok := sqlast.LookupDialect(r.URL.Query().Get("dialect")); ok {
		state.Dialect = d.Name
	}
	h.renderEditor(w, r, state)
}

func (h *Handler) EditorRun(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Bad Request", "Could not read the submitted form."))
		return
	}

	state := editorState{
		SQL:     r.Form.Get("sql"),
		Dialect: strings.TrimSpace(r.Form.Get("dialect")),
		Action:  r.Form.Get("action"),
	}
	if state.Dialect == "" {
		state.Dialect = h.DefaultDialect.Name
	}

	out, err := h.run(r.Context(), state)
	if err != nil {
		state.Error = errorMessage(err)
	} else {
		state.Output = out
	}
	h.renderEditor(w, r, state)
}

func (h *Handler) run(ctx context.Context, state editorState) (string, error) {
	req := anonymize.Request{SQL: state.SQL, Database: state.Dialect}

	switch state.Action {
	case actionHash:
		res, err := h.Service.Hash(ctx, req)
		if err != nil {
			return "", err
		}
		return res.Query, nil
	case actionUnhash:
		res, err := h.Service.Unhash(ctx, req)
		if err != nil {
			return "", err
		}
		return res.Query, nil
	case actionParse:
		tree, err := h.Service.ParseTree(state.SQL)
		if err != nil {
			return "", err
		}
		return indentJSON(tree)
	case actionModify:
		tree, err := h.Service.ModifiedAST(ctx, state.SQL)
		if err != nil {
			return "", err
		}
		return indentJSON(tree)
	case actionRebuild:
		tree, err := sqlast.DecodeTree(strings.NewReader(state.SQL))
		if err != nil {
			return "", domain.ErrValidation("Provide an AST object to rebuild.")
		}
		return h.Service.RebuildQuery(ctx, tree)
	default:
		return "", domain.ErrValidation("unknown action %q", state.Action)
	}
}

func indentJSON(tree sqlast.Tree) (string, error) {
	b, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// errorMessage formats err as "<kind>: <message>". Store and internal
// failures are not spelled out.
func errorMessage(err error) string {
	kind := domain.ErrorKind(err)
	var store *domain.StoreError
	switch {
	case errors.As(err, &store):
		return kind + ": mapping store unavailable"
	case kind == "Error":
		return kind + ": internal error"
	default:
		return kind + ": " + err.Error()
	}
}

func (h *Handler) renderEditor(w http.ResponseWriter, r *http.Request, state editorState) {
	renderHTML(w, http.StatusOK, editorPage(state, h.authEnabled(), csrfField(r)))
}
