package ui

import (
	"context"
	"crypto/rand"
	"errors"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colhash/internal/anonymize"
	internaldb "colhash/internal/db"
	"colhash/internal/db/repository"
	"colhash/internal/domain"
	"colhash/internal/middleware"
	"colhash/internal/sqlast"
)

func newTestRouter(t *testing.T, validator middleware.JWTValidator) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := internaldb.OpenTestStore(t, internaldb.DriverSQLite)
	repo := repository.NewHashRecordRepo(store.WriteDB, store.ReadDB)
	svc := anonymize.NewService(sqlast.NewCodec(), repo,
		anonymize.NewGenerator(rand.Reader, anonymize.AlgorithmHMACSHA256), logger)

	mysql, _ := sqlast.LookupDialect("mysql")
	h := NewHandler(svc, validator, mysql, false)

	r := chi.NewRouter()
	r.Route("/ui", func(r chi.Router) { MountRoutes(r, h, logger) })
	return r
}

const testCSRF = "csrf-test-token"

func runAction(t *testing.T, router http.Handler, action, sql, dialect string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{}
	form.Set("csrf_token", testCSRF)
	form.Set("action", action)
	form.Set("sql", sql)
	form.Set("dialect", dialect)

	req := httptest.NewRequest(http.MethodPost, "/ui/run", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRF})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// resultText extracts the rendered result block.
func resultText(t *testing.T, body string) string {
	t.Helper()
	const open = `<code id="result">`
	start := strings.Index(body, open)
	require.GreaterOrEqual(t, start, 0, "no result in page: %s", body)
	rest := body[start+len(open):]
	end := strings.Index(rest, "</code>")
	require.GreaterOrEqual(t, end, 0)
	return html.UnescapeString(rest[:end])
}

func TestEditorPage(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/?dialect=PostgreSQL", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="postgresql" selected>PostgresQL</option>`)
	assert.Contains(t, body, `value="rebuild"`)
	assert.Contains(t, body, `name="csrf_token"`)
	assert.NotContains(t, body, "Sign out")
	assert.Contains(t, rec.Header().Get("Set-Cookie"), csrfCookieName+"=")
}

func TestEditorRun_RequiresCSRF(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/ui/run", strings.NewReader("action=hash&sql=SELECT+a+FROM+t"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEditorRun_HashThenUnhash(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := runAction(t, router, actionHash, "SELECT id, email FROM users", "mysql")
	require.Equal(t, http.StatusOK, rec.Code)
	hashed := resultText(t, rec.Body.String())
	assert.NotContains(t, hashed, "email")

	rec = runAction(t, router, actionUnhash, hashed, "mysql")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SELECT id, email FROM users", resultText(t, rec.Body.String()))
}

func TestEditorRun_ModifyThenRebuild(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := runAction(t, router, actionModify, "SELECT id, email FROM users", "mysql")
	require.Equal(t, http.StatusOK, rec.Code)
	tree := resultText(t, rec.Body.String())
	assert.Contains(t, tree, `"stmts"`)
	assert.NotContains(t, tree, `"email"`)

	rec = runAction(t, router, actionRebuild, tree, "mysql")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SELECT id, email FROM users", resultText(t, rec.Body.String()))
}

func TestEditorRun_Parse(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := runAction(t, router, actionParse, "SELECT id FROM users", "mysql")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, resultText(t, rec.Body.String()), `"column_ref"`)
}

func TestEditorRun_Errors(t *testing.T) {
	router := newTestRouter(t, nil)

	tests := []struct {
		name   string
		action string
		sql    string
		want   string
	}{
		{"rebuild needs an AST", actionRebuild, "SELECT 1", "ValidationError: Provide an AST object to rebuild."},
		{"grammar", actionHash, "SELEC id FROM", "ParseError: "},
		{"unknown action", "drop", "SELECT 1", `ValidationError: unknown action &#34;drop&#34;`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := runAction(t, router, tt.action, tt.sql, "mysql")
			require.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, `role="alert"`)
			assert.Contains(t, body, tt.want)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "StoreError: mapping store unavailable", errorMessage(domain.ErrStore("insert", errors.New("/srv/db locked"))))
	assert.Equal(t, "Error: internal error", errorMessage(errors.New("boom")))
	assert.Equal(t, "ConflictError: dup", errorMessage(domain.ErrConflict("dup")))
}

type subjectValidator struct{}

func (subjectValidator) Validate(_ context.Context, token string) (*middleware.JWTClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &middleware.JWTClaims{Subject: "alice"}, nil
}

func TestAuth_RedirectsToLogin(t *testing.T) {
	router := newTestRouter(t, subjectValidator{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/ui/login?error=missing+bearer+token", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/login?error=missing+bearer+token", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error: missing bearer token")
}

func TestAuth_CookieSignIn(t *testing.T) {
	router := newTestRouter(t, subjectValidator{})

	form := url.Values{"csrf_token": {testCSRF}, "token": {"good"}}
	req := httptest.NewRequest(http.MethodPost, "/ui/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRF})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	var bearer *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == bearerCookieName {
			bearer = c
		}
	}
	require.NotNil(t, bearer)
	assert.Equal(t, "good", bearer.Value)
	assert.True(t, bearer.HttpOnly)

	rec = runAction(t, router, actionHash, "SELECT id FROM users", "mysql", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sign out")

	rec = runAction(t, router, actionHash, "SELECT id FROM users", "mysql", &http.Cookie{Name: bearerCookieName, Value: "stale"})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/ui/login?error=invalid+bearer+token", rec.Header().Get("Location"))
}

func TestLoginPage_AuthDisabledRedirects(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/login", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/ui/", rec.Header().Get("Location"))
}
