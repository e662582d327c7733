package ui

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

const bearerCookieName = "colhash_bearer"

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if !h.authEnabled() {
		http.Redirect(w, r, "/ui/", http.StatusSeeOther)
		return
	}
	renderHTML(w, http.StatusOK, loginPage(strings.TrimSpace(r.URL.Query().Get("error")), csrfField(r)))
}

// LoginSubmit stores the pasted bearer token in an HTTP-only cookie. The
// token is validated on the next request by the auth middleware.
func (h *Handler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "invalid form")
		return
	}
	token := strings.TrimSpace(r.Form.Get("token"))
	if token == "" {
		redirectWithError(w, r, "token is required")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     bearerCookieName,
		Value:    token,
		Path:     "/ui",
		HttpOnly: true,
		Secure:   h.Production,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
	http.Redirect(w, r, "/ui/", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     bearerCookieName,
		Path:     "/ui",
		HttpOnly: true,
		Secure:   h.Production,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/ui/login", http.StatusSeeOther)
}

// CookieHeaderBridge copies the sign-in cookie into the Authorization header
// so the bearer auth middleware can check it.
func (h *Handler) CookieHeaderBridge(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			if token := readCookie(r, bearerCookieName); token != "" {
				r.Header.Set("Authorization", "Bearer "+token)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectToLogin sends an unauthenticated browser to the sign-in page.
func RedirectToLogin(w http.ResponseWriter, r *http.Request, message string) {
	redirectWithError(w, r, message)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r, "/ui/login?error="+url.QueryEscape(message), http.StatusSeeOther)
}
