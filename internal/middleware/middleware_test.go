package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"

	"portal/internal/auth"
	"portal/internal/domain"
	models "portal/internal/domain/models/docsystem"
	"portal/internal/httputil"
)

type fakeVerifier struct {
	claims map[string]*auth.Claims
}

func (f fakeVerifier) VerifyToken(token string) (*auth.Claims, error) {
	if c, ok := f.claims[token]; ok {
		return c, nil
	}
	return nil, domain.ErrUnauthorized
}

func (fakeVerifier) Close() error { return nil }

func echoPrincipal(w http.ResponseWriter, r *http.Request) {
	p, ok := httputil.GetPrincipal(r)
	if !ok {
		w.Write([]byte("anonymous"))
		return
	}
	w.Write([]byte(p.UserID + ":" + string(p.Role)))
}

func TestAuthenticate(t *testing.T) {
	verifier := fakeVerifier{claims: map[string]*auth.Claims{
		"good":   {Role: "authenticated", AppMetadata: map[string]any{"role": "investor"}},
		"noRole": {Role: "authenticated"},
	}}
	verifier.claims["good"].Subject = "u1"
	verifier.claims["noRole"].Subject = "u2"

	h := Authenticate(verifier, "role", slog.New(slog.DiscardHandler))(http.HandlerFunc(echoPrincipal))

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid", path: "/api/tree", header: "Bearer good", wantStatus: 200, wantBody: "u1:investor"},
		{name: "missing", path: "/api/tree", wantStatus: 401},
		{name: "wrong scheme", path: "/api/tree", header: "Basic good", wantStatus: 401},
		{name: "invalid", path: "/api/tree", header: "Bearer bad", wantStatus: 401},
		{name: "no portal role", path: "/api/tree", header: "Bearer noRole", wantStatus: 403},
		{name: "health is public", path: "/health", wantStatus: 200, wantBody: "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			c.Assert(w.Code, qt.Equals, tt.wantStatus)
			if tt.wantBody != "" {
				c.Assert(w.Body.String(), qt.Equals, tt.wantBody)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	gate := RequireRole(models.RoleAdmin, models.RoleGroupAdmin)(echoPrincipal)

	tests := []struct {
		name       string
		principal  *httputil.Principal
		wantStatus int
	}{
		{name: "admin", principal: &httputil.Principal{UserID: "a", Role: models.RoleAdmin}, wantStatus: 200},
		{name: "group admin", principal: &httputil.Principal{UserID: "g", Role: models.RoleGroupAdmin}, wantStatus: 200},
		{name: "investor", principal: &httputil.Principal{UserID: "i", Role: models.RoleInvestor}, wantStatus: 403},
		{name: "anonymous", wantStatus: 401},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			r := httptest.NewRequest(http.MethodGet, "/api/folders", nil)
			if tt.principal != nil {
				r = httputil.WithPrincipal(r, *tt.principal)
			}
			w := httptest.NewRecorder()
			gate(w, r)
			c.Assert(w.Code, qt.Equals, tt.wantStatus)
		})
	}
}

func TestDevPrincipal(t *testing.T) {
	c := qt.New(t)
	h := DevPrincipal(httputil.Principal{UserID: "dev", Role: models.RoleAdmin})(http.HandlerFunc(echoPrincipal))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tree", nil))
	c.Assert(w.Body.String(), qt.Equals, "dev:admin")
}

func TestRecovery(t *testing.T) {
	c := qt.New(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tree", nil))

	c.Assert(w.Code, qt.Equals, http.StatusInternalServerError)
	c.Assert(w.Header().Get("Content-Type"), qt.Equals, "application/problem+json")
	c.Assert(logs.String(), qt.Contains, "panic recovered")
}

func TestRecoveryAfterResponseStarted(t *testing.T) {
	c := qt.New(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	h := DevPrincipal(httputil.Principal{UserID: "u1", Role: models.RoleInvestor})(
		Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			panic("late")
		})))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me/shared", nil))

	c.Assert(w.Code, qt.Equals, http.StatusAccepted)
	c.Assert(w.Body.Len(), qt.Equals, 0)
	c.Assert(logs.String(), qt.Contains, `"user_id":"u1"`)
}

func TestRecoveryRepanicsAbort(t *testing.T) {
	c := qt.New(t)
	h := Recovery(slog.New(slog.DiscardHandler))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	c.Assert(func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}, qt.PanicMatches, "net/http: abort Handler")
}

func TestRequestLoggingAndChain(t *testing.T) {
	c := qt.New(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), RequestLogging(logger), mark("first"), mark("second"))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/folders/x", nil))

	c.Assert(w.Code, qt.Equals, http.StatusTeapot)
	c.Assert(order, qt.DeepEquals, []string{"first", "second"})
	c.Assert(logs.String(), qt.Contains, `"status":418`)
	c.Assert(logs.String(), qt.Contains, `"method":"DELETE"`)
}
