package module_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/flipbook/pkg/module"
)

func echoPath(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(r.URL.Path))
}

func TestNew_InvalidPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"empty", ""},
		{"no leading slash", "api"},
		{"multi level", "/api/v1"},
		{"root", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%q) did not panic", tt.prefix)
				}
			}()
			module.New(tt.prefix, http.HandlerFunc(echoPath))
		})
	}
}

func TestModule_Use(t *testing.T) {
	m := module.New("/api", http.HandlerFunc(echoPath))
	var order []string
	for _, name := range []string{"outer", "inner"} {
		m.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		})
	}

	m.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("order = %q, want [outer inner]", order)
	}
}

func TestModule_Serve(t *testing.T) {
	m := module.New("/api", http.HandlerFunc(echoPath))

	w := httptest.NewRecorder()
	m.Serve(w, httptest.NewRequest(http.MethodGet, "/api/documents/1", nil))

	if w.Body.String() != "/documents/1" {
		t.Errorf("path = %q, want %q", w.Body.String(), "/documents/1")
	}
}

func TestRouter(t *testing.T) {
	r := module.NewRouter()
	r.HandleNative("GET /healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("healthy"))
	})
	r.Mount(module.New("/api", http.HandlerFunc(echoPath)))
	r.Mount(module.New("/app", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("app"))
	})))

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"module root", "/api", http.StatusOK, "/"},
		{"module root with slash", "/api/", http.StatusOK, "/"},
		{"stripped path", "/api/documents/7/file", http.StatusOK, "/documents/7/file"},
		{"trailing slash", "/api/documents/", http.StatusOK, "/documents"},
		{"second module", "/app/library", http.StatusOK, "app"},
		{"native fallback", "/healthz", http.StatusOK, "healthy"},
		{"prefix lookalike", "/apix", http.StatusNotFound, ""},
		{"unmatched", "/unknown", http.StatusNotFound, ""},
		{"root", "/", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				if string(body) != tt.wantBody {
					t.Errorf("body = %q, want %q", string(body), tt.wantBody)
				}
			}
		})
	}
}
