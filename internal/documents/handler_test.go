package documents_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/flipbook/internal/documents"
	"github.com/JaimeStill/flipbook/internal/pdftest"
	"github.com/JaimeStill/flipbook/internal/thumbnail"
	"github.com/JaimeStill/flipbook/pkg/routes"
)

func newServer(t *testing.T, repo documents.System, maxUpload int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	routes.Register(mux, documents.NewHandler(repo, testLogger(), maxUpload).Routes())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func uploadRequest(t *testing.T, url, filename, name string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if name != "" {
		mw.WriteField("name", name)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	fw.Write(data)
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, url+"/documents", &body)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHandler_Routes(t *testing.T) {
	h := documents.NewHandler(nil, testLogger(), 1024)
	group := h.Routes()

	if group.Prefix != "/documents" {
		t.Errorf("Prefix = %q, want %q", group.Prefix, "/documents")
	}

	expected := []struct {
		method  string
		pattern string
	}{
		{"GET", ""},
		{"POST", ""},
		{"GET", "/{id}"},
		{"GET", "/{id}/file"},
		{"GET", "/{id}/content"},
		{"PATCH", "/{id}"},
		{"DELETE", "/{id}"},
	}

	if len(group.Routes) != len(expected) {
		t.Fatalf("Routes count = %d, want %d", len(group.Routes), len(expected))
	}
	for i, want := range expected {
		if group.Routes[i].Method != want.method || group.Routes[i].Pattern != want.pattern {
			t.Errorf("Routes[%d] = %s %q, want %s %q", i, group.Routes[i].Method, group.Routes[i].Pattern, want.method, want.pattern)
		}
		if group.Routes[i].Handler == nil {
			t.Errorf("Routes[%d].Handler is nil", i)
		}
	}
}

func TestHandler_UploadAndView(t *testing.T) {
	repo := newRepo(t, newMemStore(), &fakeThumbs{pages: 4})
	srv := newServer(t, repo, 1<<20)
	data := pdftest.Document("a", "b", "c", "d")

	resp := do(t, uploadRequest(t, srv.URL, "quarterly report.pdf", "", data))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status = %d, want 201", resp.StatusCode)
	}
	created := decode[documents.Document](t, resp)
	if created.Name != "quarterly report" {
		t.Errorf("Name = %q, want filename without extension", created.Name)
	}
	if created.PageCount != 4 {
		t.Errorf("PageCount = %d, want 4", created.PageCount)
	}

	list := do(t, mustRequest(t, http.MethodGet, srv.URL+"/documents", nil))
	lib := decode[documents.Library](t, list)
	if !lib.Available || len(lib.Documents) != 1 {
		t.Fatalf("library = %+v, want one available document", lib)
	}

	file := do(t, mustRequest(t, http.MethodGet, fmt.Sprintf("%s/documents/%d/file", srv.URL, created.ID), nil))
	if file.Header.Get("Content-Type") != "application/pdf" {
		t.Errorf("Content-Type = %q", file.Header.Get("Content-Type"))
	}
	raw, _ := io.ReadAll(file.Body)
	if !bytes.Equal(raw, data) {
		t.Error("file body differs from upload")
	}

	contentResp := do(t, mustRequest(t, http.MethodGet, fmt.Sprintf("%s/documents/%d/content", srv.URL, created.ID), nil))
	body := decode[map[string]string](t, contentResp)
	if !strings.HasPrefix(body["data_uri"], "data:application/pdf;base64,") {
		t.Errorf("data_uri = %.40q", body["data_uri"])
	}
}

func TestHandler_Upload_Errors(t *testing.T) {
	tests := []struct {
		name       string
		thumbs     *fakeThumbs
		data       []byte
		maxUpload  int64
		wantStatus int
	}{
		{"not a pdf", &fakeThumbs{}, []byte("hello"), 1 << 20, http.StatusBadRequest},
		{"too large", &fakeThumbs{}, pdftest.Document(strings.Repeat("x", 4096)), 512, http.StatusRequestEntityTooLarge},
		{"thumbnail failure", &fakeThumbs{err: thumbnail.ErrRender}, pdftest.Document("x"), 1 << 20, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newMemStore()
			srv := newServer(t, newRepo(t, st, tt.thumbs), tt.maxUpload)

			resp := do(t, uploadRequest(t, srv.URL, "doc.pdf", "Doc", tt.data))
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if st.len() != 0 {
				t.Error("failed upload left a record behind")
			}
		})
	}
}

func TestHandler_Update(t *testing.T) {
	repo := newRepo(t, newMemStore(), &fakeThumbs{pages: 5})
	srv := newServer(t, repo, 1<<20)
	doc, err := repo.Create(context.Background(), documents.CreateCommand{Name: "A", Data: []byte("a")})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	url := fmt.Sprintf("%s/documents/%d", srv.URL, doc.ID)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"set bookmark", `{"bookmarked_page": 3}`, http.StatusOK},
		{"bookmark past last page", `{"bookmarked_page": 6}`, http.StatusBadRequest},
		{"clear bookmark", `{"bookmarked_page": null}`, http.StatusOK},
		{"zoom", `{"zoom_level": 1.2}`, http.StatusOK},
		{"zoom out of range", `{"zoom_level": 3}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, mustRequest(t, http.MethodPatch, url, strings.NewReader(tt.body)))
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}

	current, _ := repo.Find(doc.ID)
	if current.BookmarkedPage != nil {
		t.Errorf("bookmark = %d, want cleared", *current.BookmarkedPage)
	}
	if current.ZoomLevel == nil || *current.ZoomLevel != 1.2 {
		t.Errorf("zoom = %v, want 1.2", current.ZoomLevel)
	}
}

func TestHandler_NotFoundAndDelete(t *testing.T) {
	repo := newRepo(t, newMemStore(), &fakeThumbs{})
	srv := newServer(t, repo, 1<<20)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"get missing", http.MethodGet, "/documents/42", "", http.StatusNotFound},
		{"file missing", http.MethodGet, "/documents/42/file", "", http.StatusNotFound},
		{"patch missing", http.MethodPatch, "/documents/42", `{"name":"x"}`, http.StatusNotFound},
		{"bad id", http.MethodGet, "/documents/abc", "", http.StatusBadRequest},
		{"delete missing", http.MethodDelete, "/documents/42", "", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			resp := do(t, mustRequest(t, tt.method, srv.URL+tt.path, body))
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestHandler_Unavailable(t *testing.T) {
	st := newMemStore()
	st.unavailable = true
	srv := newServer(t, newRepo(t, st, &fakeThumbs{}), 1<<20)

	list := do(t, mustRequest(t, http.MethodGet, srv.URL+"/documents", nil))
	if list.StatusCode != http.StatusOK {
		t.Errorf("list status = %d, want 200", list.StatusCode)
	}
	lib := decode[documents.Library](t, list)
	if lib.Available {
		t.Error("Available = true, want false")
	}

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"upload", uploadRequest(t, srv.URL, "a.pdf", "", pdftest.Document())},
		{"get", mustRequest(t, http.MethodGet, srv.URL+"/documents/1", nil)},
		{"bookmark", mustRequest(t, http.MethodPatch, srv.URL+"/documents/1", strings.NewReader(`{"bookmarked_page": 2}`))},
		{"zoom", mustRequest(t, http.MethodPatch, srv.URL+"/documents/1", strings.NewReader(`{"zoom_level": 1.5}`))},
		{"file", mustRequest(t, http.MethodGet, srv.URL+"/documents/1/file", nil)},
		{"delete", mustRequest(t, http.MethodDelete, srv.URL+"/documents/1", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.req)
			if resp.StatusCode != http.StatusServiceUnavailable {
				t.Errorf("status = %d, want 503", resp.StatusCode)
			}
		})
	}
}

func mustRequest(t *testing.T, method, url string, body io.Reader) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	return req
}
