package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/sundayezeilo/videorecords/internal/errx"
	"github.com/sundayezeilo/videorecords/internal/httpx"
)

func newTestHandler(repo Repository) *Handler {
	return NewHandler(HandlerConfig{
		Service: NewService(repo),
		Logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
}

func doRequest(t *testing.T, fn http.HandlerFunc, method, id, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/video/"+id, r)
	req.Header.Set("Content-Type", "application/json")
	req = mux.SetURLVars(req, map[string]string{PathParam: id})

	rr := httptest.NewRecorder()
	fn(rr, req)
	return rr
}

func decodeVideo(t *testing.T, rr *httptest.ResponseRecorder) Video {
	t.Helper()
	var v Video
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode video body %q: %v", rr.Body.String(), err)
	}
	return v
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) httpx.ErrorResponse {
	t.Helper()
	var resp httpx.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return resp
}

func TestHandler_Scenario(t *testing.T) {
	repo := newMemRepository()
	h := newTestHandler(repo)

	rr := doRequest(t, h.Put, http.MethodPut, "1", `{"name":"A","views":5,"likes":2}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("first PUT status = %d, want 201 (body %s)", rr.Code, rr.Body.String())
	}
	if got := decodeVideo(t, rr); got != (Video{ID: 1, Name: "A", Views: 5, Likes: 2}) {
		t.Errorf("first PUT body = %+v", got)
	}

	rr = doRequest(t, h.Put, http.MethodPut, "1", `{"name":"B","views":0,"likes":0}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("second PUT status = %d, want 409", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Message != msgAlreadyExists {
		t.Errorf("second PUT message = %q, want %q", resp.Message, msgAlreadyExists)
	}

	rr = doRequest(t, h.Get, http.MethodGet, "1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", rr.Code)
	}
	if got := decodeVideo(t, rr); got != (Video{ID: 1, Name: "A", Views: 5, Likes: 2}) {
		t.Errorf("GET after conflict = %+v, want original record", got)
	}

	rr = doRequest(t, h.Patch, http.MethodPatch, "1", `{"likes":10}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("PATCH status = %d, want 200", rr.Code)
	}
	if got := decodeVideo(t, rr); got != (Video{ID: 1, Name: "A", Views: 5, Likes: 10}) {
		t.Errorf("PATCH body = %+v", got)
	}

	rr = doRequest(t, h.Get, http.MethodGet, "99", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("GET 99 status = %d, want 404", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Message != msgNotFound {
		t.Errorf("GET 99 message = %q, want %q", resp.Message, msgNotFound)
	}
}

func TestHandler_Put_Validation(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
		wantFields  []string
	}{
		{"empty body", "", fieldHelp["name"], []string{"name", "views", "likes"}},
		{"empty object", `{}`, fieldHelp["name"], []string{"name", "views", "likes"}},
		{"missing views", `{"name":"A","likes":2}`, fieldHelp["views"], []string{"views"}},
		{"missing likes", `{"name":"A","views":5}`, fieldHelp["likes"], []string{"likes"}},
		{"null name", `{"name":null,"views":5,"likes":2}`, fieldHelp["name"], []string{"name"}},
		{"string views", `{"name":"A","views":"lots","likes":2}`, fieldHelp["views"], []string{"views"}},
		{"fractional likes", `{"name":"A","views":5,"likes":1.5}`, fieldHelp["likes"], []string{"likes"}},
		{"decimal string views", `{"name":"A","views":"5.0","likes":2}`, fieldHelp["views"], []string{"views"}},
		{"boolean likes", `{"name":"A","views":5,"likes":true}`, fieldHelp["likes"], []string{"likes"}},
		{"object name", `{"name":{"first":"A"},"views":5,"likes":2}`, fieldHelp["name"], []string{"name"}},
		{"empty name", `{"name":"","views":5,"likes":2}`, "name cannot be empty", []string{"name"}},
		{"name too long", `{"name":"` + strings.Repeat("x", MaxNameLength+1) + `","views":5,"likes":2}`, "name too long (maximum 100 characters)", []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepository()
			rr := doRequest(t, newTestHandler(repo).Put, http.MethodPut, "1", tt.body)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rr.Code, rr.Body.String())
			}

			resp := decodeError(t, rr)
			if resp.Error != "validation_failed" {
				t.Errorf("error code = %q, want validation_failed", resp.Error)
			}
			if resp.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", resp.Message, tt.wantMessage)
			}
			details, ok := resp.Details.(map[string]any)
			if !ok {
				t.Fatalf("details = %T, want object", resp.Details)
			}
			for _, field := range tt.wantFields {
				if _, ok := details[field]; !ok {
					t.Errorf("details missing %q: %v", field, details)
				}
			}
			if _, ok := repo.stored(1); ok {
				t.Error("rejected PUT must not store a record")
			}
		})
	}
}

func TestHandler_Put_CoercesFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Video
	}{
		{"numeric string views", `{"name":"A","views":"5","likes":2}`, Video{ID: 1, Name: "A", Views: 5, Likes: 2}},
		{"padded numeric string", `{"name":"A","views":" 7 ","likes":"-1"}`, Video{ID: 1, Name: "A", Views: 7, Likes: -1}},
		{"integral float views", `{"name":"A","views":5.0,"likes":1e2}`, Video{ID: 1, Name: "A", Views: 5, Likes: 100}},
		{"numeric name", `{"name":7,"views":1,"likes":2}`, Video{ID: 1, Name: "7", Views: 1, Likes: 2}},
		{"echoed id and extra keys", `{"id":3,"name":"A","views":5,"likes":2,"tags":["x"]}`, Video{ID: 1, Name: "A", Views: 5, Likes: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepository()
			rr := doRequest(t, newTestHandler(repo).Put, http.MethodPut, "1", tt.body)

			if rr.Code != http.StatusCreated {
				t.Fatalf("status = %d, want 201 (body %s)", rr.Code, rr.Body.String())
			}
			if got := decodeVideo(t, rr); got != tt.want {
				t.Errorf("body = %+v, want %+v", got, tt.want)
			}
			if stored, _ := repo.stored(1); stored != tt.want {
				t.Errorf("stored = %+v, want %+v", stored, tt.want)
			}
		})
	}
}

func TestHandler_Put_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax error", `{"name":`},
		{"array body", `[1,2,3]`},
		{"trailing object", `{"name":"A","views":5,"likes":2}{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, newTestHandler(newMemRepository()).Put, http.MethodPut, "1", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestHandler_Patch(t *testing.T) {
	base := Video{ID: 1, Name: "A", Views: 5, Likes: 2}

	tests := []struct {
		name string
		body string
		want Video
	}{
		{"likes only", `{"likes":10}`, Video{ID: 1, Name: "A", Views: 5, Likes: 10}},
		{"likes zero is ignored", `{"likes":0}`, base},
		{"empty name is ignored", `{"name":""}`, base},
		{"null fields are ignored", `{"name":null,"views":null}`, base},
		{"empty object", `{}`, base},
		{"empty body", "", base},
		{"every field", `{"name":"B","views":9,"likes":4}`, Video{ID: 1, Name: "B", Views: 9, Likes: 4}},
		{"numeric string likes", `{"likes":"10"}`, Video{ID: 1, Name: "A", Views: 5, Likes: 10}},
		{"echoed record", `{"id":1,"name":"A","views":6,"likes":2}`, Video{ID: 1, Name: "A", Views: 6, Likes: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepository(base)
			rr := doRequest(t, newTestHandler(repo).Patch, http.MethodPatch, "1", tt.body)

			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (body %s)", rr.Code, rr.Body.String())
			}
			if got := decodeVideo(t, rr); got != tt.want {
				t.Errorf("body = %+v, want %+v", got, tt.want)
			}
			if stored, _ := repo.stored(1); stored != tt.want {
				t.Errorf("stored = %+v, want %+v", stored, tt.want)
			}
		})
	}

	t.Run("absent id", func(t *testing.T) {
		repo := newMemRepository()
		rr := doRequest(t, newTestHandler(repo).Patch, http.MethodPatch, "42", `{"likes":1}`)

		if rr.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rr.Code)
		}
		if resp := decodeError(t, rr); resp.Message != msgCannotUpdate {
			t.Errorf("message = %q, want %q", resp.Message, msgCannotUpdate)
		}
		if _, ok := repo.stored(42); ok {
			t.Error("PATCH must not create a record")
		}
	})

	t.Run("absent id with overlong name", func(t *testing.T) {
		repo := newMemRepository()
		body := `{"name":"` + strings.Repeat("x", MaxNameLength+1) + `"}`
		rr := doRequest(t, newTestHandler(repo).Patch, http.MethodPatch, "42", body)

		if rr.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404 (body %s)", rr.Code, rr.Body.String())
		}
		if resp := decodeError(t, rr); resp.Message != msgCannotUpdate {
			t.Errorf("message = %q, want %q", resp.Message, msgCannotUpdate)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		repo := newMemRepository(base)
		rr := doRequest(t, newTestHandler(repo).Patch, http.MethodPatch, "1", `{"views":"many"}`)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rr.Code)
		}
		if resp := decodeError(t, rr); resp.Message != fieldHelp["views"] {
			t.Errorf("message = %q, want %q", resp.Message, fieldHelp["views"])
		}
		if stored, _ := repo.stored(1); stored != base {
			t.Errorf("stored = %+v, want unchanged", stored)
		}
	})
}

func TestHandler_Delete(t *testing.T) {
	repo := newMemRepository(Video{ID: 3, Name: "C", Views: 1, Likes: 1})
	h := newTestHandler(repo)

	rr := doRequest(t, h.Delete, http.MethodDelete, "3", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rr.Body.String())
	}

	rr = doRequest(t, h.Delete, http.MethodDelete, "3", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second DELETE status = %d, want 404", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Message != msgCannotDelete {
		t.Errorf("message = %q, want %q", resp.Message, msgCannotDelete)
	}
}

func TestHandler_InvalidID(t *testing.T) {
	h := newTestHandler(newMemRepository())

	for _, id := range []string{"99999999999999999999", "", "abc"} {
		t.Run("id "+id, func(t *testing.T) {
			rr := doRequest(t, h.Get, http.MethodGet, id, "")
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestHandler_StorageErrors(t *testing.T) {
	tests := []struct {
		name       string
		kind       errx.Kind
		wantStatus int
	}{
		{"unavailable", errx.Unavailable, http.StatusServiceUnavailable},
		{"unknown", errx.Unknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{
				getByIDFunc: func(ctx context.Context, id int64) (Video, error) {
					return Video{}, errx.E("video.repo.GetByID", tt.kind, errors.New("dial tcp 10.0.0.1:5432: refused"))
				},
			}

			rr := doRequest(t, newTestHandler(repo).Get, http.MethodGet, "1", "")
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if strings.Contains(rr.Body.String(), "10.0.0.1") {
				t.Errorf("internal detail leaked: %s", rr.Body.String())
			}
		})
	}
}

func TestHandler_Put_RecordVanishesDuringInsert(t *testing.T) {
	repo := &mockRepository{
		createFunc: func(ctx context.Context, v Video) (Video, error) {
			return Video{}, errx.E("video.repo.Create", errx.NotFound, errors.New("no rows"))
		},
	}

	rr := doRequest(t, newTestHandler(repo).Put, http.MethodPut, "1", `{"name":"A","views":1,"likes":1}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Message != msgInternal {
		t.Errorf("message = %q, want %q", resp.Message, msgInternal)
	}
}

func TestHandler_LogsRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(HandlerConfig{
		Service: NewService(newMemRepository()),
		Logger:  slog.New(slog.NewJSONHandler(&buf, nil)),
	})

	req := httptest.NewRequest(http.MethodGet, "/video/5", nil)
	req = req.WithContext(httpx.WithRequestID(context.Background(), "req-abc"))
	req = mux.SetURLVars(req, map[string]string{PathParam: "5"})
	h.Get(httptest.NewRecorder(), req)

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-abc"`) {
		t.Errorf("log missing request_id: %s", out)
	}
	if !strings.Contains(out, `"video_id":5`) {
		t.Errorf("log missing video_id: %s", out)
	}
}

func TestValidatePutRequest(t *testing.T) {
	name := &NameParam{Value: "A", Valid: true}
	zero := &CountParam{Valid: true}

	tests := []struct {
		name string
		req  HTTPPutVideoRequest
		want int
	}{
		{"complete", HTTPPutVideoRequest{Name: name, Views: zero, Likes: zero}, 0},
		{"nothing", HTTPPutVideoRequest{}, 3},
		{"name only", HTTPPutVideoRequest{Name: name}, 2},
		{"unusable views", HTTPPutVideoRequest{Name: name, Views: &CountParam{}, Likes: zero}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, got := validatePutRequest(tt.req); len(got) != tt.want {
				t.Errorf("validatePutRequest() = %v, want %d errors", got, tt.want)
			}
		})
	}
}

func TestValidatePatchRequest(t *testing.T) {
	got, fe := validatePatchRequest(HTTPPatchVideoRequest{
		Name:  &NameParam{Value: "B", Valid: true},
		Likes: &CountParam{Value: 4, Valid: true},
	})
	if len(fe) != 0 {
		t.Fatalf("validatePatchRequest() errors = %v", fe)
	}
	if got.Name == nil || *got.Name != "B" || got.Views != nil || got.Likes == nil || *got.Likes != 4 {
		t.Errorf("validatePatchRequest() = %+v", got)
	}

	_, fe = validatePatchRequest(HTTPPatchVideoRequest{Views: &CountParam{}})
	if len(fe) != 1 || fe[0].Field != "views" {
		t.Errorf("validatePatchRequest() errors = %v, want one for views", fe)
	}
}
