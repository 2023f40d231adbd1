package videogen

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) add(p string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, p)
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := newClient(logger.Nop(), Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		ModelID: "model-1",
	}, withHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("newClient: %v", err)
	}
	return c
}

func TestUploadFileIsTwoPhase(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Errorf("missing api key header")
		}
		rec.add(r.Method + " " + r.URL.Path)
		switch r.URL.Path {
		case "/assets":
			var req createAssetRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Name != "7.png" || req.Type != AssetImage {
				t.Errorf("unexpected create asset request: %+v", req)
			}
			_, _ = w.Write([]byte(`{"id":"asset-1"}`))
		case "/assets/asset-1/upload":
			f, hdr, err := r.FormFile("file")
			if err != nil {
				t.Errorf("FormFile: %v", err)
				return
			}
			b, _ := io.ReadAll(f)
			if hdr.Filename != "7.png" || string(b) != "png-bytes" {
				t.Errorf("unexpected upload %q %q", hdr.Filename, string(b))
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	id, err := newTestClient(t, srv).UploadFile(context.Background(), "7.png", AssetImage, strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if id != "asset-1" {
		t.Fatalf("id = %q", id)
	}
	want := []string{"POST /assets", "POST /assets/asset-1/upload"}
	if strings.Join(rec.paths, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v", rec.paths)
	}
}

func TestCreateGeneration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createGenerationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Type != "video" || req.AIModelID != "model-1" ||
			req.StartKeyframeID != "img" || req.AudioID != "aud" ||
			req.Inputs.TextPrompt != "prompt" || req.Inputs.Resolution != "720p" || req.Inputs.AspectRatio != "9:16" {
			t.Errorf("unexpected generation request: %+v", req)
		}
		_, _ = w.Write([]byte(`{"id":"gen-9"}`))
	}))
	defer srv.Close()

	id, err := newTestClient(t, srv).CreateGeneration(context.Background(), GenerationInput{
		ImageAssetID: "img",
		AudioAssetID: "aud",
		TextPrompt:   "prompt",
	})
	if err != nil || id != "gen-9" {
		t.Fatalf("CreateGeneration = %q, %v", id, err)
	}
}

func TestGetStatusAndArtifactURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generations/gen-9/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status":"COMPLETE","download_url":"https://cdn.test/v.mp4"}`))
	}))
	defer srv.Close()

	st, err := newTestClient(t, srv).GetStatus(context.Background(), "gen-9")
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if st.Status != StatusComplete {
		t.Fatalf("status = %q", st.Status)
	}
	if st.ArtifactURL() != "https://cdn.test/v.mp4" {
		t.Fatalf("artifact url = %q", st.ArtifactURL())
	}
	if got := (JobStatus{URL: "a", DownloadURL: "b"}).ArtifactURL(); got != "a" {
		t.Fatalf("primary url should win, got %q", got)
	}
}

func TestMissingIDIsExternalError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).CreateAsset(context.Background(), "a.mp3", AssetAudio)
	if !errors.Is(err, apierr.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
}
