package ocr

import (
	"context"
	"image"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/dshills/scrub/internal/cache"
	"github.com/dshills/scrub/internal/region"
)

func approxRect(a, b region.Rect) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps &&
		math.Abs(a.W-b.W) < eps && math.Abs(a.H-b.H) < eps
}

func TestPixelLinesNormalizedFlip(t *testing.T) {
	doc := &Document{
		Normalized: true,
		Lines: []TextLine{{
			Text: "hi",
			Box:  region.Rect{X: 0.1, Y: 0.8, W: 0.2, H: 0.1},
			Glyphs: []region.Rect{
				{X: 0.1, Y: 0.8, W: 0.1, H: 0.1},
				{X: 0.2, Y: 0.8, W: 0.1, H: 0.1},
			},
		}},
	}
	lines := doc.PixelLines(200, 100)
	if len(lines) != 1 {
		t.Fatalf("got %d lines", len(lines))
	}
	want := region.Rect{X: 20, Y: 10, W: 40, H: 10}
	if !approxRect(lines[0].Box, want) {
		t.Errorf("box = %+v, want %+v", lines[0].Box, want)
	}
	if g := lines[0].Glyphs[1]; !approxRect(g, region.Rect{X: 40, Y: 10, W: 20, H: 10}) {
		t.Errorf("glyph = %+v", g)
	}
}

func TestPixelLinesRescale(t *testing.T) {
	doc := &Document{
		Width:  400,
		Height: 200,
		Lines:  []TextLine{{Text: "abc", Box: region.Rect{X: 100, Y: 50, W: 60, H: 20}}},
	}
	lines := doc.PixelLines(200, 100)
	want := region.Rect{X: 50, Y: 25, W: 30, H: 10}
	if !approxRect(lines[0].Box, want) {
		t.Errorf("box = %+v, want %+v", lines[0].Box, want)
	}
}

func TestPixelLinesDropsMismatchedGlyphs(t *testing.T) {
	doc := &Document{Lines: []TextLine{
		{Text: "abc", Box: region.Rect{W: 30, H: 10}, Glyphs: []region.Rect{{W: 10, H: 10}}},
		{Text: "   ", Box: region.Rect{W: 30, H: 10}},
		{Text: "empty box"},
	}}
	lines := doc.PixelLines(100, 100)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0].Glyphs != nil {
		t.Error("mismatched glyphs should be dropped")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("nope")); err == nil {
		t.Error("expected error")
	}
	if _, err := Decode([]byte(`{"width":-1,"lines":[]}`)); err == nil {
		t.Error("expected error for negative width")
	}
}

const sampleDoc = `{
  "width": 100, "height": 50,
  "lines": [{"text": "mail a@b.com", "box": {"x": 0, "y": 0, "w": 96, "h": 10}}],
  "regions": [{"kind": "face", "box": {"x": 60, "y": 20, "w": 20, "h": 20}}]
}`

func TestSidecar(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "shot.png")
	if err := os.WriteFile(imgPath+".json", []byte(sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	s := NewSidecar("")

	lines, err := s.Recognize(context.Background(), imgPath, img)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if len(lines) != 1 || lines[0].Text != "mail a@b.com" {
		t.Errorf("lines = %+v", lines)
	}
	regions, err := s.Regions(context.Background(), imgPath, img)
	if err != nil || len(regions) != 1 {
		t.Fatalf("regions = %v, %v", regions, err)
	}

	if _, err := s.Recognize(context.Background(), filepath.Join(dir, "other.png"), img); err == nil {
		t.Error("missing sidecar should fail recognition")
	}
}

func TestSidecarPixelBoxesUseFileSize(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "big.png")
	if err := imaging.Save(image.NewNRGBA(image.Rect(0, 0, 200, 100)), imgPath); err != nil {
		t.Fatal(err)
	}
	doc := `{"lines":[{"text":"a@b.com","box":{"x":100,"y":40,"w":80,"h":20}}],` +
		`"regions":[{"kind":"face","box":{"x":0,"y":0,"w":40,"h":40}}]}`
	if err := os.WriteFile(imgPath+".json", []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	// The image being processed is half the size of the file.
	img := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	s := NewSidecar("")

	lines, err := s.Recognize(context.Background(), imgPath, img)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if len(lines) != 1 || !approxRect(lines[0].Box, region.Rect{X: 50, Y: 20, W: 40, H: 10}) {
		t.Errorf("lines = %+v", lines)
	}
	regions, err := s.Regions(context.Background(), imgPath, img)
	if err != nil || len(regions) != 1 || !approxRect(regions[0], region.Rect{W: 20, H: 20}) {
		t.Errorf("regions = %v, %v", regions, err)
	}
}

func TestClientPostsPNGAndCaches(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("content type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.HasPrefix(string(body), "\x89PNG") {
			t.Error("body is not a PNG")
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, sampleDoc)
	}))
	defer srv.Close()

	c, err := cache.New(true, t.TempDir(), 3600)
	if err != nil {
		t.Fatal(err)
	}
	client := NewClient(srv.URL, ClientOptions{Cache: c})
	img := image.NewNRGBA(image.Rect(0, 0, 100, 50))

	for i := 0; i < 2; i++ {
		lines, err := client.Recognize(context.Background(), "shot.png", img)
		if err != nil {
			t.Fatalf("Recognize: %v", err)
		}
		if len(lines) != 1 {
			t.Fatalf("got %d lines", len(lines))
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want 1", n)
	}

	regions, _ := client.Regions(context.Background(), "shot.png", img)
	if len(regions) != 1 {
		t.Errorf("regions = %v", regions)
	}
	regions, _ = client.Regions(context.Background(), "shot.png", img)
	if len(regions) != 0 {
		t.Error("regions should be handed out once")
	}
}

func TestClientDropsRegionsWhenRunEnds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sampleDoc)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, ClientOptions{})
	img := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	ctx, cancel := context.WithCancel(context.Background())
	if _, err := client.Recognize(ctx, "shot.png", img); err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for {
		client.mu.Lock()
		n := len(client.pending)
		client.mu.Unlock()
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("pending regions kept after the run ended")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if regions, _ := client.Regions(context.Background(), "shot.png", img); len(regions) != 0 {
		t.Errorf("regions = %v, want none", regions)
	}
}

func TestClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, ClientOptions{MaxRetries: -1})
	_, err := client.Recognize(context.Background(), "x.png", image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("err = %v, want status 502", err)
	}
}

func TestClientRetriesThrottled(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, sampleDoc)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, ClientOptions{})
	client.backoff = time.Millisecond
	lines, err := client.Recognize(context.Background(), "x.png", image.NewNRGBA(image.Rect(0, 0, 100, 50)))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if len(lines) != 1 || calls.Load() != 2 {
		t.Errorf("lines = %d, calls = %d", len(lines), calls.Load())
	}
}

func TestClientDoesNotRetryBadRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad image", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, ClientOptions{})
	client.backoff = time.Millisecond
	if _, err := client.Recognize(context.Background(), "x.png", image.NewNRGBA(image.Rect(0, 0, 4, 4))); err == nil {
		t.Fatal("expected error")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestClientHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := NewClient(srv.URL, ClientOptions{RatePerSecond: 1})
	if _, err := client.Recognize(ctx, "x.png", image.NewNRGBA(image.Rect(0, 0, 4, 4))); err == nil {
		t.Error("expected error for canceled context")
	}
}
