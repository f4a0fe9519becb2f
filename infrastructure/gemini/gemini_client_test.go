package gemini

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"google.golang.org/genai"

	"photocritic/domain/critique"
)

func textResponse(text string, finish genai.FinishReason) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      genai.NewContentFromText(text, genai.RoleModel),
			FinishReason: finish,
		}},
	}
}

func TestReplyText(t *testing.T) {
	got, err := replyText(textResponse(`{"ok":true}`, genai.FinishReasonStop))
	if err != nil || got != `{"ok":true}` {
		t.Fatalf("got %q, %v", got, err)
	}

	for _, reason := range []genai.FinishReason{"SAFETY", "PROHIBITED_CONTENT", "IMAGE_SAFETY"} {
		if _, err := replyText(textResponse("", reason)); !errors.Is(err, critique.ErrSafetyBlocked) {
			t.Errorf("finish %s: got %v", reason, err)
		}
	}

	blocked := &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: "OTHER"},
	}
	if _, err := replyText(blocked); !errors.Is(err, critique.ErrSafetyBlocked) {
		t.Errorf("prompt feedback: got %v", err)
	}

	if _, err := replyText(&genai.GenerateContentResponse{}); !errors.Is(err, ErrEmptyReply) {
		t.Errorf("no candidates: got %v", err)
	}
}

func TestImagePartFetchesURL(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/img":
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write(png)
		case "/big":
			w.Write(bytes.Repeat([]byte{1}, 64))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newClient(Config{MaxFetchBytes: 32, AllowPrivateFetch: true})
	ctx := context.Background()

	part, err := c.imagePart(ctx, critique.ImageInput{URL: srv.URL + "/img"})
	if err != nil {
		t.Fatal(err)
	}
	if part.InlineData == nil || part.InlineData.MIMEType != "image/png" || !bytes.Equal(part.InlineData.Data, png) {
		t.Errorf("unexpected part %+v", part.InlineData)
	}

	if _, err := c.imagePart(ctx, critique.ImageInput{URL: srv.URL + "/big"}); !errors.Is(err, errImageTooBig) {
		t.Errorf("oversized image: got %v", err)
	}
	if _, err := c.imagePart(ctx, critique.ImageInput{URL: srv.URL + "/missing"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("404: got %v", err)
	}

	ref, err := c.imagePart(ctx, critique.ImageInput{URL: "gs://bucket/photo.jpg"})
	if err != nil {
		t.Fatal(err)
	}
	if ref.FileData == nil || ref.FileData.FileURI != "gs://bucket/photo.jpg" {
		t.Errorf("gs:// should be passed by reference, got %+v", ref)
	}
}

func TestFetchRefusesNonPublicTargets(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("\x89PNG\r\n\x1a\n0000"))
	}))
	defer srv.Close()

	c := newClient(Config{})
	ctx := context.Background()

	for _, u := range []string{
		srv.URL + "/img",
		"http://169.254.169.254/latest/meta-data/",
		"http://10.0.0.8/cat.jpg",
		"file:///etc/passwd",
		"ftp://example.com/cat.jpg",
		"http:///no-host",
	} {
		if _, err := c.imagePart(ctx, critique.ImageInput{URL: u}); !errors.Is(err, ErrBlockedURL) {
			t.Errorf("%s: got %v, want ErrBlockedURL", u, err)
		}
	}
	if hits != 0 {
		t.Errorf("loopback server was reached %d times", hits)
	}
}

func TestIsPublic(t *testing.T) {
	cases := map[string]bool{
		"8.8.8.8":          true,
		"2606:4700::1111":  true,
		"127.0.0.1":        false,
		"10.1.2.3":         false,
		"172.16.0.1":       false,
		"192.168.1.1":      false,
		"169.254.169.254":  false,
		"100.64.0.1":       false,
		"0.0.0.0":          false,
		"::1":              false,
		"fe80::1":          false,
		"fd00::1":          false,
		"::ffff:127.0.0.1": false,
		"224.0.0.1":        false,
	}
	for addr, want := range cases {
		if got := isPublic(netip.MustParseAddr(addr)); got != want {
			t.Errorf("isPublic(%s) = %v, want %v", addr, got, want)
		}
	}
}

func TestMimeOrDefault(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if got := mimeOrDefault("image/webp", png); got != "image/webp" {
		t.Errorf("declared image type should win, got %s", got)
	}
	if got := mimeOrDefault("application/octet-stream", png); got != "image/png" {
		t.Errorf("sniffed = %s", got)
	}
	if got := mimeOrDefault("", []byte("plain text")); got != "image/jpeg" {
		t.Errorf("fallback = %s", got)
	}
}

func TestBreakerIgnoresSafetyBlocks(t *testing.T) {
	cb := newBreaker(BreakerConfig{MinRequests: 2, FailureRate: 0.5, Timeout: time.Minute})

	for i := 0; i < 5; i++ {
		cb.Execute(func() (interface{}, error) { return nil, critique.ErrSafetyBlocked })
	}
	if cb.State() != gobreaker.StateClosed {
		t.Fatalf("safety blocks tripped the breaker")
	}

	failing := newBreaker(BreakerConfig{MinRequests: 2, FailureRate: 0.5, Timeout: time.Minute})
	for i := 0; i < 2; i++ {
		failing.Execute(func() (interface{}, error) { return nil, errors.New("503") })
	}
	if failing.State() != gobreaker.StateOpen {
		t.Fatalf("state = %s, want open", failing.State())
	}
	if _, err := failing.Execute(func() (interface{}, error) { return "x", nil }); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("open breaker should reject, got %v", err)
	}
}
