package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/sony/gobreaker"
	"google.golang.org/genai"

	"photocritic/domain/critique"
	"photocritic/infrastructure/imageproc"
	"photocritic/pkg/logger"
	"photocritic/pkg/metrics"
)

var (
	// ErrUnavailable wraps transport failures and an open circuit.
	ErrUnavailable = errors.New("gemini: model unavailable")
	ErrEmptyReply  = errors.New("gemini: empty response")
	// ErrBlockedURL rejects image URLs that are not public http(s) targets.
	ErrBlockedURL  = errors.New("gemini: image URL not allowed")
	errImageTooBig = errors.New("gemini: image exceeds fetch limit")
)

// finish reasons that mean the provider refused on policy grounds
var safetyFinishReasons = map[string]bool{
	"SAFETY":             true,
	"PROHIBITED_CONTENT": true,
	"BLOCKLIST":          true,
	"SPII":               true,
	"IMAGE_SAFETY":       true,
}

const defaultMaxFetchBytes = 20 << 20

type BreakerConfig struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	MinRequests uint32
	FailureRate float64
}

type Config struct {
	APIKey        string
	Model         string
	Breaker       BreakerConfig
	HTTPClient    *http.Client // used to fetch image URLs
	MaxFetchBytes int64

	// AllowPrivateFetch lets the default fetch client reach loopback and
	// private addresses. Local development only.
	AllowPrivateFetch bool
}

// GeminiClient implements critique.Model on the Gemini API.
type GeminiClient struct {
	client   *genai.Client
	model    string
	breaker  *gobreaker.CircuitBreaker
	http     *http.Client
	maxFetch int64
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(cfg Config) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := newClient(cfg)
	c.client = client
	return c, nil
}

func newClient(cfg Config) *GeminiClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = newFetchClient(cfg.AllowPrivateFetch)
	}
	maxFetch := cfg.MaxFetchBytes
	if maxFetch <= 0 {
		maxFetch = defaultMaxFetchBytes
	}
	return &GeminiClient{
		model:    cfg.Model,
		breaker:  newBreaker(cfg.Breaker),
		http:     httpClient,
		maxFetch: maxFetch,
	}
}

func newBreaker(cfg BreakerConfig) *gobreaker.CircuitBreaker {
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 5
	}
	if cfg.FailureRate <= 0 {
		cfg.FailureRate = 0.6
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRate
		},
		// policy refusals and caller cancellations say nothing about provider health
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, critique.ErrSafetyBlocked) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.AnalysisWarn("circuit_state", "Model circuit breaker changed state", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})
}

// Generate sends one prompt, with an optional image, and returns the reply text.
func (c *GeminiClient) Generate(ctx context.Context, req critique.ModelRequest) (string, error) {
	var parts []*genai.Part
	if req.Image != nil {
		part, err := c.imagePart(ctx, *req.Image)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{}
	if req.JSONResponse {
		config.ResponseMIMEType = "application/json"
	}

	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
		if err != nil {
			return nil, err
		}
		return replyText(result)
	})
	metrics.ModelLatency.WithLabelValues(req.Operation).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, critique.ErrSafetyBlocked) ||
			errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, context.Canceled) {
			return "", err
		}
		// includes gobreaker.ErrOpenState and ErrTooManyRequests
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out.(string), nil
}

// replyText returns the text of a response, or ErrSafetyBlocked when the
// prompt or the first candidate was stopped by policy.
func replyText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil {
		return "", ErrEmptyReply
	}
	if fb := result.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", critique.ErrSafetyBlocked, fb.BlockReason)
	}
	if len(result.Candidates) == 0 {
		return "", ErrEmptyReply
	}
	if reason := string(result.Candidates[0].FinishReason); safetyFinishReasons[reason] {
		return "", fmt.Errorf("%w: finish reason %s", critique.ErrSafetyBlocked, reason)
	}
	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}

// imagePart sends bytes inline, Cloud Storage and Files API URIs by
// reference, and fetches any other URL.
func (c *GeminiClient) imagePart(ctx context.Context, img critique.ImageInput) (*genai.Part, error) {
	if img.IsInline() {
		return genai.NewPartFromBytes(img.Data, mimeOrDefault(img.MIMEType, img.Data)), nil
	}
	if isReferenceURI(img.URL) {
		mime := img.MIMEType
		if mime == "" {
			mime = "image/jpeg"
		}
		return genai.NewPartFromURI(img.URL, mime), nil
	}

	data, mime, err := c.fetch(ctx, img.URL)
	if err != nil {
		return nil, err
	}
	if img.MIMEType != "" {
		mime = img.MIMEType
	}
	return genai.NewPartFromBytes(data, mime), nil
}

func isReferenceURI(u string) bool {
	return strings.HasPrefix(u, "gs://") ||
		strings.HasPrefix(u, "https://generativelanguage.googleapis.com/")
}

// newFetchClient dials only public addresses unless allowPrivate is set.
// The check runs on the resolved IP of every connection, redirects included.
func newFetchClient(allowPrivate bool) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	if !allowPrivate {
		dialer.Control = refusePrivate
	}
	transport := &http.Transport{
		Proxy:                 nil,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
	return &http.Client{Timeout: 30 * time.Second, Transport: transport}
}

// cgnat is the shared address space of RFC 6598.
var cgnat = netip.MustParsePrefix("100.64.0.0/10")

func refusePrivate(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedURL, address)
	}
	if !isPublic(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrBlockedURL, ap.Addr())
	}
	return nil
}

func isPublic(ip netip.Addr) bool {
	ip = ip.Unmap()
	return ip.IsGlobalUnicast() &&
		!ip.IsPrivate() &&
		!ip.IsLoopback() &&
		!ip.IsLinkLocalUnicast() &&
		!cgnat.Contains(ip)
}

func (c *GeminiClient) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, "", fmt.Errorf("%w: %q", ErrBlockedURL, rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid image URL: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, ErrBlockedURL) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: fetch image: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: fetch image: status %d", ErrUnavailable, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxFetch+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read image: %v", ErrUnavailable, err)
	}
	if int64(len(data)) > c.maxFetch {
		return nil, "", errImageTooBig
	}

	mime := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return data, mimeOrDefault(strings.TrimSpace(mime), data), nil
}

func mimeOrDefault(mime string, data []byte) string {
	if strings.HasPrefix(mime, "image/") {
		return mime
	}
	if detected := imageproc.DetectMIME(data); strings.HasPrefix(detected, "image/") {
		return detected
	}
	return "image/jpeg"
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	// The genai client doesn't have a Close method in the current SDK
	return nil
}
