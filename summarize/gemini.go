package summarize

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/genai"
)

// sdkAPIVersion is the version segment the SDK is told to emit when the
// request path must be unversioned; unversionedTransport strips it again.
const sdkAPIVersion = "v1beta"

// geminiModel calls generateContent through the Gemini API SDK.
type geminiModel struct {
	client *genai.Client
	model  string
}

// newGeminiModel builds the SDK client. With a BaseURL and no APIVersion,
// requests go to <base>/models/... without a version segment, which is
// what Gemini-compatible gateways expect.
func newGeminiModel(ctx context.Context, cfg Config) (*geminiModel, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL, APIVersion: cfg.APIVersion}
		if cfg.APIVersion == "" {
			u, err := url.Parse(cfg.BaseURL)
			if err != nil {
				return nil, fmt.Errorf("summarize: gemini base url: %w", err)
			}
			cc.HTTPOptions.APIVersion = sdkAPIVersion
			httpClient.Transport = newUnversionedTransport(http.DefaultTransport, u.Path, sdkAPIVersion)
		}
	} else if cfg.APIVersion != "" {
		cc.HTTPOptions = genai.HTTPOptions{APIVersion: cfg.APIVersion}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("summarize: gemini client: %w", err)
	}
	return &geminiModel{client: client, model: cfg.Model}, nil
}

func (g *geminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return resp.Text(), nil
}

func (g *geminiModel) Name() string { return "gemini/" + g.model }

// unversionedTransport rewrites <basePath>/<version>/rest to <basePath>/rest.
type unversionedTransport struct {
	next   http.RoundTripper
	prefix string
	repl   string
}

func newUnversionedTransport(next http.RoundTripper, basePath, version string) *unversionedTransport {
	base := strings.TrimRight(basePath, "/")
	return &unversionedTransport{
		next:   next,
		prefix: base + "/" + version + "/",
		repl:   base + "/",
	}
}

func (t *unversionedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !strings.HasPrefix(req.URL.Path, t.prefix) {
		return t.next.RoundTrip(req)
	}
	out := req.Clone(req.Context())
	out.URL.Path = t.repl + strings.TrimPrefix(req.URL.Path, t.prefix)
	out.URL.RawPath = ""
	return t.next.RoundTrip(out)
}
