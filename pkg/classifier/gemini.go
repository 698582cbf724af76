package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"

	"github.com/teslashibe/go-vibewave/internal/httpc"
)

const (
	defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/"
	geminiScope     = "https://www.googleapis.com/auth/generative-language"

	prompt = `Look at the person's face in this image and classify their mood.
Reply with JSON only: {"label": "<one word: happy, calm, sad, angry or neutral>", "confidence": <0.0-1.0>}.`
)

// Gemini classifies frames with a Gemini vision model.
type Gemini struct {
	client *http.Client
	url    string
	cfg    Config
	logger *slog.Logger
}

// NewGemini creates a Gemini classifier. An API key is preferred; otherwise
// Application Default Credentials are used when cfg.UseADC is set.
func NewGemini(ctx context.Context, cfg Config, logger *slog.Logger) (*Gemini, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultConfig().Model
	}

	client, err := authClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	model := cfg.Model
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}

	return &Gemini{
		client: client,
		url:    strings.TrimSuffix(endpoint, "/") + "/" + model + ":generateContent",
		cfg:    cfg,
		logger: logger.With("component", "classifier.gemini"),
	}, nil
}

// authClient builds the HTTP client that carries credentials in its
// transport.
func authClient(ctx context.Context, cfg Config) (*http.Client, error) {
	base := httpc.NewClient(cfg.Timeout)

	if cfg.APIKey != "" {
		return httpc.WithHeader(base, "x-goog-api-key", cfg.APIKey), nil
	}
	if !cfg.UseADC {
		return nil, ErrNoCredentials
	}

	ts, err := google.DefaultTokenSource(ctx, geminiScope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCredentials, err)
	}
	c := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, base), ts)
	c.Timeout = base.Timeout
	return c, nil
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
	MaxOutputTokens  int64  `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Name implements Classifier.
func (g *Gemini) Name() string { return "gemini" }

// Classify implements Classifier.
func (g *Gemini) Classify(ctx context.Context, jpeg []byte) (Label, error) {
	if len(jpeg) == 0 {
		return Label{}, errors.New("classifier: empty frame")
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{
					MimeType: "image/jpeg",
					Data:     base64.StdEncoding.EncodeToString(jpeg),
				}},
			},
		}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			MaxOutputTokens:  g.cfg.MaxTokens,
		},
	})
	if err != nil {
		return Label{}, fmt.Errorf("encode gemini request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return Label{}, fmt.Errorf("build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return Label{}, fmt.Errorf("gemini generate: %w", err)
	}
	defer resp.Body.Close()

	// Non-2xx replies become *googleapi.Error carrying the status and message.
	if err := googleapi.CheckResponse(resp); err != nil {
		return Label{}, fmt.Errorf("gemini generate: %w", err)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Label{}, fmt.Errorf("decode gemini response: %w", err)
	}

	text := responseText(out)
	if text == "" {
		return Label{}, ErrEmptyResponse
	}

	label, err := ParseLabel(text)
	if err != nil {
		return Label{}, err
	}
	g.logger.Debug("classified", "label", label.Name, "confidence", label.Confidence)
	return label, nil
}

// responseText joins the text parts of the first candidate that has any.
func responseText(resp generateResponse) string {
	var sb strings.Builder
	for _, c := range resp.Candidates {
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(sb.String())
}

// ParseLabel reads a model reply of the form {"label": ..., "confidence": ...}.
// Markdown code fences around the JSON are tolerated. Confidence is clamped
// to [0,1]; a missing confidence reads as 0.
func ParseLabel(raw string) (Label, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start >= 0 && end > start {
		s = s[start : end+1]
	}

	var l Label
	if err := json.Unmarshal([]byte(s), &l); err != nil {
		return Label{}, &ParseError{Raw: raw, Err: err}
	}
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return Label{}, &ParseError{Raw: raw, Err: errors.New("missing label")}
	}
	switch {
	case math.IsNaN(l.Confidence) || l.Confidence < 0:
		l.Confidence = 0
	case l.Confidence > 1:
		l.Confidence = 1
	}
	return l, nil
}
