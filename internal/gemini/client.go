package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sdko-org/lawchat-api/internal/config"
	"github.com/sirupsen/logrus"
)

// ErrUnavailable is returned for every failure mode of the provider:
// network error, non-2xx status, undecodable body, empty completion.
// Callers fall through to the next answer source; the distinction only
// matters in the logs.
var ErrUnavailable = errors.New("gemini unavailable")

const promptTemplate = `သင်သည် မြန်မာနိုင်ငံ၏ ဥပဒေကြံ့ခိုင်မှုနှင့် ဥပဒေရေးရာ အကြံပေးပုဂ္ဂိုလ်ဖြစ်ပါသည်။
မြန်မာနိုင်ငံ၏ ဥပဒေများ၊ အတုပ်များ၊ နှင့် ဥပဒေရေးရာ လုပ်ထုံးလုပ်နည်းများအပေါ် အခြေခံ၍ အောက်ပါမေးခွန်းကို ဖြေကြားပါ။

မေးခွန်း: %s

ကျေးဇူးပြု၍ တိကျသော၊ အသုံးဝင်သော၊ နှင့် မြန်မာဘာသာဖြင့် ဖြေကြားပါ။ သင့်ဖြေကြားချက်သည် မြန်မာနိုင်ငံ၏ လက်ရှိဥပဒေများနှင့် ကိုက်ညီရမည်။`

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	log        *logrus.Entry
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type loggingTransport struct {
	log *logrus.Entry
}

func NewClient(logger *logrus.Logger, cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.AITimeout,
			Transport: &loggingTransport{log: logger.WithField("component", "gemini_transport")},
		},
		baseURL: strings.TrimSuffix(cfg.GeminiEndpoint, "/"),
		apiKey:  cfg.GoogleAPIKey,
		model:   cfg.GeminiModel,
		log:     logger.WithField("component", "gemini_client"),
	}
}

// Complete sends the question to the generateContent endpoint, wrapped
// in the Burmese legal-advisor prompt, and returns the completion text.
// The wait is bounded by both ctx and the client timeout.
func (c *Client) Complete(ctx context.Context, question string) (string, error) {
	start := time.Now()
	log := c.log.WithField("operation", "generate_content")

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: fmt.Sprintf(promptTemplate, question)}}}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("Completion request failed")
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithField("status_code", resp.StatusCode).Warn("Completion request rejected")
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		log.WithError(err).Warn("Failed to decode completion response")
		return "", fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	answer := extractText(genResp)
	if answer == "" {
		log.Warn("Completion response contained no text")
		return "", fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	log.WithFields(logrus.Fields{
		"duration": time.Since(start),
		"chars":    len(answer),
	}).Debug("Completion received")
	return answer, nil
}

func extractText(resp generateResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		for _, p := range candidate.Content.Parts {
			b.WriteString(p.Text)
		}
		break
	}
	return strings.TrimSpace(b.String())
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	log := t.log.WithFields(logrus.Fields{
		"method": req.Method,
		"host":   req.URL.Host,
	})

	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		log.WithError(err).Debug("HTTP request failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"duration":    time.Since(start),
	}).Debug("HTTP request completed")
	return resp, nil
}
