package translator

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lingo-relay/internal/httpclient"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// GoogleTranslator uses the free web translate endpoint. No API key is
// required; the response is a nested JSON array.
type GoogleTranslator struct {
	BaseAdapter
	baseURL string
	client  *http.Client
}

func init() {
	Register("google", newGoogleTranslator)
}

func newGoogleTranslator(f *Factory) (Translator, error) {
	providerConfig := f.configManager.GetProviderConfig()

	client := f.clientManager.GetClient(&httpclient.Config{
		ConnectTimeout:      2 * time.Second,
		RequestTimeout:      4 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
	})

	return &GoogleTranslator{
		BaseAdapter: BaseAdapter{name: "google", policy: defaultRetryPolicy()},
		baseURL:     strings.TrimSuffix(providerConfig.GoogleBaseURL, "/"),
		client:      client,
	}, nil
}

// Translate translates text into the target language, source auto-detected.
func (g *GoogleTranslator) Translate(ctx context.Context, text, targetLang string) (string, Outcome) {
	return g.translateWithRetry(ctx, func(ctx context.Context) (string, Outcome) {
		return g.attempt(ctx, text, targetLang)
	})
}

func (g *GoogleTranslator) attempt(ctx context.Context, text, targetLang string) (string, Outcome) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", targetLang)
	params.Set("dt", "t")
	params.Set("q", text)

	reqURL := g.baseURL + "/translate_a/single?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", OutcomeInvalidResponse
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", OutcomeRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return "", OutcomeHTTP(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransportError(err)
	}

	// Response shape: [[[translated, original, ...], ...], ...]
	// Segments under index 0 are concatenated in order.
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return "", OutcomeParseError
	}

	var sb strings.Builder
	for _, segment := range parsed.Get("0").Array() {
		sb.WriteString(segment.Get("0").String())
	}

	translated := sb.String()
	if translated == "" {
		logrus.WithField("target_lang", targetLang).Debug("Google returned no translation segments")
		return "", OutcomeEmptyResponse
	}

	return translated, OutcomeSuccess
}
