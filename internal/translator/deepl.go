package translator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"lingo-relay/internal/httpclient"

	"github.com/sirupsen/logrus"
)

// deepLCodeTable maps internal language codes to DeepL target codes.
// Codes not listed here are uppercased as-is.
var deepLCodeTable = map[string]string{
	"zh-TW": "ZH-HANT",
	"zh-CN": "ZH-HANS",
	"zh":    "ZH",
	"en":    "EN",
	"ja":    "JA",
	"ko":    "KO",
	"ru":    "RU",
	"de":    "DE",
	"fr":    "FR",
	"es":    "ES",
	"it":    "IT",
	"pt":    "PT",
	"nl":    "NL",
	"pl":    "PL",
}

// deepLFallbackLanguages is used when the capabilities query fails.
var deepLFallbackLanguages = map[string]struct{}{
	"EN": {}, "JA": {}, "RU": {}, "ZH": {}, "ZH-HANT": {}, "ZH-HANS": {},
	"DE": {}, "FR": {}, "ES": {}, "IT": {}, "PT": {}, "NL": {}, "PL": {}, "KO": {},
}

// DeepLTranslator uses the DeepL REST API. It requires an API key and only
// accepts target languages the account supports.
type DeepLTranslator struct {
	BaseAdapter
	apiKey  string
	baseURL string
	client  *http.Client

	capOnce   sync.Once
	supported map[string]struct{}
}

func init() {
	Register("deepl", newDeepLTranslator)
}

func newDeepLTranslator(f *Factory) (Translator, error) {
	providerConfig := f.configManager.GetProviderConfig()

	client := f.clientManager.GetClient(&httpclient.Config{
		ConnectTimeout:      3 * time.Second,
		RequestTimeout:      8 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
	})

	return &DeepLTranslator{
		BaseAdapter: BaseAdapter{name: "deepl", policy: defaultRetryPolicy()},
		apiKey:      providerConfig.DeepLAPIKey,
		baseURL:     strings.TrimSuffix(providerConfig.DeepLBaseURL, "/"),
		client:      client,
	}, nil
}

// MapLanguageCode converts an internal language code to a DeepL target code.
func MapLanguageCode(code string) string {
	if mapped, ok := deepLCodeTable[code]; ok {
		return mapped
	}
	return strings.ToUpper(code)
}

// Translate translates text into the target language.
func (d *DeepLTranslator) Translate(ctx context.Context, text, targetLang string) (string, Outcome) {
	if d.apiKey == "" {
		return "", OutcomeNoAPIKey
	}

	deepLCode := MapLanguageCode(targetLang)
	if !d.supportsLanguage(ctx, deepLCode) {
		return "", OutcomeUnsupportedLanguage
	}

	return d.translateWithRetry(ctx, func(ctx context.Context) (string, Outcome) {
		return d.attempt(ctx, text, deepLCode)
	})
}

func (d *DeepLTranslator) attempt(ctx context.Context, text, targetCode string) (string, Outcome) {
	form := url.Values{}
	form.Set("auth_key", d.apiKey)
	form.Set("text", text)
	form.Set("target_lang", targetCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v2/translate", strings.NewReader(form.Encode()))
	if err != nil {
		return "", OutcomeInvalidResponse
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
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

	var parsed struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", OutcomeParseError
	}
	if len(parsed.Translations) == 0 {
		return "", OutcomeEmptyResponse
	}
	if parsed.Translations[0].Text == "" {
		return "", OutcomeEmptyResponse
	}

	return parsed.Translations[0].Text, OutcomeSuccess
}

// supportsLanguage checks the target code against the account's supported
// target languages, loaded once. A failed capabilities query falls back to
// a hardcoded common-language set.
func (d *DeepLTranslator) supportsLanguage(ctx context.Context, targetCode string) bool {
	d.capOnce.Do(func() {
		d.supported = d.loadCapabilities(ctx)
	})
	_, ok := d.supported[targetCode]
	return ok
}

func (d *DeepLTranslator) loadCapabilities(ctx context.Context) map[string]struct{} {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/v2/languages?type=target&auth_key="+url.QueryEscape(d.apiKey), nil)
	if err != nil {
		return deepLFallbackLanguages
	}

	resp, err := d.client.Do(req)
	if err != nil {
		logrus.WithError(err).Warn("DeepL capabilities query failed, using fallback language set")
		return deepLFallbackLanguages
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logrus.WithField("status", resp.StatusCode).Warn("DeepL capabilities query failed, using fallback language set")
		return deepLFallbackLanguages
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return deepLFallbackLanguages
	}

	var langs []struct {
		Language string `json:"language"`
	}
	if err := json.Unmarshal(body, &langs); err != nil || len(langs) == 0 {
		return deepLFallbackLanguages
	}

	supported := make(map[string]struct{}, len(langs))
	for _, l := range langs {
		supported[strings.ToUpper(l.Language)] = struct{}{}
	}

	logrus.WithField("count", len(supported)).Debug("Loaded DeepL target languages")
	return supported
}
