package speech

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hammamikhairi/simmr/internal/logger"
)

// Synthesizer turns text into WAV audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Voice() string
}

var _ Synthesizer = (*AzureClient)(nil)

// AzureOption configures the Azure TTS client.
type AzureOption func(*AzureClient)

// WithVoice sets the TTS voice.
func WithVoice(voice string) AzureOption {
	return func(c *AzureClient) {
		if voice != "" {
			c.voice = voice
		}
	}
}

// WithEndpoint overrides the regional synthesis URL.
func WithEndpoint(url string) AzureOption {
	return func(c *AzureClient) { c.endpoint = url }
}

// WithHTTPTimeout sets the HTTP client timeout for TTS requests.
func WithHTTPTimeout(d time.Duration) AzureOption {
	return func(c *AzureClient) { c.httpClient.Timeout = d }
}

// AzureClient synthesizes speech with Azure Cognitive Services.
type AzureClient struct {
	key        string
	endpoint   string
	voice      string
	format     string
	httpClient *http.Client
	log        *logger.Logger
}

// NewAzureClient creates an Azure TTS client for the given region.
func NewAzureClient(key, region string, log *logger.Logger, opts ...AzureOption) *AzureClient {
	c := &AzureClient{
		key:        key,
		endpoint:   fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", region),
		voice:      DefaultVoice,
		format:     DefaultAudioFormat,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Voice returns the configured voice name.
func (c *AzureClient) Voice() string { return c.voice }

// Synthesize converts text to WAV bytes.
func (c *AzureClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	ssml, err := c.ssml(text)
	if err != nil {
		return nil, err
	}
	c.log.Debug("azure tts: %d chars with voice %s", len(text), c.voice)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", c.format)
	req.Header.Set("User-Agent", "Simmr/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("azure tts error %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio data: %w", err)
	}
	c.log.Debug("azure tts: got %d bytes of audio", len(audio))
	return audio, nil
}

// ssml wraps text in a speak/voice envelope, escaping markup characters
// so recipe text like "Salt & Pepper" stays valid XML.
func (c *AzureClient) ssml(text string) (string, error) {
	var esc bytes.Buffer
	if err := xml.EscapeText(&esc, []byte(text)); err != nil {
		return "", fmt.Errorf("escaping ssml: %w", err)
	}
	return fmt.Sprintf(
		`<speak version='1.0' xml:lang='en-US'><voice xml:lang='en-US' name='%s'>%s</voice></speak>`,
		c.voice, esc.String(),
	), nil
}
