package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"

	"cims/models"
)

// ErrUnrecognized is returned when the classifier response maps to no known
// department. Callers treat it like any other classifier failure and fall back
// to the keyword categorizer.
var ErrUnrecognized = errors.New("ai: unrecognized classifier response")

// Classifier decides which specialist department an issue image belongs to and
// pre-fills citizen submissions from a photo.
type Classifier interface {
	ClassifyDepartment(ctx context.Context, imageRef, description string) (models.DepartmentType, error)
	AnalyzeIssueImage(ctx context.Context, imageBase64, description string) (*models.IssueAnalysis, error)
}

// AnthropicClassifier implements Classifier over the Anthropic messages API.
type AnthropicClassifier struct {
	api     *anthropic.Client
	model   anthropic.Model
	timeout time.Duration
	httpc   *http.Client
}

// NewAnthropicClassifier creates a classifier with the given API key, model and
// per-attempt timeout.
func NewAnthropicClassifier(apiKey, model string, timeout time.Duration) *AnthropicClassifier {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicClassifier{
		api:     &client,
		model:   anthropic.Model(model),
		timeout: timeout,
		httpc:   &http.Client{Timeout: timeout},
	}
}

const redirectPrompt = `You are a civic issue classification assistant.

A user has reported the following issue:
%q

Analyze the IMAGE carefully and choose ONLY ONE department
based strictly on the issue visible in the image.

Allowed departments:
- PWD
- Water
- Energy

OUTPUT RULES:
- Return ONLY ONE word
- No explanation
- No JSON
- No extra text

Output must be exactly one of:
PWD
Water
Energy`

// ClassifyDepartment sends the issue image plus the citizen's description and
// parses the single-word answer. imageRef may be an http(s) URL or base64 data
// (with or without a data URI prefix).
func (c *AnthropicClassifier) ClassifyDepartment(ctx context.Context, imageRef, description string) (models.DepartmentType, error) {
	data, mediaType, err := c.resolveImage(ctx, imageRef)
	if err != nil {
		return "", fmt.Errorf("resolve issue image: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 16,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(fmt.Sprintf(redirectPrompt, description)),
				anthropic.NewImageBlockBase64(mediaType, data),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	text := firstText(msg)
	return ParseDepartmentAnswer(text)
}

// ParseDepartmentAnswer maps a classifier answer onto a specialist department,
// case-insensitively and by substring: models tend to decorate the single word.
func ParseDepartmentAnswer(text string) (models.DepartmentType, error) {
	upper := strings.ToUpper(strings.TrimSpace(text))
	switch {
	case strings.Contains(upper, "WATER"):
		return models.DeptWater, nil
	case strings.Contains(upper, "ENERGY"), strings.Contains(upper, "ELECTRICITY"):
		return models.DeptEnergy, nil
	case strings.Contains(upper, "PWD"):
		return models.DeptPWD, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnrecognized, text)
}

const analyzePrompt = `You are a civic issue classification assistant.

A user has reported the following problem: %q

Analyze the uploaded image and decide:

1. Provide a concise problem title based on the image (e.g. "Transformer issue",
   "Drainage issue", "Garbage accumulation", "Water leakage", "Road damage").

2. Identify the most appropriate local governing body from ONLY these options:
   municipal, panchayat, town_panchayat, corporation

3. Identify the category from ONLY these options:
   road_damage, streetlight, drainage, garbage, water_supply, electricity,
   public_property, other

4. Try to identify location details if visible in the image (street signs,
   landmarks), or provide a generic description.

5. Provide a reason explaining what the issue is, why it is a public issue,
   potential risks, and which authority should act.

Return ONLY valid JSON in this exact format (no markdown, no code blocks):
{"problem":"","governing_body":"","category":"","location":"","reason":""}`

// AnalyzeIssueImage asks the model to pre-fill a citizen submission from a
// photo and returns the parsed suggestion.
func (c *AnthropicClassifier) AnalyzeIssueImage(ctx context.Context, imageBase64, description string) (*models.IssueAnalysis, error) {
	data, mediaType := splitDataURI(imageBase64)
	if _, err := base64.StdEncoding.DecodeString(data); err != nil {
		return nil, fmt.Errorf("invalid image encoding: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(fmt.Sprintf(analyzePrompt, description)),
				anthropic.NewImageBlockBase64(mediaType, data),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	text := firstText(msg)
	if text == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	// Find the JSON object even when the model wraps it in prose or fencing.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in response: %q", text)
	}

	var analysis models.IssueAnalysis
	if err := json.Unmarshal([]byte(text[start:end+1]), &analysis); err != nil {
		return nil, fmt.Errorf("parse analysis response: %w", err)
	}
	return &analysis, nil
}

func firstText(msg *anthropic.Message) string {
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}

// resolveImage turns an image reference into base64 payload plus media type.
func (c *AnthropicClassifier) resolveImage(ctx context.Context, imageRef string) (data, mediaType string, err error) {
	if strings.HasPrefix(imageRef, "http://") || strings.HasPrefix(imageRef, "https://") {
		return c.fetchImageAsBase64(ctx, imageRef)
	}
	data, mediaType = splitDataURI(imageRef)
	if data == "" {
		return "", "", errors.New("empty image reference")
	}
	return data, mediaType, nil
}

// splitDataURI strips an optional data URI prefix, returning the raw base64
// payload and the declared media type (image/jpeg when absent).
func splitDataURI(s string) (data, mediaType string) {
	mediaType = "image/jpeg"
	if strings.HasPrefix(s, "data:") {
		if semi := strings.Index(s, ";"); semi > 5 {
			mediaType = s[5:semi]
		}
		if comma := strings.Index(s, ","); comma != -1 {
			s = s[comma+1:]
		}
	}
	return s, mediaType
}

func (c *AnthropicClassifier) fetchImageAsBase64(ctx context.Context, url string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", "", err
	}
	mediaType := resp.Header.Get("Content-Type")
	if mediaType == "" || !strings.HasPrefix(mediaType, "image/") {
		mediaType = "image/jpeg"
	}
	log.Debug().Str("url", url).Int("bytes", len(body)).Msg("fetched issue image for classification")
	return base64.StdEncoding.EncodeToString(body), mediaType, nil
}
