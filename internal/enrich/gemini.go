package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dvloznov/finance-insights/internal/logger"
)

// DefaultModelName is the Gemini model used for enrichment calls.
const DefaultModelName = "gemini-2.5-flash"

// GeminiEnricher implements Enricher against the Gemini API. Prompts demand
// strict JSON; responses are defensively stripped of Markdown fences before
// parsing because models occasionally ignore formatting instructions.
type GeminiEnricher struct {
	client *genai.Client
	model  string
}

// NewGeminiEnricher creates a Gemini-backed enricher. Credentials are read
// from the environment by the genai client.
func NewGeminiEnricher(ctx context.Context) (*GeminiEnricher, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiEnricher: create genai client: %w", err)
	}
	return &GeminiEnricher{client: client, model: DefaultModelName}, nil
}

// NormalizeMerchant implements Enricher.
func (g *GeminiEnricher) NormalizeMerchant(ctx context.Context, raw string) (string, error) {
	prompt :=
		"You are a merchant name canonicalizer for bank transaction descriptions.\n\n" +
			"Task:\n" +
			"- Given one raw bank statement description, return the canonical brand name.\n" +
			"- Output STRICT JSON only (no comments, no extra text).\n" +
			"- Output a single JSON object: {\"merchant\": string}\n\n" +
			"Rules:\n" +
			"- Strip store numbers, card scheme prefixes, and legal suffixes.\n" +
			"- If the description is not recognizable, return the cleaned description as-is.\n" +
			"- Do NOT wrap the response in code fences.\n\n" +
			"Description: " + raw + "\n"

	var parsed struct {
		Merchant string `json:"merchant"`
	}
	if err := g.generateJSON(ctx, prompt, &parsed); err != nil {
		return "", err
	}
	if strings.TrimSpace(parsed.Merchant) == "" {
		return "", fmt.Errorf("NormalizeMerchant: empty merchant in model response: %w", ErrUnavailable)
	}
	return parsed.Merchant, nil
}

// ClassifyVariable implements Enricher.
func (g *GeminiEnricher) ClassifyVariable(ctx context.Context, merchant string, amounts []float64) (bool, error) {
	amountList := make([]string, len(amounts))
	for i, a := range amounts {
		amountList[i] = fmt.Sprintf("%.2f", a)
	}
	prompt :=
		"You are judging whether a merchant's charges form one recurring commitment.\n\n" +
			"Task:\n" +
			"- The merchant charged these amounts on a regular cycle: [" + strings.Join(amountList, ", ") + "]\n" +
			"- Merchant: " + merchant + "\n" +
			"- Decide whether this looks like a single usage-based recurring bill\n" +
			"  (utility, metered service) versus unrelated one-off purchases.\n" +
			"- Output STRICT JSON only: {\"recurring\": boolean}\n" +
			"- Do NOT wrap the response in code fences.\n"

	var parsed struct {
		Recurring bool `json:"recurring"`
	}
	if err := g.generateJSON(ctx, prompt, &parsed); err != nil {
		return false, err
	}
	return parsed.Recurring, nil
}

func (g *GeminiEnricher) generateJSON(ctx context.Context, prompt string, out interface{}) error {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return fmt.Errorf("generateJSON: generate content: %w", ErrUnavailable)
	}

	rawText := resp.Text()
	if rawText == "" {
		return fmt.Errorf("generateJSON: empty response from model: %w", ErrUnavailable)
	}

	clean := cleanModelJSON(rawText)
	if err := json.Unmarshal([]byte(clean), out); err != nil {
		log := logger.FromContext(ctx)
		log.Debug().Str("raw", rawText).Msg("enrichment response was not valid JSON")
		return fmt.Errorf("generateJSON: unmarshal JSON: %w", ErrUnavailable)
	}
	return nil
}

// cleanModelJSON strips Markdown fences and surrounding junk that models
// sometimes emit despite strict-JSON instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// Keep only from the first '{' to the last '}' if junk remains.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
