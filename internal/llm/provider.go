package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider abstracts the model backend used for citation relevance review.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Review judges whether a cited reference supports the claim around it
	Review(ctx context.Context, req ReviewRequest) (*ReviewResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Verdict is the provider's judgement on one citation.
type Verdict string

const (
	VerdictRelevant    Verdict = "relevant"
	VerdictNotRelevant Verdict = "not_relevant"
	VerdictUncertain   Verdict = "uncertain"
)

// ReviewRequest contains one citation and the material to judge it against.
type ReviewRequest struct {
	// CitationToken is the marker as it appears in the text, e.g. "[7]"
	CitationToken string

	// Claim is the text surrounding the citation
	Claim string

	// Reference is the bibliography entry the token points at
	Reference string

	// Abstract is the looked-up paper abstract, when available
	Abstract string

	// Model overrides the configured model for this request
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ReviewResponse is the parsed provider output.
type ReviewResponse struct {
	Verdict    Verdict
	Reason     string
	Model      string
	TokensUsed int
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "",
		Model:     "",
		Timeout:   30,
		MaxTokens: 500,
	}
}

const reviewSystemPrompt = "You are an academic reviewer who judges whether cited references actually support the claims they are attached to. Answer in the requested format only."

// BuildPrompt constructs the review prompt for one citation.
func BuildPrompt(req ReviewRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, `A manuscript cites reference %s in the following passage:

---
%s
---

The reference entry reads:

%s
`, req.CitationToken, strings.TrimSpace(req.Claim), strings.TrimSpace(req.Reference))

	if req.Abstract != "" {
		fmt.Fprintf(&b, "\nAbstract of the cited paper:\n\n%s\n", strings.TrimSpace(req.Abstract))
	}

	b.WriteString(`
Does the reference plausibly support the claim it is attached to?
Answer on the first line with exactly one of: RELEVANT, NOT RELEVANT, UNCERTAIN.
Then give a one or two sentence reason.`)

	return b.String()
}

// ParseVerdict maps free-form model output to a verdict and reason.
// Unrecognized output is treated as uncertain rather than failing the run.
func ParseVerdict(output string) (Verdict, string) {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return VerdictUncertain, ""
	}

	first := trimmed
	reason := ""
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		first = trimmed[:idx]
		reason = strings.TrimSpace(trimmed[idx+1:])
	}

	switch lower := strings.ToLower(first); {
	case strings.Contains(lower, "not relevant"), strings.Contains(lower, "not_relevant"), strings.Contains(lower, "irrelevant"):
		return VerdictNotRelevant, reason
	case strings.Contains(lower, "uncertain"):
		return VerdictUncertain, reason
	case strings.Contains(lower, "relevant"):
		return VerdictRelevant, reason
	}
	return VerdictUncertain, trimmed
}
