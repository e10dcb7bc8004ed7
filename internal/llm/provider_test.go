package llm

import (
	"strings"
	"testing"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		verdict    Verdict
		wantReason string
	}{
		{
			name:       "relevant with reason",
			output:     "RELEVANT\nThe reference directly supports the claim.",
			verdict:    VerdictRelevant,
			wantReason: "The reference directly supports the claim.",
		},
		{
			name:       "not relevant",
			output:     "NOT RELEVANT\nThe cited paper is about a different topic.",
			verdict:    VerdictNotRelevant,
			wantReason: "The cited paper is about a different topic.",
		},
		{
			name:    "underscore form",
			output:  "not_relevant",
			verdict: VerdictNotRelevant,
		},
		{
			name:    "irrelevant alias",
			output:  "The citation is irrelevant here.",
			verdict: VerdictNotRelevant,
		},
		{
			name:       "uncertain",
			output:     "UNCERTAIN\nNot enough information in the abstract.",
			verdict:    VerdictUncertain,
			wantReason: "Not enough information in the abstract.",
		},
		{
			name:    "lowercase relevant",
			output:  "relevant",
			verdict: VerdictRelevant,
		},
		{
			name:       "not relevant beats relevant substring",
			output:     "NOT RELEVANT because it never discusses the claim",
			verdict:    VerdictNotRelevant,
			wantReason: "",
		},
		{
			name:       "unrecognized output is uncertain with full text",
			output:     "I cannot comply with that request.",
			verdict:    VerdictUncertain,
			wantReason: "I cannot comply with that request.",
		},
		{
			name:    "empty output",
			output:  "",
			verdict: VerdictUncertain,
		},
		{
			name:       "whitespace and trailing newlines",
			output:     "  RELEVANT  \n  supports the claim  \n",
			verdict:    VerdictRelevant,
			wantReason: "supports the claim",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, reason := ParseVerdict(tt.output)
			if verdict != tt.verdict {
				t.Errorf("verdict = %q, want %q", verdict, tt.verdict)
			}
			if reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	req := ReviewRequest{
		CitationToken: "[7]",
		Claim:         "Transformers dominate sequence modeling [7].",
		Reference:     "[7] Vaswani et al. Attention is all you need. 2017.",
		Abstract:      "We propose the Transformer architecture.",
	}

	prompt := BuildPrompt(req)

	for _, want := range []string{
		"[7]",
		"Transformers dominate sequence modeling",
		"Attention is all you need",
		"Abstract of the cited paper",
		"We propose the Transformer architecture.",
		"RELEVANT, NOT RELEVANT, UNCERTAIN",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptWithoutAbstract(t *testing.T) {
	prompt := BuildPrompt(ReviewRequest{
		CitationToken: "[1]",
		Claim:         "claim [1]",
		Reference:     "[1] ref",
	})
	if strings.Contains(prompt, "Abstract of the cited paper") {
		t.Error("prompt should omit the abstract section when none is available")
	}
}
