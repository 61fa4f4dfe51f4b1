package chat

import (
	"strings"
	"testing"

	"github.com/openclaw/assistant/plugin/ai"
	"github.com/openclaw/assistant/store"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name  string
		input RouterInput
		want  ai.ModelClass
	}{
		{
			name:  "greeting goes to haiku",
			input: RouterInput{Message: "hello", ConversationLength: 0, Tier: store.TierTrial},
			want:  ai.ModelClassHaiku,
		},
		{
			name:  "greeting with punctuation goes to haiku",
			input: RouterInput{Message: "  Hey!! ", ConversationLength: 12, Tier: store.TierPro},
			want:  ai.ModelClassHaiku,
		},
		{
			name:  "message containing a greeting is not simple",
			input: RouterInput{Message: "hello, I need a full migration plan for our warehouse, including rollback steps and timelines for every team involved in the cutover window", ConversationLength: 8, Tier: store.TierSolo},
			want:  ai.ModelClassSonnet,
		},
		{
			name:  "short message with short context goes to haiku",
			input: RouterInput{Message: strings.Repeat("a", 50), ConversationLength: 2, Tier: store.TierSolo},
			want:  ai.ModelClassHaiku,
		},
		{
			name:  "business complex query goes to opus",
			input: RouterInput{Message: "Please analyze this report. " + strings.Repeat("x", 580), ConversationLength: 3, Tier: store.TierBusiness},
			want:  ai.ModelClassOpus,
		},
		{
			name:  "solo complex keywords stay on sonnet",
			input: RouterInput{Message: "Please analyze the pros and cons of this architecture in detail for me", ConversationLength: 8, Tier: store.TierSolo},
			want:  ai.ModelClassSonnet,
		},
		{
			name:  "long message routes business to opus",
			input: RouterInput{Message: strings.Repeat("b", 2200), ConversationLength: 1, Tier: store.TierBusiness},
			want:  ai.ModelClassOpus,
		},
		{
			name:  "long message routes solo to sonnet",
			input: RouterInput{Message: strings.Repeat("b", 2200), ConversationLength: 1, Tier: store.TierSolo},
			want:  ai.ModelClassSonnet,
		},
		{
			name:  "deep conversation routes to sonnet",
			input: RouterInput{Message: "and what about the second option? I want to be sure we covered every angle before we commit to it this quarter", ConversationLength: 11, Tier: store.TierPro},
			want:  ai.ModelClassSonnet,
		},
		{
			name:  "default is sonnet",
			input: RouterInput{Message: "Can you draft a short reply to this email from my landlord about the lease renewal terms?", ConversationLength: 6, Tier: store.TierTrial},
			want:  ai.ModelClassSonnet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Route(tt.input)
			if got.Model != tt.want {
				t.Errorf("Route(%q, len=%d, %s) = %s (%s), want %s",
					tt.input.Message, tt.input.ConversationLength, tt.input.Tier, got.Model, got.Reason, tt.want)
			}
			if got.Reason == "" {
				t.Error("expected a non-empty reason")
			}
		})
	}
}

func TestRoute_Deterministic(t *testing.T) {
	input := RouterInput{Message: "compare these two databases for me", ConversationLength: 7, Tier: store.TierBusiness}

	first := Route(input)
	for i := 0; i < 10; i++ {
		if got := Route(input); got != first {
			t.Fatalf("Route is not deterministic: %+v vs %+v", got, first)
		}
	}
}
