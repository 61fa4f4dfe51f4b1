package chat

import (
	"reflect"
	"strings"
	"testing"

	"github.com/openclaw/assistant/store"
)

func messagesWith(contents ...string) []*store.Message {
	messages := make([]*store.Message, 0, len(contents))
	for _, c := range contents {
		messages = append(messages, &store.Message{Role: store.MessageRoleUser, Content: c})
	}
	return messages
}

func TestExtractKeyFacts(t *testing.T) {
	tests := []struct {
		name     string
		contents []string
		want     []string
	}{
		{
			name:     "name",
			contents: []string{"Hi, my name is Marta and I need help"},
			want:     []string{"User's name: Marta"},
		},
		{
			name:     "occupation",
			contents: []string{"I work as a data engineer"},
			want:     []string{"User's occupation: data engineer"},
		},
		{
			name:     "location",
			contents: []string{"I'm from Lisbon, Portugal"},
			want:     []string{"User's location: Lisbon, Portugal"},
		},
		{
			name:     "deduplicated across messages",
			contents: []string{"my name is Sam", "As I said, my name is Sam"},
			want:     []string{"User's name: Sam"},
		},
		{
			name:     "nothing extractable",
			contents: []string{"What's the weather like?"},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeyFacts(messagesWith(tt.contents...))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractKeyFacts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt("Ada", []string{"User's occupation: engineer"})

	for _, want := range []string{
		"The user's name is Ada.",
		"- User's occupation: engineer",
		"Guidelines:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	anonymous := BuildSystemPrompt("", nil)
	if strings.Contains(anonymous, "The user's name is") {
		t.Error("anonymous prompt must not mention a name")
	}
}
