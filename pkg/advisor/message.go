package advisor

import (
	"context"
	"regexp"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Recommender produces an advisor reply for a conversation. The messages
// never include a system prompt; implementations add their own.
type Recommender interface {
	Recommend(ctx context.Context, messages []Message) (string, error)
}

// RecommenderFunc adapts a function to [Recommender].
type RecommenderFunc func(ctx context.Context, messages []Message) (string, error)

func (f RecommenderFunc) Recommend(ctx context.Context, messages []Message) (string, error) {
	return f(ctx, messages)
}

var courseIDRe = regexp.MustCompile(`[A-Z]+\d+`)

// ExtractCourseIDs returns every maximal run of uppercase letters followed by
// digits in text, in order of first appearance and without duplicates.
// Whether the codes exist in a catalog is left to the caller.
func ExtractCourseIDs(text string) []string {
	matches := courseIDRe.FindAllString(text, -1)
	seen := make(map[string]bool, len(matches))
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			ids = append(ids, m)
		}
	}
	return ids
}
