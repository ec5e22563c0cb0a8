package advisor

import (
	"slices"
	"testing"
)

func TestExtractCourseIDs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"none", "Take some finance classes.", []string{}},
		{"single", "I recommend MBA505.", []string{"MBA505"}},
		{"order kept", "Start with MBA502, then MBA501.", []string{"MBA502", "MBA501"}},
		{"duplicates removed", "MBA501 first. MBA501 is essential.", []string{"MBA501"}},
		{"other prefixes", "FIN200 and ACCT1 also count", []string{"FIN200", "ACCT1"}},
		{"lowercase ignored", "mba501 is not a code", []string{}},
		{"maximal match", "XMBA501A", []string{"XMBA501"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractCourseIDs(tt.text); !slices.Equal(got, tt.want) {
				t.Errorf("ExtractCourseIDs(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestReplyKindString(t *testing.T) {
	if ReplyFollowUp.String() != "follow-up" || ReplyApology.String() != "apology" {
		t.Error("unexpected ReplyKind names")
	}
}
