package advisor

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	cgerrors "github.com/matzehuels/coursegraph/pkg/errors"
)

type fakeRecommender struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	calls   [][]Message
}

func (f *fakeRecommender) Recommend(_ context.Context, msgs []Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, slices.Clone(msgs))
	i := len(f.calls) - 1
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "", nil
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func answerAll(t *testing.T, s *Session, n int) {
	t.Helper()
	for i := range n {
		r, err := s.Submit(context.Background(), "answer")
		if err != nil {
			t.Fatalf("Submit #%d error: %v", i, err)
		}
		if r.Kind != ReplyQuestion {
			t.Fatalf("Submit #%d kind = %v, want question", i, r.Kind)
		}
	}
}

func TestSessionInterview(t *testing.T) {
	rec := &fakeRecommender{replies: []string{"Take MBA505 after MBA501."}}
	var got []string
	s := NewSession(rec, WithLogger(quietLogger()), WithSelectionHandler(func(ids []string) { got = ids }))

	if s.Question() != Questions[0] {
		t.Errorf("Question() = %q, want first question", s.Question())
	}
	if s.Progress() != 0 {
		t.Errorf("Progress() = %v, want 0", s.Progress())
	}
	if s.ProgressLabel() != "Question 1 of 5 · 0% Complete" {
		t.Errorf("ProgressLabel() = %q", s.ProgressLabel())
	}

	answerAll(t, s, len(Questions)-1)
	if s.Progress() != 80 {
		t.Errorf("Progress() before last answer = %v, want 80", s.Progress())
	}
	if s.Question() != Questions[4] {
		t.Errorf("Question() = %q, want last question", s.Question())
	}

	r, err := s.Submit(context.Background(), "sustainability")
	if err != nil {
		t.Fatalf("final Submit error: %v", err)
	}
	if r.Kind != ReplyRecommendation {
		t.Errorf("Kind = %v, want recommendation", r.Kind)
	}
	if !strings.HasPrefix(r.Text, Preamble) || !strings.HasSuffix(r.Text, "Take MBA505 after MBA501.") {
		t.Errorf("Text = %q", r.Text)
	}
	if !slices.Equal(r.CourseIDs, []string{"MBA505", "MBA501"}) || !slices.Equal(got, r.CourseIDs) {
		t.Errorf("CourseIDs = %v, handler got %v", r.CourseIDs, got)
	}
	if !s.Complete() || s.Progress() != 100 || s.Question() != "" {
		t.Errorf("session should be complete: complete=%v progress=%v", s.Complete(), s.Progress())
	}

	// The recommender sees every question and answer, including the last.
	sent := rec.calls[0]
	if len(sent) != 10 {
		t.Fatalf("recommender received %d messages, want 10", len(sent))
	}
	if last := sent[len(sent)-1]; last.Role != RoleUser || last.Content != "sustainability" {
		t.Errorf("last message sent = %+v, want final answer", last)
	}
	if sent[0].Role != RoleAssistant || sent[0].Content != Questions[0] {
		t.Errorf("first message sent = %+v", sent[0])
	}
}

func TestSessionFollowUp(t *testing.T) {
	rec := &fakeRecommender{replies: []string{"MBA501", "Consider MBA530 too."}}
	s := NewSession(rec, WithLogger(quietLogger()), WithQuestions("Only question?"))

	if _, err := s.Submit(context.Background(), "finance"); err != nil {
		t.Fatal(err)
	}
	r, err := s.Submit(context.Background(), "what about leadership?")
	if err != nil {
		t.Fatal(err)
	}

	if r.Kind != ReplyFollowUp || r.Text != "Consider MBA530 too." {
		t.Errorf("follow-up = %+v", r)
	}
	if !slices.Equal(s.Selection(), []string{"MBA530"}) {
		t.Errorf("Selection() = %v, want [MBA530]", s.Selection())
	}
	// question, answer, recommendation, follow-up question
	if n := len(rec.calls[1]); n != 4 {
		t.Errorf("follow-up sent %d messages, want 4", n)
	}
}

func TestSessionRecommenderFailure(t *testing.T) {
	boom := errors.New("upstream down")
	rec := &fakeRecommender{errs: []error{boom}, replies: []string{"", "MBA502"}}
	s := NewSession(rec, WithLogger(quietLogger()), WithQuestions("Q?"))

	r, err := s.Submit(context.Background(), "marketing")
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if r.Kind != ReplyApology || r.Text != Apology || !errors.Is(r.Err, boom) {
		t.Errorf("reply = %+v, want apology wrapping boom", r)
	}
	if !s.Complete() {
		t.Error("session should be complete after the last answer even if the call failed")
	}
	if msgs := s.Messages(); msgs[len(msgs)-1].Content != Apology {
		t.Error("apology should be in the transcript")
	}

	// Next message is a follow-up retry.
	r, _ = s.Submit(context.Background(), "try again")
	if r.Kind != ReplyFollowUp || !slices.Equal(r.CourseIDs, []string{"MBA502"}) {
		t.Errorf("retry reply = %+v", r)
	}
}

func TestSessionRejectsEmptyMessage(t *testing.T) {
	s := NewSession(&fakeRecommender{}, WithLogger(quietLogger()))

	_, err := s.Submit(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyMessage) || !cgerrors.Is(err, cgerrors.ErrCodeInvalidInput) {
		t.Errorf("Submit(blank) error = %v", err)
	}
	if len(s.Messages()) != 1 {
		t.Error("blank input should not be recorded")
	}
}

func TestSessionBusy(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	rec := RecommenderFunc(func(ctx context.Context, _ []Message) (string, error) {
		close(entered)
		<-release
		return "MBA501", nil
	})
	s := NewSession(rec, WithLogger(quietLogger()), WithQuestions("Q?"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Submit(context.Background(), "first")
	}()
	<-entered

	if _, err := s.Submit(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent Submit error = %v, want ErrBusy", err)
	}
	close(release)
	<-done
}

func TestSessionNilRecommender(t *testing.T) {
	s := NewSession(nil, WithLogger(quietLogger()), WithQuestions("Q?"))
	r, err := s.Submit(context.Background(), "answer")
	if err != nil {
		t.Fatal(err)
	}
	if r.Kind != ReplyApology || !cgerrors.Is(r.Err, cgerrors.ErrCodeInvalidConfig) {
		t.Errorf("reply = %+v", r)
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	a := NewSession(nil, WithLogger(quietLogger()))
	b := NewSession(nil, WithLogger(quietLogger()))
	if a.ID() == b.ID() {
		t.Error("sessions should have distinct IDs")
	}
}
