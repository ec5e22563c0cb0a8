package advisor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	cgerrors "github.com/matzehuels/coursegraph/pkg/errors"
)

// Questions is the default interview.
var Questions = []string{
	"What are your long-term career goals?",
	"Which industries or companies are you most interested in working for?",
	"Do you have a preference for specific functional areas, like finance, marketing, operations, or management?",
	"What are your strengths and weaknesses?",
	"Are you interested in any particular emerging fields or skills, such as data analytics, sustainability, or entrepreneurship?",
}

const (
	// Preamble prefixes the first recommendation after the interview.
	Preamble = "Thank you for sharing your background and goals. Based on your responses, here are my course recommendations:\n\n"

	// Apology is the reply when the recommender fails.
	Apology = "I apologize, but I'm having trouble processing your request. Please try again."
)

var (
	// ErrEmptyMessage is returned by [Session.Submit] for blank input.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrBusy is returned by [Session.Submit] while a recommendation is in flight.
	ErrBusy = errors.New("a reply is still being prepared")
)

// ReplyKind classifies a [Reply].
type ReplyKind int

const (
	ReplyQuestion ReplyKind = iota
	ReplyRecommendation
	ReplyFollowUp
	ReplyApology
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyQuestion:
		return "question"
	case ReplyRecommendation:
		return "recommendation"
	case ReplyFollowUp:
		return "follow-up"
	default:
		return "apology"
	}
}

// Reply is the assistant turn produced by one [Session.Submit].
type Reply struct {
	Kind      ReplyKind
	Text      string
	CourseIDs []string // codes found in a recommendation or follow-up
	Err       error    // recommender failure behind an apology
}

// Option configures a [Session].
type Option func(*Session)

// WithQuestions replaces the interview questions. An empty list is ignored.
func WithQuestions(qs ...string) Option {
	return func(s *Session) {
		if len(qs) > 0 {
			s.questions = slices.Clone(qs)
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option { return func(s *Session) { s.logger = l } }

// WithSelectionHandler registers fn to receive the course codes of every
// recommendation and follow-up reply. fn runs on the goroutine calling Submit.
func WithSelectionHandler(fn func(ids []string)) Option {
	return func(s *Session) { s.onSelection = fn }
}

// Session is a single interview. It is safe for concurrent use. A Submit made
// while another waits on the recommender returns [ErrBusy].
type Session struct {
	id          uuid.UUID
	rec         Recommender
	questions   []string
	logger      *log.Logger
	onSelection func([]string)

	mu        sync.Mutex
	messages  []Message
	current   int
	complete  bool
	busy      bool
	selection []string
}

// NewSession starts an interview. The first question is already part of the
// transcript.
func NewSession(rec Recommender, opts ...Option) *Session {
	s := &Session{
		id:        uuid.New(),
		rec:       rec,
		questions: Questions,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id.String()[:8])
	s.messages = []Message{{Role: RoleAssistant, Content: s.questions[0]}}
	return s
}

// ID identifies the session in logs and cache keys.
func (s *Session) ID() uuid.UUID { return s.id }

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

// Complete reports whether every question has been answered.
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// Question returns the question awaiting an answer, or "" once complete.
func (s *Session) Question() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.complete {
		return ""
	}
	return s.questions[s.current]
}

// Progress returns the share of questions answered, in percent. It is 100
// once the interview is complete.
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.complete {
		return 100
	}
	return float64(s.current) / float64(len(s.questions)) * 100
}

// ProgressLabel renders the interview position, for example
// "Question 2 of 5 · 20% Complete".
func (s *Session) ProgressLabel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.complete {
		return "Interview complete"
	}
	pct := float64(s.current) / float64(len(s.questions)) * 100
	return fmt.Sprintf("Question %d of %d · %d%% Complete", s.current+1, len(s.questions), int(math.Round(pct)))
}

// Selection returns the course codes of the latest successful reply.
func (s *Session) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selection)
}

// Submit records a user message and produces the next assistant turn.
//
// While questions remain the reply is the next question. The answer to the
// last question triggers a recommendation over the full transcript,
// prefixed with [Preamble]. Messages after that are follow-ups. Recommender
// failures yield an [Apology] reply with a nil error; only blank input and
// concurrent calls return errors.
func (s *Session) Submit(ctx context.Context, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, ErrEmptyMessage, "empty message")
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return Reply{}, ErrBusy
	}
	s.messages = append(s.messages, Message{Role: RoleUser, Content: text})

	if !s.complete && s.current < len(s.questions)-1 {
		s.current++
		index, next := s.current, s.questions[s.current]
		s.messages = append(s.messages, Message{Role: RoleAssistant, Content: next})
		s.mu.Unlock()
		s.logger.Debug("next question", "index", index)
		return Reply{Kind: ReplyQuestion, Text: next}, nil
	}

	kind := ReplyFollowUp
	if !s.complete {
		kind = ReplyRecommendation
		s.complete = true
	}
	s.busy = true
	transcript := slices.Clone(s.messages)
	s.mu.Unlock()

	s.logger.Info("requesting recommendation", "kind", kind, "messages", len(transcript))
	content, err := s.recommend(ctx, transcript)

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.messages = append(s.messages, Message{Role: RoleAssistant, Content: Apology})
		s.mu.Unlock()
		s.logger.Warn("recommendation failed", "err", err)
		return Reply{Kind: ReplyApology, Text: Apology, Err: err}, nil
	}

	reply := Reply{Kind: kind, Text: content, CourseIDs: ExtractCourseIDs(content)}
	if kind == ReplyRecommendation {
		reply.Text = Preamble + content
	}
	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: reply.Text})
	s.selection = slices.Clone(reply.CourseIDs)
	s.mu.Unlock()

	s.logger.Info("recommendation received", "courses", len(reply.CourseIDs))
	if s.onSelection != nil {
		s.onSelection(slices.Clone(reply.CourseIDs))
	}
	return reply, nil
}

func (s *Session) recommend(ctx context.Context, transcript []Message) (string, error) {
	if s.rec == nil {
		return "", cgerrors.New(cgerrors.ErrCodeInvalidConfig, "no recommender configured")
	}
	return s.rec.Recommend(ctx, transcript)
}
