package cli

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/coursegraph/pkg/advisor"
)

// Transcript styles
var (
	advisorLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	studentLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	messageStyle      = lipgloss.NewStyle().Foreground(colorWhite).PaddingLeft(2)
	apologyStyle      = lipgloss.NewStyle().Foreground(colorYellow).PaddingLeft(2)
	helpStyle         = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	defaultTUIWidth = 80
	minTUIWidth     = 40
)

// =============================================================================
// InterviewModel - Interactive advising interview
// =============================================================================

// replyMsg carries the result of one [advisor.Session.Submit].
type replyMsg struct {
	reply advisor.Reply
	err   error
}

// InterviewModel is the bubbletea model for the advising interview. The
// session owns the transcript; the model only renders it.
type InterviewModel struct {
	ctx      context.Context
	session  *advisor.Session
	input    textinput.Model
	progress progress.Model
	width    int
	waiting  bool
	last     *advisor.Reply
	err      error
}

// NewInterviewModel creates the interview model for session.
func NewInterviewModel(ctx context.Context, session *advisor.Session) InterviewModel {
	ti := textinput.New()
	ti.Placeholder = "Type your answer..."
	ti.CharLimit = 1000
	ti.Width = defaultTUIWidth - 4
	ti.Focus()

	return InterviewModel{
		ctx:      ctx,
		session:  session,
		input:    ti,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultTUIWidth/2)),
		width:    defaultTUIWidth,
	}
}

func (m InterviewModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m InterviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.err = nil
			return m, m.submit(text)
		}
	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.last = &msg.reply
		return m, nil
	case tea.WindowSizeMsg:
		m.width = max(msg.Width, minTUIWidth)
		m.input.Width = m.width - 4
		m.progress.Width = m.width / 2
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends text to the session off the UI goroutine.
func (m InterviewModel) submit(text string) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		reply, err := session.Submit(ctx, text)
		return replyMsg{reply: reply, err: err}
	}
}

func (m InterviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("MBA Course Advisor"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(m.session.ProgressLabel()))
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(m.session.Progress() / 100))
	b.WriteString("\n\n")

	wrap := lipgloss.NewStyle().Width(m.width - 2)
	for _, msg := range m.session.Messages() {
		if msg.Role == advisor.RoleUser {
			b.WriteString(studentLabelStyle.Render("You"))
		} else {
			b.WriteString(advisorLabelStyle.Render("Advisor"))
		}
		b.WriteString("\n")
		style := messageStyle
		if msg.Role == advisor.RoleAssistant && msg.Content == advisor.Apology {
			style = apologyStyle
		}
		b.WriteString(wrap.Render(style.Render(msg.Content)))
		b.WriteString("\n\n")
	}

	if m.last != nil && len(m.last.CourseIDs) > 0 {
		b.WriteString(StyleDim.Render("Recommended: "))
		b.WriteString(StyleCourse.Render(strings.Join(m.last.CourseIDs, " ")))
		b.WriteString("\n\n")
	}
	if m.err != nil {
		b.WriteString(StyleWarning.Render(m.err.Error()))
		b.WriteString("\n")
	}
	if m.waiting {
		b.WriteString(styleIconSpinner.Render(iconInfo) + " " + StyleDim.Render("Preparing recommendations..."))
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter send  esc quit"))
	return b.String()
}

// Selection returns the course codes of the latest recommendation.
func (m InterviewModel) Selection() []string {
	return m.session.Selection()
}
