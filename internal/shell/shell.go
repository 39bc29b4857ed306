// Package shell is the interactive console: ask questions, review the
// session, browse the log and run pattern analysis.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/patternlog/backend/internal/analysis"
	"github.com/patternlog/backend/internal/query"
	"github.com/patternlog/backend/internal/session"
	"github.com/patternlog/backend/internal/storage/models"
	"github.com/patternlog/backend/pkg/logger"
)

const (
	CmdExit    = "exit"
	CmdHistory = "history"
	CmdClear   = "clear"
	CmdRepeat  = "repeat"
	CmdView    = "view"
	CmdAnalyze = "analyze"
)

type Asker interface {
	Ask(ctx context.Context, question string) (*query.Exchange, error)
}

type Lister interface {
	ListAll(ctx context.Context) ([]models.Interaction, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Report, error)
}

type Shell struct {
	in       *bufio.Scanner
	out      io.Writer
	asker    Asker
	log      Lister
	analyzer Analyzer
	history  *session.History
	theme    theme
}

func New(in io.Reader, out io.Writer, asker Asker, log Lister, analyzer Analyzer, history *session.History) *Shell {
	if history == nil {
		history = session.NewHistory(0)
	}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &Shell{
		in:       scanner,
		out:      out,
		asker:    asker,
		log:      log,
		analyzer: analyzer,
		history:  history,
		theme:    newTheme(out),
	}
}

// Run reads commands until exit, end of input or context cancellation.
func (s *Shell) Run(ctx context.Context) error {
	s.println(s.theme.banner.Render(banner))
	s.println(s.theme.banner.Render("Welcome to PatternLog! Ask anything, or type analyze to see what you keep asking about."))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(s.out, s.theme.prompt.Render("Enter your question: "))
		if !s.in.Scan() {
			s.println("")
			return s.in.Err()
		}

		line := strings.TrimSpace(s.in.Text())
		if strings.EqualFold(line, CmdExit) {
			s.println(s.theme.notice.Render("PatternLog says goodbye. See you soon."))
			return nil
		}
		s.Dispatch(ctx, line)
	}
}

// Dispatch runs a single input line. Command words are matched without
// regard to case; anything else is treated as a question.
func (s *Shell) Dispatch(ctx context.Context, line string) {
	switch strings.ToLower(line) {
	case "":
		s.println(s.theme.errorMsg.Render("Please enter a question."))
	case CmdHistory:
		s.showHistory()
	case CmdClear:
		s.history.Clear()
		s.println(s.theme.success.Render("\nQuestion history cleared."))
	case CmdRepeat:
		s.repeat()
	case CmdView:
		s.view(ctx)
	case CmdAnalyze:
		s.analyze(ctx)
	default:
		s.ask(ctx, line)
	}
}

func (s *Shell) ask(ctx context.Context, question string) {
	ex, err := s.asker.Ask(ctx, question)
	if err != nil {
		logger.Debug("Question not answered", zap.Error(err))
		if errors.Is(err, query.ErrNoAnswer) {
			s.println(s.theme.errorMsg.Render("No answer was produced. Try rephrasing the question."))
			return
		}
		s.println(s.theme.errorMsg.Render("Error generating answer: " + err.Error()))
		return
	}

	answer := ex.Interaction.Answer
	s.history.Add(question, answer)

	s.println(s.theme.success.Render("\nAnswer:"))
	s.println(s.theme.answer.Render(answer))
	s.separator()
}

func (s *Shell) showHistory() {
	s.println(s.theme.heading.Render("\nQuestion History:"))
	s.separator()
	for i, e := range s.history.Entries() {
		s.println(fmt.Sprintf("%d. Question: %s", i+1, e.Question))
		s.println(fmt.Sprintf("   Answer: %s", e.Answer))
		s.separator()
	}
}

func (s *Shell) repeat() {
	last, ok := s.history.Last()
	if !ok {
		s.println(s.theme.errorMsg.Render("\nNo last question and answer available."))
		return
	}
	s.println(s.theme.label.Render("\nLast Question:"))
	s.println(last.Question)
	s.println(s.theme.label.Render("Last Answer:"))
	s.println(last.Answer)
	s.separator()
}

func (s *Shell) view(ctx context.Context) {
	interactions, err := s.log.ListAll(ctx)
	if err != nil {
		s.println(s.theme.errorMsg.Render("Failed to read interactions: " + err.Error()))
		return
	}
	if len(interactions) == 0 {
		s.println(s.theme.errorMsg.Render("No interactions found."))
		return
	}

	s.println(s.theme.heading.Render("\nQuestion-Answer Interactions:"))
	s.separator()
	for _, in := range interactions {
		s.println(fmt.Sprintf("ID: %d", in.ID))
		s.println("Question: " + in.Question)
		s.println("Answer: " + in.Answer)
		s.println("Timestamp: " + in.Timestamp.Local().Format("2006-01-02 15:04:05"))
		s.separator()
	}
}

func (s *Shell) analyze(ctx context.Context) {
	rep, err := s.analyzer.Analyze(ctx, analysis.Request{Trigger: "shell"})
	if err != nil {
		if analysis.IsNotEnoughData(err) {
			s.println(s.theme.errorMsg.Render("Not enough interactions for analysis yet."))
			return
		}
		s.println(s.theme.errorMsg.Render("Analysis failed: " + err.Error()))
		return
	}

	s.println(s.theme.heading.Render("\nDiscovered Patterns:"))
	s.separator()
	for _, line := range rep.Lines {
		s.println(line)
	}
	s.separator()
}

func (s *Shell) separator() {
	s.println(s.theme.separator.Render(strings.Repeat("-", 40)))
}

func (s *Shell) println(text string) {
	fmt.Fprintln(s.out, text)
}
