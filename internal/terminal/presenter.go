package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"pm-quiz-runner/internal/app"
	"pm-quiz-runner/internal/domain"
)

const helpText = `Commands:
  <text>        answer the current question (option number or text for multiple choice)
  n, next       next question (finishes the quiz on the last one)
  p, prev       previous question
  g N           go to question N
  s, submit     finish the quiz
  q, quit       leave; answers are kept for next time
  ?, help       this help`

// Presenter renders quiz views as plain text. It satisfies app.SessionUI.
type Presenter struct {
	mu       sync.Mutex
	out      io.Writer
	critical bool
}

func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{out: out}
}

func (p *Presenter) Render(view domain.View) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "\nQuestion %d/%d  [%s, %d pts]\n", view.Position, view.Total, difficultyLabel(view.Difficulty), view.Points)
	if view.Text != "" {
		fmt.Fprintln(p.out, view.Text)
	}
	if view.Image != "" {
		fmt.Fprintf(p.out, "(image: %s)\n", view.Image)
	}

	switch view.Mode {
	case domain.InputMultipleChoice:
		selected := view.SelectedOption()
		for i, opt := range view.Options {
			prefix := "  "
			if i == selected {
				prefix = "> "
			}
			fmt.Fprintf(p.out, "%s%d) %s\n", prefix, i+1, opt)
		}
	default:
		if view.HasPrior {
			fmt.Fprintf(p.out, "Your answer: %s\n", view.Prior)
		} else {
			fmt.Fprintln(p.out, "Type your answer.")
		}
	}

	var nav []string
	if !view.IsFirst {
		nav = append(nav, "p: previous")
	}
	if view.IsLast {
		nav = append(nav, "n: finish")
	} else {
		nav = append(nav, "n: next")
	}
	fmt.Fprintf(p.out, "[%s | ?: help]\n", strings.Join(nav, " | "))
}

func (p *Presenter) Notice(kind app.NoticeKind, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch kind {
	case app.NoticeError:
		fmt.Fprintf(p.out, "ERROR: %s\n", message)
	case app.NoticeRetry:
		fmt.Fprintf(p.out, "!! %s\n", message)
	case app.NoticeRedirect:
		fmt.Fprintf(p.out, "Quiz submitted. Results: %s\n", message)
	default:
		fmt.Fprintln(p.out, message)
	}
}

// Timer prints the countdown on whole minutes, every ten seconds once
// critical, and on expiry. A line per second would bury the question.
func (p *Presenter) Timer(s app.TimerSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case s.Expired:
		fmt.Fprintf(p.out, "[%s] time is up\n", s.Display)
	case s.Critical && !p.critical:
		p.critical = true
		fmt.Fprintf(p.out, "[%s] less than a minute left!\n", s.Display)
	case s.Critical && s.Remaining%10 == 0:
		fmt.Fprintf(p.out, "[%s]\n", s.Display)
	case !s.Critical && s.Remaining%60 == 0:
		fmt.Fprintf(p.out, "[%s] remaining\n", s.Display)
	}
}

func (p *Presenter) Prompt(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s ", message)
}

func (p *Presenter) Help() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, helpText)
}

func difficultyLabel(d domain.Difficulty) string {
	if d == "" {
		return "Unrated"
	}
	return string(d)
}

// PrintLeaderboard writes the leaderboard as an aligned table, or the fetch
// error as inline text.
func PrintLeaderboard(out io.Writer, entries []domain.LeaderboardEntry, err error) {
	if err != nil {
		fmt.Fprintln(out, "Error loading leaderboard.")
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No submissions yet.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTEAM\tSCORE\tTIME")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", i+1, e.Name, e.Score, e.TimeTaken)
	}
	_ = tw.Flush()
}
