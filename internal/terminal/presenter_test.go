package terminal

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"pm-quiz-runner/internal/app"
	"pm-quiz-runner/internal/domain"
)

func TestRenderMarksSelectedOption(t *testing.T) {
	var buf bytes.Buffer
	p := NewPresenter(&buf)

	p.Render(domain.View{
		Position: 2, Total: 3, Text: "Pick one", Points: 5, Difficulty: domain.DifficultyHard,
		Mode: domain.InputMultipleChoice, Options: []string{"A", "B", "C"},
		Prior: "B", HasPrior: true,
	})

	out := buf.String()
	assert.Contains(t, out, "Question 2/3  [Hard, 5 pts]")
	assert.Contains(t, out, "  1) A\n")
	assert.Contains(t, out, "> 2) B\n")
	assert.Contains(t, out, "p: previous")
	assert.Contains(t, out, "n: next")
}

func TestRenderFreeTextLastQuestion(t *testing.T) {
	var buf bytes.Buffer
	p := NewPresenter(&buf)

	p.Render(domain.View{Position: 1, Total: 1, Text: "Why?", IsFirst: true, IsLast: true, Prior: "because", HasPrior: true})

	out := buf.String()
	assert.Contains(t, out, "Your answer: because")
	assert.Contains(t, out, "n: finish")
	assert.NotContains(t, out, "p: previous")
	assert.Contains(t, out, "Unrated")
}

func TestTimerWarnsOnceWhenCritical(t *testing.T) {
	var buf bytes.Buffer
	p := NewPresenter(&buf)

	timer := app.NewDeadlineTimer(62)
	for i := 0; i < 5; i++ {
		s, _ := timer.Tick()
		p.Timer(s)
	}

	out := buf.String()
	assert.Contains(t, out, "[01:00] remaining")
	assert.Equal(t, 1, strings.Count(out, "less than a minute left"))
	assert.Contains(t, out, "[00:59]")
}

func TestPrintLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	PrintLeaderboard(&buf, []domain.LeaderboardEntry{
		{Name: "Alpha", Score: 10, TimeTaken: "1m 2s 3ms"},
		{Name: "Beta", Score: 7, TimeTaken: "2m 0s 0ms"},
	}, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Alpha")
	assert.Contains(t, lines[2], "2m 0s 0ms")

	buf.Reset()
	PrintLeaderboard(&buf, nil, errors.New("boom"))
	assert.Equal(t, "Error loading leaderboard.\n", buf.String())
}

func TestReadLines(t *testing.T) {
	lines := ReadLines(context.Background(), strings.NewReader("1\r\nnext\n\nq\n"))

	var got []string
	for l := range lines {
		got = append(got, l)
	}
	assert.Equal(t, []string{"1", "next", "", "q"}, got)
}
