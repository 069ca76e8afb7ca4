package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pm-quiz-runner/internal/app"
	"pm-quiz-runner/internal/domain"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		line string
		kind app.CommandKind
		idx  int
	}{
		{"n", app.CmdNext, 0},
		{" NEXT ", app.CmdNext, 0},
		{">", app.CmdNext, 0},
		{"p", app.CmdPrevious, 0},
		{"prev", app.CmdPrevious, 0},
		{"g 3", app.CmdGoto, 2},
		{"goto 1", app.CmdGoto, 0},
		{"s", app.CmdSubmit, 0},
		{"finish", app.CmdSubmit, 0},
		{"q", app.CmdQuit, 0},
		{"?", app.CmdHelp, 0},
		{"2", app.CmdAnswer, 0},
		{"next week", app.CmdAnswer, 0},
		{"g three", app.CmdAnswer, 0},
		{"", app.CmdAnswer, 0},
	}
	for _, tc := range cases {
		cmd := app.ParseCommand(tc.line)
		assert.Equal(t, tc.kind, cmd.Kind, "line %q", tc.line)
		if tc.kind == app.CmdGoto {
			assert.Equal(t, tc.idx, cmd.Index, "line %q", tc.line)
		}
		if tc.kind == app.CmdAnswer {
			assert.Equal(t, tc.line, cmd.Text)
		}
	}
}

func TestResolveAnswer(t *testing.T) {
	mcq := domain.View{Mode: domain.InputMultipleChoice, Options: []string{"Venus", "Mars", "Jupiter"}}
	text := domain.View{Mode: domain.InputFreeText}
	numeric := domain.View{Mode: domain.InputMultipleChoice, Options: []string{"3", "4", "5"}}

	v, ok := app.ResolveAnswer(numeric, "3")
	assert.True(t, ok)
	assert.Equal(t, "3", v, "an option's own text wins over its position")
	v, ok = app.ResolveAnswer(numeric, " 5 ")
	assert.True(t, ok)
	assert.Equal(t, "5", v)
	v, ok = app.ResolveAnswer(numeric, "2")
	assert.True(t, ok)
	assert.Equal(t, "4", v, "a number that is not an option selects by position")

	v, ok = app.ResolveAnswer(mcq, "2")
	assert.True(t, ok)
	assert.Equal(t, "Mars", v)

	v, ok = app.ResolveAnswer(mcq, " Jupiter ")
	assert.True(t, ok)
	assert.Equal(t, "Jupiter", v)

	_, ok = app.ResolveAnswer(mcq, "4")
	assert.False(t, ok)
	_, ok = app.ResolveAnswer(mcq, "mars")
	assert.False(t, ok)

	v, ok = app.ResolveAnswer(text, "  photosynthesis ")
	assert.True(t, ok)
	assert.Equal(t, "  photosynthesis ", v)
	_, ok = app.ResolveAnswer(text, "  ")
	assert.False(t, ok)
}

func TestIsAffirmative(t *testing.T) {
	assert.True(t, app.IsAffirmative("y"))
	assert.True(t, app.IsAffirmative(" YES "))
	assert.False(t, app.IsAffirmative(""))
	assert.False(t, app.IsAffirmative("no"))
}
