package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// StorageKey is the single durable key holding the in-progress AnswerMap.
const StorageKey = "pm_quiz_answers"

// NamespacedKey scopes StorageKey to a participant or quiz. An empty
// namespace yields StorageKey itself.
func NamespacedKey(namespace string) string {
	if namespace == "" {
		return StorageKey
	}
	return namespace + ":" + StorageKey
}

// OptionSeparator splits a question's option string into choices.
const OptionSeparator = "|"

// QuestionID identifies a question. Backends emit numeric or string ids; both
// decode to the same string form so they can key an AnswerMap.
type QuestionID string

func (id *QuestionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = QuestionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("question id: %w", err)
	}
	*id = QuestionID(n.String())
	return nil
}

// Difficulty is one of Easy, Medium or Hard. Unknown values are kept verbatim.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Question is a catalog record as served to participants (no answer key).
type Question struct {
	ID           QuestionID `json:"id" yaml:"id"`
	ContentText  string     `json:"content_text" yaml:"content_text"`
	ContentImage string     `json:"content_image,omitempty" yaml:"content_image"`
	Options      string     `json:"options,omitempty" yaml:"options"`
	Points       int        `json:"points" yaml:"points"`
	Difficulty   Difficulty `json:"difficulty" yaml:"difficulty"`
}

// IsMultipleChoice reports whether the question renders as a choice list.
func (q Question) IsMultipleChoice() bool {
	return q.Options != ""
}

// Choices splits the option string on "|" and trims every entry.
func (q Question) Choices() []string {
	if !q.IsMultipleChoice() {
		return nil
	}
	parts := strings.Split(q.Options, OptionSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// AnswerMap maps question id to the participant's current answer.
// Unanswered questions have no entry.
type AnswerMap map[QuestionID]string

// Clone returns an independent copy.
func (m AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// InputMode selects how a question is answered.
type InputMode int

const (
	InputFreeText InputMode = iota
	InputMultipleChoice
)

func (m InputMode) String() string {
	if m == InputMultipleChoice {
		return "mcq"
	}
	return "text"
}

// View is the render description of the current question.
type View struct {
	Index      int
	Position   int
	Total      int
	Text       string
	Image      string
	Points     int
	Difficulty Difficulty
	Mode       InputMode
	Options    []string
	Prior      string
	HasPrior   bool
	IsFirst    bool
	IsLast     bool
}

// SelectedOption returns the index of the prior answer among Options, or -1.
func (v View) SelectedOption() int {
	if !v.HasPrior {
		return -1
	}
	for i, opt := range v.Options {
		if opt == strings.TrimSpace(v.Prior) {
			return i
		}
	}
	return -1
}

// SubmitResult is the submission endpoint's response body.
type SubmitResult struct {
	Redirect string `json:"redirect,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Accepted reports whether the backend confirmed the submission.
func (r SubmitResult) Accepted() bool {
	return r.Redirect != ""
}

// StatusResult reports the server-side view of a participant's deadline.
type StatusResult struct {
	RemainingSeconds int `json:"remaining_seconds"`
}

// LeaderboardEntry is a single leaderboard row.
type LeaderboardEntry struct {
	Name      string `json:"name"`
	Score     int    `json:"score"`
	TimeTaken string `json:"time_taken"`
}

// Leaderboard is an ordered snapshot of finished participants.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Submission is a recorded final answer set for one team.
type Submission struct {
	Team        string
	Answers     AnswerMap
	Score       int
	StartedAt   time.Time
	SubmittedAt time.Time
}

// TimeTaken is the duration between the first catalog fetch and submission.
func (s Submission) TimeTaken() time.Duration {
	if s.StartedAt.IsZero() || s.SubmittedAt.Before(s.StartedAt) {
		return 0
	}
	return s.SubmittedAt.Sub(s.StartedAt)
}

// Feedback is a free-text message left by a participant.
type Feedback struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// FormatTimeTaken renders a duration as "Xm Ys Zms".
func FormatTimeTaken(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d / time.Minute)
	s := int((d % time.Minute) / time.Second)
	ms := int((d % time.Second) / time.Millisecond)
	return fmt.Sprintf("%dm %ds %dms", m, s, ms)
}

// Catalog is the ordered, immutable question set for a quiz.
type Catalog struct {
	ID        string     `json:"id" yaml:"id"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// MarshalAnswers encodes an AnswerMap as a JSON object of id to answer.
func MarshalAnswers(m AnswerMap) ([]byte, error) {
	if m == nil {
		m = AnswerMap{}
	}
	return json.Marshal(m)
}

// UnmarshalAnswers decodes a persisted AnswerMap. Anything other than a JSON
// object of strings is an error.
func UnmarshalAnswers(data []byte) (AnswerMap, error) {
	var m AnswerMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("answers: expected a JSON object")
	}
	return m, nil
}
