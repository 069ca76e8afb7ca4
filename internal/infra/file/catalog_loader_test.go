package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pm-quiz-runner/internal/domain"
)

const catalogYAML = `
quizzes:
  - id: default
    questions:
      - id: 1
        content_text: What is 2 + 2?
        options: "3 | 4|5 "
        points: 1
        difficulty: Easy
      - id: q-2
        content_text: Name this landmark
        content_image: https://example.com/tower.png
        points: 5
        difficulty: Hard
`

func TestCatalogLoaderReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o644))

	catalog, err := NewCatalogLoader(path).LoadCatalog(context.Background(), "default")
	require.NoError(t, err)
	require.Len(t, catalog.Questions, 2)

	first := catalog.Questions[0]
	assert.Equal(t, domain.QuestionID("1"), first.ID)
	assert.Equal(t, []string{"3", "4", "5"}, first.Choices())
	assert.Equal(t, domain.DifficultyEasy, first.Difficulty)

	second := catalog.Questions[1]
	assert.Equal(t, domain.QuestionID("q-2"), second.ID)
	assert.False(t, second.IsMultipleChoice())
	assert.Equal(t, "https://example.com/tower.png", second.ContentImage)
}

func TestCatalogLoaderUnknownQuiz(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o644))

	_, err := NewCatalogLoader(path).LoadCatalog(context.Background(), "other")
	assert.ErrorIs(t, err, domain.ErrQuizNotFound)
}
