package file

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"pm-quiz-runner/internal/domain"
)

// CatalogLoader reads catalogs from a YAML (or JSON) file of the form
//
//	quizzes:
//	  - id: default
//	    questions:
//	      - id: 1
//	        content_text: What is 2 + 2?
//	        options: "3|4|5"
//	        points: 1
//	        difficulty: Easy
type CatalogLoader struct {
	path string
}

type catalogFile struct {
	Quizzes []domain.Catalog `yaml:"quizzes"`
}

func NewCatalogLoader(path string) *CatalogLoader {
	return &CatalogLoader{path: path}
}

// LoadCatalog re-reads the file on every call; wrap it in a caching
// repository for serving.
func (l *CatalogLoader) LoadCatalog(_ context.Context, quizID string) (domain.Catalog, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("read catalog file: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.Catalog{}, fmt.Errorf("parse catalog file: %w", err)
	}
	for _, c := range f.Quizzes {
		if c.ID == quizID {
			return c, nil
		}
	}
	return domain.Catalog{}, domain.ErrQuizNotFound
}
