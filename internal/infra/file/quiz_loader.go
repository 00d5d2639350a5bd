package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"artquiz-service/internal/domain"
	"gopkg.in/yaml.v3"
)

// QuizLoader reads quiz definitions from a JSON or YAML file ({"quizzes": [...]}).
type QuizLoader struct {
	path string
}

func NewQuizLoader(path string) *QuizLoader {
	return &QuizLoader{path: path}
}

func (l *QuizLoader) LoadQuizzes(_ context.Context) ([]domain.QuizDefinition, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read quizzes: %w", err)
	}
	return DecodeQuizzes(data, filepath.Ext(l.path))
}

// DecodeQuizzes parses a definition document. ext selects YAML for ".yaml"/".yml", JSON otherwise.
func DecodeQuizzes(data []byte, ext string) ([]domain.QuizDefinition, error) {
	var env domain.QuizDefinitions
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decode quizzes: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decode quizzes: %w", err)
		}
	}
	for i, q := range env.Quizzes {
		if strings.TrimSpace(q.ID) == "" {
			return nil, fmt.Errorf("decode quizzes: quiz #%d has no id", i+1)
		}
	}
	return env.Quizzes, nil
}
