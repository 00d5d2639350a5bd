package domain

import "strings"

// Painting is one catalog record. Catalog records are never mutated after load.
type Painting struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Year      int    `json:"year"`
	Period    Period `json:"period"`
	ImageName string `json:"imageName"`
	Museum    string `json:"museum"`
	Location  string `json:"location"`
}

// Lesson is the study material shown before a quiz. The engine only passes lessons through.
type Lesson struct {
	Period             string   `json:"period" yaml:"period"`
	Title              string   `json:"title" yaml:"title"`
	Description        string   `json:"description" yaml:"description"`
	KeyCharacteristics []string `json:"keyCharacteristics" yaml:"keyCharacteristics"`
	ExamplePaintingIDs []string `json:"examplePaintingIds" yaml:"examplePaintingIds"`
}

// QuestionTypeWeight controls how many questions of a kind a session gets.
type QuestionTypeWeight struct {
	Type        string `json:"type" yaml:"type"`
	Instruction string `json:"instruction" yaml:"instruction"`
	Weight      int    `json:"weight" yaml:"weight"`
}

// QuizSettings are the per-quiz session knobs.
type QuizSettings struct {
	QuestionsPerSession  int  `json:"questionsPerSession" yaml:"questionsPerSession"`
	MinimumCorrectToPass int  `json:"minimumCorrectToPass" yaml:"minimumCorrectToPass"`
	ShowExplanations     bool `json:"showExplanations" yaml:"showExplanations"`
}

// QuizDefinition describes one quiz in the progression.
type QuizDefinition struct {
	ID            string               `json:"id" yaml:"id"`
	Title         string               `json:"title" yaml:"title"`
	Type          string               `json:"type" yaml:"type"`
	CoversPeriods []string             `json:"coversPeriods" yaml:"coversPeriods"`
	Lessons       []Lesson             `json:"lessons" yaml:"lessons"`
	QuestionTypes []QuestionTypeWeight `json:"questionTypes" yaml:"questionTypes"`
	Settings      QuizSettings         `json:"settings" yaml:"settings"`
}

// QuizDefinitions is the on-disk envelope of the definition list.
type QuizDefinitions struct {
	Quizzes []QuizDefinition `json:"quizzes" yaml:"quizzes"`
}

// CoveredPeriods parses CoversPeriods, dropping unknown labels and duplicates while keeping order.
func (q QuizDefinition) CoveredPeriods() []Period {
	seen := make(map[Period]struct{}, len(q.CoversPeriods))
	out := make([]Period, 0, len(q.CoversPeriods))
	for _, label := range q.CoversPeriods {
		p, err := ParsePeriod(label)
		if err != nil {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// PassThreshold returns the fraction of correct answers needed to pass.
// The quiz's own minimumCorrectToPass/questionsPerSession wins when both are set.
func (q QuizDefinition) PassThreshold(fallback float64) float64 {
	s := q.Settings
	if s.MinimumCorrectToPass > 0 && s.QuestionsPerSession > 0 {
		ratio := float64(s.MinimumCorrectToPass) / float64(s.QuestionsPerSession)
		if ratio > 1 {
			return 1
		}
		return ratio
	}
	return fallback
}

// QuestionType is the kind of a generated question.
type QuestionType string

const (
	QuestionPaintingToPeriod QuestionType = "paintingToPeriod"
	QuestionPeriodToPainting QuestionType = "periodToPainting"
)

// ParseQuestionType accepts camelCase, snake_case and kebab-case spellings.
func ParseQuestionType(raw string) (QuestionType, bool) {
	norm := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(raw))
	switch norm {
	case "paintingtoperiod":
		return QuestionPaintingToPeriod, true
	case "periodtopainting":
		return QuestionPeriodToPainting, true
	}
	return "", false
}

// Option is one answer choice. Key is what clients submit; Text is what they display.
type Option struct {
	Key       string `json:"key"`
	Text      string `json:"text"`
	ImageName string `json:"imageName,omitempty"`
}

// Question is a generated multiple-choice question with exactly one correct option.
type Question struct {
	Type          QuestionType `json:"type"`
	Prompt        string       `json:"prompt"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
	Options       []Option     `json:"options"`
	ImageName     string       `json:"imageName,omitempty"` // prompt image for paintingToPeriod
}

// AnswerOptions returns the option keys in display order.
func (q Question) AnswerOptions() []string {
	keys := make([]string, len(q.Options))
	for i, o := range q.Options {
		keys[i] = o.Key
	}
	return keys
}
