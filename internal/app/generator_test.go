package app

import (
	"fmt"
	"sync"
	"testing"

	"artquiz-service/internal/domain"
)

func TestGeneratedOptionsAreWellFormed(t *testing.T) {
	paintings := paintingsFor(map[domain.Period]int{
		domain.PeriodRenaissance:   6,
		domain.PeriodBaroque:       5,
		domain.PeriodImpressionism: 4,
		domain.PeriodCubism:        3,
		domain.PeriodPopArt:        2,
	})
	quiz := domain.QuizDefinition{
		ID:            "periods-quiz-3",
		CoversPeriods: []string{"Renaissance", "Baroque", "Impressionism", "Cubism", "Pop Art"},
		Settings:      domain.QuizSettings{QuestionsPerSession: 10},
	}

	for seed := int64(0); seed < 50; seed++ {
		questions := NewGenerator(seed).Generate(paintings, quiz)
		if len(questions) > quiz.Settings.QuestionsPerSession {
			t.Fatalf("seed %d: %d questions exceeds session size", seed, len(questions))
		}
		for _, q := range questions {
			if err := checkOptions(q); err != nil {
				t.Fatalf("seed %d: %v", seed, err)
			}
		}
	}
}

func TestGenerateConcurrentCallsShareGenerator(t *testing.T) {
	paintings := paintingsFor(map[domain.Period]int{
		domain.PeriodRenaissance: 5,
		domain.PeriodBaroque:     5,
		domain.PeriodRococo:      5,
	})
	quiz := domain.QuizDefinition{
		CoversPeriods: []string{"Renaissance", "Baroque", "Rococo"},
		Settings:      domain.QuizSettings{QuestionsPerSession: 6},
	}
	gen := NewGenerator(9)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 40; i++ {
				questions := gen.Generate(paintings, quiz)
				if len(questions) != quiz.Settings.QuestionsPerSession {
					t.Errorf("expected %d questions, got %d", quiz.Settings.QuestionsPerSession, len(questions))
					return
				}
				for _, q := range questions {
					if err := checkOptions(q); err != nil {
						t.Error(err)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestPeriodToPaintingKeysSharedTitlesByID(t *testing.T) {
	paintings := []domain.Painting{
		{ID: "madonna-florence", Title: "Madonna and Child", Period: domain.PeriodRenaissance},
		{ID: "madonna-antwerp", Title: "Madonna and Child", Period: domain.PeriodBaroque},
	}
	quiz := domain.QuizDefinition{
		CoversPeriods: []string{"Renaissance", "Baroque"},
		QuestionTypes: []domain.QuestionTypeWeight{{Type: "periodToPainting", Weight: 1}},
		Settings:      domain.QuizSettings{QuestionsPerSession: 2},
	}
	want := map[string]string{
		"Which painting is from Renaissance?": "madonna-florence",
		"Which painting is from Baroque?":     "madonna-antwerp",
	}

	for seed := int64(0); seed < 10; seed++ {
		questions := NewGenerator(seed).Generate(paintings, quiz)
		if len(questions) != 2 {
			t.Fatalf("seed %d: expected a question per period, got %d", seed, len(questions))
		}
		for _, q := range questions {
			if q.CorrectAnswer != want[q.Prompt] {
				t.Fatalf("seed %d: %q answered by %q, want id %q", seed, q.Prompt, q.CorrectAnswer, want[q.Prompt])
			}
			if len(q.Options) != 2 || q.Options[0].Key == q.Options[1].Key {
				t.Fatalf("seed %d: expected both paintings as separate options, got %+v", seed, q.Options)
			}
			for _, o := range q.Options {
				if o.Text != "Madonna and Child" {
					t.Fatalf("seed %d: unexpected option text %q", seed, o.Text)
				}
			}
			if err := checkOptions(q); err != nil {
				t.Fatalf("seed %d: %v", seed, err)
			}
		}
	}
}

func TestPeriodToPaintingDistractorsComeFromOtherPeriods(t *testing.T) {
	paintings := paintingsFor(map[domain.Period]int{
		domain.PeriodRenaissance: 4,
		domain.PeriodBaroque:     4,
		domain.PeriodRococo:      4,
	})
	byID := make(map[string]domain.Painting, len(paintings))
	for _, p := range paintings {
		byID[p.ID] = p
	}
	quiz := domain.QuizDefinition{
		CoversPeriods: []string{"Renaissance", "Baroque", "Rococo"},
		QuestionTypes: []domain.QuestionTypeWeight{{Type: "periodToPainting", Weight: 1}},
		Settings:      domain.QuizSettings{QuestionsPerSession: 3},
	}

	for seed := int64(0); seed < 30; seed++ {
		for _, q := range NewGenerator(seed).Generate(paintings, quiz) {
			if q.Type != domain.QuestionPeriodToPainting {
				t.Fatalf("unexpected question type %s", q.Type)
			}
			target := byID[q.CorrectAnswer].Period
			for _, o := range q.Options {
				if o.Key == q.CorrectAnswer {
					continue
				}
				if byID[o.Key].Period == target {
					t.Fatalf("seed %d: distractor %s shares target period %s", seed, o.Key, target)
				}
			}
		}
	}
}

func TestGenerateThinSecondPeriod(t *testing.T) {
	paintings := paintingsFor(map[domain.Period]int{
		domain.PeriodRenaissance: 4,
		domain.PeriodBaroque:     3,
	})
	quiz := domain.QuizDefinition{
		CoversPeriods: []string{"Renaissance", "Baroque"},
		QuestionTypes: []domain.QuestionTypeWeight{
			{Type: "paintingToPeriod", Weight: 1},
			{Type: "periodToPainting", Weight: 1},
		},
		Settings: domain.QuizSettings{QuestionsPerSession: 10},
	}

	for seed := int64(0); seed < 30; seed++ {
		questions := NewGenerator(seed).Generate(paintings, quiz)
		if len(questions) == 0 || len(questions) >= 10 {
			t.Fatalf("seed %d: expected a short but non-empty set, got %d", seed, len(questions))
		}
		var baroqueTarget *domain.Question
		for i, q := range questions {
			if q.Type == domain.QuestionPeriodToPainting && q.Prompt == "Which painting is from Baroque?" {
				baroqueTarget = &questions[i]
			}
		}
		if baroqueTarget == nil {
			t.Fatalf("seed %d: expected a periodToPainting question targeting Baroque", seed)
		}
		if len(baroqueTarget.Options) != 4 {
			t.Fatalf("seed %d: expected correct + 3 distractors, got %d options", seed, len(baroqueTarget.Options))
		}
		for _, o := range baroqueTarget.Options {
			isBaroque := o.Key[:len("baroque")] == "baroque"
			if o.Key == baroqueTarget.CorrectAnswer && !isBaroque {
				t.Fatalf("seed %d: correct painting %s is not Baroque", seed, o.Key)
			}
			if o.Key != baroqueTarget.CorrectAnswer && isBaroque {
				t.Fatalf("seed %d: distractor %s drawn from Baroque", seed, o.Key)
			}
		}
	}
}

func TestGenerateDegradesWithoutCoverage(t *testing.T) {
	quiz := domain.QuizDefinition{
		CoversPeriods: []string{"Surrealism", "Not A Period"},
		Settings:      domain.QuizSettings{QuestionsPerSession: 10},
	}
	paintings := paintingsFor(map[domain.Period]int{domain.PeriodRenaissance: 5})

	if got := NewGenerator(1).Generate(paintings, quiz); len(got) != 0 {
		t.Fatalf("expected no questions, got %d", len(got))
	}
	if got := NewGenerator(1).Generate(nil, quiz); len(got) != 0 {
		t.Fatalf("expected no questions for empty catalog, got %d", len(got))
	}

	quiz.Settings.QuestionsPerSession = 0
	if got := NewGenerator(1).Generate(paintingsFor(map[domain.Period]int{domain.PeriodSurrealism: 5}), quiz); len(got) != 0 {
		t.Fatalf("expected no questions for empty session size, got %d", len(got))
	}
}

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	paintings := paintingsFor(map[domain.Period]int{domain.PeriodRenaissance: 5, domain.PeriodBaroque: 5})
	quiz := domain.QuizDefinition{
		CoversPeriods: []string{"Renaissance", "Baroque"},
		Settings:      domain.QuizSettings{QuestionsPerSession: 6},
	}
	a := NewGenerator(42).Generate(paintings, quiz)
	b := NewGenerator(42).Generate(paintings, quiz)
	if fmt.Sprint(a) != fmt.Sprint(b) {
		t.Fatalf("same seed produced different sets")
	}
}

func TestGenerateSkipsDuplicateAndBlankIDs(t *testing.T) {
	paintings := []domain.Painting{
		{ID: "a", Title: "A", Period: domain.PeriodRenaissance},
		{ID: "a", Title: "A again", Period: domain.PeriodBaroque},
		{ID: "", Title: "Untitled", Period: domain.PeriodBaroque},
		{ID: "b", Title: "B", Period: domain.PeriodBaroque},
	}
	quiz := domain.QuizDefinition{
		CoversPeriods: []string{"Renaissance", "Baroque"},
		QuestionTypes: []domain.QuestionTypeWeight{{Type: "period_to_painting", Weight: 1}},
		Settings:      domain.QuizSettings{QuestionsPerSession: 2},
	}
	for _, q := range NewGenerator(3).Generate(paintings, quiz) {
		for _, o := range q.Options {
			if o.Key == "" {
				t.Fatalf("blank id offered as option")
			}
		}
		if len(q.Options) != 2 {
			t.Fatalf("expected 2 distinct options, got %+v", q.Options)
		}
	}
}

func TestSplitQuestionCounts(t *testing.T) {
	cases := []struct {
		name    string
		total   int
		weights []domain.QuestionTypeWeight
		p2p     int
		p2pt    int
	}{
		{"even default", 10, nil, 5, 5},
		{"odd default", 7, nil, 4, 3},
		{"weighted", 10, []domain.QuestionTypeWeight{{Type: "paintingToPeriod", Weight: 3}, {Type: "periodToPainting", Weight: 1}}, 8, 2},
		{"single type", 6, []domain.QuestionTypeWeight{{Type: "periodToPainting", Weight: 2}}, 0, 6},
		{"unknown types ignored", 4, []domain.QuestionTypeWeight{{Type: "trivia", Weight: 9}}, 2, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := splitQuestionCounts(tc.total, tc.weights)
			if got[domain.QuestionPaintingToPeriod] != tc.p2p || got[domain.QuestionPeriodToPainting] != tc.p2pt {
				t.Fatalf("got %v, want %d/%d", got, tc.p2p, tc.p2pt)
			}
		})
	}
}

// checkOptions reports a question with too many options, a repeated key, or a correct answer
// that is not offered exactly once.
func checkOptions(q domain.Question) error {
	keys := q.AnswerOptions()
	if len(keys) > 4 {
		return fmt.Errorf("%d options in %+v", len(keys), q)
	}
	seen := make(map[string]bool, len(keys))
	correct := 0
	for _, k := range keys {
		if seen[k] {
			return fmt.Errorf("duplicate option %q in %+v", k, q)
		}
		seen[k] = true
		if k == q.CorrectAnswer {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("correct answer present %d times in %+v", correct, q)
	}
	return nil
}

// paintingsFor builds n paintings per period with ids like "baroque-2".
func paintingsFor(counts map[domain.Period]int) []domain.Painting {
	var out []domain.Painting
	for _, period := range domain.AllPeriods() {
		for i := 0; i < counts[period]; i++ {
			slug := slugFor(period)
			out = append(out, domain.Painting{
				ID:        fmt.Sprintf("%s-%d", slug, i),
				Title:     fmt.Sprintf("%s study %d", period.Label(), i),
				Artist:    "Anonymous",
				Period:    period,
				ImageName: fmt.Sprintf("%s_%d", slug, i),
			})
		}
	}
	return out
}

func slugFor(p domain.Period) string {
	out := make([]rune, 0, len(p.Label()))
	for _, r := range p.Label() {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r >= 'a' && r <= 'z':
			out = append(out, r)
		}
	}
	return string(out)
}
