package app

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"artquiz-service/internal/domain"
)

const maxDistractors = 3

// Generator builds randomized question sets from the catalog.
// It owns its random stream; concurrent Generate calls are serialized on it.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator returns a generator with a deterministic stream for seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// NewRandomGenerator seeds from the clock.
func NewRandomGenerator() *Generator {
	return NewGenerator(time.Now().UnixNano())
}

// Generate returns at most quiz.Settings.QuestionsPerSession questions. Thin catalog coverage
// yields fewer questions (possibly none), never an error.
func (g *Generator) Generate(paintings []domain.Painting, quiz domain.QuizDefinition) []domain.Question {
	total := quiz.Settings.QuestionsPerSession
	periods := quiz.CoveredPeriods()
	if total <= 0 || len(periods) == 0 || len(paintings) == 0 {
		return nil
	}

	relevant := relevantPaintings(paintings, periods)
	if len(relevant) == 0 {
		return nil
	}
	counts := splitQuestionCounts(total, quiz.QuestionTypes)

	g.mu.Lock()
	defer g.mu.Unlock()

	questions := g.paintingToPeriod(relevant, periods, counts[domain.QuestionPaintingToPeriod])
	questions = append(questions, g.periodToPainting(relevant, periods, counts[domain.QuestionPeriodToPainting])...)
	g.rnd.Shuffle(len(questions), func(i, j int) { questions[i], questions[j] = questions[j], questions[i] })
	return questions
}

func (g *Generator) paintingToPeriod(relevant []domain.Painting, periods []domain.Period, count int) []domain.Question {
	if count <= 0 {
		return nil
	}
	drawn := takeFirst(shuffled(g.rnd, relevant), count)
	out := make([]domain.Question, 0, len(drawn))
	for _, painting := range drawn {
		correct := painting.Period.Label()

		others := make([]domain.Period, 0, len(periods))
		for _, p := range periods {
			if p != painting.Period {
				others = append(others, p)
			}
		}
		others = takeFirst(shuffled(g.rnd, others), maxDistractors)

		options := make([]domain.Option, 0, len(others)+1)
		options = append(options, domain.Option{Key: correct, Text: correct})
		for _, p := range others {
			options = append(options, domain.Option{Key: p.Label(), Text: p.Label()})
		}
		g.rnd.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

		out = append(out, domain.Question{
			Type:          domain.QuestionPaintingToPeriod,
			Prompt:        "Which period is this painting from?",
			CorrectAnswer: correct,
			Options:       options,
			ImageName:     painting.ImageName,
		})
	}
	return out
}

func (g *Generator) periodToPainting(relevant []domain.Painting, periods []domain.Period, count int) []domain.Question {
	if count <= 0 {
		return nil
	}
	targets := takeFirst(shuffled(g.rnd, periods), count)
	out := make([]domain.Question, 0, len(targets))
	for _, period := range targets {
		var own, others []domain.Painting
		for _, p := range relevant {
			if p.Period == period {
				own = append(own, p)
			} else {
				others = append(others, p)
			}
		}
		if len(own) == 0 {
			continue
		}
		correct := own[g.rnd.Intn(len(own))]
		candidates := append([]domain.Painting{correct}, takeFirst(shuffled(g.rnd, others), maxDistractors)...)
		g.rnd.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

		// Keyed by id: two different paintings may share a title.
		options := make([]domain.Option, len(candidates))
		for i, p := range candidates {
			options[i] = domain.Option{Key: p.ID, Text: p.Title, ImageName: p.ImageName}
		}

		out = append(out, domain.Question{
			Type:          domain.QuestionPeriodToPainting,
			Prompt:        "Which painting is from " + period.Label() + "?",
			CorrectAnswer: correct.ID,
			Options:       options,
		})
	}
	return out
}

// relevantPaintings keeps paintings from covered periods in catalog order. Records without an id,
// and repeats of an id already seen, are dropped so option keys stay unique.
func relevantPaintings(paintings []domain.Painting, periods []domain.Period) []domain.Painting {
	covered := make(map[domain.Period]struct{}, len(periods))
	for _, p := range periods {
		covered[p] = struct{}{}
	}
	seen := make(map[string]struct{}, len(paintings))
	var out []domain.Painting
	for _, p := range paintings {
		if _, ok := covered[p.Period]; !ok || p.ID == "" {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// splitQuestionCounts divides total across question types by weight (largest remainder).
// Without usable weights both types get an even share.
func splitQuestionCounts(total int, weights []domain.QuestionTypeWeight) map[domain.QuestionType]int {
	sums := make(map[domain.QuestionType]int)
	var order []domain.QuestionType
	for _, w := range weights {
		t, ok := domain.ParseQuestionType(w.Type)
		if !ok || w.Weight <= 0 {
			continue
		}
		if _, seen := sums[t]; !seen {
			order = append(order, t)
		}
		sums[t] += w.Weight
	}
	if len(order) == 0 {
		order = []domain.QuestionType{domain.QuestionPaintingToPeriod, domain.QuestionPeriodToPainting}
		for _, t := range order {
			sums[t] = 1
		}
	}

	weightSum := 0
	for _, t := range order {
		weightSum += sums[t]
	}

	counts := make(map[domain.QuestionType]int, len(order))
	remainders := make(map[domain.QuestionType]int, len(order))
	assigned := 0
	for _, t := range order {
		counts[t] = total * sums[t] / weightSum
		remainders[t] = total * sums[t] % weightSum
		assigned += counts[t]
	}

	byRemainder := append([]domain.QuestionType(nil), order...)
	sort.SliceStable(byRemainder, func(i, j int) bool {
		return remainders[byRemainder[i]] > remainders[byRemainder[j]]
	})
	for i := 0; assigned < total; i++ {
		counts[byRemainder[i%len(byRemainder)]]++
		assigned++
	}
	return counts
}

// shuffled returns a shuffled copy of in.
func shuffled[T any](rnd *rand.Rand, in []T) []T {
	out := append([]T(nil), in...)
	rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// takeFirst returns the first n elements, or the whole slice if it is shorter.
func takeFirst[T any](in []T, n int) []T {
	if n <= 0 {
		return nil
	}
	if len(in) <= n {
		return in
	}
	return in[:n]
}
