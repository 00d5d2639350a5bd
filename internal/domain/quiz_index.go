package domain

import (
	"strconv"
	"strings"
)

// QuizIndex is the ordered progression built from the definition list at load time.
type QuizIndex struct {
	order []string
	pos   map[string]int
}

func NewQuizIndex(defs []QuizDefinition) *QuizIndex {
	idx := &QuizIndex{pos: make(map[string]int, len(defs))}
	for _, d := range defs {
		if d.ID == "" {
			continue
		}
		if _, dup := idx.pos[d.ID]; dup {
			continue
		}
		idx.pos[d.ID] = len(idx.order)
		idx.order = append(idx.order, d.ID)
	}
	return idx
}

// First returns the quiz unlocked on first run.
func (i *QuizIndex) First() (string, bool) {
	if i == nil || len(i.order) == 0 {
		return "", false
	}
	return i.order[0], true
}

func (i *QuizIndex) Contains(quizID string) bool {
	if i == nil {
		return false
	}
	_, ok := i.pos[quizID]
	return ok
}

// IDs returns the quiz ids in progression order.
func (i *QuizIndex) IDs() []string {
	if i == nil {
		return nil
	}
	return append([]string(nil), i.order...)
}

// Successor resolves the quiz unlocked by passing quizID. Known ids use the list order and the
// last quiz has no successor. Unknown ids fall back to the "<prefix>-<n>" naming convention.
func (i *QuizIndex) Successor(quizID string) (string, bool) {
	if i.Contains(quizID) {
		next := i.pos[quizID] + 1
		if next >= len(i.order) {
			return "", false
		}
		return i.order[next], true
	}
	return NumericSuccessor(quizID)
}

// NumericSuccessor maps "<prefix>-<n>" to "<prefix>-<n+1>".
func NumericSuccessor(quizID string) (string, bool) {
	cut := strings.LastIndex(quizID, "-")
	if cut < 0 || cut == len(quizID)-1 {
		return "", false
	}
	n, err := strconv.Atoi(quizID[cut+1:])
	if err != nil || n < 0 {
		return "", false
	}
	return quizID[:cut+1] + strconv.Itoa(n+1), true
}
