package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// IDSet is a set of quiz or painting ids, encoded as a sorted JSON array.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	if ids == nil {
		*s = nil
		return nil
	}
	*s = NewIDSet(ids...)
	return nil
}

// QuizProgress is the persisted progression record.
type QuizProgress struct {
	CompletedQuizIDs IDSet          `json:"completedQuizIds"`
	QuizScores       map[string]int `json:"quizScores"`
	UnlockedQuizIDs  IDSet          `json:"unlockedQuizIds"`
}

// NewQuizProgress returns the first-run record: only firstQuizID is unlocked.
func NewQuizProgress(firstQuizID string) QuizProgress {
	unlocked := NewIDSet()
	if firstQuizID != "" {
		unlocked[firstQuizID] = struct{}{}
	}
	return QuizProgress{
		CompletedQuizIDs: NewIDSet(),
		QuizScores:       make(map[string]int),
		UnlockedQuizIDs:  unlocked,
	}
}

// Clone returns a deep copy safe to hand to other goroutines.
func (p QuizProgress) Clone() QuizProgress {
	out := QuizProgress{
		CompletedQuizIDs: make(IDSet, len(p.CompletedQuizIDs)),
		QuizScores:       make(map[string]int, len(p.QuizScores)),
		UnlockedQuizIDs:  make(IDSet, len(p.UnlockedQuizIDs)),
	}
	for id := range p.CompletedQuizIDs {
		out.CompletedQuizIDs[id] = struct{}{}
	}
	for id, score := range p.QuizScores {
		out.QuizScores[id] = score
	}
	for id := range p.UnlockedQuizIDs {
		out.UnlockedQuizIDs[id] = struct{}{}
	}
	return out
}

func (p QuizProgress) IsUnlocked(quizID string) bool { return p.UnlockedQuizIDs.Has(quizID) }

func (p QuizProgress) IsCompleted(quizID string) bool { return p.CompletedQuizIDs.Has(quizID) }

// Score returns the last recorded score for quizID.
func (p QuizProgress) Score(quizID string) (int, bool) {
	score, ok := p.QuizScores[quizID]
	return score, ok
}

// RecordCompletion marks quizID completed with score, overwriting any earlier score.
func (p *QuizProgress) RecordCompletion(quizID string, score int) {
	if p.CompletedQuizIDs == nil {
		p.CompletedQuizIDs = NewIDSet()
	}
	if p.QuizScores == nil {
		p.QuizScores = make(map[string]int)
	}
	p.CompletedQuizIDs[quizID] = struct{}{}
	p.QuizScores[quizID] = score
}

// Unlock adds quizID to the unlocked set. It reports whether the set grew.
func (p *QuizProgress) Unlock(quizID string) bool {
	if p.UnlockedQuizIDs == nil {
		p.UnlockedQuizIDs = NewIDSet()
	}
	if p.UnlockedQuizIDs.Has(quizID) {
		return false
	}
	p.UnlockedQuizIDs[quizID] = struct{}{}
	return true
}

var errIncompleteProgress = errors.New("progress record is missing fields")

// EncodeProgress serializes p in the persisted record format.
func EncodeProgress(p QuizProgress) ([]byte, error) {
	norm := p.Clone()
	return json.Marshal(norm)
}

// DecodeProgress parses a persisted record. Records missing any of the three fields are rejected
// so callers can fall back to the default instead of running with a half-empty state.
func DecodeProgress(data []byte) (QuizProgress, error) {
	var raw struct {
		CompletedQuizIDs *IDSet          `json:"completedQuizIds"`
		QuizScores       *map[string]int `json:"quizScores"`
		UnlockedQuizIDs  *IDSet          `json:"unlockedQuizIds"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return QuizProgress{}, fmt.Errorf("decode progress: %w", err)
	}
	if raw.CompletedQuizIDs == nil || raw.QuizScores == nil || raw.UnlockedQuizIDs == nil {
		return QuizProgress{}, errIncompleteProgress
	}
	p := QuizProgress{
		CompletedQuizIDs: *raw.CompletedQuizIDs,
		QuizScores:       *raw.QuizScores,
		UnlockedQuizIDs:  *raw.UnlockedQuizIDs,
	}
	// "null" decodes to a nil set; keep the zero values usable.
	return p.Clone(), nil
}
