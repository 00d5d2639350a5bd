package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StudyRecord tracks what the learner did with individual paintings while browsing the catalog.
// It is persisted next to QuizProgress under its own key.
type StudyRecord struct {
	LearnedPaintings  IDSet                `json:"learnedPaintings"`
	FavoritePaintings IDSet                `json:"favoritePaintings"`
	ViewCounts        map[string]int       `json:"paintingViewCounts"`
	LastViewed        map[string]time.Time `json:"lastViewedDates"`
}

// PaintingStudy is the study state of a single painting.
type PaintingStudy struct {
	PaintingID string     `json:"paintingId"`
	Favorite   bool       `json:"favorite"`
	Learned    bool       `json:"learned"`
	ViewCount  int        `json:"viewCount"`
	LastViewed *time.Time `json:"lastViewed,omitempty"`
}

func NewStudyRecord() StudyRecord {
	return StudyRecord{
		LearnedPaintings:  NewIDSet(),
		FavoritePaintings: NewIDSet(),
		ViewCounts:        make(map[string]int),
		LastViewed:        make(map[string]time.Time),
	}
}

func (r StudyRecord) Clone() StudyRecord {
	out := StudyRecord{
		LearnedPaintings:  make(IDSet, len(r.LearnedPaintings)),
		FavoritePaintings: make(IDSet, len(r.FavoritePaintings)),
		ViewCounts:        make(map[string]int, len(r.ViewCounts)),
		LastViewed:        make(map[string]time.Time, len(r.LastViewed)),
	}
	for id := range r.LearnedPaintings {
		out.LearnedPaintings[id] = struct{}{}
	}
	for id := range r.FavoritePaintings {
		out.FavoritePaintings[id] = struct{}{}
	}
	for id, n := range r.ViewCounts {
		out.ViewCounts[id] = n
	}
	for id, at := range r.LastViewed {
		out.LastViewed[id] = at
	}
	return out
}

func (r StudyRecord) IsFavorite(paintingID string) bool { return r.FavoritePaintings.Has(paintingID) }

func (r StudyRecord) IsLearned(paintingID string) bool { return r.LearnedPaintings.Has(paintingID) }

func (r StudyRecord) TotalLearned() int { return len(r.LearnedPaintings) }

// Painting returns the study state of paintingID; unknown ids yield the zero state.
func (r StudyRecord) Painting(paintingID string) PaintingStudy {
	out := PaintingStudy{
		PaintingID: paintingID,
		Favorite:   r.IsFavorite(paintingID),
		Learned:    r.IsLearned(paintingID),
		ViewCount:  r.ViewCounts[paintingID],
	}
	if at, ok := r.LastViewed[paintingID]; ok {
		out.LastViewed = &at
	}
	return out
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (r *StudyRecord) ToggleFavorite(paintingID string) bool {
	if r.FavoritePaintings == nil {
		r.FavoritePaintings = NewIDSet()
	}
	if r.FavoritePaintings.Has(paintingID) {
		delete(r.FavoritePaintings, paintingID)
		return false
	}
	r.FavoritePaintings[paintingID] = struct{}{}
	return true
}

// MarkLearned adds paintingID to the learned set. Learned paintings are never un-learned.
func (r *StudyRecord) MarkLearned(paintingID string) {
	if r.LearnedPaintings == nil {
		r.LearnedPaintings = NewIDSet()
	}
	r.LearnedPaintings[paintingID] = struct{}{}
}

// RecordView bumps the view count and stamps the view time. It returns the new count.
func (r *StudyRecord) RecordView(paintingID string, at time.Time) int {
	if r.ViewCounts == nil {
		r.ViewCounts = make(map[string]int)
	}
	if r.LastViewed == nil {
		r.LastViewed = make(map[string]time.Time)
	}
	r.ViewCounts[paintingID]++
	r.LastViewed[paintingID] = at.UTC()
	return r.ViewCounts[paintingID]
}

var errIncompleteStudy = errors.New("study record is missing fields")

func EncodeStudy(r StudyRecord) ([]byte, error) {
	return json.Marshal(r.Clone())
}

// DecodeStudy parses a persisted study record. Like DecodeProgress it rejects records with a
// missing field instead of guessing.
func DecodeStudy(data []byte) (StudyRecord, error) {
	var raw struct {
		LearnedPaintings  *IDSet                `json:"learnedPaintings"`
		FavoritePaintings *IDSet                `json:"favoritePaintings"`
		ViewCounts        *map[string]int       `json:"paintingViewCounts"`
		LastViewed        *map[string]time.Time `json:"lastViewedDates"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return StudyRecord{}, fmt.Errorf("decode study record: %w", err)
	}
	if raw.LearnedPaintings == nil || raw.FavoritePaintings == nil || raw.ViewCounts == nil || raw.LastViewed == nil {
		return StudyRecord{}, errIncompleteStudy
	}
	r := StudyRecord{
		LearnedPaintings:  *raw.LearnedPaintings,
		FavoritePaintings: *raw.FavoritePaintings,
		ViewCounts:        *raw.ViewCounts,
		LastViewed:        *raw.LastViewed,
	}
	return r.Clone(), nil
}
