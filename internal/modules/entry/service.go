package entry

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gratitree/core/internal/models"
	"github.com/gratitree/core/internal/modules/daytree"
)

// Service runs the submission pipeline and assembles day snapshots.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService returns a Service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Submit validates and persists a new entry under a day. Checks run in a
// fixed order: empty text, oversized text, locked day, exhausted quota. The
// quota check and the insert are not atomic, so two in-flight submissions
// from the same user can both pass the count. The cap is a courtesy limit,
// not a security boundary.
func (s *Service) Submit(ctx context.Context, dayID, authorID string, dto SubmitDTO) (*models.Entry, int64, error) {
	text := strings.TrimSpace(dto.Text)
	if text == "" {
		return nil, 0, ErrTextRequired
	}
	if utf8.RuneCountInString(text) > MaxTextRunes {
		return nil, 0, ErrTextTooLong
	}
	if !daytree.IsOpen(dayID, s.now()) {
		return nil, 0, ErrDayLocked
	}

	used, err := s.store.CountByAuthor(ctx, dayID, authorID)
	if err != nil {
		return nil, 0, err
	}
	if used >= MaxEntriesPerDay {
		return nil, used, ErrQuotaExceeded
	}

	e := &models.Entry{
		DayID:     dayID,
		AuthorID:  authorID,
		Anonymous: dto.Anonymous,
		Text:      text,
		ParentID:  normalizeParent(dto.ParentID),
	}
	if !dto.Anonymous {
		if name := strings.TrimSpace(dto.DisplayName); name != "" {
			e.DisplayName = &name
		}
	}
	if err := s.store.Insert(ctx, e); err != nil {
		return nil, used, err
	}
	return e, used + 1, nil
}

// Snapshot loads a day's entries and builds the rendered forest plus the
// flattened reply options.
func (s *Service) Snapshot(ctx context.Context, dayID string) (*DaySnapshot, error) {
	entries, err := s.store.ListByDay(ctx, dayID)
	if err != nil {
		return nil, err
	}
	forest := daytree.BuildForest(entries)
	return &DaySnapshot{
		DayID:        dayID,
		Open:         daytree.IsOpen(dayID, s.now()),
		LockAt:       daytree.LockInstant(dayID),
		Entries:      NewEntryViews(entries),
		Forest:       NewNodeViews(forest),
		ReplyOptions: daytree.ReplyOptions(forest),
	}, nil
}

// Quota reports how many entries the user has left under a day.
func (s *Service) Quota(ctx context.Context, dayID, authorID string) (*QuotaInfo, error) {
	used, err := s.store.CountByAuthor(ctx, dayID, authorID)
	if err != nil {
		return nil, err
	}
	return &QuotaInfo{
		DayID:   dayID,
		Used:    used,
		Max:     MaxEntriesPerDay,
		AtLimit: used >= MaxEntriesPerDay,
		DayOpen: daytree.IsOpen(dayID, s.now()),
	}, nil
}

// normalizeParent maps an empty or whitespace parent id to nil so forest
// building treats the entry as a root.
func normalizeParent(parentID *string) *string {
	if parentID == nil {
		return nil
	}
	p := strings.TrimSpace(*parentID)
	if p == "" {
		return nil
	}
	return &p
}
