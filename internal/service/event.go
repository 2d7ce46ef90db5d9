package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sakif/gaia-lore/internal/model"
	"github.com/sakif/gaia-lore/internal/repository"
)

// timelineRanges are the fixed buckets of the timeline page.
var timelineRanges = []struct {
	label      string
	start, end int
}{
	{"1960s", 1960, 1969},
	{"1970s", 1970, 1979},
	{"1980s", 1980, 1989},
	{"1990s", 1990, 1999},
	{"2000+", 2000, 2099},
}

// OtherBucketLabel names the trailing bucket for years outside every range.
const OtherBucketLabel = "Other"

// EventService handles business logic for timeline events.
type EventService struct {
	repo   repository.EventRepository
	logger *slog.Logger
}

func NewEventService(repo repository.EventRepository, logger *slog.Logger) *EventService {
	return &EventService{repo: repo, logger: logger}
}

// List returns every event ordered by year ascending.
func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	list, err := s.repo.ListEvents(ctx)
	if err != nil {
		return degradeList[model.Event](s.logger, "listing events", err)
	}
	return list, nil
}

func (s *EventService) Get(ctx context.Context, in IDInput) (*model.Event, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	e, err := s.repo.GetEvent(ctx, in.ID)
	if err != nil {
		return degradeGet[model.Event](s.logger, "getting event", err)
	}
	return e, nil
}

// Create validates and saves a new event. Related ids are stored as given;
// they are not checked against the character and location tables.
func (s *EventService) Create(ctx context.Context, in CreateEventInput) (*model.Event, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	e := &model.Event{
		Year:               *in.Year,
		Title:              in.Title,
		Description:        in.Description,
		Category:           model.DefaultEventCategory,
		RelatedCharacterID: in.RelatedCharacterID,
		RelatedLocationID:  in.RelatedLocationID,
	}
	if in.Category != nil {
		e.Category = *in.Category
	}
	if err := s.repo.CreateEvent(ctx, e); err != nil {
		s.logger.Error("failed to create event",
			slog.String("title", in.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating event: %w", err)
	}

	s.logger.Info("event created",
		slog.Int64("id", e.ID),
		slog.Int("year", e.Year),
		slog.String("title", e.Title),
	)
	return e, nil
}

func (s *EventService) Update(ctx context.Context, in UpdateEventInput) (*model.Event, error) {
	in.Title = trimPtr(in.Title)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	patch := model.EventPatch{
		Year:               in.Year,
		Title:              in.Title,
		Description:        in.Description,
		Category:           in.Category,
		RelatedCharacterID: in.RelatedCharacterID,
		RelatedLocationID:  in.RelatedLocationID,
	}
	if err := s.repo.UpdateEvent(ctx, in.ID, patch); err != nil {
		return nil, fmt.Errorf("updating event: %w", err)
	}

	e, err := s.repo.GetEvent(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading event: %w", err)
	}

	s.logger.Info("event updated", slog.Int64("id", e.ID))
	return e, nil
}

func (s *EventService) Delete(ctx context.Context, in IDInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if err := s.repo.DeleteEvent(ctx, in.ID); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	s.logger.Info("event deleted", slog.Int64("id", in.ID))
	return nil
}

// Timeline returns the events grouped into the fixed timeline buckets.
func (s *EventService) Timeline(ctx context.Context) ([]model.TimelineBucket, error) {
	events, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTimeline(events), nil
}

// BuildTimeline groups events into the fixed ranges, then by year. Every
// fixed bucket is present even when empty; an "Other" bucket is appended only
// when some event falls outside all ranges. Years are ascending and events
// within a year keep their input order.
func BuildTimeline(events []model.Event) []model.TimelineBucket {
	buckets := make([]model.TimelineBucket, len(timelineRanges))
	for i, r := range timelineRanges {
		buckets[i] = model.TimelineBucket{Label: r.label, Start: r.start, End: r.end, Years: []model.TimelineYear{}}
	}

	var other []model.Event
	byBucket := make([][]model.Event, len(timelineRanges))
	for _, e := range events {
		placed := false
		for i, r := range timelineRanges {
			if e.Year >= r.start && e.Year <= r.end {
				byBucket[i] = append(byBucket[i], e)
				placed = true
				break
			}
		}
		if !placed {
			other = append(other, e)
		}
	}

	for i := range buckets {
		buckets[i].Years = groupByYear(byBucket[i])
	}

	if len(other) > 0 {
		minYear, maxYear := other[0].Year, other[0].Year
		for _, e := range other {
			minYear = min(minYear, e.Year)
			maxYear = max(maxYear, e.Year)
		}
		buckets = append(buckets, model.TimelineBucket{
			Label: OtherBucketLabel,
			Start: minYear,
			End:   maxYear,
			Years: groupByYear(other),
		})
	}

	return buckets
}

func groupByYear(events []model.Event) []model.TimelineYear {
	sorted := make([]model.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })

	years := []model.TimelineYear{}
	for _, e := range sorted {
		if n := len(years); n > 0 && years[n-1].Year == e.Year {
			years[n-1].Events = append(years[n-1].Events, e)
			continue
		}
		years = append(years, model.TimelineYear{Year: e.Year, Events: []model.Event{e}})
	}
	return years
}
