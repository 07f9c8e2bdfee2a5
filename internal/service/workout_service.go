package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ritujaab/workout-planner/internal/domain"
	"github.com/ritujaab/workout-planner/internal/planner"
	"github.com/ritujaab/workout-planner/internal/repository"
	"github.com/ritujaab/workout-planner/internal/storage"
)

// WorkoutService manages recurring workouts. Every method is scoped by the
// owner id supplied by the auth layer.
type WorkoutService interface {
	CreateWorkout(ctx context.Context, owner primitive.ObjectID, in WorkoutInput) (*domain.Workout, error)
	// UpdateWorkout applies a partial edit and/or one per-date marker change as a
	// single read-modify-write. Nothing is written when the patch is rejected.
	UpdateWorkout(ctx context.Context, owner, id primitive.ObjectID, patch WorkoutPatch) (*domain.Workout, error)
	SetCompletion(ctx context.Context, owner, id primitive.ObjectID, date any, done bool) (*domain.Workout, error)
	SetSkip(ctx context.Context, owner, id primitive.ObjectID, date any, skip bool) (*domain.Workout, error)
	// TruncateSeries ends the series on endDate; later dates stop occurring.
	TruncateSeries(ctx context.Context, owner, id primitive.ObjectID, endDate any) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, owner, id primitive.ObjectID) (*domain.Workout, error)
	GetWorkout(ctx context.Context, owner, id primitive.ObjectID) (*domain.Workout, error)
	ListWorkouts(ctx context.Context, owner primitive.ObjectID, day string) ([]domain.Workout, error)
	// GetWeek expands the owner's workouts over the Sunday-first week holding
	// anchor. A nil or blank anchor means today.
	GetWeek(ctx context.Context, owner primitive.ObjectID, anchor any) (*WeekView, error)
	ExportWeek(ctx context.Context, owner primitive.ObjectID, anchor any) (*ExportResult, error)
}

// Instance is one workout occurring on one date.
type Instance struct {
	domain.Workout
	Status planner.InstanceStatus `json:"status"`
}

// DayView is one column of the planner.
type DayView struct {
	Date      planner.Date `json:"date"`
	DayOfWeek string       `json:"dayOfWeek"`
	Workouts  []Instance   `json:"workouts"`
}

// WeekView is an expanded week, ready to render.
type WeekView struct {
	Start   planner.Date        `json:"start"`
	End     planner.Date        `json:"end"`
	Days    []DayView           `json:"days"`
	Summary planner.WeekSummary `json:"summary"`
}

// ExportResult points at an exported week.
type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// dupOutcome is the result of the best-effort duplicate title check.
type dupOutcome int

const (
	dupClear dupOutcome = iota
	dupFound
	dupUnavailable // The check itself failed; the caller proceeds
)

type workoutService struct {
	repo         repository.WorkoutRepository
	files        storage.FileStorage // Nil disables ExportWeek
	exportExpiry time.Duration
	logger       zerolog.Logger
	now          func() time.Time
}

// NewWorkoutService creates a WorkoutService. files may be nil.
func NewWorkoutService(repo repository.WorkoutRepository, files storage.FileStorage, exportExpiry time.Duration, logger zerolog.Logger) WorkoutService {
	if exportExpiry <= 0 {
		exportExpiry = storage.DefaultPresignedURLExpiry
	}
	return &workoutService{
		repo:         repo,
		files:        files,
		exportExpiry: exportExpiry,
		logger:       logger.With().Str("component", "workouts").Logger(),
		now:          time.Now,
	}
}

func (s *workoutService) today() planner.Date {
	return planner.FromTime(s.now())
}

// log prefers the request-scoped logger carried by ctx.
func (s *workoutService) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}

func (s *workoutService) CreateWorkout(ctx context.Context, owner primitive.ObjectID, in WorkoutInput) (*domain.Workout, error) {
	w, err := newWorkout(in, s.today())
	if err != nil {
		return nil, err
	}
	w.UserID = owner

	if s.checkDuplicate(ctx, owner, w.TitleKey, w.DayOfWeek, primitive.NilObjectID) == dupFound {
		return nil, ErrDuplicateWorkout
	}

	if _, err := s.repo.Create(ctx, w); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateWorkout
		}
		return nil, fmt.Errorf("create workout: %w", err)
	}
	workoutMutations.WithLabelValues(intentCreate).Inc()
	s.log(ctx).Info().Str("workout_id", w.ID.Hex()).Str("day", w.DayOfWeek).Msg("workout created")
	return w, nil
}

func (s *workoutService) UpdateWorkout(ctx context.Context, owner, id primitive.ObjectID, patch WorkoutPatch) (*domain.Workout, error) {
	u, err := validatePatch(patch)
	if err != nil {
		return nil, err
	}

	w, err := s.GetWorkout(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	prevKey, prevDay := w.TitleKey, w.DayOfWeek

	u.apply(w)

	if w.TitleKey != prevKey || w.DayOfWeek != prevDay {
		if s.checkDuplicate(ctx, owner, w.TitleKey, w.DayOfWeek, w.ID) == dupFound {
			return nil, ErrDuplicateWorkout
		}
	}

	// Markers may only be set on dates the (edited) workout is scheduled for.
	// Clearing is always allowed so stale markers can be removed.
	if (u.complete != nil && *u.complete) || (u.skip != nil && *u.skip) {
		if planner.StatusOn(*w, u.date) == planner.StatusNone {
			verr := &ValidationError{}
			verr.invalid("date", fmt.Sprintf("%s is not scheduled on %s; only scheduled dates can be marked completed or skipped", w.Title, u.date))
			return nil, verr
		}
	}

	var intents []string
	if u.editsFields() {
		if u.endDate != nil && !u.editsOtherThanEnd() {
			intents = append(intents, intentTruncate)
		} else {
			intents = append(intents, intentEdit)
		}
	}
	if u.complete != nil && planner.SetCompleted(w, u.date, *u.complete) {
		intents = append(intents, intentComplete)
	}
	if u.skip != nil && planner.SetSkipped(w, u.date, *u.skip) {
		intents = append(intents, intentSkip)
	}
	if len(intents) == 0 {
		// Already in the requested state
		return w, nil
	}

	if err := s.repo.Replace(ctx, w); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrWorkoutNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateWorkout
		}
		return nil, fmt.Errorf("update workout: %w", err)
	}
	for _, intent := range intents {
		workoutMutations.WithLabelValues(intent).Inc()
	}
	s.log(ctx).Info().Str("workout_id", w.ID.Hex()).Strs("intents", intents).Msg("workout updated")
	return w, nil
}

func (s *workoutService) SetCompletion(ctx context.Context, owner, id primitive.ObjectID, date any, done bool) (*domain.Workout, error) {
	return s.UpdateWorkout(ctx, owner, id, WorkoutPatch{Date: Some(date), Complete: Some[any](done)})
}

func (s *workoutService) SetSkip(ctx context.Context, owner, id primitive.ObjectID, date any, skip bool) (*domain.Workout, error) {
	return s.UpdateWorkout(ctx, owner, id, WorkoutPatch{Date: Some(date), Skip: Some[any](skip)})
}

func (s *workoutService) TruncateSeries(ctx context.Context, owner, id primitive.ObjectID, endDate any) (*domain.Workout, error) {
	if endDate == nil {
		return nil, &ValidationError{EmptyFields: []string{"endDate"}}
	}
	return s.UpdateWorkout(ctx, owner, id, WorkoutPatch{EndDate: Some(endDate)})
}

// DeleteWorkout removes the whole series with all of its history.
func (s *workoutService) DeleteWorkout(ctx context.Context, owner, id primitive.ObjectID) (*domain.Workout, error) {
	w, err := s.repo.Delete(ctx, owner, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("delete workout: %w", err)
	}
	workoutMutations.WithLabelValues(intentDelete).Inc()
	s.log(ctx).Info().Str("workout_id", id.Hex()).Msg("workout deleted")
	return w, nil
}

func (s *workoutService) GetWorkout(ctx context.Context, owner, id primitive.ObjectID) (*domain.Workout, error) {
	w, err := s.repo.GetByID(ctx, owner, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("get workout: %w", err)
	}
	return w, nil
}

func (s *workoutService) ListWorkouts(ctx context.Context, owner primitive.ObjectID, day string) ([]domain.Workout, error) {
	var canonical string
	if day != "" {
		d, ok := planner.ParseWeekday(day)
		if !ok {
			verr := &ValidationError{}
			verr.invalid("day", "Invalid day parameter")
			return nil, verr
		}
		canonical = d
	}
	workouts, err := s.repo.ListByOwner(ctx, owner, canonical)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return workouts, nil
}

func (s *workoutService) GetWeek(ctx context.Context, owner primitive.ObjectID, anchor any) (*WeekView, error) {
	day := s.today()
	if anchor != nil && !isBlank(anchor) {
		d, err := planner.Normalize(anchor)
		if err != nil {
			verr := &ValidationError{}
			verr.invalid("date", "date must be a valid date string")
			return nil, verr
		}
		day = d
	}

	workouts, err := s.repo.ListByOwner(ctx, owner, "")
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}

	dates := planner.WeekOf(day)
	buckets := planner.Expand(workouts, dates)

	view := &WeekView{
		Start:   dates[0],
		End:     dates[len(dates)-1],
		Days:    make([]DayView, len(buckets)),
		Summary: planner.Summarize(buckets),
	}
	for i, b := range buckets {
		instances := make([]Instance, len(b.Workouts))
		for j, w := range b.Workouts {
			instances[j] = Instance{Workout: w, Status: planner.StatusOn(w, b.Date)}
		}
		view.Days[i] = DayView{Date: b.Date, DayOfWeek: b.Date.Weekday(), Workouts: instances}
	}
	return view, nil
}

// ExportWeek writes the expanded week as JSON to object storage and returns a
// temporary download link.
func (s *workoutService) ExportWeek(ctx context.Context, owner primitive.ObjectID, anchor any) (*ExportResult, error) {
	if s.files == nil {
		return nil, ErrExportUnavailable
	}
	week, err := s.GetWeek(ctx, owner, anchor)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(week)
	if err != nil {
		return nil, fmt.Errorf("encode week: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", owner.Hex(), week.Start)
	if err := s.files.PutObject(ctx, key, body, "application/json"); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, key, s.exportExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}
	s.log(ctx).Info().Str("key", key).Int("bytes", len(body)).Msg("week exported")
	return &ExportResult{Key: key, URL: url, ExpiresAt: s.now().UTC().Add(s.exportExpiry)}, nil
}

// checkDuplicate never fails the caller. A store error is logged and counted
// and reported as dupUnavailable.
func (s *workoutService) checkDuplicate(ctx context.Context, owner primitive.ObjectID, key, day string, exclude primitive.ObjectID) dupOutcome {
	_, err := s.repo.FindByTitleKey(ctx, owner, key, day, exclude)
	switch {
	case err == nil:
		return dupFound
	case errors.Is(err, repository.ErrNotFound):
		return dupClear
	default:
		duplicateCheckFailures.Inc()
		s.log(ctx).Warn().Err(err).Str("day", day).Msg("duplicate workout check failed, continuing")
		return dupUnavailable
	}
}
