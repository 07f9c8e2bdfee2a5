package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/ritujaab/workout-planner/internal/domain"
	"github.com/ritujaab/workout-planner/internal/repository"
)

func toDoc(t testing.TB, v any) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func sampleWorkout(owner primitive.ObjectID) domain.Workout {
	added := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	return domain.Workout{
		ID:              primitive.NewObjectID(),
		UserID:          owner,
		Title:           "Squat",
		TitleKey:        "squat",
		Reps:            5,
		DayOfWeek:       "Monday",
		AddedDate:       added,
		CompletionDates: []time.Time{added.AddDate(0, 0, 5)},
		SkippedDates:    []time.Time{},
		CreatedAt:       added,
		UpdatedAt:       added,
	}
}

func TestWorkoutRepo_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	owner := primitive.NewObjectID()

	mt.Run("success", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		w := sampleWorkout(owner)
		w.ID = primitive.NilObjectID
		id, err := repo.Create(context.Background(), &w)
		require.NoError(mt, err)
		assert.Equal(mt, w.ID, id)
		assert.False(mt, id.IsZero())
		assert.False(mt, w.CreatedAt.IsZero())
		assert.Equal(mt, w.CreatedAt, w.UpdatedAt)
	})

	mt.Run("duplicate key", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		w := sampleWorkout(owner)
		_, err := repo.Create(context.Background(), &w)
		assert.ErrorIs(mt, err, repository.ErrDuplicate)
	})

	mt.Run("missing owner", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		w := sampleWorkout(primitive.NilObjectID)
		_, err := repo.Create(context.Background(), &w)
		assert.Error(mt, err)
	})
}

func TestWorkoutRepo_GetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	owner := primitive.NewObjectID()

	mt.Run("found", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		want := sampleWorkout(owner)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.workouts", mtest.FirstBatch, toDoc(mt, want)))

		got, err := repo.GetByID(context.Background(), owner, want.ID)
		require.NoError(mt, err)
		assert.Equal(mt, want.ID, got.ID)
		assert.Equal(mt, "Squat", got.Title)
		assert.Equal(mt, "squat", got.TitleKey)
		require.Len(mt, got.CompletionDates, 1)
		assert.True(mt, want.CompletionDates[0].Equal(got.CompletionDates[0]))
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.workouts", mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), owner, primitive.NewObjectID())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("command error", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad query",
			Name:    "BadValue",
		}))

		_, err := repo.GetByID(context.Background(), owner, primitive.NewObjectID())
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestWorkoutRepo_ListByOwner(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	owner := primitive.NewObjectID()

	mt.Run("two documents", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		a := sampleWorkout(owner)
		b := sampleWorkout(owner)
		b.Title, b.TitleKey, b.DayOfWeek = "Bench", "bench", "Wednesday"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.workouts", mtest.FirstBatch, toDoc(mt, a), toDoc(mt, b)))

		got, err := repo.ListByOwner(context.Background(), owner, "")
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "Bench", got[1].Title)
	})

	mt.Run("empty is not nil", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.workouts", mtest.FirstBatch))

		got, err := repo.ListByOwner(context.Background(), owner, "Friday")
		require.NoError(mt, err)
		assert.NotNil(mt, got)
		assert.Empty(mt, got)
	})
}

func TestWorkoutRepo_FindByTitleKey(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	owner := primitive.NewObjectID()

	mt.Run("match", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		existing := sampleWorkout(owner)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.workouts", mtest.FirstBatch, toDoc(mt, existing)))

		got, err := repo.FindByTitleKey(context.Background(), owner, "squat", "Monday", primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Equal(mt, existing.ID, got.ID)
	})

	mt.Run("clear", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.workouts", mtest.FirstBatch))

		_, err := repo.FindByTitleKey(context.Background(), owner, "squat", "Monday", primitive.NilObjectID)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

// sentFilter returns the filter of the first command the repository sent.
func sentFilter(mt *mtest.T) bson.Raw {
	mt.Helper()
	evt := mt.GetStartedEvent()
	require.NotNil(mt, evt)
	filter, ok := evt.Command.Lookup("filter").DocumentOK()
	require.True(mt, ok, "command has no filter: %s", evt.Command)
	return filter
}

func TestWorkoutRepo_QueriesAreOwnerScoped(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	owner := primitive.NewObjectID()

	mt.Run("get by id", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.workouts", mtest.FirstBatch))
		id := primitive.NewObjectID()

		_, err := repo.GetByID(context.Background(), owner, id)
		assert.ErrorIs(mt, err, repository.ErrNotFound)

		filter := sentFilter(mt)
		assert.Equal(mt, owner, filter.Lookup("userId").ObjectID())
		assert.Equal(mt, id, filter.Lookup("_id").ObjectID())
	})

	mt.Run("list with day", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.workouts", mtest.FirstBatch))

		_, err := repo.ListByOwner(context.Background(), owner, "Friday")
		require.NoError(mt, err)

		filter := sentFilter(mt)
		assert.Equal(mt, owner, filter.Lookup("userId").ObjectID())
		assert.Equal(mt, "Friday", filter.Lookup("dayOfWeek").StringValue())
	})

	mt.Run("title key excludes the edited workout", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.workouts", mtest.FirstBatch))
		self := primitive.NewObjectID()

		_, err := repo.FindByTitleKey(context.Background(), owner, "squat", "Monday", self)
		assert.ErrorIs(mt, err, repository.ErrNotFound)

		filter := sentFilter(mt)
		assert.Equal(mt, owner, filter.Lookup("userId").ObjectID())
		assert.Equal(mt, "squat", filter.Lookup("titleKey").StringValue())
		assert.Equal(mt, self, filter.Lookup("_id", "$ne").ObjectID())
	})

	mt.Run("title key on create has no exclusion", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.workouts", mtest.FirstBatch))

		_, err := repo.FindByTitleKey(context.Background(), owner, "squat", "Monday", primitive.NilObjectID)
		assert.ErrorIs(mt, err, repository.ErrNotFound)

		_, err = sentFilter(mt).LookupErr("_id")
		assert.Error(mt, err)
	})
}

func TestWorkoutRepo_Replace(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	owner := primitive.NewObjectID()

	mt.Run("matched", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		w := sampleWorkout(owner)
		before := w.UpdatedAt
		require.NoError(mt, repo.Replace(context.Background(), &w))
		assert.True(mt, w.UpdatedAt.After(before))
	})

	mt.Run("not matched", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		w := sampleWorkout(owner)
		assert.ErrorIs(mt, repo.Replace(context.Background(), &w), repository.ErrNotFound)
	})

	mt.Run("duplicate key", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		w := sampleWorkout(owner)
		assert.ErrorIs(mt, repo.Replace(context.Background(), &w), repository.ErrDuplicate)
	})

	mt.Run("missing id", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		w := sampleWorkout(owner)
		w.ID = primitive.NilObjectID
		assert.Error(mt, repo.Replace(context.Background(), &w))
	})
}

func TestWorkoutRepo_Delete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	owner := primitive.NewObjectID()

	mt.Run("returns removed document", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		w := sampleWorkout(owner)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: toDoc(mt, w)},
		})

		got, err := repo.Delete(context.Background(), owner, w.ID)
		require.NoError(mt, err)
		assert.Equal(mt, w.ID, got.ID)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: nil},
		})

		_, err := repo.Delete(context.Background(), owner, primitive.NewObjectID())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates both collections", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())
		require.NoError(mt, EnsureIndexes(context.Background(), mt.DB))
	})

	mt.Run("surfaces failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Message: "index options conflict",
			Name:    "IndexOptionsConflict",
		}))
		assert.Error(mt, EnsureIndexes(context.Background(), mt.DB))
	})
}
