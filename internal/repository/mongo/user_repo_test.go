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

func TestUserRepo_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u := &domain.User{Email: "a@b.c", PasswordHash: "hash"}
		id, err := repo.Create(context.Background(), u)
		require.NoError(mt, err)
		assert.Equal(mt, u.ID, id)
	})

	mt.Run("email taken", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		_, err := repo.Create(context.Background(), &domain.User{Email: "a@b.c", PasswordHash: "hash"})
		assert.ErrorIs(mt, err, repository.ErrDuplicate)
	})

	mt.Run("missing hash", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		_, err := repo.Create(context.Background(), &domain.User{Email: "a@b.c"})
		assert.Error(mt, err)
	})
}

func TestUserRepo_GetByEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		u := domain.User{ID: primitive.NewObjectID(), Email: "a@b.c", PasswordHash: "hash"}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, toDoc(mt, u)))

		got, err := repo.GetByEmail(context.Background(), "a@b.c")
		require.NoError(mt, err)
		assert.Equal(mt, u.ID, got.ID)
		assert.Equal(mt, "hash", got.PasswordHash)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))

		_, err := repo.GetByEmail(context.Background(), "nobody@b.c")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestUserRepo_GetByResetTokenHash_Empty(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("empty hash never queries", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		_, err := repo.GetByResetTokenHash(context.Background(), "")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestUserRepo_SetPassword(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("matched", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		assert.NoError(mt, repo.SetPassword(context.Background(), primitive.NewObjectID(), "new-hash"))
	})

	mt.Run("unknown user", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		err := repo.SetResetToken(context.Background(), primitive.NewObjectID(), "abc", time.Now().Add(time.Hour))
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}
