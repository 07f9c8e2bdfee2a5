package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ritujaab/workout-planner/internal/config"
	"github.com/ritujaab/workout-planner/internal/domain"
	"github.com/ritujaab/workout-planner/internal/service"
)

const goodToken = "good-token"

var testOwner = primitive.NewObjectID()

func init() {
	gin.SetMode(gin.TestMode)
}

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Signup(ctx context.Context, email, password string) (string, *domain.User, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(1).(*domain.User)
	return args.String(0), u, args.Error(2)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(1).(*domain.User)
	return args.String(0), u, args.Error(2)
}

func (m *mockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, token, password string) (string, *domain.User, error) {
	args := m.Called(ctx, token, password)
	u, _ := args.Get(1).(*domain.User)
	return args.String(0), u, args.Error(2)
}

// ParseToken accepts goodToken without a recorded expectation so route
// tests only set up what they exercise.
func (m *mockAuthService) ParseToken(tokenString string) (primitive.ObjectID, error) {
	if tokenString == goodToken {
		return testOwner, nil
	}
	return primitive.NilObjectID, service.ErrAuthenticationFailed
}

type mockWorkoutService struct{ mock.Mock }

func (m *mockWorkoutService) workout(args mock.Arguments) (*domain.Workout, error) {
	w, _ := args.Get(0).(*domain.Workout)
	return w, args.Error(1)
}

func (m *mockWorkoutService) CreateWorkout(ctx context.Context, owner primitive.ObjectID, in service.WorkoutInput) (*domain.Workout, error) {
	return m.workout(m.Called(ctx, owner, in))
}

func (m *mockWorkoutService) UpdateWorkout(ctx context.Context, owner, id primitive.ObjectID, patch service.WorkoutPatch) (*domain.Workout, error) {
	return m.workout(m.Called(ctx, owner, id, patch))
}

func (m *mockWorkoutService) SetCompletion(ctx context.Context, owner, id primitive.ObjectID, date any, done bool) (*domain.Workout, error) {
	return m.workout(m.Called(ctx, owner, id, date, done))
}

func (m *mockWorkoutService) SetSkip(ctx context.Context, owner, id primitive.ObjectID, date any, skip bool) (*domain.Workout, error) {
	return m.workout(m.Called(ctx, owner, id, date, skip))
}

func (m *mockWorkoutService) TruncateSeries(ctx context.Context, owner, id primitive.ObjectID, endDate any) (*domain.Workout, error) {
	return m.workout(m.Called(ctx, owner, id, endDate))
}

func (m *mockWorkoutService) DeleteWorkout(ctx context.Context, owner, id primitive.ObjectID) (*domain.Workout, error) {
	return m.workout(m.Called(ctx, owner, id))
}

func (m *mockWorkoutService) GetWorkout(ctx context.Context, owner, id primitive.ObjectID) (*domain.Workout, error) {
	return m.workout(m.Called(ctx, owner, id))
}

func (m *mockWorkoutService) ListWorkouts(ctx context.Context, owner primitive.ObjectID, day string) ([]domain.Workout, error) {
	args := m.Called(ctx, owner, day)
	ws, _ := args.Get(0).([]domain.Workout)
	return ws, args.Error(1)
}

func (m *mockWorkoutService) GetWeek(ctx context.Context, owner primitive.ObjectID, anchor any) (*service.WeekView, error) {
	args := m.Called(ctx, owner, anchor)
	v, _ := args.Get(0).(*service.WeekView)
	return v, args.Error(1)
}

func (m *mockWorkoutService) ExportWeek(ctx context.Context, owner primitive.ObjectID, anchor any) (*service.ExportResult, error) {
	args := m.Called(ctx, owner, anchor)
	r, _ := args.Get(0).(*service.ExportResult)
	return r, args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{MaxBodyBytes: 1 << 20},
	}
}

func newTestRouter(t *testing.T, auth *mockAuthService, workouts *mockWorkoutService) *gin.Engine {
	t.Helper()
	t.Cleanup(func() {
		auth.AssertExpectations(t)
		workouts.AssertExpectations(t)
	})
	return NewRouter(testConfig(), zerolog.Nop(), auth, workouts)
}

func newRequest(method, path, body string) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// do sends one request, with a bearer token unless token is empty.
func do(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := newRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return serve(r, req)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
