package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ritujaab/workout-planner/internal/service"
)

// WorkoutHandler serves the planner endpoints. Every route runs behind
// AuthMiddleware and acts on the caller's own workouts only.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// TruncateRequest ends a series. EndDate accepts every supported date form.
type TruncateRequest struct {
	EndDate any `json:"endDate"`
}

// ListWorkouts returns the series, optionally filtered by ?day=.
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	workouts, err := h.workoutService.ListWorkouts(c.Request.Context(), owner, c.Query("day"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, workouts)
}

// GetWeek expands the week holding ?date= (today when absent).
func (h *WorkoutHandler) GetWeek(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	week, err := h.workoutService.GetWeek(c.Request.Context(), owner, queryDate(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

func (h *WorkoutHandler) ExportWeek(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	res, err := h.workoutService.ExportWeek(c.Request.Context(), owner, queryDate(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	w, err := h.workoutService.GetWorkout(c.Request.Context(), owner, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	var in service.WorkoutInput
	if !bindJSON(c, &in) {
		return
	}
	w, err := h.workoutService.CreateWorkout(c.Request.Context(), owner, in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// UpdateWorkout applies a partial edit. The body may also carry
// {date, complete|skip} to toggle one day.
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	var patch service.WorkoutPatch
	if !bindJSON(c, &patch) {
		return
	}
	w, err := h.workoutService.UpdateWorkout(c.Request.Context(), owner, id, patch)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WorkoutHandler) MarkCompleted(c *gin.Context)   { h.setCompletion(c, true) }
func (h *WorkoutHandler) UnmarkCompleted(c *gin.Context) { h.setCompletion(c, false) }
func (h *WorkoutHandler) SkipDate(c *gin.Context)        { h.setSkip(c, true) }
func (h *WorkoutHandler) UnskipDate(c *gin.Context)      { h.setSkip(c, false) }

func (h *WorkoutHandler) setCompletion(c *gin.Context, done bool) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	w, err := h.workoutService.SetCompletion(c.Request.Context(), owner, id, c.Param("date"), done)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WorkoutHandler) setSkip(c *gin.Context, skip bool) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	w, err := h.workoutService.SetSkip(c.Request.Context(), owner, id, c.Param("date"), skip)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// TruncateSeries stops the series after endDate, keeping its history.
func (h *WorkoutHandler) TruncateSeries(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	var req TruncateRequest
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.workoutService.TruncateSeries(c.Request.Context(), owner, id, req.EndDate)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// DeleteWorkout removes the whole series and returns what was deleted.
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	w, err := h.workoutService.DeleteWorkout(c.Request.Context(), owner, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WorkoutHandler) owner(c *gin.Context) (primitive.ObjectID, bool) {
	owner, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Request is not authorized")
		return primitive.NilObjectID, false
	}
	return owner, true
}

func (h *WorkoutHandler) ownerAndID(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	owner, ok := h.owner(c)
	if !ok {
		return owner, primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		badID(c)
		return owner, primitive.NilObjectID, false
	}
	return owner, id, true
}

// queryDate returns ?date= or nil so the service falls back to today.
func queryDate(c *gin.Context) any {
	if d, ok := c.GetQuery("date"); ok && d != "" {
		return d
	}
	return nil
}
