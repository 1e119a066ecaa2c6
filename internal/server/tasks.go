package server

import (
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apierrors "github.com/mahiraziiz/primetrade.ai/internal/domain/errors"
	"github.com/mahiraziiz/primetrade.ai/internal/domain/models"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

func (api *TaskAPI) createTask(ctx *gin.Context) {
	var req models.CreateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.respondError(ctx, apierrors.BadRequest("invalid request body"))
		return
	}

	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)

	if title == "" {
		api.respondError(ctx, apierrors.BadRequest("title is required"))
		return
	}
	if description == "" {
		api.respondError(ctx, apierrors.BadRequest("description is required"))
		return
	}
	// Bounds are in characters, not bytes.
	if utf8.RuneCountInString(title) < 3 {
		api.respondError(ctx, apierrors.BadRequest(apierrors.ErrInvalidTitle.Error()))
		return
	}
	if utf8.RuneCountInString(description) < 5 {
		api.respondError(ctx, apierrors.BadRequest(apierrors.ErrInvalidDescription.Error()))
		return
	}

	task := models.Task{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Status:      models.StatusPending,
		OwnerID:     currentUser(ctx).ID,
	}

	if err := api.tasks.CreateTask(ctx.Request.Context(), &task); err != nil {
		api.respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, &task, "task created successfully")
}

func (api *TaskAPI) getUserTasks(ctx *gin.Context) {
	user := currentUser(ctx)

	// Unknown status values are ignored rather than rejected; the
	// listing then spans both statuses.
	status := ctx.Query("status")
	if status != models.StatusPending && status != models.StatusCompleted {
		status = ""
	}

	page := parsePositiveInt(ctx.Query("page"), 1)
	limit := parsePositiveInt(ctx.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	tasks, total, err := api.tasks.GetTasksByOwner(ctx.Request.Context(), user.ID, status, limit, (page-1)*limit)
	if err != nil {
		api.respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, &models.TaskPage{
		Tasks: tasks,
		Page:  page,
		Limit: limit,
		Total: total,
	}, "tasks fetched successfully")
}

func (api *TaskAPI) getTaskByID(ctx *gin.Context) {
	task, ok := api.ownedTask(ctx, "access")
	if !ok {
		return
	}
	respond(ctx, http.StatusOK, task, "task fetched successfully")
}

func (api *TaskAPI) updateTask(ctx *gin.Context) {
	var req models.UpdateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.respondError(ctx, apierrors.BadRequest("invalid request body"))
		return
	}

	task, ok := api.ownedTask(ctx, "update")
	if !ok {
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			api.respondError(ctx, apierrors.BadRequest("title cannot be empty"))
			return
		}
		if utf8.RuneCountInString(title) < 3 {
			api.respondError(ctx, apierrors.BadRequest(apierrors.ErrInvalidTitle.Error()))
			return
		}
		task.Title = title
	}

	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			api.respondError(ctx, apierrors.BadRequest("description cannot be empty"))
			return
		}
		if utf8.RuneCountInString(description) < 5 {
			api.respondError(ctx, apierrors.BadRequest(apierrors.ErrInvalidDescription.Error()))
			return
		}
		task.Description = description
	}

	if req.Status != nil {
		if *req.Status != models.StatusPending && *req.Status != models.StatusCompleted {
			api.respondError(ctx, apierrors.BadRequest(apierrors.ErrInvalidStatus.Error()))
			return
		}
		task.Status = *req.Status
	}

	if err := api.tasks.UpdateTask(ctx.Request.Context(), task.ID, task); err != nil {
		api.respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, task, "task updated successfully")
}

func (api *TaskAPI) deleteTask(ctx *gin.Context) {
	task, ok := api.ownedTask(ctx, "delete")
	if !ok {
		return
	}

	if err := api.tasks.DeleteTask(ctx.Request.Context(), task.ID); err != nil {
		api.respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, gin.H{}, "task deleted successfully")
}

// ownedTask fetches the task from the route parameter and enforces the
// ownership invariant: only the owner or an admin may touch it.
func (api *TaskAPI) ownedTask(ctx *gin.Context, action string) (*models.Task, bool) {
	task, err := api.tasks.GetTaskByID(ctx.Request.Context(), ctx.Param("taskId"))
	if err != nil {
		api.respondError(ctx, err)
		return nil, false
	}

	user := currentUser(ctx)
	if task.OwnerID != user.ID && user.Role != models.RoleAdmin {
		api.respondError(ctx, apierrors.Forbidden("you are not authorized to "+action+" this task"))
		return nil, false
	}

	return task, true
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
