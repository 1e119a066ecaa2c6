package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	log "github.com/sirupsen/logrus"

	apierrors "github.com/mahiraziiz/primetrade.ai/internal/domain/errors"
	"github.com/mahiraziiz/primetrade.ai/internal/domain/models"
)

func (api *TaskAPI) getAllUsers(ctx *gin.Context) {
	users, err := api.users.GetUsers(ctx.Request.Context())
	if err != nil {
		api.respondError(ctx, err)
		return
	}

	sanitized := make([]models.User, 0, len(users))
	for i := range users {
		sanitized = append(sanitized, *users[i].Sanitized())
	}

	respond(ctx, http.StatusOK, sanitized, "all users fetched successfully")
}

func (api *TaskAPI) getUserByID(ctx *gin.Context) {
	user, err := api.users.GetUserByID(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		api.respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, user.Sanitized(), "user fetched successfully")
}

func (api *TaskAPI) updateUserRole(ctx *gin.Context) {
	var req models.UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.respondError(ctx, apierrors.BadRequest(apierrors.ErrInvalidRole.Error()))
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		api.respondError(ctx, apierrors.BadRequest(apierrors.ErrInvalidRole.Error()))
		return
	}

	user, err := api.users.UpdateUserRole(ctx.Request.Context(), ctx.Param("userId"), req.Role)
	if err != nil {
		api.respondError(ctx, err)
		return
	}

	log.WithFields(log.Fields{"user_id": user.ID, "role": req.Role}).Info("user role updated")
	respond(ctx, http.StatusOK, user.Sanitized(), "user role updated successfully")
}

// deleteUser removes the user and then sweeps the user's tasks. The
// two steps are not transactional across the repositories; a failed
// sweep is logged and reported without undoing the user deletion.
func (api *TaskAPI) deleteUser(ctx *gin.Context) {
	userID := ctx.Param("userId")

	if _, err := api.users.GetUserByID(ctx.Request.Context(), userID); err != nil {
		api.respondError(ctx, err)
		return
	}

	if err := api.users.DeleteUser(ctx.Request.Context(), userID); err != nil {
		api.respondError(ctx, err)
		return
	}

	deleted, err := api.tasks.DeleteTasksByOwner(ctx.Request.Context(), userID)
	if err != nil {
		log.WithFields(log.Fields{"user_id": userID}).Warnf("task cleanup after user deletion failed: %v", err)
		api.respondError(ctx, apierrors.Internal("user deleted but task cleanup failed"))
		return
	}

	log.WithFields(log.Fields{"user_id": userID, "tasks_deleted": deleted}).Info("user deleted")
	respond(ctx, http.StatusOK, gin.H{}, "user and associated tasks deleted successfully")
}

func (api *TaskAPI) getAllTasks(ctx *gin.Context) {
	tasks, err := api.tasks.GetAllTasks(ctx.Request.Context())
	if err != nil {
		api.respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, tasks, "all tasks fetched successfully")
}

func (api *TaskAPI) deleteTaskAsAdmin(ctx *gin.Context) {
	taskID := ctx.Param("taskId")

	if _, err := api.tasks.GetTaskByID(ctx.Request.Context(), taskID); err != nil {
		api.respondError(ctx, err)
		return
	}

	if err := api.tasks.DeleteTask(ctx.Request.Context(), taskID); err != nil {
		api.respondError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, gin.H{}, "task deleted successfully")
}
