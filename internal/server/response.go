package server

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apierrors "github.com/mahiraziiz/primetrade.ai/internal/domain/errors"
)

// APIResponse is the uniform success envelope every endpoint returns.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// APIErrorResponse is the uniform error envelope; Stack is filled only
// when the server runs in development mode.
type APIErrorResponse struct {
	Success    bool     `json:"success"`
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	Stack      string   `json:"stack,omitempty"`
}

func respond(ctx *gin.Context, statusCode int, data any, message string) {
	ctx.JSON(statusCode, &APIResponse{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    statusCode < http.StatusBadRequest,
	})
}

// respondError converts any error into the error envelope, defaulting
// unrecognized errors to 500.
func (api *TaskAPI) respondError(ctx *gin.Context, err error) {
	apiErr := apierrors.FromError(err)

	errs := apiErr.Errs
	if errs == nil {
		errs = []string{}
	}

	resp := &APIErrorResponse{
		Success:    false,
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Message,
		Errors:     errs,
	}
	if api.cfg.Environment == EnvDevelopment {
		resp.Stack = string(debug.Stack())
	}

	ctx.AbortWithStatusJSON(apiErr.StatusCode, resp)
}
