package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mahiraziiz/primetrade.ai/internal/auth"
	apierrors "github.com/mahiraziiz/primetrade.ai/internal/domain/errors"
	"github.com/mahiraziiz/primetrade.ai/internal/domain/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id, role string) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, id, refreshToken string) error
	DeleteUser(ctx context.Context, id string) error
}

type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	GetTasksByOwner(ctx context.Context, ownerID, status string, limit, offset int) ([]models.Task, int, error)
	GetAllTasks(ctx context.Context) ([]models.AdminTask, error)
	UpdateTask(ctx context.Context, id string, task *models.Task) error
	DeleteTask(ctx context.Context, id string) error
	DeleteTasksByOwner(ctx context.Context, ownerID string) (int64, error)
}

// Pinger is implemented by storages that can report backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type TaskAPI struct {
	httpSrv *http.Server
	users   UserRepository
	tasks   TaskRepository
	tokens  *auth.TokenManager
	cfg     *Config
}

func NewTaskAPI(users UserRepository, tasks TaskRepository, cfg *Config) *TaskAPI {
	if users == nil || tasks == nil {
		return nil
	}
	if cfg == nil {
		cfg = &Config{}
	}

	httpSrv := http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Addr, cfg.Port),
	}

	api := TaskAPI{
		httpSrv: &httpSrv,
		users:   users,
		tasks:   tasks,
		tokens:  auth.NewTokenManager(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessExpiry, cfg.RefreshExpiry),
		cfg:     cfg,
	}

	api.configRoutes()

	return &api
}

func (api *TaskAPI) Start() error {
	if api.httpSrv == nil {
		return apierrors.ErrInternalServer
	}

	if api.httpSrv.Addr == "" || api.httpSrv.Addr == ":0" {
		api.httpSrv.Addr = ":8080"
	}

	return api.httpSrv.ListenAndServe()
}

func (api *TaskAPI) Shutdown(ctx context.Context) error {
	if api.httpSrv == nil {
		return nil
	}
	return api.httpSrv.Shutdown(ctx)
}

// Handler exposes the configured router, mainly for tests.
func (api *TaskAPI) Handler() http.Handler {
	return api.httpSrv.Handler
}

func (api *TaskAPI) configRoutes() {
	router := gin.New()
	router.Use(RequestLogger())
	router.Use(Metrics())
	router.Use(CORS(api.cfg.CORSOrigin))
	router.Use(GzipResponse())
	router.Use(gin.CustomRecovery(func(ctx *gin.Context, _ any) {
		api.respondError(ctx, apierrors.ErrInternalServer)
	}))

	router.NoRoute(func(ctx *gin.Context) {
		api.respondError(ctx, apierrors.NotFound("route not found"))
	})
	router.NoMethod(func(ctx *gin.Context) {
		api.respondError(ctx, apierrors.New(http.StatusMethodNotAllowed, "method not allowed"))
	})

	router.GET("/metrics", MetricsHandler())
	router.GET("/healthz", api.healthz)

	v1 := router.Group("/api/v1")

	users := v1.Group("/users")
	{
		users.POST("/register", api.register)
		users.POST("/login", api.login)
		users.POST("/refresh-token", api.refreshToken)
		users.POST("/logout", api.requireAuth(), api.logout)
		users.GET("/current-user", api.requireAuth(), api.getCurrentUser)
	}

	tasks := v1.Group("/tasks", api.requireAuth())
	{
		tasks.POST("", api.createTask)
		tasks.GET("", api.getUserTasks)
		tasks.GET("/:taskId", api.getTaskByID)
		tasks.PATCH("/:taskId", api.updateTask)
		tasks.DELETE("/:taskId", api.deleteTask)
	}

	admin := v1.Group("/admin", api.requireAuth(), api.requireRole(models.RoleAdmin))
	{
		admin.GET("/users", api.getAllUsers)
		admin.GET("/users/:userId", api.getUserByID)
		admin.PATCH("/users/:userId/role", api.updateUserRole)
		admin.DELETE("/users/:userId", api.deleteUser)
		admin.GET("/tasks", api.getAllTasks)
		admin.DELETE("/tasks/:taskId", api.deleteTaskAsAdmin)
	}

	api.httpSrv.Handler = router
}

func (api *TaskAPI) healthz(ctx *gin.Context) {
	if pinger, ok := api.users.(Pinger); ok {
		if err := pinger.Ping(ctx.Request.Context()); err != nil {
			api.respondError(ctx, apierrors.New(http.StatusServiceUnavailable, "storage unavailable"))
			return
		}
	}
	respond(ctx, http.StatusOK, gin.H{"status": "ok"}, "healthy")
}
