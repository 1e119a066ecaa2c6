package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	apierrors "github.com/mahiraziiz/primetrade.ai/internal/domain/errors"
	"github.com/mahiraziiz/primetrade.ai/internal/domain/models"
)

func (api *TaskAPI) register(ctx *gin.Context) {
	var req models.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.respondError(ctx, apierrors.BadRequest("invalid request body"))
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		api.respondError(ctx, apierrors.BadRequest(validationMessage(err)))
		return
	}

	if existing, _ := api.users.GetUserByUsername(ctx.Request.Context(), req.Username); existing != nil {
		api.respondError(ctx, apierrors.BadRequest(apierrors.ErrUserAlreadyExists.Error()))
		return
	}
	if existing, _ := api.users.GetUserByEmail(ctx.Request.Context(), req.Email); existing != nil {
		api.respondError(ctx, apierrors.BadRequest(apierrors.ErrUserAlreadyExists.Error()))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		api.respondError(ctx, err)
		return
	}

	user := models.User{
		ID:       uuid.New().String(),
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: string(hash),
		Role:     models.RoleUser,
	}

	if err := api.users.CreateUser(ctx.Request.Context(), &user); err != nil {
		api.respondError(ctx, err)
		return
	}

	log.WithField("user_id", user.ID).Info("user registered")
	respond(ctx, http.StatusCreated, user.Sanitized(), "user registered successfully")
}

func (api *TaskAPI) login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.respondError(ctx, apierrors.BadRequest("invalid request body"))
		return
	}

	if req.Username == "" && req.Email == "" {
		api.respondError(ctx, apierrors.BadRequest("username or email is required"))
		return
	}
	if req.Password == "" {
		api.respondError(ctx, apierrors.BadRequest("password is required"))
		return
	}

	var user *models.User
	var err error
	if req.Username != "" {
		user, err = api.users.GetUserByUsername(ctx.Request.Context(), req.Username)
	}
	if user == nil && req.Email != "" {
		user, err = api.users.GetUserByEmail(ctx.Request.Context(), req.Email)
	}
	if err != nil || user == nil {
		api.respondError(ctx, apierrors.NotFound(apierrors.ErrUserNotFound.Error()))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		api.respondError(ctx, apierrors.Unauthorized(apierrors.ErrInvalidCredentials.Error()))
		return
	}

	access, refresh, err := api.tokens.GeneratePair(user)
	if err != nil {
		api.respondError(ctx, err)
		return
	}
	if err := api.users.UpdateRefreshToken(ctx.Request.Context(), user.ID, refresh); err != nil {
		api.respondError(ctx, err)
		return
	}

	api.setAuthCookies(ctx, access, refresh)
	log.WithField("user_id", user.ID).Info("user logged in")
	respond(ctx, http.StatusOK, &models.LoginResult{
		User:         user.Sanitized(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, "user logged in successfully")
}

func (api *TaskAPI) logout(ctx *gin.Context) {
	user := currentUser(ctx)

	if err := api.users.UpdateRefreshToken(ctx.Request.Context(), user.ID, ""); err != nil {
		api.respondError(ctx, err)
		return
	}

	api.clearAuthCookies(ctx)
	respond(ctx, http.StatusOK, gin.H{}, "user logged out successfully")
}

func (api *TaskAPI) getCurrentUser(ctx *gin.Context) {
	respond(ctx, http.StatusOK, currentUser(ctx), "current user fetched successfully")
}

func (api *TaskAPI) refreshToken(ctx *gin.Context) {
	incoming, _ := ctx.Cookie("refreshToken")
	if incoming == "" {
		var req models.RefreshRequest
		if err := ctx.ShouldBindJSON(&req); err == nil {
			incoming = req.RefreshToken
		}
	}
	if incoming == "" {
		api.respondError(ctx, apierrors.Unauthorized("missing refresh token"))
		return
	}

	claims, err := api.tokens.ValidateRefreshToken(incoming)
	if err != nil {
		api.respondError(ctx, apierrors.Unauthorized(apierrors.ErrInvalidToken.Error()))
		return
	}

	user, err := api.users.GetUserByID(ctx.Request.Context(), claims.UserID)
	if err != nil {
		api.respondError(ctx, apierrors.Unauthorized(apierrors.ErrInvalidToken.Error()))
		return
	}

	// The stored token is the only one honored; rotation invalidates
	// every previously issued refresh token.
	if user.RefreshToken == "" || user.RefreshToken != incoming {
		api.respondError(ctx, apierrors.Unauthorized(apierrors.ErrRefreshTokenExpired.Error()))
		return
	}

	access, refresh, err := api.tokens.GeneratePair(user)
	if err != nil {
		api.respondError(ctx, err)
		return
	}
	if err := api.users.UpdateRefreshToken(ctx.Request.Context(), user.ID, refresh); err != nil {
		api.respondError(ctx, err)
		return
	}

	api.setAuthCookies(ctx, access, refresh)
	respond(ctx, http.StatusOK, &models.LoginResult{
		User:         user.Sanitized(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, "access token refreshed")
}

func (api *TaskAPI) setAuthCookies(ctx *gin.Context, access, refresh string) {
	secure := api.cfg.Environment == EnvProduction
	ctx.SetCookie("accessToken", access, int(api.cfg.AccessExpiry.Seconds()), "/", "", secure, true)
	ctx.SetCookie("refreshToken", refresh, int(api.cfg.RefreshExpiry.Seconds()), "/", "", secure, true)
}

func (api *TaskAPI) clearAuthCookies(ctx *gin.Context) {
	secure := api.cfg.Environment == EnvProduction
	ctx.SetCookie("accessToken", "", -1, "/", "", secure, true)
	ctx.SetCookie("refreshToken", "", -1, "/", "", secure, true)
}

func validationMessage(err error) string {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			switch verr.Field() {
			case "Username":
				return apierrors.ErrInvalidUsername.Error()
			case "Email":
				return apierrors.ErrInvalidEmail.Error()
			case "Password":
				return apierrors.ErrInvalidPassword.Error()
			case "FullName":
				return apierrors.ErrInvalidFullName.Error()
			case "Role":
				return apierrors.ErrInvalidRole.Error()
			case "Status":
				return apierrors.ErrInvalidStatus.Error()
			case "Title":
				return apierrors.ErrInvalidTitle.Error()
			case "Description":
				return apierrors.ErrInvalidDescription.Error()
			}
		}
	}
	return "validation failed"
}
