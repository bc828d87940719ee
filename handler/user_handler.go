package handler

import (
	"net/http"
	"secure-banking-api/common"
	"secure-banking-api/logger"
	"secure-banking-api/model"
)

type UserHandler struct {
	users  UserService
	tokens TokenIssuer
}

func NewUserHandler(users UserService, tokens TokenIssuer) *UserHandler {
	return &UserHandler{users: users, tokens: tokens}
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates a user with role USER and a zero-balance account.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        user body model.RegisterRequest true "Credentials"
// @Success      201  {object}  model.User
// @Failure      400  {object}  common.AppError "Invalid request body"
// @Failure      409  {object}  common.AppError "Username already exists"
// @Failure      500  {object}  common.AppError
// @Router       /api/auth/register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		return serviceError(err, "Could not register user")
	}

	common.WriteJSON(w, http.StatusCreated, user)
	return nil
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges username and password for a signed access token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials body model.LoginRequest true "Credentials"
// @Success      200  {object}  model.LoginResponse
// @Failure      400  {object}  common.AppError "Invalid request body"
// @Failure      401  {object}  common.AppError "Invalid credentials"
// @Failure      500  {object}  common.AppError
// @Router       /api/auth/login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		return serviceError(err, "Could not log in")
	}

	token, expiresAt, err := h.tokens.Issue(user.Username, []string{string(user.Role)})
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not issue token", err)
	}

	logger.Log.WithField("username", user.Username).Info("User logged in")
	common.WriteJSON(w, http.StatusOK, model.LoginResponse{Token: token, ExpiresAt: expiresAt})
	return nil
}

// ListUsers godoc
// @Summary      List all users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.User
// @Failure      401  {object}  common.AppError
// @Failure      403  {object}  common.AppError
// @Router       /api/admin/users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) *common.AppError {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve users", err)
	}
	if users == nil {
		users = []*model.User{}
	}

	common.WriteJSON(w, http.StatusOK, users)
	return nil
}
