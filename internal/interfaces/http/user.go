package http

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"pricetrack/internal/domain/user"
	"pricetrack/internal/shared/middleware"
)

type UserHandler struct {
	users *user.Service
	log   *zap.Logger
}

func NewUserHandler(users *user.Service, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, log: log.Named("user_handler")}
}

// HandleMe returns the session user.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.users.Get(r.Context(), userID)
	if errors.Is(err, user.ErrUserNotFound) {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("Failed to load user", zap.String("user_id", userID), zap.Error(err))
		http.Error(w, "Failed to load user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, u)
}
