package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gazette/internal/middleware"
)

// UsersList lists all accounts without their credential material.
func (a *Admin) UsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List()
	if err != nil {
		slog.Error("list users failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": users})
}

// UserResetTwoFA clears an account's TOTP enrolment so it must be set up
// again on next login.
func (a *Admin) UserResetTwoFA(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := a.users.ResetTOTP(id); err != nil {
		slog.Error("reset user 2fa failed", "error", err, "id", id)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// UserDelete removes an account. Pages they authored stay, with the owner
// cleared. Admins cannot delete their own account.
func (a *Admin) UserDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.UserID == id {
		jsonError(w, http.StatusUnprocessableEntity, "cannot delete your own account")
		return
	}
	if err := a.users.Delete(id); err != nil {
		slog.Error("delete user failed", "error", err, "id", id)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
