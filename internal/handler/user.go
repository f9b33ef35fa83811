package handler

import (
	"log/slog"
	"net/http"

	"user_service/internal/models"

	"github.com/gin-gonic/gin"
)

// GET /user
func (h *Handler) GetUser(c *gin.Context) {
	const op = "handler.GetUser"

	log := h.opLogger(c, op)

	id, ok := userIDFromContext(c)
	if !ok {
		log.Error("failed to get user id from context")

		newErrorResponse(c, http.StatusUnauthorized, "invalid token")

		return
	}

	user, err := h.serviceLayer.GetUserByID(c.Request.Context(), id)
	if err != nil {
		log.Error("failed to get user by id", slog.Any("user_id", id), slog.Any("error", err))

		newErrorResponse(c, http.StatusInternalServerError, "internal error")

		return
	}

	c.JSON(http.StatusOK, user)
}

// POST /user
func (h *Handler) CreateUser(c *gin.Context) {
	const op = "handler.CreateUser"

	log := h.opLogger(c, op)

	var in models.UniqueUser
	if err := bindForm(c, &in); err != nil {
		log.Error("failed to read request form", slog.Any("error", err))

		newErrorResponse(c, http.StatusBadRequest, "invalid form")

		return
	}

	if err := in.Normalize().Validate(); err != nil {
		log.Error("given invalid user", slog.Any("error", err))

		newErrorResponse(c, http.StatusBadRequest, err.Error())

		return
	}

	user, err := h.serviceLayer.CreateUser(c.Request.Context(), in)
	if err != nil {
		log.Error("failed to create user", slog.Any("error", err))

		newErrorResponse(c, http.StatusInternalServerError, "failed to create user")

		return
	}

	log.Info("user created", slog.Any("user_id", user.ID))

	c.JSON(http.StatusOK, user)
}

// DELETE /user
func (h *Handler) DeleteUser(c *gin.Context) {
	const op = "handler.DeleteUser"

	log := h.opLogger(c, op)

	id, ok := userIDFromContext(c)
	if !ok {
		log.Error("failed to get user id from context")

		newErrorResponse(c, http.StatusUnauthorized, "invalid token")

		return
	}

	user, err := h.serviceLayer.DeleteUser(c.Request.Context(), id)
	if err != nil {
		log.Error("failed to delete user", slog.Any("user_id", id), slog.Any("error", err))

		newErrorResponse(c, http.StatusInternalServerError, "internal error")

		return
	}

	log.Info("user deleted", slog.Any("user_id", id))

	c.JSON(http.StatusOK, user)
}
