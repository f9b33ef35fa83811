package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"user_service/internal/models"
	"user_service/internal/service"

	"github.com/gin-gonic/gin"
)

// GET /login
//
// Bad credentials and storage failures both answer 500.
func (h *Handler) Login(c *gin.Context) {
	const op = "handler.Login"

	log := h.opLogger(c, op)

	var in models.UniqueUser
	if err := bindForm(c, &in); err != nil {
		log.Error("failed to read request form", slog.Any("error", err))

		newErrorResponse(c, http.StatusBadRequest, "invalid form")

		return
	}

	if err := in.ValidateCredentials(); err != nil {
		log.Error("given incomplete credentials", slog.Any("error", err))

		newErrorResponse(c, http.StatusBadRequest, err.Error())

		return
	}

	token, err := h.serviceLayer.Login(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warn("login rejected", slog.String("mail", in.Mail))
		} else {
			log.Error("failed to login", slog.Any("error", err))
		}

		newErrorResponse(c, http.StatusInternalServerError, "failed to login")

		return
	}

	c.JSON(http.StatusOK, token)
}
