package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ikedalab/classinfo/core"
	chatbotsvc "github.com/ikedalab/classinfo/services/chatbot"
)

type chatApi struct {
	client *chatbotsvc.Client
}

func registerChatAPI(g *echo.Group, deps ServerDeps) {
	api := chatApi{client: deps.ChatClient}

	g.POST("/chat", api.chat)
	g.GET("/chat/health", api.health)
}

// Handlers

func (api *chatApi) chat(ctx echo.Context) error {
	var data struct {
		Message string `json:"message"`
		UserID  string `json:"user_id"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding chat message")
	}
	data.Message = core.CleanString(data.Message)
	if data.Message == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "message", Error: "is required"})
	}

	reply, err := api.client.Ask(ctx.Request().Context(), data.Message, data.UserID)
	if err != nil {
		if errors.Cause(err) == chatbotsvc.ErrUnavailable {
			return ctx.JSON(http.StatusServiceUnavailable, echo.Map{
				"success":           false,
				"error":             "Chat service is temporarily unavailable. Please try again in a moment.",
				"fallback_response": chatbotsvc.Fallback(data.Message),
			})
		}
		return errors.Wrap(err, "forwarding chat message")
	}

	return ctx.JSON(http.StatusOK, newItemResponse(reply))
}

func (api *chatApi) health(ctx echo.Context) error {
	if _, err := api.client.CheckHealth(ctx.Request().Context()); err != nil {
		return ctx.JSON(http.StatusOK, echo.Map{
			"success": false,
			"data":    echo.Map{"chat_service_status": "unavailable"},
		})
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"chat_service_status": "healthy"},
	})
}
