package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ikedalab/classinfo/core"
	"github.com/ikedalab/classinfo/core/subscriber"
)

type subscriberApi struct {
	svc      *subscriber.Service
	validate *validator.Validate
}

func registerSubscriberAPI(g *echo.Group, deps ServerDeps) {
	api := subscriberApi{
		svc:      deps.SubscriberSvc,
		validate: deps.Validate,
	}

	sg := g.Group("/subscribers")
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.POST("/unsubscribe", api.unsubscribe)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *subscriberApi) query(ctx echo.Context) error {
	items, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying subscribers")
	}
	return ctx.JSON(http.StatusOK, newListResponse(items, len(items)))
}

func (api *subscriberApi) create(ctx echo.Context) error {
	var data subscriber.NewSubscriber
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubscriber")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	sub, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subscriber")
	}
	return ctx.JSON(http.StatusCreated, newItemResponse(sub))
}

func (api *subscriberApi) retrieve(ctx echo.Context) error {
	sub, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newItemResponse(sub))
}

func (api *subscriberApi) update(ctx echo.Context) error {
	var data subscriber.UpdateSubscriber
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubscriber")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newItemResponse(sub))
}

func (api *subscriberApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *subscriberApi) unsubscribe(ctx echo.Context) error {
	var data struct {
		Email string `json:"email"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding email")
	}
	data.Email = core.CleanString(data.Email, true /* lower */)
	if data.Email == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "email", Error: "is required"})
	}

	if err := api.svc.Unsubscribe(ctx.Request().Context(), data.Email); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "You have been unsubscribed."})
}
