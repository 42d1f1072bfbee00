package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ikedalab/classinfo/core"
	"github.com/ikedalab/classinfo/core/announcement"
)

type announcementApi struct {
	svc      *announcement.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerAnnouncementAPI(g *echo.Group, deps ServerDeps) {
	api := announcementApi{
		svc:      deps.AnnouncementSvc,
		conf:     deps.Conf,
		validate: deps.Validate,
	}

	ag := g.Group("/announcements")
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/latest", api.latest)
	ag.GET("/range/:start/:end", api.inRange)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

// Handlers

func (api *announcementApi) query(ctx echo.Context) error {
	var filter announcement.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	page := bindPagination(ctx)

	var ord Ordering
	ord.Bind(ctx)
	var first core.DBOrdering
	if len(ord.Orderings) > 0 {
		first = ord.Orderings[0]
	}

	items, total, err := api.svc.Filter(ctx.Request().Context(), filter, first, page)
	if err != nil {
		return errors.Wrap(err, "filtering announcements")
	}
	return ctx.JSON(http.StatusOK, newPagedResponse(items, len(items), page.Info(total)))
}

func (api *announcementApi) create(ctx echo.Context) error {
	var data announcement.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating announcement")
	}
	return ctx.JSON(http.StatusCreated, newItemResponse(a))
}

func (api *announcementApi) retrieve(ctx echo.Context) error {
	a, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newItemResponse(a))
}

func (api *announcementApi) update(ctx echo.Context) error {
	var data announcement.UpdateAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAnnouncement")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newItemResponse(a))
}

func (api *announcementApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *announcementApi) latest(ctx echo.Context) error {
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	items, err := api.svc.Latest(ctx.Request().Context(), limit)
	if err != nil {
		return errors.Wrap(err, "fetching latest announcements")
	}
	return ctx.JSON(http.StatusOK, newListResponse(items, len(items)))
}

func (api *announcementApi) inRange(ctx echo.Context) error {
	page := bindPagination(ctx)
	items, total, err := api.svc.InRange(ctx.Request().Context(), ctx.Param("start"), ctx.Param("end"), api.conf.Timezone, page)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newRangeResponse(items, len(items), page.Info(total)))
}
