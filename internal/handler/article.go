package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
)

type ArticleHandler struct {
	Articles *repository.ArticleRepo
}

func NewArticleHandler(articles *repository.ArticleRepo) *ArticleHandler {
	if articles == nil {
		panic("nil repository passed to NewArticleHandler")
	}
	return &ArticleHandler{Articles: articles}
}

// List pages through articles, ten per page unless limit says otherwise.
func (h *ArticleHandler) List(c echo.Context) error {
	p, err := pageParams(c, defaultArticleLimit)
	if err != nil {
		return err
	}
	articles, err := h.Articles.List(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, articles)
}

func (h *ArticleHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.Articles.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ArticleHandler) Create(c echo.Context) error {
	var in model.ArticleInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	a := model.Article{Title: in.Title, Content: in.Content}
	if err := h.Articles.Create(c.Request().Context(), &a); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *ArticleHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in model.ArticleInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	a, err := h.Articles.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ArticleHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Articles.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return deleted(c, "article")
}
