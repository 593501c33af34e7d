package server

import (
	"net/http"
	"strings"

	"github.com/existflow/todoserver/internal/model"
	"github.com/labstack/echo/v4"
)

type createProjectRequest struct {
	Name string `json:"name" validate:"notblank"`
}

var projectMessages = map[string]string{
	"Name": "No project name",
}

func (s *Server) handleListProjects(c echo.Context) error {
	projects, err := s.store.ListProjects(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}

	if len(projects) == 0 {
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusOK, projects)
}

func (s *Server) handleCreateProject(c echo.Context) error {
	var req createProjectRequest
	if ok, err := bindAndValidate(c, &req, projectMessages); !ok {
		return err
	}

	project := model.NewProject(userID(c), strings.TrimSpace(req.Name))
	if err := s.store.CreateProject(c.Request().Context(), project); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, project)
}
