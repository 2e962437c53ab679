package handler

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/todoplanner/apigateway/internal/schedule"
	"github.com/todoplanner/apigateway/internal/service"
	"github.com/todoplanner/apigateway/internal/service/serviceutils"
	"github.com/todoplanner/apigateway/pkg/simpleexcel"
)

type ExportHandler struct {
	svc service.TodoService

	// configPath points at an optional YAML report layout. When the file is
	// missing the built-in fluent layout is used.
	configPath string
}

func NewExportHandler(svc service.TodoService, configPath string) *ExportHandler {
	return &ExportHandler{svc: svc, configPath: configPath}
}

// ExportTodosHandler handles GET /export/todos?view=today|tomorrow|all
func (h *ExportHandler) ExportTodosHandler(c echo.Context) error {
	ctx := c.Request().Context()

	view := schedule.View(c.QueryParam("view"))
	if view == "" {
		view = schedule.ViewAll
	}

	todos, err := h.svc.List(ctx, view, time.Now())
	if err != nil {
		return respondErr(c, "failed to load todos for export", err)
	}

	exporter, err := h.buildExporter(string(view))
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "failed to build report layout", err)
	}
	exporter.BindSectionData("todos", todos)

	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="todos_%s.xlsx"`, view))

	return exporter.ToWriter(c.Response().Writer)
}

func (h *ExportHandler) buildExporter(view string) (*simpleexcel.DataExporter, error) {
	if h.configPath != "" {
		if _, err := os.Stat(h.configPath); err == nil {
			return simpleexcel.NewDataExporterFromYamlFile(h.configPath)
		}
	}

	return simpleexcel.NewDataExporter().
		AddSheet("Tasks").
		AddSection(&simpleexcel.SectionConfig{
			Title: fmt.Sprintf("TASK REPORT (%s) - %s", view, time.Now().Format("2006-01-02")),
			Type:  simpleexcel.SectionTypeTitleOnly,
			TitleStyle: &simpleexcel.StyleTemplate{
				Font: &simpleexcel.FontTemplate{Bold: true, Color: "#FFFFFF"},
				Fill: &simpleexcel.FillTemplate{Color: "#1565C0"},
			},
		}).
		AddSection(&simpleexcel.SectionConfig{
			ID:         "todos",
			Title:      "Tasks",
			ShowHeader: true,
			HeaderStyle: &simpleexcel.StyleTemplate{
				Font: &simpleexcel.FontTemplate{Bold: true},
				Fill: &simpleexcel.FillTemplate{Color: "#BBDEFB"},
			},
			Columns: []simpleexcel.ColumnConfig{
				{FieldName: "Title", Header: "Title", Width: 30},
				{FieldName: "Description", Header: "Description", Width: 40},
				{FieldName: "Important", Header: "Important", Width: 10},
				{FieldName: "StartTime", Header: "Start", Width: 18},
				{FieldName: "EndTime", Header: "End", Width: 18},
				{FieldName: "Deadline", Header: "Deadline", Width: 18},
				{FieldName: "Status", Header: "Status", Width: 15},
				{FieldName: "CreatedAt", Header: "Created", Width: 18},
			},
		}).
		Build(), nil
}
