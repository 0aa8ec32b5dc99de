package handler

import (
	"projecthub/internal/audit"
	"projecthub/internal/auth"
	"projecthub/internal/domain/activity"

	"github.com/labstack/echo/v4"
)

// ActivityHandler serves the project ledger. Access is checked by the RBAC
// middleware on the route, so handlers only read the resolved project id.
type ActivityHandler struct {
	ledger   ActivityReader
	exporter ActivityExporter
}

func NewActivityHandler(ledger ActivityReader, exporter ActivityExporter) *ActivityHandler {
	return &ActivityHandler{
		ledger:   ledger,
		exporter: exporter,
	}
}

// activityFilter reads action, entityType, from and to. A date-only "to"
// covers that whole day.
func activityFilter(c echo.Context) (activity.Filter, error) {
	var filter activity.Filter
	if raw := optionalQuery(c, queryAction); raw != nil {
		a := activity.Action(*raw)
		filter.Action = &a
	}
	if raw := optionalQuery(c, queryEntityType); raw != nil {
		e := activity.EntityType(*raw)
		filter.EntityType = &e
	}

	from, err := audit.ParseBound(c.QueryParam(queryFrom), false)
	if err != nil {
		return filter, err
	}
	to, err := audit.ParseBound(c.QueryParam(queryTo), true)
	if err != nil {
		return filter, err
	}
	filter.From, filter.To = from, to
	return filter, nil
}

func (h *ActivityHandler) List(c echo.Context) error {
	projectID, err := auth.GetProjectID(c)
	if err != nil {
		return err
	}
	filter, err := activityFilter(c)
	if err != nil {
		return err
	}
	req, err := pageRequest(c)
	if err != nil {
		return err
	}

	result, err := h.ledger.ListForProject(c.Request().Context(), projectID, filter, req)
	if err != nil {
		return err
	}
	return respondPage(c, result)
}

func (h *ActivityHandler) Recent(c echo.Context) error {
	projectID, err := auth.GetProjectID(c)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, queryLimit)
	if err != nil {
		return err
	}

	entries, err := h.ledger.RecentForProject(c.Request().Context(), projectID, limit)
	if err != nil {
		return err
	}
	return respondOK(c, entries)
}

func (h *ActivityHandler) Export(c echo.Context) error {
	projectID, err := auth.GetProjectID(c)
	if err != nil {
		return err
	}
	filter, err := activityFilter(c)
	if err != nil {
		return err
	}

	export, err := h.exporter.Export(c.Request().Context(), projectID, filter)
	if err != nil {
		return err
	}
	return respondCreated(c, export)
}
