package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"projecthub/internal/domain/page"
	apperrors "projecthub/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	contentTypeJSON          = "application/json"
	maxStrictBodyBytes int64 = 1 << 20 // Keep parser bound aligned with global body limit.
)

func bindStrictJSON(c echo.Context, dst interface{}) error {
	if !strings.HasPrefix(strings.ToLower(c.Request().Header.Get(echo.HeaderContentType)), contentTypeJSON) {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, msgContentTypeJSONRequired)
	}

	body := io.LimitReader(c.Request().Body, maxStrictBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return apperrors.Validation(msgInvalidRequestBody, err.Error())
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return apperrors.Validation(msgInvalidRequestBody)
	}

	return nil
}

// bindOptionalJSON is bindStrictJSON for endpoints whose body may be omitted.
func bindOptionalJSON(c echo.Context, dst interface{}) error {
	if c.Request().ContentLength == 0 {
		return nil
	}
	return bindStrictJSON(c, dst)
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apperrors.Validation(fmt.Sprintf(msgInvalidIDFmt, name))
	}
	return id, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validation(fmt.Sprintf(msgInvalidQueryIntFmt, name))
	}
	return n, nil
}

// pageRequest reads page and limit. Range clamping is left to the services.
func pageRequest(c echo.Context) (page.Request, error) {
	p, err := queryInt(c, queryPage)
	if err != nil {
		return page.Request{}, err
	}
	limit, err := queryInt(c, queryLimit)
	if err != nil {
		return page.Request{}, err
	}
	return page.Request{Page: p, Limit: limit}, nil
}

func queryUUID(c echo.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf(msgInvalidIDFmt, name))
	}
	return &id, nil
}

func optionalQuery(c echo.Context, name string) *string {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil
	}
	return &raw
}

// parseTime accepts RFC 3339 timestamps and plain dates (midnight UTC).
func parseTime(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*raw)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnlyLayout, v)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf(msgInvalidDateFmt, v))
	}
	return &t, nil
}
