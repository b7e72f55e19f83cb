package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/logging"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/upload"
)

type UploadHTTP struct {
	Store *upload.Store
}

func (h *UploadHTTP) Upload(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "upload")

	fh, err := c.FormFile(upload.FieldName)
	if err != nil {
		l.Warn("upload_failed", "status", 400, "reason", "no file", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Images only!").SetInternal(err)
	}

	path, err := h.Store.Save(fh)
	if err != nil {
		if errors.Is(err, upload.ErrImagesOnly) {
			l.Warn("upload_failed", "status", 400, "reason", "not an image", "filename", fh.Filename)
			return echo.NewHTTPError(http.StatusBadRequest, "Images only!").SetInternal(err)
		}
		l.Error("upload_failed", "status", 500, "reason", "cannot store file", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot store file").SetInternal(err)
	}

	l.Info("upload_success", "path", path)
	return c.String(http.StatusOK, path)
}
