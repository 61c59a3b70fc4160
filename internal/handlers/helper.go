package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maeshaii/backend-wny/internal/services"
)

// yearCourse reads the shared year/course filters. "ALL" or empty means no filter.
func yearCourse(c *gin.Context) (string, string) {
	return strings.TrimSpace(c.Query("year")), strings.TrimSpace(c.Query("course"))
}

// openFormFile opens an optional multipart file. A missing part yields nil
// with no error.
func openFormFile(c *gin.Context, field string) (*multipart.FileHeader, io.ReadCloser, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", field, err)
	}
	return header, f, nil
}

func sendFile(c *gin.Context, file *services.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
