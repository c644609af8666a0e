package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// formFile opens the multipart "file" field. On failure the response is already written.
func (h *JobHandler) formFile(c *gin.Context) (string, io.ReadCloser, bool) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "multipart field \"file\" is required",
		})
		return "", nil, false
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read uploaded file",
		})
		return "", nil, false
	}
	return header.Filename, f, true
}
