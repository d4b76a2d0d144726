package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/ndt-worklog/internal/errors"
	"github.com/yukikurage/ndt-worklog/internal/storage"
)

// FileHandler serves uploaded documents to authenticated users.
type FileHandler struct {
	store *storage.FileStore
}

func NewFileHandler(store *storage.FileStore) *FileHandler {
	return &FileHandler{store: store}
}

// GetFile streams /files/:name. Names with path components are rejected.
func (h *FileHandler) GetFile(c *gin.Context) {
	if _, ok := actorOrAbort(c); !ok {
		return
	}

	name := c.Param("name")
	f, err := h.store.Open(name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		apierrors.NotFound(c, "File not found")
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+name+`"`)
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), f)
}
