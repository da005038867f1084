package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/Togather-Foundation/listings/internal/api/problem"
)

// FileOpener is satisfied by *uploads.Store.
type FileOpener interface {
	Open(name string) (*os.File, error)
}

type UploadsHandler struct {
	Files FileOpener
	Env   string
}

func NewUploadsHandler(files FileOpener, env string) *UploadsHandler {
	return &UploadsHandler{Files: files, Env: env}
}

// Serve streams a stored image. Range and conditional requests are handled
// by http.ServeContent.
func (h *UploadsHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	f, err := h.Files.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			problem.Write(w, r, http.StatusNotFound, "File not found", nil, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), err, h.Env)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		problem.Write(w, r, http.StatusNotFound, "File not found", err, h.Env)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
