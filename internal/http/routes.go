package httpapp

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/maxth/mediadl/internal/app"
	"github.com/maxth/mediadl/internal/constants"
	"github.com/maxth/mediadl/internal/domain"
	"github.com/maxth/mediadl/internal/http/dto"
	"github.com/maxth/mediadl/internal/storage"
	"github.com/maxth/mediadl/internal/store"
)

const indexNotFoundHTML = "<h1>Maxth Downloader</h1><p>index.html not found in current directory</p>"

func (h *Handler) IndexPage(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(h.IndexPath)
	if err != nil {
		w.Header().Set("Content-Type", constants.MimeTypeHTML)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(indexNotFoundHTML))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		w.Header().Set("Content-Type", constants.MimeTypeHTML)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(indexNotFoundHTML))
		return
	}
	w.Header().Set("Content-Type", constants.MimeTypeHTML)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (h *Handler) StartDownload(w http.ResponseWriter, r *http.Request) {
	var req dto.DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	job, err := h.JobService.Submit(r.Context(), req.URL, req.Platform)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMissingFields), errors.Is(err, app.ErrInvalidPlatform):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.Logger.Error("Failed to start download", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to start download")
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.DownloadResponse{DownloadID: job.ID})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "download_id")

	job, err := h.JobService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "Download not found")
			return
		}
		h.Logger.Error("Failed to get job", "job_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get download status")
		return
	}

	writeJSON(w, http.StatusOK, dto.NewJobResponse(job))
}

func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	platform, ok := domain.ParsePlatform(chi.URLParam(r, "platform"))
	dir, known := h.Dirs[platform]
	if !ok || !known {
		writeError(w, http.StatusNotFound, "Invalid platform")
		return
	}

	filename := chi.URLParam(r, "filename")
	// chi routes on the raw path when it carries escapes such as %2F
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(filename)
		if err != nil {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		filename = unescaped
	}

	path, err := storage.ResolveArtifact(dir, filename)
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	http.ServeContent(w, r, filename, info.ModTime(), f)
}
