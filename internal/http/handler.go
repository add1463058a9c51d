package httpapp

import (
	"github.com/go-chi/chi/v5"

	"github.com/maxth/mediadl/internal/app"
	"github.com/maxth/mediadl/internal/domain"
	"github.com/maxth/mediadl/internal/logger"
)

type Handler struct {
	JobService *app.JobService
	Dirs       map[domain.Platform]string
	IndexPath  string
	Logger     *logger.Logger
}

// NewHandler wires the HTTP surface. dirs maps each platform to the
// directory its artifacts are served from.
func NewHandler(js *app.JobService, dirs map[domain.Platform]string, indexPath string, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		JobService: js,
		Dirs:       dirs,
		IndexPath:  indexPath,
		Logger:     log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.IndexPage)
	r.Post("/download", h.StartDownload)
	r.Get("/status/{download_id}", h.GetStatus)
	r.Get("/download-file/{platform}/{filename}", h.DownloadFile)

	for _, pattern := range []string{"/", "/download", "/status/{download_id}", "/download-file/{platform}/{filename}"} {
		r.Options(pattern, Preflight)
	}
}
