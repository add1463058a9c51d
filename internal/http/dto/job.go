package dto

import (
	"time"

	"github.com/maxth/mediadl/internal/domain"
)

type DownloadRequest struct {
	URL      string `json:"url"`
	Platform string `json:"platform"`
}

type DownloadResponse struct {
	DownloadID string `json:"download_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// JobResponse is the status document. Files is reported only once the job
// has completed, and then always, even when empty.
type JobResponse struct {
	ID         string    `json:"id"`
	Platform   string    `json:"platform"`
	URL        string    `json:"url"`
	Status     string    `json:"status"`
	CreatedAt  string    `json:"created_at"`
	UpdatedAt  string    `json:"updated_at"`
	Error      string    `json:"error,omitempty"`
	Title      string    `json:"title,omitempty"`
	OutputPath string    `json:"output_path,omitempty"`
	Files      *[]string `json:"files,omitempty"`
}

func NewJobResponse(j *domain.Job) JobResponse {
	resp := JobResponse{
		ID:         j.ID,
		Platform:   j.Platform.String(),
		URL:        j.URL,
		Status:     j.Status.String(),
		CreatedAt:  j.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  j.UpdatedAt.Format(time.RFC3339),
		Error:      j.Error,
		Title:      j.Title,
		OutputPath: j.OutputPath,
	}
	if j.Status == domain.JobStatusCompleted {
		files := append([]string{}, j.Files...)
		resp.Files = &files
	}
	return resp
}
