package domain

import (
	"errors"
	"time"
)

// JobStatus is either a free-form progress phase or one of the terminal
// values below.
type JobStatus string

const (
	JobStatusStarting  JobStatus = "starting"
	JobStatusCompleted JobStatus = "completed"
	JobStatusError     JobStatus = "error"
)

// IsTerminal reports whether no further transitions may occur.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

func (s JobStatus) String() string {
	return string(s)
}

var ErrJobTerminal = errors.New("job already reached a terminal status")

// Job is the status record of one requested download.
type Job struct {
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
	ID         string      `json:"id" db:"id"`
	Platform   Platform    `json:"platform" db:"platform"`
	URL        string      `json:"url" db:"url"`
	Status     JobStatus   `json:"status" db:"status"`
	Error      string      `json:"error,omitempty" db:"error"`
	Title      string      `json:"title,omitempty" db:"title"`
	OutputPath string      `json:"output_path,omitempty" db:"output_path"`
	Files      StringSlice `json:"files,omitempty" db:"files"`
}

// Clone returns a copy that shares no mutable state with j.
func (j *Job) Clone() *Job {
	c := *j
	if j.Files != nil {
		c.Files = append(StringSlice{}, j.Files...)
	}
	return &c
}

// Apply folds an update into the record. Updates to a terminal job are
// rejected so status never moves back out of completed or error.
func (j *Job) Apply(u Update, now time.Time) error {
	if j.Status.IsTerminal() {
		return ErrJobTerminal
	}
	if u.Title != "" {
		j.Title = u.Title
	}
	switch u.Status {
	case "":
	case JobStatusCompleted:
		j.Status = JobStatusCompleted
		j.OutputPath = u.OutputPath
		j.Files = append(StringSlice{}, u.Files...)
		j.Error = ""
	case JobStatusError:
		j.Status = JobStatusError
		j.Error = u.Error
		if j.Error == "" {
			j.Error = "unknown error"
		}
		j.OutputPath = ""
		j.Files = nil
	default:
		j.Status = u.Status
	}
	j.UpdatedAt = now
	return nil
}
