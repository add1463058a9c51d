package domain

// Update is a discrete progress message sent by a running backend. The job
// record is only ever changed by applying updates.
type Update struct {
	Status     JobStatus
	Title      string
	Error      string
	OutputPath string
	Files      []string
}

// Phase reports a human-readable progress phase.
func Phase(text string) Update {
	return Update{Status: JobStatus(text)}
}

// Resolved records the canonical title together with a new phase.
func Resolved(title, phase string) Update {
	return Update{Status: JobStatus(phase), Title: title}
}

func Completed(outputPath string, files []string) Update {
	if files == nil {
		files = []string{}
	}
	return Update{Status: JobStatusCompleted, OutputPath: outputPath, Files: files}
}

func Failed(err error) Update {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Update{Status: JobStatusError, Error: msg}
}

// IsTerminal reports whether applying u finishes the job.
func (u Update) IsTerminal() bool {
	return u.Status.IsTerminal()
}
