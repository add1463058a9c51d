package backend

import (
	"context"
	"fmt"

	"github.com/maxth/mediadl/internal/domain"
	"github.com/maxth/mediadl/internal/logger"
	"github.com/maxth/mediadl/internal/runner"
	"github.com/maxth/mediadl/internal/storage"
)

// Invoker performs one download. Progress is reported by sending updates;
// the returned error, if any, becomes the job's failure. An invoker that
// succeeds must have sent a Completed update last.
type Invoker interface {
	Run(ctx context.Context, job domain.Job, updates chan<- domain.Update) error
}

// ToolInvoker drives a single yt-dlp style tool according to a Profile.
type ToolInvoker struct {
	profile Profile
	brand   string
	runner  runner.Runner
	logger  *logger.Logger
}

func NewToolInvoker(profile Profile, brand string, r runner.Runner, log *logger.Logger) *ToolInvoker {
	return &ToolInvoker{
		profile: profile,
		brand:   brand,
		runner:  r,
		logger:  log.WithComponent("tool_invoker"),
	}
}

func (i *ToolInvoker) Run(ctx context.Context, job domain.Job, updates chan<- domain.Update) error {
	if !send(ctx, updates, domain.Phase(i.profile.Phase)) {
		return ctx.Err()
	}

	output, err := storage.BuildOutputPath(i.profile.Dir, storage.ToolOutputTemplate, &storage.NameTemplateData{Brand: i.brand})
	if err != nil {
		return err
	}

	args := make([]string, 0, len(i.profile.FormatArgs)+3)
	args = append(args, job.URL)
	args = append(args, i.profile.FormatArgs...)
	args = append(args, "-o", output)

	i.logger.Debug("Running tool", "job_id", job.ID, "tool", i.profile.Tool, "args", args)
	if err := i.runner.Run(ctx, i.profile.Tool, args...); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	files := storage.FindLatest(i.profile.Dir)
	send(ctx, updates, domain.Completed(i.profile.OutputPath(), files))
	return nil
}

// send delivers u unless ctx is cancelled first.
func send(ctx context.Context, updates chan<- domain.Update, u domain.Update) bool {
	select {
	case updates <- u:
		return true
	case <-ctx.Done():
		return false
	}
}
