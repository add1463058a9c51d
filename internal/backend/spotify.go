package backend

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/maxth/mediadl/internal/constants"
	"github.com/maxth/mediadl/internal/domain"
	"github.com/maxth/mediadl/internal/logger"
	"github.com/maxth/mediadl/internal/runner"
	"github.com/maxth/mediadl/internal/spotify"
	"github.com/maxth/mediadl/internal/storage"
	"github.com/maxth/mediadl/internal/tagging"
)

// ImageFetcher downloads cover art.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// SpotifyInvoker resolves track metadata, downloads the audio with spotdl,
// saves the album cover next to it and tags the audio file.
type SpotifyInvoker struct {
	profile  Profile
	brand    string
	format   string
	metadata spotify.Metadata
	images   ImageFetcher
	tagger   tagging.Tagger
	runner   runner.Runner
	logger   *logger.Logger
}

type SpotifyDeps struct {
	Metadata spotify.Metadata
	Images   ImageFetcher
	Tagger   tagging.Tagger
	Runner   runner.Runner
	Logger   *logger.Logger
}

func NewSpotifyInvoker(profile Profile, brand, format string, deps SpotifyDeps) *SpotifyInvoker {
	return &SpotifyInvoker{
		profile:  profile,
		brand:    brand,
		format:   format,
		metadata: deps.Metadata,
		images:   deps.Images,
		tagger:   deps.Tagger,
		runner:   deps.Runner,
		logger:   deps.Logger.WithComponent("spotify_invoker"),
	}
}

func (i *SpotifyInvoker) Run(ctx context.Context, job domain.Job, updates chan<- domain.Update) error {
	if !send(ctx, updates, domain.Phase("Fetching track info...")) {
		return ctx.Err()
	}

	track, err := i.metadata.Track(ctx, job.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch track info: %w", err)
	}

	data := &storage.NameTemplateData{Brand: i.brand, Artist: track.Artist, Title: track.Title}
	title, err := storage.BuildName(storage.ResolvedTitleTemplate, data)
	if err != nil {
		return err
	}
	if !send(ctx, updates, domain.Resolved(title, "Found: "+title)) {
		return ctx.Err()
	}

	if !send(ctx, updates, domain.Phase(i.profile.Phase)) {
		return ctx.Err()
	}
	output, err := storage.BuildOutputPath(i.profile.Dir, storage.SpotdlOutputTemplate, data)
	if err != nil {
		return err
	}
	args := make([]string, 0, len(i.profile.FormatArgs)+7)
	args = append(args, "-m", "spotdl", job.URL)
	args = append(args, i.profile.FormatArgs...)
	args = append(args, "--output", output, "--overwrite", "force")

	i.logger.Debug("Running spotdl", "job_id", job.ID, "tool", i.profile.Tool, "args", args)
	if err := i.runner.Run(ctx, i.profile.Tool, args...); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	if !send(ctx, updates, domain.Phase("Downloading album cover...")) {
		return ctx.Err()
	}
	if track.CoverURL == "" {
		return errors.New("track has no album cover")
	}
	cover, err := i.images.Fetch(ctx, track.CoverURL)
	if err != nil {
		return err
	}

	name, err := storage.BuildName(storage.ResolvedNameTemplate, data)
	if err != nil {
		return err
	}
	stem := storage.SafeStem(name)
	if err := storage.WriteFile(filepath.Join(i.profile.Dir, stem+constants.ExtJPG), cover); err != nil {
		return fmt.Errorf("failed to save album cover: %w", err)
	}

	audioPath := filepath.Join(i.profile.Dir, stem+"."+i.format)
	if storage.FileExists(audioPath) {
		tags := tagging.Tags{Artist: track.Artist, Title: track.Title, Album: track.Album}
		if err := i.tagger.TagFile(audioPath, tags, cover); err != nil {
			i.logger.Warn("Failed to tag audio file", "job_id", job.ID, "path", audioPath, "error", err)
		}
	}

	files := storage.FindExact(i.profile.Dir, stem, []string{i.format, constants.ExtJPG})
	send(ctx, updates, domain.Completed(i.profile.OutputPath(), files))
	return nil
}
