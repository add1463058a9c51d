package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxth/mediadl/internal/config"
	"github.com/maxth/mediadl/internal/domain"
	"github.com/maxth/mediadl/internal/logger"
	"github.com/maxth/mediadl/internal/spotify"
	"github.com/maxth/mediadl/internal/tagging"
)

// fakeRunner records calls and, unless err is set, writes the file the
// tool would have produced.
type fakeRunner struct {
	calls   [][]string
	err     error
	produce func(args []string) string
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	if r.err != nil {
		return r.err
	}
	if r.produce != nil {
		if path := r.produce(args); path != "" {
			return os.WriteFile(path, []byte("data"), 0644)
		}
	}
	return nil
}

func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func ytdlpOutput(args []string) string {
	out := argAfter(args, "-o")
	out = strings.ReplaceAll(out, "%(title)s", "Clip")
	return strings.ReplaceAll(out, "%(ext)s", "mp4")
}

func collect(updates chan domain.Update) []domain.Update {
	close(updates)
	var got []domain.Update
	for u := range updates {
		got = append(got, u)
	}
	return got
}

func testConfig(root string) *config.Config {
	return &config.Config{
		OutputRoot:    root,
		YtDlpBinary:   "yt-dlp",
		PythonBinary:  "python3",
		SpotifyFormat: "mp3",
		BrandPrefix:   "Maxth Downloader",
	}
}

func TestDefaultProfiles(t *testing.T) {
	profiles := DefaultProfiles(testConfig("project"))

	require.Len(t, profiles, len(domain.Platforms()))

	tests := []struct {
		platform domain.Platform
		dir      string
		phase    string
		args     []string
	}{
		{domain.PlatformSpotify, "project/spotify", "Downloading audio (320k MP3)...", []string{"--format", "mp3", "--bitrate", "320k"}},
		{domain.PlatformYouTubeAudio, "project/youtube_audio", "Downloading audio...", []string{"-f", "bestaudio[ext=m4a]/bestaudio[ext=mp3]/bestaudio"}},
		{domain.PlatformYouTubeVideo, "project/youtube_video", "Downloading video (720p max)...", []string{"-f", "best[height<=720]"}},
		{domain.PlatformTikTok, "project/tiktok", "Downloading video...", nil},
		{domain.PlatformTwitter, "project/twitter", "Downloading video...", nil},
		{domain.PlatformPinterest, "project/pinterest", "Downloading video...", nil},
		{domain.PlatformFacebook, "project/facebook", "Downloading Facebook video...", nil},
		{domain.PlatformInstagram, "project/instagram", "Downloading video...", nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			p := profiles[tt.platform]
			assert.Equal(t, tt.dir, p.Dir)
			assert.Equal(t, tt.dir+"/", p.OutputPath())
			assert.Equal(t, tt.phase, p.Phase)
			assert.Equal(t, tt.args, p.FormatArgs)
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	profiles := DefaultProfiles(testConfig("project"))

	err := ApplyOverrides(profiles, &config.ProfilesFile{Platforms: map[string]config.ProfileOverride{
		"youtube-video": {Phase: "Downloading video (1080p max)...", FormatArgs: []string{"-f", "best[height<=1080]"}},
		"tiktok":        {Tool: "/opt/yt-dlp"},
	}})
	require.NoError(t, err)

	assert.Equal(t, "Downloading video (1080p max)...", profiles[domain.PlatformYouTubeVideo].Phase)
	assert.Equal(t, []string{"-f", "best[height<=1080]"}, profiles[domain.PlatformYouTubeVideo].FormatArgs)
	assert.Equal(t, "/opt/yt-dlp", profiles[domain.PlatformTikTok].Tool)
	assert.Equal(t, "Downloading video...", profiles[domain.PlatformTikTok].Phase)

	err = ApplyOverrides(profiles, &config.ProfilesFile{Platforms: map[string]config.ProfileOverride{
		"myspace": {Phase: "x"},
	}})
	assert.Error(t, err)
}

func TestToolInvoker_Success(t *testing.T) {
	root := t.TempDir()
	profile := DefaultProfiles(testConfig(root))[domain.PlatformYouTubeVideo]
	require.NoError(t, os.MkdirAll(profile.Dir, 0755))

	r := &fakeRunner{produce: ytdlpOutput}
	inv := NewToolInvoker(profile, "Maxth Downloader", r, logger.Discard())

	updates := make(chan domain.Update, 8)
	err := inv.Run(context.Background(), domain.Job{ID: "1", URL: "https://youtu.be/x"}, updates)
	require.NoError(t, err)

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{
		"yt-dlp", "https://youtu.be/x", "-f", "best[height<=720]",
		"-o", filepath.Join(profile.Dir, "Maxth Downloader - %(title)s.%(ext)s"),
	}, r.calls[0])

	got := collect(updates)
	require.Len(t, got, 2)
	assert.Equal(t, domain.Phase("Downloading video (720p max)..."), got[0])
	assert.Equal(t, domain.JobStatusCompleted, got[1].Status)
	assert.Equal(t, profile.Dir+"/", got[1].OutputPath)
	assert.Equal(t, []string{"Maxth Downloader - Clip.mp4"}, got[1].Files)
}

func TestToolInvoker_NoFormatArgs(t *testing.T) {
	root := t.TempDir()
	profile := DefaultProfiles(testConfig(root))[domain.PlatformTikTok]
	require.NoError(t, os.MkdirAll(profile.Dir, 0755))

	r := &fakeRunner{}
	inv := NewToolInvoker(profile, "Brand", r, logger.Discard())

	updates := make(chan domain.Update, 8)
	require.NoError(t, inv.Run(context.Background(), domain.Job{URL: "https://tiktok.com/v"}, updates))

	assert.Equal(t, []string{"yt-dlp", "https://tiktok.com/v", "-o", filepath.Join(profile.Dir, "Brand - %(title)s.%(ext)s")}, r.calls[0])

	got := collect(updates)
	require.Len(t, got, 2)
	assert.Equal(t, []string{}, got[1].Files)
}

func TestToolInvoker_Failure(t *testing.T) {
	root := t.TempDir()
	profile := DefaultProfiles(testConfig(root))[domain.PlatformTwitter]

	toolErr := errors.New("ERROR: Unsupported URL")
	inv := NewToolInvoker(profile, "Brand", &fakeRunner{err: toolErr}, logger.Discard())

	updates := make(chan domain.Update, 8)
	err := inv.Run(context.Background(), domain.Job{URL: "https://x.com/y"}, updates)
	require.ErrorIs(t, err, toolErr)

	got := collect(updates)
	require.Len(t, got, 1, "a failed invoker must not report completion")
	assert.Equal(t, domain.Phase("Downloading video..."), got[0])
}

type fakeMetadata struct {
	info *spotify.TrackInfo
	err  error
}

func (m *fakeMetadata) Track(ctx context.Context, ref string) (*spotify.TrackInfo, error) {
	return m.info, m.err
}

type fakeImages struct {
	data []byte
	err  error
}

func (f *fakeImages) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.data, f.err
}

type fakeTagger struct {
	paths []string
	tags  []tagging.Tags
	err   error
}

func (f *fakeTagger) TagFile(path string, tags tagging.Tags, cover []byte) error {
	f.paths = append(f.paths, path)
	f.tags = append(f.tags, tags)
	return f.err
}

func spotdlOutput(args []string) string {
	out := argAfter(args, "--output")
	// spotdl strips separators from names itself
	out = strings.ReplaceAll(out, "{artist}", "AC_DC")
	out = strings.ReplaceAll(out, "{title}", "Back In Black")
	return strings.ReplaceAll(out, "{output-ext}", "mp3")
}

func newSpotifyTest(t *testing.T) (*SpotifyInvoker, *fakeRunner, *fakeTagger, Profile) {
	t.Helper()
	root := t.TempDir()
	profile := DefaultProfiles(testConfig(root))[domain.PlatformSpotify]
	require.NoError(t, os.MkdirAll(profile.Dir, 0755))

	r := &fakeRunner{}
	tagger := &fakeTagger{}
	inv := NewSpotifyInvoker(profile, "Maxth Downloader", "mp3", SpotifyDeps{
		Metadata: &fakeMetadata{info: &spotify.TrackInfo{Artist: "AC/DC", Title: "Back In Black", Album: "Back In Black", CoverURL: "http://img/cover.jpg"}},
		Images:   &fakeImages{data: []byte("jpeg")},
		Tagger:   tagger,
		Runner:   r,
		Logger:   logger.Discard(),
	})
	return inv, r, tagger, profile
}

func TestSpotifyInvoker_Success(t *testing.T) {
	inv, r, tagger, profile := newSpotifyTest(t)
	r.produce = spotdlOutput

	updates := make(chan domain.Update, 8)
	url := "https://open.spotify.com/track/abc"
	require.NoError(t, inv.Run(context.Background(), domain.Job{ID: "1", URL: url}, updates))

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{
		"python3", "-m", "spotdl", url, "--format", "mp3", "--bitrate", "320k",
		"--output", filepath.Join(profile.Dir, "Maxth Downloader - {artist} - {title}.{output-ext}"),
		"--overwrite", "force",
	}, r.calls[0])

	got := collect(updates)
	require.Len(t, got, 5)
	assert.Equal(t, domain.Phase("Fetching track info..."), got[0])
	assert.Equal(t, domain.Resolved("AC/DC - Back In Black", "Found: AC/DC - Back In Black"), got[1])
	assert.Equal(t, domain.Phase("Downloading audio (320k MP3)..."), got[2])
	assert.Equal(t, domain.Phase("Downloading album cover..."), got[3])

	done := got[4]
	assert.Equal(t, domain.JobStatusCompleted, done.Status)
	assert.Equal(t, profile.Dir+"/", done.OutputPath)
	assert.Equal(t, []string{
		"Maxth Downloader - AC_DC - Back In Black.mp3",
		"Maxth Downloader - AC_DC - Back In Black.jpg",
	}, done.Files)

	cover, err := os.ReadFile(filepath.Join(profile.Dir, "Maxth Downloader - AC_DC - Back In Black.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(cover))

	require.Len(t, tagger.paths, 1)
	assert.Equal(t, filepath.Join(profile.Dir, "Maxth Downloader - AC_DC - Back In Black.mp3"), tagger.paths[0])
	assert.Equal(t, tagging.Tags{Artist: "AC/DC", Title: "Back In Black", Album: "Back In Black"}, tagger.tags[0])
}

func TestSpotifyInvoker_TaggingFailureIsNotFatal(t *testing.T) {
	inv, r, tagger, _ := newSpotifyTest(t)
	r.produce = spotdlOutput
	tagger.err = errors.New("corrupt file")

	updates := make(chan domain.Update, 8)
	require.NoError(t, inv.Run(context.Background(), domain.Job{URL: "https://open.spotify.com/track/abc"}, updates))

	got := collect(updates)
	assert.Equal(t, domain.JobStatusCompleted, got[len(got)-1].Status)
	assert.Len(t, got[len(got)-1].Files, 2)
}

func TestSpotifyInvoker_AudioMissingStillReportsCover(t *testing.T) {
	inv, _, tagger, _ := newSpotifyTest(t)

	updates := make(chan domain.Update, 8)
	require.NoError(t, inv.Run(context.Background(), domain.Job{URL: "https://open.spotify.com/track/abc"}, updates))

	got := collect(updates)
	assert.Equal(t, []string{"Maxth Downloader - AC_DC - Back In Black.jpg"}, got[len(got)-1].Files)
	assert.Empty(t, tagger.paths)
}

func TestSpotifyInvoker_MetadataFailure(t *testing.T) {
	inv, r, _, _ := newSpotifyTest(t)
	inv.metadata = &fakeMetadata{err: spotify.ErrTrackNotFound}

	updates := make(chan domain.Update, 8)
	err := inv.Run(context.Background(), domain.Job{URL: "https://open.spotify.com/track/abc"}, updates)
	require.ErrorIs(t, err, spotify.ErrTrackNotFound)
	assert.Empty(t, r.calls)

	got := collect(updates)
	assert.Equal(t, []domain.Update{domain.Phase("Fetching track info...")}, got)
}

func TestSpotifyInvoker_CoverFailure(t *testing.T) {
	inv, r, _, _ := newSpotifyTest(t)
	r.produce = spotdlOutput
	inv.images = &fakeImages{err: errors.New("cover download failed: status 404")}

	updates := make(chan domain.Update, 8)
	err := inv.Run(context.Background(), domain.Job{URL: "https://open.spotify.com/track/abc"}, updates)
	require.Error(t, err)

	got := collect(updates)
	assert.NotEqual(t, domain.JobStatusCompleted, got[len(got)-1].Status)
}

func TestNewInvokers(t *testing.T) {
	profiles := DefaultProfiles(testConfig(t.TempDir()))
	invokers, err := NewInvokers(profiles, "Brand", "mp3", &fakeRunner{}, SpotifyDeps{
		Metadata: &fakeMetadata{},
		Images:   &fakeImages{},
		Tagger:   &fakeTagger{},
	}, logger.Discard())
	require.NoError(t, err)

	require.Len(t, invokers, len(domain.Platforms()))
	assert.IsType(t, &SpotifyInvoker{}, invokers[domain.PlatformSpotify])
	assert.IsType(t, &ToolInvoker{}, invokers[domain.PlatformInstagram])

	delete(profiles, domain.PlatformFacebook)
	_, err = NewInvokers(profiles, "Brand", "mp3", &fakeRunner{}, SpotifyDeps{}, logger.Discard())
	assert.Error(t, err)
}
