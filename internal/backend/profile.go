package backend

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/maxth/mediadl/internal/config"
	"github.com/maxth/mediadl/internal/constants"
	"github.com/maxth/mediadl/internal/domain"
)

// Profile is the per-platform download recipe. Spotify names its files from
// resolved metadata; every other platform takes the newest file in Dir.
type Profile struct {
	Platform   domain.Platform
	Tool       string
	Dir        string
	Phase      string
	FormatArgs []string
}

// OutputPath is the directory reported to clients, with a trailing slash.
func (p Profile) OutputPath() string {
	return strings.TrimSuffix(filepath.ToSlash(p.Dir), "/") + "/"
}

// DefaultProfiles returns the built-in profile of every platform.
func DefaultProfiles(cfg *config.Config) map[domain.Platform]Profile {
	dir := func(p domain.Platform) string {
		return filepath.Join(cfg.OutputRoot, p.Dir())
	}
	video := func(p domain.Platform, phase string) Profile {
		return Profile{
			Platform: p,
			Tool:     cfg.YtDlpBinary,
			Dir:      dir(p),
			Phase:    phase,
		}
	}

	format := strings.ToLower(cfg.SpotifyFormat)

	profiles := map[domain.Platform]Profile{
		domain.PlatformSpotify: {
			Platform:   domain.PlatformSpotify,
			Tool:       cfg.PythonBinary,
			Dir:        dir(domain.PlatformSpotify),
			Phase:      fmt.Sprintf("Downloading audio (%s %s)...", constants.DefaultSpotifyBitrate, strings.ToUpper(format)),
			FormatArgs: []string{"--format", format, "--bitrate", constants.DefaultSpotifyBitrate},
		},
		domain.PlatformYouTubeAudio: {
			Platform:   domain.PlatformYouTubeAudio,
			Tool:       cfg.YtDlpBinary,
			Dir:        dir(domain.PlatformYouTubeAudio),
			Phase:      "Downloading audio...",
			FormatArgs: []string{"-f", "bestaudio[ext=m4a]/bestaudio[ext=mp3]/bestaudio"},
		},
		domain.PlatformYouTubeVideo: {
			Platform:   domain.PlatformYouTubeVideo,
			Tool:       cfg.YtDlpBinary,
			Dir:        dir(domain.PlatformYouTubeVideo),
			Phase:      "Downloading video (720p max)...",
			FormatArgs: []string{"-f", "best[height<=720]"},
		},
		domain.PlatformTikTok:    video(domain.PlatformTikTok, "Downloading video..."),
		domain.PlatformTwitter:   video(domain.PlatformTwitter, "Downloading video..."),
		domain.PlatformPinterest: video(domain.PlatformPinterest, "Downloading video..."),
		domain.PlatformFacebook:  video(domain.PlatformFacebook, "Downloading Facebook video..."),
		domain.PlatformInstagram: video(domain.PlatformInstagram, "Downloading video..."),
	}
	return profiles
}

// ApplyOverrides merges YAML overrides into profiles. Unknown platform tags
// are rejected so a typo in the file is not silently ignored.
func ApplyOverrides(profiles map[domain.Platform]Profile, pf *config.ProfilesFile) error {
	if pf == nil {
		return nil
	}
	for tag, o := range pf.Platforms {
		p, ok := domain.ParsePlatform(tag)
		if !ok {
			return fmt.Errorf("profiles file: unknown platform %q", tag)
		}
		profile := profiles[p]
		if o.Tool != "" {
			profile.Tool = o.Tool
		}
		if o.Phase != "" {
			profile.Phase = o.Phase
		}
		if o.FormatArgs != nil {
			profile.FormatArgs = append([]string(nil), o.FormatArgs...)
		}
		profiles[p] = profile
	}
	return nil
}
