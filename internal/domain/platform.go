package domain

import "sort"

// Platform identifies which backend handles a job.
type Platform string

const (
	PlatformSpotify      Platform = "spotify"
	PlatformYouTubeAudio Platform = "youtube-audio"
	PlatformYouTubeVideo Platform = "youtube-video"
	PlatformTikTok       Platform = "tiktok"
	PlatformTwitter      Platform = "twitter"
	PlatformPinterest    Platform = "pinterest"
	PlatformFacebook     Platform = "facebook"
	PlatformInstagram    Platform = "instagram"
)

// platformDirs maps each platform to its output directory, relative to the
// configured output root.
var platformDirs = map[Platform]string{
	PlatformSpotify:      "spotify",
	PlatformYouTubeAudio: "youtube_audio",
	PlatformYouTubeVideo: "youtube_video",
	PlatformTikTok:       "tiktok",
	PlatformTwitter:      "twitter",
	PlatformPinterest:    "pinterest",
	PlatformFacebook:     "facebook",
	PlatformInstagram:    "instagram",
}

// ParsePlatform returns the platform for a tag and whether it is known.
func ParsePlatform(s string) (Platform, bool) {
	p := Platform(s)
	_, ok := platformDirs[p]
	return p, ok
}

// Dir returns the directory name for the platform, or "" if unknown.
func (p Platform) Dir() string {
	return platformDirs[p]
}

func (p Platform) String() string {
	return string(p)
}

// Platforms returns all known platforms in a stable order.
func Platforms() []Platform {
	out := make([]Platform, 0, len(platformDirs))
	for p := range platformDirs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
