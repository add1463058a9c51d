package backend

import (
	"fmt"
	"strings"

	"github.com/maxth/mediadl/internal/domain"
	"github.com/maxth/mediadl/internal/logger"
	"github.com/maxth/mediadl/internal/runner"
)

// NewInvokers builds one invoker per profile. The Spotify profile gets the
// metadata-aware invoker; every other platform runs its tool directly.
func NewInvokers(profiles map[domain.Platform]Profile, brand, spotifyFormat string, r runner.Runner, deps SpotifyDeps, log *logger.Logger) (map[domain.Platform]Invoker, error) {
	invokers := make(map[domain.Platform]Invoker, len(profiles))
	for _, p := range domain.Platforms() {
		profile, ok := profiles[p]
		if !ok {
			return nil, fmt.Errorf("no profile for platform %s", p)
		}
		if p == domain.PlatformSpotify {
			if deps.Runner == nil {
				deps.Runner = r
			}
			if deps.Logger == nil {
				deps.Logger = log
			}
			invokers[p] = NewSpotifyInvoker(profile, brand, strings.ToLower(spotifyFormat), deps)
			continue
		}
		invokers[p] = NewToolInvoker(profile, brand, r, log)
	}
	return invokers, nil
}
