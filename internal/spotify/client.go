package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/maxth/mediadl/internal/constants"
	"github.com/maxth/mediadl/internal/httpclient"
)

var (
	ErrInvalidTrackURL = errors.New("invalid spotify track url")
	ErrNoCredentials   = errors.New("spotify credentials not configured")
	ErrTrackNotFound   = errors.New("track not found")
)

// TrackInfo is the subset of a Spotify track the downloader needs.
type TrackInfo struct {
	ID       string `json:"id"`
	Artist   string `json:"artist"`
	Title    string `json:"title"`
	Album    string `json:"album"`
	CoverURL string `json:"cover_url"`
}

// Metadata resolves a track reference (URL, URI or bare id).
type Metadata interface {
	Track(ctx context.Context, ref string) (*TrackInfo, error)
}

var _ Metadata = (*Client)(nil)
var _ Metadata = (*CachedClient)(nil)

type Client struct {
	http         *httpclient.Client
	apiURL       string
	authURL      string
	clientID     string
	clientSecret string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

type Config struct {
	APIURL       string
	AuthURL      string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = constants.DefaultSpotifyAPIURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = constants.DefaultSpotifyAuthURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: constants.MetadataHTTPTimeout}
	}
	return &Client{
		http:         httpclient.NewClient(hc, constants.MetadataMinInterval, 1),
		apiURL:       strings.TrimRight(cfg.APIURL, "/"),
		authURL:      cfg.AuthURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type trackResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}

// Track fetches track metadata. The first listed artist and the first album
// image are used.
func (c *Client) Track(ctx context.Context, ref string) (*TrackInfo, error) {
	id, err := ParseTrackID(ref)
	if err != nil {
		return nil, err
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/tracks/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", constants.MimeTypeJSON)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("spotify track request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrTrackNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify track request failed: status %d", resp.StatusCode)
	}

	var tr trackResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode track: %w", err)
	}
	if len(tr.Artists) == 0 {
		return nil, fmt.Errorf("track %s has no artists", id)
	}

	info := &TrackInfo{
		ID:     tr.ID,
		Artist: tr.Artists[0].Name,
		Title:  tr.Name,
		Album:  tr.Album.Name,
	}
	if info.ID == "" {
		info.ID = id
	}
	if len(tr.Album.Images) > 0 {
		info.CoverURL = tr.Album.Images[0].URL
	}
	return info, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return "", ErrNoCredentials
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("spotify token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("spotify token request failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("spotify returned an empty access token")
	}

	// refresh a minute early
	ttl := time.Duration(tok.ExpiresIn)*time.Second - time.Minute
	if ttl <= 0 {
		ttl = time.Duration(tok.ExpiresIn) * time.Second
	}
	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(ttl)
	return c.token, nil
}

// ParseTrackID extracts the track id from an open.spotify.com URL, a
// spotify:track: URI, or a bare id.
func ParseTrackID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrInvalidTrackURL
	}

	if rest, ok := strings.CutPrefix(ref, "spotify:track:"); ok {
		return validID(rest)
	}

	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidTrackURL, err)
		}
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i := 0; i < len(segments)-1; i++ {
			if segments[i] == "track" {
				return validID(segments[i+1])
			}
		}
		return "", fmt.Errorf("%w: %s", ErrInvalidTrackURL, ref)
	}

	return validID(ref)
}

func validID(id string) (string, error) {
	if id == "" {
		return "", ErrInvalidTrackURL
	}
	for _, r := range id {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return "", fmt.Errorf("%w: %s", ErrInvalidTrackURL, id)
		}
	}
	return id, nil
}
