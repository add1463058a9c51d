// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort             = "5000"
	DefaultHost             = "0.0.0.0"
	DefaultOutputRoot       = "project"
	DefaultIndexPath        = "index.html"
	DefaultDBPath           = "mediadl.db"
	DefaultJobStore         = "memory"
	DefaultBrandPrefix      = "Maxth Downloader"
	DefaultYtDlpBinary      = "yt-dlp"
	DefaultPythonBinary     = "python3"
	DefaultSpotifyFormat    = "mp3"
	DefaultSpotifyBitrate   = "320k"
	DefaultSpotifyAPIURL    = "https://api.spotify.com/v1"
	DefaultSpotifyAuthURL   = "https://accounts.spotify.com/api/token"
	DefaultMetadataCacheTTL = 12 * time.Hour
	DefaultJanitorInterval  = 10 * time.Minute
	DefaultShutdownTimeout  = 5 * time.Second
	MetadataHTTPTimeout     = 10 * time.Second
	ImageHTTPTimeout        = 15 * time.Second
	MetadataMinInterval     = 100 * time.Millisecond
)

// Job store backends
const (
	JobStoreMemory = "memory"
	JobStoreSQLite = "sqlite"
)

// File Extensions
const (
	ExtFLAC = ".flac"
	ExtMP3  = ".mp3"
	ExtJPG  = ".jpg"
)

// MIME Types
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypeJSON = "application/json"
	MimeTypeHTML = "text/html; charset=utf-8"
)

// File Permissions
const (
	DirPermissions  = 0755
	FilePermissions = 0644
)

// Characters to sanitize from filesystem paths
const InvalidPathChars = "<>:\"/\\|?*"

// Error tail kept from a failing subprocess' stderr
const MaxStderrTail = 2048
