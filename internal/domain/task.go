package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CollectionKind identifies where a task came from
type CollectionKind string

const (
	CollectionNone             CollectionKind = ""                   // Direct single-item request
	CollectionPlaylist         CollectionKind = "playlist"           // Playlist
	CollectionChannelRegular   CollectionKind = "channel_regular"    // Channel regular uploads
	CollectionChannelShortForm CollectionKind = "channel_short_form" // Channel shorts
)

// IsChannel reports whether the kind refers to a channel listing
func (k CollectionKind) IsChannel() bool {
	return k == CollectionChannelRegular || k == CollectionChannelShortForm
}

// BestQuality is the VideoHeight sentinel for "best available"
const BestQuality = 0

// DefaultAudioBitrateKbps is used when an audio task does not name a bitrate
const DefaultAudioBitrateKbps = 320

// Mode is the tagged download mode decided once at task construction
type Mode struct {
	WantsAudioOnly bool           `json:"wants_audio_only"`
	Collection     CollectionKind `json:"collection,omitempty"`
}

// String returns the canonical mode name
func (m Mode) String() string {
	switch m.Collection {
	case CollectionPlaylist:
		if m.WantsAudioOnly {
			return "playlist-audio"
		}
		return "playlist-video"
	case CollectionChannelRegular:
		if m.WantsAudioOnly {
			return "channel-videos-audio"
		}
		return "channel-videos"
	case CollectionChannelShortForm:
		if m.WantsAudioOnly {
			return "channel-shorts-audio"
		}
		return "channel-shorts"
	}
	if m.WantsAudioOnly {
		return "audio"
	}
	return "video"
}

var modeAliases = map[string]Mode{
	"video":                {},
	"single video":         {},
	"audio":                {WantsAudioOnly: true},
	"mp3":                  {WantsAudioOnly: true},
	"mp3 only":             {WantsAudioOnly: true},
	"playlist-video":       {Collection: CollectionPlaylist},
	"playlist video":       {Collection: CollectionPlaylist},
	"playlist-audio":       {WantsAudioOnly: true, Collection: CollectionPlaylist},
	"playlist mp3":         {WantsAudioOnly: true, Collection: CollectionPlaylist},
	"channel-videos":       {Collection: CollectionChannelRegular},
	"channel videos":       {Collection: CollectionChannelRegular},
	"channel-videos-audio": {WantsAudioOnly: true, Collection: CollectionChannelRegular},
	"channel videos mp3":   {WantsAudioOnly: true, Collection: CollectionChannelRegular},
	"channel-shorts":       {Collection: CollectionChannelShortForm},
	"channel shorts":       {Collection: CollectionChannelShortForm},
	"channel-shorts-audio": {WantsAudioOnly: true, Collection: CollectionChannelShortForm},
	"channel shorts mp3":   {WantsAudioOnly: true, Collection: CollectionChannelShortForm},
}

// ParseMode converts a user supplied mode name into a Mode.
// An empty name means a single video.
func ParseMode(name string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Mode{}, nil
	}
	mode, ok := modeAliases[key]
	if !ok {
		return Mode{}, NewValidationError("mode", fmt.Sprintf("unknown mode %q", name))
	}
	return mode, nil
}

// ParseVideoQuality converts quality presets such as "Best Available",
// "1080p" or "2160p 4K" into a maximum height. BestQuality means no limit.
func ParseVideoQuality(quality string) (int, error) {
	q := strings.ToLower(strings.TrimSpace(quality))
	if q == "" || q == "best" || q == "best available" {
		return BestQuality, nil
	}

	digits := q
	if idx := strings.IndexFunc(q, func(r rune) bool { return r < '0' || r > '9' }); idx >= 0 {
		digits = q[:idx]
	}
	height, err := strconv.Atoi(digits)
	if err != nil || height <= 0 {
		return 0, NewValidationError("video_quality", fmt.Sprintf("invalid video quality %q", quality))
	}
	return height, nil
}

// DownloadTask is one fully specified unit of work. Tasks are passed by value
// and never mutated after construction.
type DownloadTask struct {
	ID               string    `json:"id"`
	SourceURL        string    `json:"url"`
	DestinationDir   string    `json:"destination_dir"`
	Mode             Mode      `json:"mode"`
	VideoHeight      int       `json:"video_height,omitempty"`
	AudioBitrateKbps int       `json:"audio_bitrate_kbps,omitempty"`
	CredentialsPath  string    `json:"credentials_path,omitempty"`
	Title            string    `json:"title,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// TaskOptions carries the user intent shared by every task of a request
type TaskOptions struct {
	DestinationDir   string
	Mode             Mode
	VideoHeight      int
	AudioBitrateKbps int
	CredentialsPath  string
}

// NewDownloadTask builds a task for a single media URL
func NewDownloadTask(sourceURL, title string, opts TaskOptions) (DownloadTask, error) {
	if err := ValidateMediaURL(sourceURL); err != nil {
		return DownloadTask{}, err
	}
	if strings.TrimSpace(opts.DestinationDir) == "" {
		return DownloadTask{}, NewValidationError("destination_dir", "destination directory is required")
	}
	if opts.VideoHeight < 0 {
		return DownloadTask{}, NewValidationError("video_height", "video height cannot be negative")
	}

	bitrate := 0
	if opts.Mode.WantsAudioOnly {
		bitrate = opts.AudioBitrateKbps
		if bitrate == 0 {
			bitrate = DefaultAudioBitrateKbps
		}
		if bitrate < 0 {
			return DownloadTask{}, NewValidationError("audio_bitrate", "audio bitrate cannot be negative")
		}
	}

	height := opts.VideoHeight
	if opts.Mode.WantsAudioOnly {
		height = BestQuality
	}

	return DownloadTask{
		ID:               uuid.New().String(),
		SourceURL:        sourceURL,
		DestinationDir:   opts.DestinationDir,
		Mode:             opts.Mode,
		VideoHeight:      height,
		AudioBitrateKbps: bitrate,
		CredentialsPath:  opts.CredentialsPath,
		Title:            title,
		CreatedAt:        time.Now(),
	}, nil
}

// DisplayName returns the title hint or the URL
func (t DownloadTask) DisplayName() string {
	if t.Title != "" {
		return t.Title
	}
	return t.SourceURL
}

// MediaEntry is one member of an enumerated collection
type MediaEntry struct {
	Title       string `json:"title"`
	RawURL      string `json:"raw_url"`
	URL         string `json:"url"`
	IsShortForm bool   `json:"is_short_form"`
}

// ValidateMediaURL checks that a URL is an absolute http(s) URL
func ValidateMediaURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return NewValidationError("url", "URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return NewValidationError("url", fmt.Sprintf("malformed URL: %v", err))
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return NewValidationError("url", fmt.Sprintf("not an absolute http(s) URL: %s", raw))
	}
	return nil
}

// ValidateRequestURL checks that a URL fits the selected mode
func ValidateRequestURL(raw string, mode Mode) error {
	if err := ValidateMediaURL(raw); err != nil {
		return err
	}

	switch {
	case mode.Collection == CollectionPlaylist:
		if !strings.Contains(raw, "list=") {
			return NewValidationError("url", "the URL does not appear to be a playlist URL; playlist URLs contain a 'list=' parameter")
		}
	case mode.Collection.IsChannel():
		if !IsChannelURL(raw) {
			return NewValidationError("url", "the URL does not appear to be a channel URL; channel URLs contain '@' or '/channel/'")
		}
		if strings.Contains(raw, "?") {
			return NewValidationError("url", "use a clean channel URL without query parameters, e.g. https://www.youtube.com/@channelname")
		}
	default:
		if IsChannelURL(raw) && !strings.Contains(raw, "watch?") {
			return NewValidationError("url", "channel URLs need a channel mode")
		}
		if u, _ := url.Parse(raw); u != nil && strings.TrimSuffix(u.Path, "/") == "/playlist" {
			return NewValidationError("url", "playlist URLs need a playlist mode")
		}
	}
	return nil
}

// IsChannelURL reports whether a URL names a channel
func IsChannelURL(raw string) bool {
	return strings.Contains(raw, "youtube.com/@") || strings.Contains(raw, "/channel/")
}
