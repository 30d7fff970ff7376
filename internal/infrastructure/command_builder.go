package infrastructure

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/yourusername/sstube-go/internal/domain"
)

const (
	outputTemplate    = "%(title)s.%(ext)s"
	defaultVideoFmt   = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/mp4"
	mergeOutputFormat = "mp4"
	audioFormat       = "bestaudio/best"
	audioCodec        = "mp3"
)

// CommandBuilder turns task intent into yt-dlp argument vectors.
// The returned argv never includes the binary itself.
type CommandBuilder struct {
	ffmpegLocation string
}

// NewCommandBuilder creates a builder that points yt-dlp at the given ffmpeg
func NewCommandBuilder(ffmpegLocation string) *CommandBuilder {
	return &CommandBuilder{ffmpegLocation: ffmpegLocation}
}

// BuildVideoCommand builds the argv for a merged mp4 download.
// A height of domain.BestQuality adds no height limit.
func (b *CommandBuilder) BuildVideoCommand(url, destinationDir string, height int) []string {
	format := defaultVideoFmt
	if height > domain.BestQuality {
		format = fmt.Sprintf("bestvideo[height<=%d]+bestaudio/merge", height)
	}

	args := b.commonArgs(destinationDir)
	args = append(args,
		"--format", format,
		"--merge-output-format", mergeOutputFormat,
		url,
	)
	return args
}

// BuildAudioCommand builds the argv for an mp3 extraction at the given bitrate
func (b *CommandBuilder) BuildAudioCommand(url, destinationDir string, bitrateKbps int) []string {
	args := b.commonArgs(destinationDir)
	args = append(args,
		"--format", audioFormat,
		"--extract-audio",
		"--audio-format", audioCodec,
		"--audio-quality", strconv.Itoa(bitrateKbps),
		url,
	)
	return args
}

// BuildTaskCommand dispatches on the task mode, then applies credentials
func (b *CommandBuilder) BuildTaskCommand(task domain.DownloadTask) []string {
	var args []string
	if task.Mode.WantsAudioOnly {
		args = b.BuildAudioCommand(task.SourceURL, task.DestinationDir, task.AudioBitrateKbps)
	} else {
		args = b.BuildVideoCommand(task.SourceURL, task.DestinationDir, task.VideoHeight)
	}
	return WithCredentials(args, task.CredentialsPath)
}

// BuildInfoCommand builds the metadata query used to resolve a title
func (b *CommandBuilder) BuildInfoCommand(url, credentialsPath string) []string {
	args := []string{"--quiet", "--dump-json", "--no-playlist", url}
	return WithCredentials(args, credentialsPath)
}

// BuildEnumerateCommand builds the flat listing query for a collection
func (b *CommandBuilder) BuildEnumerateCommand(url, credentialsPath string) []string {
	args := []string{"--quiet", "--flat-playlist", "--dump-json", url}
	return WithCredentials(args, credentialsPath)
}

func (b *CommandBuilder) commonArgs(destinationDir string) []string {
	return []string{
		"--ffmpeg-location", b.ffmpegLocation,
		"--no-playlist",
		"--output", filepath.Join(destinationDir, outputTemplate),
	}
}

// WithCredentials inserts "--cookies path" before the trailing URL.
// An empty path returns args unchanged.
func WithCredentials(args []string, credentialsPath string) []string {
	if credentialsPath == "" || len(args) == 0 {
		return args
	}

	last := len(args) - 1
	out := make([]string, 0, len(args)+2)
	out = append(out, args[:last]...)
	out = append(out, "--cookies", credentialsPath, args[last])
	return out
}
