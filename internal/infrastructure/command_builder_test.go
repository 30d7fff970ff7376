package infrastructure

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sstube-go/internal/domain"
)

const testURL = "https://www.youtube.com/watch?v=test"

func TestBuildVideoCommand_BestQuality(t *testing.T) {
	builder := NewCommandBuilder("/opt/bin/ffmpeg")

	args := builder.BuildVideoCommand(testURL, "/fake/path", domain.BestQuality)

	expected := []string{
		"--ffmpeg-location", "/opt/bin/ffmpeg",
		"--no-playlist",
		"--output", filepath.Join("/fake/path", "%(title)s.%(ext)s"),
		"--format", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/mp4",
		"--merge-output-format", "mp4",
		testURL,
	}
	assert.Equal(t, expected, args)
	assert.NotContains(t, strings.Join(args, " "), "height<=")
}

func TestBuildVideoCommand_HeightLimit(t *testing.T) {
	builder := NewCommandBuilder("/opt/bin/ffmpeg")

	args := builder.BuildVideoCommand(testURL, "/fake/path", 1080)

	expected := []string{
		"--ffmpeg-location", "/opt/bin/ffmpeg",
		"--no-playlist",
		"--output", filepath.Join("/fake/path", "%(title)s.%(ext)s"),
		"--format", "bestvideo[height<=1080]+bestaudio/merge",
		"--merge-output-format", "mp4",
		testURL,
	}
	assert.Equal(t, expected, args)
}

func TestBuildAudioCommand(t *testing.T) {
	builder := NewCommandBuilder("/opt/bin/ffmpeg")

	args := builder.BuildAudioCommand(testURL, "/fake/path", 192)

	expected := []string{
		"--ffmpeg-location", "/opt/bin/ffmpeg",
		"--no-playlist",
		"--output", filepath.Join("/fake/path", "%(title)s.%(ext)s"),
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "192",
		testURL,
	}
	assert.Equal(t, expected, args)

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "--audio-quality 192")
	assert.Contains(t, joined, "--extract-audio")
}

func TestBuildTaskCommand_DispatchesOnMode(t *testing.T) {
	builder := NewCommandBuilder("ffmpeg")

	video, err := domain.NewDownloadTask(testURL, "", domain.TaskOptions{DestinationDir: "/d", VideoHeight: 720})
	require.NoError(t, err)
	assert.Contains(t, builder.BuildTaskCommand(video), "bestvideo[height<=720]+bestaudio/merge")

	audio, err := domain.NewDownloadTask(testURL, "", domain.TaskOptions{
		DestinationDir: "/d",
		Mode:           domain.Mode{WantsAudioOnly: true, Collection: domain.CollectionPlaylist},
	})
	require.NoError(t, err)
	args := builder.BuildTaskCommand(audio)
	assert.Contains(t, args, "--extract-audio")
	assert.Contains(t, strings.Join(args, " "), "--audio-quality 320")
}

func TestBuildTaskCommand_WithCredentials(t *testing.T) {
	builder := NewCommandBuilder("ffmpeg")

	task, err := domain.NewDownloadTask(testURL, "", domain.TaskOptions{
		DestinationDir:  "/d",
		CredentialsPath: "/home/me/cookies.txt",
	})
	require.NoError(t, err)

	args := builder.BuildTaskCommand(task)

	require.GreaterOrEqual(t, len(args), 3)
	assert.Equal(t, testURL, args[len(args)-1], "URL stays last")
	assert.Equal(t, "--cookies", args[len(args)-3])
	assert.Equal(t, "/home/me/cookies.txt", args[len(args)-2])
}

func TestWithCredentials(t *testing.T) {
	args := []string{"--quiet", testURL}

	assert.Equal(t, args, WithCredentials(args, ""))
	assert.Equal(t, []string{"--quiet", "--cookies", "c.txt", testURL}, WithCredentials(args, "c.txt"))
	assert.Equal(t, []string{"--quiet", testURL}, args, "input is not modified")
}

func TestBuildInfoAndEnumerateCommands(t *testing.T) {
	builder := NewCommandBuilder("ffmpeg")

	assert.Equal(t,
		[]string{"--quiet", "--dump-json", "--no-playlist", testURL},
		builder.BuildInfoCommand(testURL, ""))
	assert.Equal(t,
		[]string{"--quiet", "--flat-playlist", "--dump-json", "--cookies", "c.txt", testURL},
		builder.BuildEnumerateCommand(testURL, "c.txt"))
}
