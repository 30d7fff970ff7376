package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/yourusername/sstube-go/internal/domain"
	"go.uber.org/zap"
)

const (
	maxLineSize     = 1024 * 1024
	diagnosticLines = 40
)

// DownloadTranscript receives the raw tool output of each download
type DownloadTranscript interface {
	WriteDownloadHeader(taskID, commandLine string)
	WriteRawDownloadLog(line string)
	WriteDownloadComplete(taskID string, success bool, message string)
}

// ProcessSupervisorConfig configures a ProcessSupervisor
type ProcessSupervisorConfig struct {
	Binary      string
	WaitDelay   time.Duration
	InfoTimeout time.Duration
}

// ProcessSupervisor runs yt-dlp for one task and streams its output
type ProcessSupervisor struct {
	config     ProcessSupervisorConfig
	builder    *CommandBuilder
	titles     *TitleCache
	transcript DownloadTranscript
	logger     *zap.Logger
}

// NewProcessSupervisor creates a supervisor. titles and transcript may be nil.
func NewProcessSupervisor(config ProcessSupervisorConfig, builder *CommandBuilder, titles *TitleCache, transcript DownloadTranscript, logger *zap.Logger) *ProcessSupervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessSupervisor{
		config:     config,
		builder:    builder,
		titles:     titles,
		transcript: transcript,
		logger:     logger,
	}
}

// ResolveTitle returns the task title, asking the tool for metadata only when
// neither the task nor the cache knows it
func (s *ProcessSupervisor) ResolveTitle(ctx context.Context, task domain.DownloadTask) string {
	if task.Title != "" {
		return task.Title
	}
	if title, ok := s.titles.Get(task.SourceURL); ok {
		return title
	}

	if s.config.InfoTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.InfoTimeout)
		defer cancel()
	}

	args := s.builder.BuildInfoCommand(task.SourceURL, task.CredentialsPath)
	cmd := exec.CommandContext(ctx, s.config.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		s.logger.Warn("Failed to resolve title",
			zap.String("id", task.ID),
			zap.String("url", task.SourceURL),
			zap.String("stderr", strings.TrimSpace(stderr.String())),
			zap.Error(err))
		return domain.UnknownTitle
	}

	var info struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(firstLine(output)), &info); err != nil || info.Title == "" {
		return domain.UnknownTitle
	}

	s.titles.Put(task.SourceURL, info.Title)
	return info.Title
}

// Run starts the download, forwards progress and every output line, and waits
// for the tool to exit. Cancelling ctx kills the whole process group.
func (s *ProcessSupervisor) Run(ctx context.Context, task domain.DownloadTask, onProgress domain.ProgressFunc, onLog domain.LogFunc) error {
	if onProgress == nil {
		onProgress = func(int) {}
	}
	if onLog == nil {
		onLog = func(string) {}
	}

	args := s.builder.BuildTaskCommand(task)
	cmdLine := ShellEscapeCommand(s.config.Binary, args...)

	// Both streams share one pipe so that lines keep their emission order
	reader, writer, err := os.Pipe()
	if err != nil {
		return &domain.ProcessLaunchError{Binary: s.config.Binary, Err: fmt.Errorf("failed to create output pipe: %w", err)}
	}
	defer reader.Close()

	cmd := exec.CommandContext(ctx, s.config.Binary, args...)
	cmd.Stdout = writer
	cmd.Stderr = writer
	cmd.WaitDelay = s.config.WaitDelay
	setProcessGroup(cmd)

	s.logger.Info("Starting download",
		zap.String("id", task.ID),
		zap.String("url", task.SourceURL),
		zap.String("mode", task.Mode.String()),
		zap.String("command", cmdLine))

	if s.transcript != nil {
		s.transcript.WriteDownloadHeader(task.ID, cmdLine)
	}

	if err := cmd.Start(); err != nil {
		writer.Close()
		s.writeFooter(task.ID, false, fmt.Sprintf("failed to start: %v", err))
		return &domain.ProcessLaunchError{Binary: s.config.Binary, Err: err}
	}
	// Only the child holds the write end now; EOF arrives when it exits
	writer.Close()

	tail := newLineTail(diagnosticLines)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanLinesOrCarriageReturns)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")
		if line == "" {
			continue
		}
		if s.transcript != nil {
			s.transcript.WriteRawDownloadLog(line)
		}
		onLog(line)
		if percent, ok := ParseProgress(line); ok {
			onProgress(percent)
			continue
		}
		tail.add(line)
	}
	if err := scanner.Err(); err != nil {
		s.logger.Warn("Output stream ended with error", zap.String("id", task.ID), zap.Error(err))
		// The child blocks on a full pipe unless someone keeps reading
		if _, err := io.Copy(io.Discard, reader); err != nil {
			s.logger.Debug("Failed to drain output", zap.String("id", task.ID), zap.Error(err))
		}
	}

	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		s.writeFooter(task.ID, false, "cancelled")
		return &domain.CancellationError{TaskID: task.ID}
	}

	if waitErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		dlErr := NewDownloadError(exitCode, tail.String())
		s.writeFooter(task.ID, false, fmt.Sprintf("exit code %d (%s)", exitCode, dlErr.Kind))
		return dlErr
	}

	s.writeFooter(task.ID, true, "downloaded to "+task.DestinationDir)
	return nil
}

func (s *ProcessSupervisor) writeFooter(taskID string, success bool, message string) {
	if s.transcript != nil {
		s.transcript.WriteDownloadComplete(taskID, success, message)
	}
}

// scanLinesOrCarriageReturns splits on \n or \r so that progress updates
// rewritten in place still arrive one by one. A line longer than maxLineSize
// is cut into maxLineSize pieces.
func scanLinesOrCarriageReturns(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	if len(data) >= maxLineSize {
		return maxLineSize, data[:maxLineSize], nil
	}
	return 0, nil, nil
}

func firstLine(output []byte) []byte {
	if i := bytes.IndexByte(output, '\n'); i >= 0 {
		return output[:i]
	}
	return output
}

// lineTail keeps the last n lines
type lineTail struct {
	lines []string
	limit int
}

func newLineTail(limit int) *lineTail {
	return &lineTail{limit: limit}
}

func (t *lineTail) add(line string) {
	t.lines = append(t.lines, line)
	if len(t.lines) > t.limit {
		t.lines = t.lines[len(t.lines)-t.limit:]
	}
}

func (t *lineTail) String() string {
	return strings.Join(t.lines, "\n")
}
