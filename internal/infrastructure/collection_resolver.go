package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"os/exec"
	"strings"

	"github.com/yourusername/sstube-go/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultCollectionBase = "https://www.youtube.com"
	shortFormMarker       = "shorts"
)

// EnumeratedRecord is one line of yt-dlp --flat-playlist --dump-json output
type EnumeratedRecord struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	WebpageURL string `json:"webpage_url"`
}

// CollectionResolver lists the members of playlists and channels
type CollectionResolver struct {
	binary  string
	builder *CommandBuilder
	titles  *TitleCache
	logger  *zap.Logger
}

// NewCollectionResolver creates a resolver. titles may be nil.
func NewCollectionResolver(binary string, builder *CommandBuilder, titles *TitleCache, logger *zap.Logger) *CollectionResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollectionResolver{
		binary:  binary,
		builder: builder,
		titles:  titles,
		logger:  logger,
	}
}

// Enumerate runs a flat listing of the collection and returns the entries that
// match kind, in the order the tool listed them
func (r *CollectionResolver) Enumerate(ctx context.Context, collectionURL string, kind domain.CollectionKind, credentialsPath string) ([]domain.MediaEntry, error) {
	target := NormalizeCollectionURL(collectionURL, kind)
	args := r.builder.BuildEnumerateCommand(target, credentialsPath)

	r.logger.Info("Enumerating collection",
		zap.String("url", target),
		zap.String("kind", string(kind)),
		zap.String("command", ShellEscapeCommand(r.binary, args...)))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &domain.ExtractionError{URL: target, Reason: "enumeration interrupted", Err: ctxErr}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &domain.ExtractionError{
				URL:    target,
				Reason: strings.TrimSpace(stderr.String()),
				Err:    err,
			}
		}
		return nil, &domain.ExtractionError{URL: target, Reason: "failed to run " + r.binary, Err: err}
	}

	records := ParseEnumeration(stdout.Bytes())
	if len(records) == 0 {
		return nil, &domain.ExtractionError{URL: target, Reason: "no entries found"}
	}

	entries := FilterEntries(BuildEntries(records, target), kind)
	for _, entry := range entries {
		r.titles.Put(entry.URL, entry.Title)
	}

	r.logger.Info("Collection enumerated",
		zap.String("url", target),
		zap.Int("records", len(records)),
		zap.Int("entries", len(entries)))

	return entries, nil
}

// NormalizeCollectionURL appends /videos or /shorts to channel URLs.
// Trailing slashes are stripped and an existing suffix is matched case-insensitively.
// Other kinds are returned unchanged.
func NormalizeCollectionURL(collectionURL string, kind domain.CollectionKind) string {
	var suffix string
	switch kind {
	case domain.CollectionChannelRegular:
		suffix = "/videos"
	case domain.CollectionChannelShortForm:
		suffix = "/shorts"
	default:
		return collectionURL
	}

	trimmed := strings.TrimRight(collectionURL, "/")
	if strings.HasSuffix(strings.ToLower(trimmed), suffix) {
		return trimmed
	}
	return trimmed + suffix
}

// ParseEnumeration decodes one JSON record per line. Malformed lines are skipped.
func ParseEnumeration(output []byte) []EnumeratedRecord {
	var records []EnumeratedRecord

	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record EnumeratedRecord
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	return records
}

// BuildEntries resolves every record URL to an absolute one
func BuildEntries(records []EnumeratedRecord, collectionURL string) []domain.MediaEntry {
	entries := make([]domain.MediaEntry, 0, len(records))
	for _, record := range records {
		raw := record.URL
		if raw == "" {
			raw = record.WebpageURL
		}
		if raw == "" {
			continue
		}
		entries = append(entries, domain.MediaEntry{
			Title:       record.Title,
			RawURL:      raw,
			URL:         ResolveEntryURL(raw, record.WebpageURL, collectionURL),
			IsShortForm: IsShortFormURL(raw),
		})
	}
	return entries
}

// FilterEntries keeps short-form entries only for channel_short_form and
// drops them for every other kind
func FilterEntries(entries []domain.MediaEntry, kind domain.CollectionKind) []domain.MediaEntry {
	wantShort := kind == domain.CollectionChannelShortForm

	filtered := make([]domain.MediaEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsShortForm == wantShort {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// IsShortFormURL reports whether the URL path carries the short-form marker
func IsShortFormURL(raw string) bool {
	path := raw
	if u, err := url.Parse(raw); err == nil {
		path = u.Path
	}
	return strings.Contains(strings.ToLower(path), shortFormMarker)
}

// ResolveEntryURL makes raw absolute using the scheme and host of webpageURL,
// then of collectionURL, then the default site
func ResolveEntryURL(raw, webpageURL, collectionURL string) string {
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if ref.IsAbs() {
		return raw
	}

	for _, candidate := range []string{webpageURL, collectionURL, defaultCollectionBase} {
		base, err := url.Parse(candidate)
		if err != nil || base.Scheme == "" || base.Host == "" {
			continue
		}
		origin := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}
		return origin.ResolveReference(ref).String()
	}
	return raw
}
