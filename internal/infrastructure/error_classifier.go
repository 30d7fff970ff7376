package infrastructure

import (
	"strings"

	"github.com/yourusername/sstube-go/internal/domain"
)

type failureRule struct {
	markers []string
	kind    domain.FailureKind
	hint    string
}

// Checked in order; the first matching rule wins.
var failureRules = []failureRule{
	{
		markers: []string{"Failed to decrypt with DPAPI", "Sign in to confirm"},
		kind:    domain.FailureAuthentication,
		hint: "The site requires authentication. Export a fresh cookies.txt from a logged-in " +
			"browser session and pass it as the cookie file.",
	},
	{
		markers: []string{"HTTP Error 403"},
		kind:    domain.FailureForbidden,
		hint: "Access was denied (HTTP 403). The video may be age-restricted or region-locked, " +
			"or the download tool may need an update. Try again with a cookie file.",
	},
	{
		markers: []string{"Video unavailable"},
		kind:    domain.FailureUnavailable,
		hint:    "The video is unavailable. It may have been removed, made private or blocked in your region.",
	},
}

const unknownFailureHint = "The download tool reported an error. See the output for details."

// ClassifyFailure maps diagnostic output onto a failure kind and a human hint
func ClassifyFailure(output string) (domain.FailureKind, string) {
	for _, rule := range failureRules {
		for _, marker := range rule.markers {
			if strings.Contains(output, marker) {
				return rule.kind, rule.hint
			}
		}
	}
	return domain.FailureUnknown, unknownFailureHint
}

// NewDownloadError builds a classified DownloadError for a non-zero exit
func NewDownloadError(exitCode int, output string) *domain.DownloadError {
	kind, hint := ClassifyFailure(output)
	return &domain.DownloadError{
		ExitCode: exitCode,
		Output:   output,
		Kind:     kind,
		Hint:     hint,
	}
}
