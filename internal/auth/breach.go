package auth

import (
	"bufio"
	"context"
	"crypto/sha1" //nolint:gosec // the range protocol is defined over SHA-1; not used for integrity
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Breach lookup constants.
const (
	// breachPrefixLength is the number of hex digits sent to the remote
	// service; the remaining suffix never leaves this process.
	breachPrefixLength = 5

	// defaultBreachTimeout bounds the remote lookup. A timeout is
	// treated like any other network failure (not breached).
	defaultBreachTimeout = 3 * time.Second

	// defaultBreachEndpoint is the public range API of the
	// Have I Been Pwned password corpus.
	defaultBreachEndpoint = "https://api.pwnedpasswords.com"
)

// BreachError reports that a password appears in a known breach corpus.
type BreachError struct {
	// Count is the number of times the password was observed in breaches.
	Count int
}

func (e *BreachError) Error() string {
	return fmt.Sprintf("password found in %d known breaches", e.Count)
}

// BreachChecker queries a k-anonymity password-breach range service.
//
// Only the first five hex digits of the SHA-1 of the password are sent;
// the service returns every known suffix sharing that prefix and the
// match happens locally.
//
// The checker is best-effort by policy: a network error, timeout, or
// non-2xx response logs a warning and reports "not breached". An
// unreachable third-party service must never block account creation —
// do not change this to fail-closed.
type BreachChecker struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewBreachChecker creates a checker against the given range endpoint.
// An empty endpoint selects the public service; a zero timeout selects
// the default.
func NewBreachChecker(endpoint string, timeout time.Duration, logger *slog.Logger) *BreachChecker {
	if endpoint == "" {
		endpoint = defaultBreachEndpoint
	}
	if timeout <= 0 {
		timeout = defaultBreachTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BreachChecker{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Check looks the plaintext up in the breach corpus. It returns a
// *BreachError when the password is known-breached with a count above
// zero, and nil otherwise — including when the service is unreachable.
func (c *BreachChecker) Check(ctx context.Context, plaintext string) error {
	sum := sha1.Sum([]byte(plaintext)) //nolint:gosec // range protocol digest, not integrity
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := digest[:breachPrefixLength], digest[breachPrefixLength:]

	body, err := c.fetchRange(ctx, prefix)
	if err != nil {
		// Fail-open: availability beats the breach guarantee here.
		c.logger.Warn("breach check unavailable, treating password as not breached", "error", err)
		return nil
	}
	defer body.Close() //nolint:errcheck // read-only response body

	count, err := scanRange(body, suffix)
	if err != nil {
		c.logger.Warn("breach check response unreadable, treating password as not breached", "error", err)
		return nil
	}

	if count > 0 {
		return &BreachError{Count: count}
	}
	return nil
}

// fetchRange issues the range request for a hash prefix. Single attempt,
// no retry.
func (c *BreachChecker) fetchRange(ctx context.Context, prefix string) (io.ReadCloser, error) {
	url := c.endpoint + "/range/" + prefix
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building range request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying range service: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close() //nolint:errcheck // error path cleanup
		return nil, fmt.Errorf("range service returned status %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// scanRange scans SUFFIX:COUNT lines for an exact, case-sensitive match
// of the local suffix and returns its count (0 when absent).
func scanRange(r io.Reader, suffix string) (int, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineSuffix, countStr, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if lineSuffix != suffix {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil {
			return 0, fmt.Errorf("parsing breach count %q: %w", countStr, err)
		}
		return count, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("reading range response: %w", err)
	}
	return 0, nil
}
