package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/temirov/patcher/internal/fsops"
	"github.com/temirov/patcher/internal/patcherrors"
)

const (
	// DefaultChunkSize is the streaming buffer used when writing the archive.
	DefaultChunkSize = 32 * 1024
	// DefaultWarningCookiePrefix names the cookie a host sets when it wants
	// the download confirmed before serving a large file.
	DefaultWarningCookiePrefix = "download_warning"
	// DefaultTimeout bounds a whole fetch, including the confirmation round trip.
	DefaultTimeout = 10 * time.Minute

	idQueryParameter      = "id"
	confirmQueryParameter = "confirm"
	filePermissions       = 0o644

	endpointParseErrorFormat   = "parse endpoint: %w"
	missingArtifactIDMessage   = "artifact id is empty"
	unexpectedStatusFormat     = "unexpected status %d"
	openDestinationErrorFormat = "open destination: %w"
	writeBodyErrorFormat       = "write body: %w"
	readBodyErrorFormat        = "read body: %w"
)

// Reference locates the archive on the remote host.
type Reference struct {
	Endpoint   string
	ArtifactID string
}

// Session carries the cookie state of one fetch. It must not be reused across
// fetches.
type Session struct {
	Client *http.Client
}

// NewSession builds a session with a fresh cookie jar.
func NewSession(timeout time.Duration, transport http.RoundTripper) (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Session{Client: &http.Client{Jar: jar, Timeout: timeout, Transport: transport}}, nil
}

// Fetcher downloads a remote archive to a local file.
type Fetcher struct {
	FS                  fsops.FS
	Logger              *zap.Logger
	WarningCookiePrefix string
	ChunkSize           int
	Timeout             time.Duration
	// Transport is optional; nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// Fetch downloads ref into destinationPath. When the first response carries a
// download warning cookie its value is sent back as the confirm parameter on a
// second request in the same session. No retry is attempted; a failed fetch
// may leave a partial file behind.
func (f Fetcher) Fetch(ctx context.Context, ref Reference, destinationPath string) error {
	logger := f.logger()

	if strings.TrimSpace(ref.ArtifactID) == "" {
		return patcherrors.NewFetchError(ref.Endpoint, destinationPath, errors.New(missingArtifactIDMessage))
	}

	session, sessionErr := NewSession(f.timeout(), f.Transport)
	if sessionErr != nil {
		return patcherrors.NewFetchError(ref.Endpoint, destinationPath, sessionErr)
	}

	firstURL, urlErr := buildURL(ref.Endpoint, ref.ArtifactID, "")
	if urlErr != nil {
		return patcherrors.NewFetchError(ref.Endpoint, destinationPath, urlErr)
	}

	response, requestErr := session.get(ctx, firstURL)
	if requestErr != nil {
		return patcherrors.NewFetchError(firstURL, destinationPath, requestErr)
	}

	if token, found := confirmToken(session, response, f.warningPrefix()); found {
		logger.Debug("download requires confirmation", zap.String("url", firstURL))
		drainAndClose(response.Body)

		confirmURL, confirmURLErr := buildURL(ref.Endpoint, ref.ArtifactID, token)
		if confirmURLErr != nil {
			return patcherrors.NewFetchError(ref.Endpoint, destinationPath, confirmURLErr)
		}
		response, requestErr = session.get(ctx, confirmURL)
		if requestErr != nil {
			return patcherrors.NewFetchError(confirmURL, destinationPath, requestErr)
		}
	}
	defer drainAndClose(response.Body)

	requestURL := response.Request.URL.String()
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return patcherrors.NewFetchError(requestURL, destinationPath, fmt.Errorf(unexpectedStatusFormat, response.StatusCode))
	}

	written, saveErr := f.save(response.Body, destinationPath)
	if saveErr != nil {
		return patcherrors.NewFetchError(requestURL, destinationPath, saveErr)
	}
	logger.Info("download complete",
		zap.String("destination", destinationPath),
		zap.Int64("bytes", written),
	)
	return nil
}

func (s *Session) get(ctx context.Context, rawURL string) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return s.Client.Do(request)
}

// confirmToken looks at the cookies set by the response first, then at the
// session jar for the final URL, which also holds cookies set during redirects.
func confirmToken(session *Session, response *http.Response, prefix string) (string, bool) {
	for _, cookie := range response.Cookies() {
		if strings.HasPrefix(cookie.Name, prefix) {
			return cookie.Value, true
		}
	}
	if session.Client.Jar == nil || response.Request == nil {
		return "", false
	}
	for _, cookie := range session.Client.Jar.Cookies(response.Request.URL) {
		if strings.HasPrefix(cookie.Name, prefix) {
			return cookie.Value, true
		}
	}
	return "", false
}

func buildURL(endpoint, artifactID, token string) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf(endpointParseErrorFormat, err)
	}
	query := parsed.Query()
	query.Set(idQueryParameter, artifactID)
	if token != "" {
		query.Set(confirmQueryParameter, token)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (f Fetcher) save(body io.Reader, destinationPath string) (int64, error) {
	destination, openErr := f.FS.OpenFile(destinationPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePermissions)
	if openErr != nil {
		return 0, fmt.Errorf(openDestinationErrorFormat, openErr)
	}

	buffer := make([]byte, f.chunkSize())
	var written int64
	for {
		read, readErr := body.Read(buffer)
		if read > 0 {
			if _, writeErr := destination.Write(buffer[:read]); writeErr != nil {
				_ = destination.Close()
				return written, fmt.Errorf(writeBodyErrorFormat, writeErr)
			}
			written += int64(read)
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			_ = destination.Close()
			return written, fmt.Errorf(readBodyErrorFormat, readErr)
		}
	}
	return written, destination.Close()
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

func (f Fetcher) warningPrefix() string {
	if f.WarningCookiePrefix == "" {
		return DefaultWarningCookiePrefix
	}
	return f.WarningCookiePrefix
}

func (f Fetcher) chunkSize() int {
	if f.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return f.ChunkSize
}

func (f Fetcher) timeout() time.Duration {
	if f.Timeout <= 0 {
		return DefaultTimeout
	}
	return f.Timeout
}

func (f Fetcher) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}
