package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/craftlist/craftlist/internal/database/types/enum"
	"github.com/craftlist/craftlist/internal/setup/config"
	"github.com/craftlist/craftlist/pkg/utils"
	"go.uber.org/zap"
)

// maxResponseBytes caps how much of a status API body is read; icons push
// normal responses well past typical JSON sizes.
const maxResponseBytes = 1 << 20

// ErrUnexpectedStatus is returned when a status API responds with a
// non-200 code.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// Client fetches live server state from the configured status APIs. The
// primary endpoint serves both client families; the fallback only knows
// Java and is consulted when the primary fails.
type Client struct {
	httpClient  *http.Client
	primaryURL  string
	fallbackURL string
	logger      *zap.Logger
}

// NewClient creates a status API client.
func NewClient(cfg *config.StatusAPI, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Millisecond,
		},
		primaryURL:  cfg.PrimaryURL,
		fallbackURL: cfg.FallbackURL,
		logger:      logger.Named("status_client"),
	}
}

// Check queries the status APIs for one address. A primary failure falls
// back to the secondary endpoint for Java servers; Bedrock has no fallback.
// When every endpoint fails the server is reported offline rather than
// surfacing an error, so one flaky upstream cannot stall a scan pass.
func (c *Client) Check(ctx context.Context, req Request) Result {
	result, err := c.checkPrimary(ctx, req)
	if err == nil {
		return result
	}

	c.logger.Debug("Primary status check failed",
		zap.String("host", req.Host),
		zap.Int("port", req.Port),
		zap.Error(err))

	if req.Family == enum.ClientFamilyBedrock || c.fallbackURL == "" {
		return Result{}
	}

	result, err = c.checkFallback(ctx, req)
	if err != nil {
		c.logger.Debug("Fallback status check failed",
			zap.String("host", req.Host),
			zap.Int("port", req.Port),
			zap.Error(err))

		return Result{}
	}

	return result
}

func (c *Client) checkPrimary(ctx context.Context, req Request) (Result, error) {
	familyPath := "java"
	if req.Family == enum.ClientFamilyBedrock {
		familyPath = "bedrock"
	}

	url := fmt.Sprintf("%s/%s/%s", c.primaryURL, familyPath, address(req))

	body, err := c.fetch(ctx, url)
	if err != nil {
		return Result{}, err
	}

	var parsed primaryResponse
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("error parsing primary response: %w", err)
	}

	return Result{
		Online:        parsed.Online,
		PlayersOnline: parsed.Players.Online,
		PlayersMax:    parsed.Players.Max,
		Version:       parsed.Version.NameClean,
		MOTD:          c.cleanMOTD(parsed.MOTD.Clean),
		Icon:          parsed.Icon,
	}, nil
}

func (c *Client) checkFallback(ctx context.Context, req Request) (Result, error) {
	url := fmt.Sprintf("%s/%s", c.fallbackURL, address(req))

	body, err := c.fetch(ctx, url)
	if err != nil {
		return Result{}, err
	}

	var parsed fallbackResponse
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("error parsing fallback response: %w", err)
	}

	return Result{
		Online:        parsed.Online,
		PlayersOnline: parsed.Players.Online,
		PlayersMax:    parsed.Players.Max,
		Version:       parsed.Version,
		MOTD:          c.cleanMOTD(parsed.MOTD.Clean),
		Icon:          parsed.Icon,
	}, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	return body, nil
}

// cleanMOTD strips formatting codes and normalizes Unicode in MOTD lines so
// listings render consistent text regardless of in-game styling. Entries
// carrying embedded newlines are split into separate lines first.
func (c *Client) cleanMOTD(lines []string) []string {
	// The normalizer is not safe for concurrent use, so each response
	// gets its own.
	normalizer := utils.NewTextNormalizer()

	lines = utils.SplitLines(lines)
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		if line = normalizer.Normalize(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return cleaned
}

func address(req Request) string {
	return net.JoinHostPort(req.Host, strconv.Itoa(req.Port))
}
