package koji

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/rpc"
	"net/url"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/kolo/xmlrpc"

	"github.com/minios-linux/mmdl10n/retry"
)

// Client talks XML-RPC to a koji hub. It is safe for sequential use only.
type Client struct {
	url       string
	transport http.RoundTripper
	retry     retry.Config
	logger    *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTransport sets the HTTP transport used for every call.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// WithRetry overrides the retry policy.
func WithRetry(cfg retry.Config) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithLogger sets the logger used to report retries.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a client for the hub at hubURL.
func NewClient(hubURL string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(hubURL); err != nil {
		return nil, fmt.Errorf("invalid koji url %q: %w", hubURL, err)
	}
	c := &Client{
		url:    hubURL,
		retry:  retry.DefaultConfig(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// call performs one method call with retries. A new connection is used for
// every attempt since net/rpc shuts a client down after a read failure.
func (c *Client) call(ctx context.Context, what, method string, args []interface{}) (interface{}, error) {
	cfg := c.retry
	cfg.OnRetry = func(attempt int, err error) {
		c.logger.Debug("Connection lost, retrying", "call", what, "attempt", attempt, "err", err)
	}

	reply, err := retry.Do(ctx, cfg, isTransient, func(ctx context.Context) (interface{}, error) {
		rpcClient, err := xmlrpc.NewClient(c.url, c.transport)
		if err != nil {
			return nil, err
		}
		defer rpcClient.Close()

		var reply interface{}
		call := rpcClient.Go(method, args, &reply, make(chan *rpc.Call, 1))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-call.Done:
			return reply, call.Error
		}
	})
	if err != nil {
		if errors.Is(err, retry.ErrExhausted) {
			return nil, fmt.Errorf("%s: %w: %w", what, ErrUnavailable, err)
		}
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return reply, nil
}

// isTransient reports whether err looks like a dropped connection rather
// than an answer from the hub.
func isTransient(err error) bool {
	// Faults and bad statuses come back as server errors: the hub answered.
	var serverErr rpc.ServerError
	if errors.As(err, &serverErr) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, rpc.ErrShutdown) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// ListTagged returns every build in tag, not only the latest.
func (c *Client) ListTagged(ctx context.Context, tag string) ([]Build, error) {
	reply, err := c.call(ctx, "listing tag "+tag, "listTagged", []interface{}{tag})
	if err != nil {
		return nil, err
	}
	items, ok := reply.([]interface{})
	if !ok {
		return nil, fmt.Errorf("listTagged %s: unexpected reply %T", tag, reply)
	}

	builds := make([]Build, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("listTagged %s: unexpected entry %T", tag, item)
		}
		id := asInt(m["build_id"])
		if id == 0 {
			id = asInt(m["id"])
		}
		builds = append(builds, Build{
			ID:      id,
			Name:    asString(m["name"]),
			Stream:  asString(m["version"]),
			Release: asString(m["release"]),
			NVR:     asString(m["nvr"]),
		})
	}
	return builds, nil
}

// GetBuild fetches a build and its module metadata.
func (c *Client) GetBuild(ctx context.Context, id int) (*BuildInfo, error) {
	reply, err := c.call(ctx, fmt.Sprintf("fetching build %d", id), "getBuild", []interface{}{id})
	if err != nil {
		return nil, err
	}
	m, ok := reply.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("getBuild %d: unexpected reply %T", id, reply)
	}

	info := &BuildInfo{
		ID:          asInt(m["id"]),
		NVR:         asString(m["nvr"]),
		PackageName: asString(m["package_name"]),
	}
	module := dig(m, "extra", "typeinfo", "module")
	info.ModuleName = asString(module["name"])
	info.ModuleStream = asString(module["stream"])
	info.ModulemdStr = asString(module["modulemd_str"])
	return info, nil
}

// GetBuildTargets looks up build targets by name.
func (c *Client) GetBuildTargets(ctx context.Context, name string) ([]Target, error) {
	reply, err := c.call(ctx, "looking up target "+name, "getBuildTargets", []interface{}{name})
	if err != nil {
		return nil, err
	}
	items, ok := reply.([]interface{})
	if !ok {
		return nil, fmt.Errorf("getBuildTargets %s: unexpected reply %T", name, reply)
	}

	targets := make([]Target, 0, len(items))
	for _, item := range items {
		m, _ := item.(map[string]interface{})
		targets = append(targets, Target{
			Name:         asString(m["name"]),
			BuildTagName: asString(m["build_tag_name"]),
			DestTagName:  asString(m["dest_tag_name"]),
		})
	}
	return targets, nil
}

func dig(m map[string]interface{}, keys ...string) map[string]interface{} {
	for _, k := range keys {
		next, ok := m[k].(map[string]interface{})
		if !ok {
			return nil
		}
		m = next
	}
	return m
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
