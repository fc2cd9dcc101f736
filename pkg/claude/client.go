package claude

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/capitalize-ai/claude-web-client/pkg/logger"
	"github.com/capitalize-ai/claude-web-client/pkg/metrics"
)

const tracerName = "github.com/capitalize-ai/claude-web-client/pkg/claude"

// Client is a session bound to one credential. It is immutable after New
// and safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	orgID      string
	log        *logger.Logger
	tracer     trace.Tracer
}

// New builds the transport for credential and resolves the organization
// identifier. It never exits the process; an expired or invalid cookie is
// reported as an error with code CodeAuthentication.
func New(ctx context.Context, credential string, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	httpClient, err := buildHTTPClient(cfg, credential)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:        cfg,
		httpClient: httpClient,
		log:        cfg.Logger.Named("claude"),
		tracer:     otel.Tracer(tracerName),
	}

	orgID, err := c.resolveOrganization(ctx)
	if err != nil {
		return nil, err
	}
	c.orgID = orgID

	c.log.Debug("session ready", zap.String("organization_uuid", orgID))
	return c, nil
}

// OrganizationID returns the identifier resolved by New.
func (c *Client) OrganizationID() string {
	return c.orgID
}

// startOp opens a span for op and returns a function that records metrics
// and the span outcome.
func (c *Client) startOp(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := c.tracer.Start(ctx, "claude."+op, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attrs...)
	start := time.Now()

	return ctx, func(err error) {
		code := CodeOf(err)
		if err != nil {
			if code == "" {
				code = CodeNetwork
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, string(code))
		}
		metrics.RecordUpstream(op, string(code), time.Since(start).Seconds())
		span.End()
	}
}
