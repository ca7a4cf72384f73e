package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"golang.org/x/sync/errgroup"

	"github.com/mailpane/mailpane/internal/instrumentation"
	"github.com/mailpane/mailpane/internal/logging"
)

// maxDetailFetches bounds how many full messages a single list call
// fetches concurrently.
const maxDetailFetches = 20

// Sessions is the authentication surface the gateway depends on.
// *session.Manager satisfies it.
type Sessions interface {
	// IsSignedIn reports whether a non-expired session exists.
	IsSignedIn() bool

	// HTTPClient returns a client that injects the current access token.
	HTTPClient(ctx context.Context) *http.Client

	// Refresh silently renews the access token.
	Refresh(ctx context.Context) error
}

// Gateway wraps the Gmail Users service with session-aware error
// handling. All operations require a signed-in session.
type Gateway struct {
	sessions Sessions
	logger   *slog.Logger
	metrics  *instrumentation.Metrics

	mu  sync.Mutex
	svc *gmail.UsersService
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithLogger sets the logger used for operation logging.
func WithLogger(logger *slog.Logger) GatewayOption {
	return func(g *Gateway) { g.logger = logger }
}

// WithMetrics sets the metrics recorder. A nil recorder disables
// recording.
func WithMetrics(m *instrumentation.Metrics) GatewayOption {
	return func(g *Gateway) { g.metrics = m }
}

// New creates a Gateway bound to the given session source.
func New(sessions Sessions, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		sessions: sessions,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// service returns the Gmail Users service, building it on first use.
func (g *Gateway) service(ctx context.Context) (*gmail.UsersService, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.svc != nil {
		return g.svc, nil
	}
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(g.sessions.HTTPClient(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create mail service: %w", err)
	}
	g.svc = svc.Users
	return g.svc, nil
}

// run executes op's body with the shared guard, retry, and recording
// logic. An expired-credential failure triggers exactly one silent
// refresh followed by one retry.
func (g *Gateway) run(ctx context.Context, op string, fn func(svc *gmail.UsersService) error) error {
	if !g.sessions.IsSignedIn() {
		return ErrNotAuthenticated
	}

	ctx, span := instrumentation.StartGatewaySpan(ctx, op)
	defer span.End()

	start := time.Now()
	err := g.execute(ctx, fn)
	if isAuthError(err) {
		g.logger.Info("credentials rejected, refreshing session",
			logging.Operation(op))
		if refreshErr := g.sessions.Refresh(ctx); refreshErr != nil {
			g.metrics.RecordSessionRefresh(ctx, instrumentation.StatusError)
			g.recordOutcome(ctx, span, op, err, start)
			return err
		}
		g.metrics.RecordSessionRefresh(ctx, instrumentation.StatusSuccess)
		span.SetAttributes(attribute.Bool(instrumentation.SpanAttrRetried, true))
		err = g.execute(ctx, fn)
	}
	g.recordOutcome(ctx, span, op, err, start)
	return err
}

func (g *Gateway) execute(ctx context.Context, fn func(svc *gmail.UsersService) error) error {
	svc, err := g.service(ctx)
	if err != nil {
		return err
	}
	return fn(svc)
}

func (g *Gateway) recordOutcome(ctx context.Context, span trace.Span, op string, err error, start time.Time) {
	status := instrumentation.StatusFromError(err)
	g.metrics.RecordGatewayOperation(ctx, op, status, time.Since(start))
	if err != nil {
		instrumentation.SetSpanError(span, err)
		g.logger.Error("gateway operation failed",
			logging.Operation(op),
			logging.Err(err))
		return
	}
	instrumentation.SetSpanSuccess(span)
}

// ListMessages fetches up to maxResults messages in the folder, newest
// first. An empty match returns an empty slice and nil error.
func (g *Gateway) ListMessages(ctx context.Context, folder EmailType, maxResults int64) ([]Email, error) {
	emails, err := g.listByQuery(ctx, FolderQuery(folder), maxResults)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("listed messages",
		logging.Operation("listMessages"),
		logging.Folder(string(folder)),
		slog.Int("count", len(emails)))
	return emails, nil
}

// Search fetches up to maxResults messages matching a raw Gmail search
// query, newest first.
func (g *Gateway) Search(ctx context.Context, query string, maxResults int64) ([]Email, error) {
	return g.listByQuery(ctx, query, maxResults)
}

func (g *Gateway) listByQuery(ctx context.Context, query string, maxResults int64) ([]Email, error) {
	if maxResults <= 0 || maxResults > maxDetailFetches {
		maxResults = maxDetailFetches
	}

	var emails []Email
	err := g.run(ctx, "listMessages", func(svc *gmail.UsersService) error {
		res, err := svc.Messages.List("me").
			Q(query).
			MaxResults(maxResults).
			Context(ctx).Do()
		if err != nil {
			return &FetchError{Op: "listMessages", Err: err}
		}
		if len(res.Messages) == 0 {
			emails = []Email{}
			return nil
		}

		fetched := make([]Email, len(res.Messages))
		grp, grpCtx := errgroup.WithContext(ctx)
		for i, ref := range res.Messages {
			grp.Go(func() error {
				full, err := svc.Messages.Get("me", ref.Id).
					Format("full").
					Context(grpCtx).Do()
				if err != nil {
					return &FetchError{Op: "getMessage", Err: err}
				}
				fetched[i] = ParseMessage(full)
				return nil
			})
		}
		if err := grp.Wait(); err != nil {
			return err
		}

		sort.SliceStable(fetched, func(i, j int) bool {
			return fetched[i].Date.After(fetched[j].Date)
		})
		g.metrics.RecordMessagesFetched(ctx, len(fetched))
		emails = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return emails, nil
}

// GetMessage fetches a single message by id.
func (g *Gateway) GetMessage(ctx context.Context, id string) (Email, error) {
	var email Email
	err := g.run(ctx, "getMessage", func(svc *gmail.UsersService) error {
		full, err := svc.Messages.Get("me", id).Format("full").Context(ctx).Do()
		if err != nil {
			return &FetchError{Op: "getMessage", Err: err}
		}
		email = ParseMessage(full)
		return nil
	})
	if err != nil {
		return Email{}, err
	}
	return email, nil
}

// SendMessage sends a plain-text message, optionally with attachments.
func (g *Gateway) SendMessage(ctx context.Context, to, subject, body string, attachments []Attachment) error {
	if strings.TrimSpace(to) == "" {
		return &SendError{Err: fmt.Errorf("recipient is required")}
	}

	payload := BuildSendPayload(to, subject, body, attachments)
	return g.run(ctx, "sendMessage", func(svc *gmail.UsersService) error {
		_, err := svc.Messages.Send("me", &gmail.Message{
			Raw: EncodeWeb(payload),
		}).Context(ctx).Do()
		if err != nil {
			return &SendError{Err: err}
		}
		return nil
	})
}

// SetStarred adds or removes the starred marker on a message.
func (g *Gateway) SetStarred(ctx context.Context, id string, starred bool) error {
	req := &gmail.ModifyMessageRequest{}
	if starred {
		req.AddLabelIds = []string{"STARRED"}
	} else {
		req.RemoveLabelIds = []string{"STARRED"}
	}
	return g.run(ctx, "setStarred", func(svc *gmail.UsersService) error {
		_, err := svc.Messages.Modify("me", id, req).Context(ctx).Do()
		if err != nil {
			return &FetchError{Op: "setStarred", Err: err}
		}
		return nil
	})
}

// Trash moves a message to the bin.
func (g *Gateway) Trash(ctx context.Context, id string) error {
	return g.run(ctx, "trashMessage", func(svc *gmail.UsersService) error {
		_, err := svc.Messages.Trash("me", id).Context(ctx).Do()
		if err != nil {
			return &FetchError{Op: "trashMessage", Err: err}
		}
		return nil
	})
}

// DeletePermanently removes a message without passing through the bin.
func (g *Gateway) DeletePermanently(ctx context.Context, id string) error {
	return g.run(ctx, "deleteMessage", func(svc *gmail.UsersService) error {
		err := svc.Messages.Delete("me", id).Context(ctx).Do()
		if err != nil {
			return &FetchError{Op: "deleteMessage", Err: err}
		}
		return nil
	})
}
