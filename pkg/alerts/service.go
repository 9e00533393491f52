package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/notifkit/notifkit/pkg/async"
	"github.com/notifkit/notifkit/pkg/directory"
	"github.com/notifkit/notifkit/pkg/dispatch"
	"github.com/notifkit/notifkit/pkg/history"
	"github.com/notifkit/notifkit/pkg/logger"
	"github.com/notifkit/notifkit/pkg/notification"
	"github.com/notifkit/notifkit/pkg/sender"
)

// historyWriteTimeout bounds history writes happening off the request path.
const historyWriteTimeout = 5 * time.Second

// Service orchestrates notification sending: it screens requests against the
// user directory and preferences, rate limits per user, pushes accepted work
// through its own dispatch queue, and records terminal outcomes to history.
type Service struct {
	users     *directory.Cached
	sender    sender.Sender
	queue     *dispatch.Queue
	history   history.Storage
	limiter   *userLimiter
	logger    *slog.Logger
	batchSize int

	// inflight keeps the notification behind each queued identity until its
	// terminal outcome arrives, so the history record can carry the message
	// and kind the result alone does not.
	mu       sync.Mutex
	inflight map[string]notification.Notification

	unsubscribe func()
	closeOnce   sync.Once
}

// NewService creates an alert service resolving recipients through users and
// delivering through snd. The lookup is wrapped in an expiring cache unless it
// already is one. The service owns its dispatch queue and must be released
// with Close.
func NewService(users directory.Lookup, snd sender.Sender, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, ErrNilLookup
	}
	if snd == nil {
		return nil, ErrNilSender
	}

	options := &options{
		logger:    slog.Default(),
		batchSize: 10,
		rateBurst: 1,
	}
	for _, opt := range opts {
		opt(options)
	}

	cached, ok := users.(*directory.Cached)
	if !ok {
		var err error
		cached, err = directory.NewCached(users, options.cacheOpts...)
		if err != nil {
			return nil, err
		}
	}

	s := &Service{
		users:     cached,
		sender:    snd,
		history:   options.history,
		logger:    options.logger,
		batchSize: options.batchSize,
		inflight:  make(map[string]notification.Notification),
	}
	if options.rateLimit > 0 {
		s.limiter = newUserLimiter(options.rateLimit, options.rateBurst)
	}

	queueOpts := append([]dispatch.Option{dispatch.WithLogger(options.logger)}, options.queueOpts...)
	q, err := dispatch.New(s.deliver, queueOpts...)
	if err != nil {
		return nil, err
	}
	s.queue = q

	if s.history != nil {
		s.unsubscribe = q.AddListener(dispatch.ListenerFunc(s.recordOutcome))
	}

	return s, nil
}

// SendAlert screens and sends one notification to userID, blocking until a
// terminal outcome or ctx expiry. Policy refusals come back as
// StatusRejected with a reason, never as an error. The default kind is
// KindAlert; override with WithKind.
func (s *Service) SendAlert(ctx context.Context, userID, message string, opts ...SendOption) Outcome {
	send := &sendOptions{kind: notification.KindAlert}
	for _, opt := range opts {
		opt(send)
	}

	if userID == "" {
		return rejected("user ID is required")
	}
	if message == "" {
		return rejected("message is required")
	}

	user, err := s.users.FindByID(ctx, userID)
	switch {
	case errors.Is(err, directory.ErrUserNotFound):
		return rejected("user not found")
	case err != nil:
		return failed("", fmt.Sprintf("user lookup: %v", err))
	}
	if user.Preferences == nil {
		return rejected("no notification preferences")
	}
	if !user.Preferences.NotificationsEnabled {
		return rejected("notifications disabled")
	}
	if !sender.ValidEmail(user.Email) {
		return rejected("invalid email address")
	}
	if s.limiter != nil && !s.limiter.allow(userID) {
		return rejected("rate limit exceeded")
	}

	n, err := notification.New(userID, message, send.kind)
	if err != nil {
		return rejected(err.Error())
	}

	if s.history != nil {
		s.mu.Lock()
		s.inflight[n.ID] = n
		s.mu.Unlock()
	}

	res, err := s.queue.Submit(ctx, n)
	switch {
	case err == nil && res == nil:
		return queued(n.ID)
	case err == nil && res.Success:
		return delivered(n.ID)
	case err == nil:
		return failed(n.ID, res.Error)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// Accepted; delivery continues without us. The outcome stays
		// observable through Result, listeners, and history.
		return queued(n.ID)
	default:
		s.forget(n.ID)
		return failed(n.ID, err.Error())
	}
}

// SendBulkAlerts sends message to every user in userIDs, working the list in
// concurrent fixed-size batches. Outcomes are independent per user; one
// rejection or failure never affects the rest.
func (s *Service) SendBulkAlerts(ctx context.Context, userIDs []string, message string, opts ...SendOption) map[string]Outcome {
	outcomes := make(map[string]Outcome, len(userIDs))

	for batch := range slices.Chunk(userIDs, s.batchSize) {
		futures := make([]*async.Future[Outcome], len(batch))
		for i, userID := range batch {
			futures[i] = async.Go(ctx, func(ctx context.Context) (Outcome, error) {
				return s.SendAlert(ctx, userID, message, opts...), nil
			})
		}

		results, errs := async.WaitAll(futures...)
		for i, userID := range batch {
			if errs[i] != nil {
				outcomes[userID] = failed("", errs[i].Error())
				continue
			}
			outcomes[userID] = results[i]
		}
	}

	return outcomes
}

// SendCriticalAlert bypasses the queue, preference checks, and rate limiting
// for maximum-urgency delivery. The user is taken by value and is validated
// directly: a missing ID or an unusable email address fails the call without
// ever invoking the sender. The outcome is recorded to history when history
// is configured.
func (s *Service) SendCriticalAlert(ctx context.Context, user directory.User, message string) notification.Result {
	if user.ID == "" {
		return notification.Failed("", "User ID is required")
	}
	if user.Email == "" || !sender.ValidEmail(user.Email) {
		return notification.Failed("", "Invalid email address")
	}
	if message == "" {
		return notification.Failed("", "Message is required")
	}

	n, err := notification.New(user.ID, message, notification.KindCritical)
	if err != nil {
		return notification.Failed("", err.Error())
	}

	res := notification.Succeeded(n.ID)
	if err := s.sender.Send(ctx, sender.Message{
		To:      user.Email,
		Subject: subjectFor(n.Kind),
		Body:    n.Message,
		Tag:     string(n.Kind),
	}); err != nil {
		res = notification.Failed(n.ID, err.Error())
		s.logger.ErrorContext(ctx, "critical alert delivery failed",
			logger.NotificationID(n.ID),
			logger.UserID(user.ID),
			logger.Error(err))
	}

	if s.history != nil {
		if err := s.history.Create(ctx, history.FromResult(n, res)); err != nil {
			s.logger.ErrorContext(ctx, "failed to record critical alert history",
				logger.NotificationID(n.ID),
				logger.UserID(user.ID),
				logger.Error(err))
		}
	}

	return res
}

// Result returns the cached terminal result for a notification identity.
func (s *Service) Result(id string) (notification.Result, bool) {
	return s.queue.Result(id)
}

// ClearUserCache drops every cached directory entry, positive and negative.
func (s *Service) ClearUserCache() {
	s.users.Clear()
}

// QueueStatus is a point-in-time snapshot of the dispatch queue.
type QueueStatus struct {
	QueueSize int `json:"queue_size"`
}

// QueueStatus reports the current queue depth.
func (s *Service) QueueStatus() QueueStatus {
	return QueueStatus{QueueSize: s.queue.Len()}
}

// History returns the configured history storage, or nil when outcomes are
// not persisted.
func (s *Service) History() history.Storage {
	return s.history
}

// Close shuts down the dispatch queue. In-flight delivery finishes; pending
// items are dropped. Safe to call more than once.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		err = s.queue.Close()
		s.mu.Lock()
		clear(s.inflight)
		s.mu.Unlock()
	})
	return err
}

// deliver is the dispatch queue's delivery function. The recipient is resolved
// at delivery time, so a preference or address change between acceptance and
// drain is honored.
func (s *Service) deliver(ctx context.Context, n notification.Notification) error {
	user, err := s.users.FindByID(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient %s: %w", n.UserID, err)
	}

	return s.sender.Send(ctx, sender.Message{
		To:      user.Email,
		Subject: subjectFor(n.Kind),
		Body:    n.Message,
		Tag:     string(n.Kind),
	})
}

// recordOutcome is the queue listener persisting terminal outcomes. It runs on
// the fan-out goroutine, off the drain path.
func (s *Service) recordOutcome(res notification.Result) {
	s.mu.Lock()
	n, ok := s.inflight[res.NotificationID]
	delete(s.inflight, res.NotificationID)
	s.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), historyWriteTimeout)
	defer cancel()

	if err := s.history.Create(ctx, history.FromResult(n, res)); err != nil {
		s.logger.Error("failed to record notification history",
			logger.NotificationID(res.NotificationID),
			logger.UserID(n.UserID),
			logger.Error(err))
	}
}

func (s *Service) forget(id string) {
	if s.history == nil {
		return
	}
	s.mu.Lock()
	delete(s.inflight, id)
	s.mu.Unlock()
}

func subjectFor(k notification.Kind) string {
	switch k {
	case notification.KindCritical:
		return "Critical alert"
	case notification.KindAlert:
		return "Alert"
	case notification.KindWarning:
		return "Warning"
	default:
		return "Notification"
	}
}
