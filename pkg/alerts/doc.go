// Package alerts is the orchestration layer over dispatch, directory, sender,
// and history: callers hand it a user ID and a message, and it answers with
// what happened.
//
// # Architecture
//
// The Service owns a dispatch.Queue whose delivery function resolves the
// recipient through a cached directory lookup and hands the message to the
// configured sender. Around that pipeline sit the policy checks a request must
// clear before it is queued:
//
//   - the user exists (negative lookups are cached briefly, never forever)
//   - the user has preferences and notifications enabled
//   - the user's email address is syntactically usable
//   - the user is under the per-user rate limit, when one is configured
//
// A request refused by policy comes back as StatusRejected with a reason; it
// never touches the queue and never invokes the sender. Accepted requests
// block until their terminal outcome (StatusDelivered or StatusFailed) or
// until the caller's context expires (StatusQueued: the work continues and the
// outcome stays observable through Result and history).
//
// # Usage
//
//	svc, err := alerts.NewService(users, snd,
//	    alerts.WithHistory(store),
//	    alerts.WithRateLimit(1, 5),
//	)
//	if err != nil {
//	    return err
//	}
//	defer svc.Close()
//
//	outcome := svc.SendAlert(ctx, "user-42", "Disk usage at 91%")
//	if !outcome.Bool() {
//	    log.Printf("not sent: %s", outcome.Reason)
//	}
//
// Bulk sends work the user list in concurrent fixed-size batches, with one
// independent outcome per user:
//
//	outcomes := svc.SendBulkAlerts(ctx, userIDs, "Maintenance at 02:00 UTC")
//
// The critical path trades every safeguard for latency: no queue, no
// preference checks, no rate limit. Only the recipient's identity and address
// are validated:
//
//	res := svc.SendCriticalAlert(ctx, user, "Primary database is down")
//
// # Outcome Semantics
//
// Outcome.Bool() collapses the four states into the accepted-or-not view:
// Delivered and Queued are true, Rejected and Failed are false. Callers that
// care which one they got read Status and Reason directly.
package alerts
