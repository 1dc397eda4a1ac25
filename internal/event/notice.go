package event

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/osse101/TillSync_Go/internal/domain"
)

// Notices are rendered once, in English, with grouped digits (12,500 not 12500)
var printer = message.NewPrinter(language.English)

// NewConnectivityEvent reports an online/offline transition
func NewConnectivityEvent(p domain.ConnectivityPayload) Event {
	t := ConnectivityOffline
	p.Message = "Offline. Sales and shift changes are saved on this till and will sync when the connection returns."
	if p.Online {
		t = ConnectivityOnline
		p.Message = "Back online."
	}
	return New(t, p)
}

// NewSyncSummaryEvent reports a finished drain cycle, complete or partial
func NewSyncSummaryEvent(summary domain.SyncSummary) Event {
	if summary.Remaining == 0 && summary.Conflicts == 0 {
		return New(SyncCompleted, domain.SyncCompletedPayload{
			Summary: summary,
			Message: printer.Sprintf("All changes synced (%d sent).", summary.Succeeded),
		})
	}
	return New(SyncPartial, domain.SyncCompletedPayload{
		Summary: summary,
		Message: printer.Sprintf("Synced %d change(s); %d still waiting, %d need review.",
			summary.Succeeded, summary.Remaining, summary.Conflicts),
	})
}

// NewQuarantinedEvent reports an operation dropped after its retry ceiling
func NewQuarantinedEvent(op domain.PendingOperation, attempts int, lastErr error) Event {
	p := domain.OperationQuarantinedPayload{
		Operation: op,
		Attempts:  attempts,
		Message: printer.Sprintf("A %s change to %s could not be synced after %d attempts and was discarded.",
			op.Type, op.Resource, attempts),
	}
	if lastErr != nil {
		p.LastError = lastErr.Error()
	}
	return New(OperationQuarantined, p)
}

// NewConflictDetectedEvent reports an update held for a human decision
func NewConflictDetectedEvent(c domain.SyncConflict) Event {
	return New(ConflictDetected, domain.ConflictPayload{
		ConflictID: c.ID,
		Resource:   c.Operation.Resource,
		Message:    printer.Sprintf("A %s record was changed elsewhere; choose which version to keep.", c.Operation.Resource),
	})
}

// NewConflictResolvedEvent reports a conflict decision that was applied
func NewConflictResolvedEvent(c domain.SyncConflict, resolution domain.Resolution) Event {
	return New(ConflictResolved, domain.ConflictPayload{
		ConflictID: c.ID,
		Resource:   c.Operation.Resource,
		Resolution: resolution,
		Message:    printer.Sprintf("Conflict on %s resolved (%s version kept).", c.Operation.Resource, resolution),
	})
}

// NewAuthPausedEvent reports sync pausing on a credential failure
func NewAuthPausedEvent(reason string) Event {
	return New(AuthPaused, domain.AuthPayload{
		Reason:  reason,
		Message: "Sync paused while your session is renewed.",
	})
}

// NewAuthResumedEvent reports sync resuming after a refresh or re-login
func NewAuthResumedEvent() Event {
	return New(AuthResumed, domain.AuthPayload{
		Message: "Session renewed; sync resumed.",
	})
}

// NewReauthRequiredEvent reports that the background refresh failed
func NewReauthRequiredEvent(reason string) Event {
	return New(ReauthRequired, domain.AuthPayload{
		Reason:  reason,
		Message: "Please sign in again to continue syncing.",
	})
}

// NewVarianceAlertEvent reports a shift close outside the variance threshold
func NewVarianceAlertEvent(alert domain.VarianceAlert) Event {
	return New(VarianceAlert, domain.VarianceAlertPayload{
		Alert: alert,
		Message: printer.Sprintf("%s cash variance of %d on shift close (expected %d, counted %d).",
			alert.Severity, int64(alert.Variance), int64(alert.Expected), int64(alert.Actual)),
	})
}
