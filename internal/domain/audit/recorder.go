package audit

import (
	"context"
	"log/slog"
)

// Recorder wraps the repository with best-effort semantics: a failed audit
// write is logged and reported nowhere else, so it can never roll back the
// operation it records.
type Recorder struct {
	repo   Repository
	logger *slog.Logger
}

// NewRecorder creates a best-effort audit recorder
func NewRecorder(logger *slog.Logger, repo Repository) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record appends an audit entry, swallowing any storage error
func (r *Recorder) Record(ctx context.Context, actorID, action string, payload map[string]any) {
	entry := NewEntry(actorID, action, payload)
	if err := r.repo.Append(ctx, entry); err != nil {
		r.logger.Error("Failed to append audit entry",
			"actor_id", actorID,
			"action", action,
			"error", err,
		)
	}
}
