package batch

import (
	"context"

	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/standings"
	"github.com/okian/matchday/pkg/logger"
)

// NotificationKind classifies a Notification.
type NotificationKind string

// Notification kinds.
const (
	NotifyBan       NotificationKind = "ban"
	NotifyMorale    NotificationKind = "morale"
	NotifyNarrative NotificationKind = "narrative"
)

// Notification is something a manager or the league feed should hear about.
// Bans and morale changes are only sent for user-controlled teams.
type Notification struct {
	Kind      NotificationKind
	TeamID    string
	Ban       *model.Ban
	Morale    *model.MoraleDelta
	Narrative *standings.Narrative
}

// Notifier receives notifications after a batch has been persisted.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	logger logger.Logger
}

// NewLogNotifier returns a Notifier that logs at info level.
func NewLogNotifier(l logger.Logger) *LogNotifier {
	if l == nil {
		l = logger.Get()
	}
	return &LogNotifier{logger: l.Named("notify")}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, note Notification) error {
	fields := []logger.Field{
		logger.String("kind", string(note.Kind)),
		logger.String("team_id", note.TeamID),
	}
	switch {
	case note.Ban != nil:
		fields = append(fields,
			logger.String("player_id", note.Ban.PlayerID),
			logger.String("ban_type", string(note.Ban.Type)),
			logger.Int("length", note.Ban.Length),
		)
	case note.Morale != nil:
		fields = append(fields,
			logger.String("player_id", note.Morale.PlayerID),
			logger.Float64("delta", note.Morale.Delta),
		)
	case note.Narrative != nil:
		fields = append(fields,
			logger.String("narrative", string(note.Narrative.Kind)),
			logger.Int("matchday", note.Narrative.Matchday),
		)
	}
	n.logger.Info(ctx, "notification", fields...)
	return nil
}
