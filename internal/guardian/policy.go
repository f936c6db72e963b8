// Package guardian gates messaging inside matches that involve a guardian
// (a mother searching on behalf of a son or daughter).
package guardian

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/eligibility"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
	"github.com/oggyb/muzz-matching/internal/metrics"
	"github.com/oggyb/muzz-matching/internal/repository"
)

// DefaultAction is recorded when the caller does not name one.
const DefaultAction = "message"

// Decision is the outcome of AuthorizeMessage.
type Decision struct {
	Match            *db.Match
	GuardianInvolved bool
	Audited          bool
}

// Policy authorizes messages sent inside a match.
type Policy struct {
	store          *repository.Store
	allowMessaging bool
	metrics        *metrics.Metrics
	log            *slog.Logger
	now            func() time.Time
}

func NewPolicy(store *repository.Store, allowMessaging bool, m *metrics.Metrics, log *slog.Logger) *Policy {
	return &Policy{
		store:          store,
		allowMessaging: allowMessaging,
		metrics:        m,
		log:            log,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Involved reports whether either role snapshot of m is a guardian role.
// Snapshots that no longer parse are treated as guardian-involved when they
// name the mother role.
func Involved(m *db.Match) bool {
	for _, snap := range []string{m.RoleA, m.RoleB} {
		r, err := eligibility.ParseSnapshot(snap)
		if err == nil && r.IsGuardian() {
			return true
		}
		if err != nil && strings.HasPrefix(strings.ToLower(strings.TrimSpace(snap)), eligibility.RoleMother) {
			return true
		}
	}
	return false
}

// AuthorizeMessage checks that senderID may send a message of the given
// action in matchID.
//
// Behavior:
//   - The match must exist and contain the sender.
//   - In a guardian-involved match the message is denied with not_eligible
//     when guardian messaging is switched off; otherwise an audit row is
//     appended in the same transaction.
//   - On success last_message_at is bumped.
func (p *Policy) AuthorizeMessage(ctx context.Context, matchID, senderID, action string) (*Decision, error) {
	if matchID == "" || senderID == "" {
		return nil, svcErr.Validation("match id and sender id are required")
	}
	action = strings.ToLower(strings.TrimSpace(action))
	if action == "" {
		action = DefaultAction
	}

	d := &Decision{}
	err := p.store.Transaction(ctx, func(tx *repository.Store) error {
		m, err := tx.Matches.Get(ctx, matchID)
		if err != nil {
			return err
		}
		if m == nil {
			return svcErr.NotFound("match not found")
		}
		if !m.HasUser(senderID) {
			return svcErr.Validation("sender is not part of this match")
		}
		d.Match = m
		d.GuardianInvolved = Involved(m)

		if d.GuardianInvolved {
			if !p.allowMessaging {
				return svcErr.NotEligible("messaging is disabled for guardian matches")
			}
			if err := tx.Audit.Append(ctx, m.ID, senderID, action); err != nil {
				return err
			}
			d.Audited = true
		}

		now := p.now()
		if err := tx.Matches.TouchLastMessage(ctx, m.ID, now); err != nil {
			return err
		}
		m.LastMessageAt = &now
		return nil
	})

	if d.GuardianInvolved {
		outcome := "allowed"
		if err != nil {
			outcome = "denied"
		}
		p.metrics.GuardianMessagesTotal.WithLabelValues(outcome).Inc()
	}
	if err != nil {
		return nil, svcErr.Classify(err)
	}
	p.log.Debug("message authorized", "match_id", matchID, "sender", senderID, "action", action, "audited", d.Audited)
	return d, nil
}
