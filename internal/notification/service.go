package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/endurancy/platform/internal/models"
)

var (
	ErrNotFound       = errors.New("notification not found")
	ErrTicketNotFound = errors.New("ticket not found")
)

// DB is the slice of the pgx pool the dispatcher uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service is the persisted-inbox dispatcher: it creates, queries and
// expires notification rows. There is no delivery transport.
type Service struct {
	db             DB
	retention      time.Duration
	staleTicketAge time.Duration
}

func NewService(db DB, retentionDays, staleTicketMins int) *Service {
	return &Service{
		db:             db,
		retention:      time.Duration(retentionDays) * 24 * time.Hour,
		staleTicketAge: time.Duration(staleTicketMins) * time.Minute,
	}
}

type CreateInput struct {
	UserID         int64  `json:"userId"`
	OrganizationID *int64 `json:"organizationId,omitempty"`
	TicketID       *int64 `json:"ticketId,omitempty"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	Type           string `json:"type"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Notification, error) {
	if in.Type == "" {
		in.Type = models.NotificationInfo
	}

	var n models.Notification
	err := s.db.QueryRow(ctx,
		`INSERT INTO notifications (user_id, organization_id, ticket_id, title, message, type)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, user_id, organization_id, ticket_id, title, message, type, is_read, created_at`,
		in.UserID, in.OrganizationID, in.TicketID, in.Title, in.Message, in.Type,
	).Scan(&n.ID, &n.UserID, &n.OrganizationID, &n.TicketID, &n.Title, &n.Message, &n.Type,
		&n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return &n, nil
}

// CreateTicketNotification scopes a notification to a support ticket,
// deriving the organization from the ticket row.
func (s *Service) CreateTicketNotification(ctx context.Context, ticketID int64, typ, title, message string, userID int64) (*models.Notification, error) {
	var orgID *int64
	err := s.db.QueryRow(ctx,
		"SELECT organization_id FROM support_tickets WHERE id = $1", ticketID,
	).Scan(&orgID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}

	return s.Create(ctx, CreateInput{
		UserID:         userID,
		OrganizationID: orgID,
		TicketID:       &ticketID,
		Title:          title,
		Message:        message,
		Type:           typ,
	})
}

func (s *Service) GetUserNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	return s.query(ctx,
		`SELECT id, user_id, organization_id, ticket_id, title, message, type, is_read, created_at
		 FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (s *Service) GetUnreadNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	return s.query(ctx,
		`SELECT id, user_id, organization_id, ticket_id, title, message, type, is_read, created_at
		 FROM notifications WHERE user_id = $1 AND is_read = false ORDER BY created_at DESC`, userID)
}

func (s *Service) query(ctx context.Context, sql string, args ...interface{}) ([]models.Notification, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.OrganizationID, &n.TicketID, &n.Title,
			&n.Message, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkAsRead flips is_read on a single notification owned by the user.
func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllAsRead returns the number of rows flipped; calling it again
// immediately returns zero.
func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	tag, err := s.db.Exec(ctx,
		"UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false", userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

type Stats struct {
	Total  int            `json:"total"`
	Unread int            `json:"unread"`
	ByType map[string]int `json:"byType"`
}

// Stats runs three independent aggregates; the counts are not read in a
// single snapshot and can disagree under concurrent writes.
func (s *Service) Stats(ctx context.Context, userID int64) (*Stats, error) {
	st := &Stats{ByType: map[string]int{}}

	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1", userID).Scan(&st.Total)
	if err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}

	err = s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false", userID).Scan(&st.Unread)
	if err != nil {
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}

	rows, err := s.db.Query(ctx,
		"SELECT type, COUNT(*) FROM notifications WHERE user_id = $1 GROUP BY type", userID)
	if err != nil {
		return nil, fmt.Errorf("count notifications by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		st.ByType[typ] = n
	}
	return st, rows.Err()
}

// CleanupOld deletes notifications past the retention window regardless
// of read status and returns the number deleted.
func (s *Service) CleanupOld(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.retention)
	tag, err := s.db.Exec(ctx,
		"DELETE FROM notifications WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

// NotifyAdmins inserts one notification row per admin user. The admin
// list is resolved at call time; there is no broadcast addressing mode.
func (s *Service) NotifyAdmins(ctx context.Context, orgID *int64, typ, title, message string) (int, error) {
	admins, err := s.adminUserIDs(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, adminID := range admins {
		if _, err := s.Create(ctx, CreateInput{
			UserID:         adminID,
			OrganizationID: orgID,
			Title:          title,
			Message:        message,
			Type:           typ,
		}); err != nil {
			slog.Error("failed to notify admin", "admin_id", adminID, "error", err)
			continue
		}
		created++
	}
	return created, nil
}

// GenerateSystemNotifications scans for critical, unanswered tickets
// older than the configured age and alerts every admin for each one.
// Repeated invocations re-alert for the same ticket; there is no dedup.
func (s *Service) GenerateSystemNotifications(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.staleTicketAge)
	rows, err := s.db.Query(ctx,
		`SELECT id, organization_id, subject FROM support_tickets
		 WHERE priority = $1 AND first_reply_at IS NULL AND created_at < $2`,
		models.TicketPriorityCritical, cutoff)
	if err != nil {
		return 0, fmt.Errorf("scan stale tickets: %w", err)
	}
	defer rows.Close()

	type staleTicket struct {
		id      int64
		orgID   *int64
		subject string
	}
	var tickets []staleTicket
	for rows.Next() {
		var t staleTicket
		if err := rows.Scan(&t.id, &t.orgID, &t.subject); err != nil {
			return 0, fmt.Errorf("scan stale ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate stale tickets: %w", err)
	}

	admins, err := s.adminUserIDs(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, t := range tickets {
		for _, adminID := range admins {
			if _, err := s.Create(ctx, CreateInput{
				UserID:         adminID,
				OrganizationID: t.orgID,
				TicketID:       &t.id,
				Title:          "Ticket crítico sem resposta",
				Message:        fmt.Sprintf("O ticket %q está sem resposta há mais de %s.", t.subject, formatAge(s.staleTicketAge)),
				Type:           models.NotificationWarning,
			}); err != nil {
				slog.Error("failed to create system notification",
					"ticket_id", t.id, "admin_id", adminID, "error", err)
				continue
			}
			created++
		}
	}
	return created, nil
}

// formatAge renders a duration as Portuguese hours/minutes text for
// user-facing messages.
func formatAge(d time.Duration) string {
	mins := int(d.Round(time.Minute).Minutes())
	h, m := mins/60, mins%60

	hourWord := "horas"
	if h == 1 {
		hourWord = "hora"
	}
	minWord := "minutos"
	if m == 1 {
		minWord = "minuto"
	}

	switch {
	case h == 0:
		return fmt.Sprintf("%d %s", m, minWord)
	case m == 0:
		return fmt.Sprintf("%d %s", h, hourWord)
	default:
		return fmt.Sprintf("%d %s e %d %s", h, hourWord, m, minWord)
	}
}

func (s *Service) adminUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id FROM users WHERE role = $1", models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("list admin users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan admin id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
