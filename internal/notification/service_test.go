package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sweepDB records the statement CleanupOld issues.
type sweepDB struct {
	execSQL  string
	execArgs []any
	tag      pgconn.CommandTag
	execErr  error
}

func (d *sweepDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.execSQL = sql
	d.execArgs = args
	return d.tag, d.execErr
}

func (d *sweepDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (d *sweepDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func TestCleanupOldDeletesOnlyPastRetention(t *testing.T) {
	db := &sweepDB{tag: pgconn.NewCommandTag("DELETE 3")}
	svc := NewService(db, 30, 120)

	deleted, err := svc.CleanupOld(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	// Strictly older than the cutoff: a row created inside the window
	// never matches.
	assert.Contains(t, db.execSQL, "created_at < $1")
	// Read status plays no part in retention.
	assert.NotContains(t, db.execSQL, "is_read")

	require.Len(t, db.execArgs, 1)
	cutoff, ok := db.execArgs[0].(time.Time)
	require.True(t, ok, "cutoff must be a time.Time, got %T", db.execArgs[0])
	assert.WithinDuration(t, time.Now().Add(-30*24*time.Hour), cutoff, 5*time.Second)
}

func TestCleanupOldCutoffFollowsRetentionConfig(t *testing.T) {
	db := &sweepDB{tag: pgconn.NewCommandTag("DELETE 0")}
	svc := NewService(db, 7, 120)

	deleted, err := svc.CleanupOld(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)

	cutoff := db.execArgs[0].(time.Time)
	assert.WithinDuration(t, time.Now().Add(-7*24*time.Hour), cutoff, 5*time.Second)
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Minute, "45 minutos"},
		{time.Hour, "1 hora"},
		{90 * time.Minute, "1 hora e 30 minutos"},
		{2 * time.Hour, "2 horas"},
		{61 * time.Minute, "1 hora e 1 minuto"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAge(tt.d), tt.d.String())
	}
}
