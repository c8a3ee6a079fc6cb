package pg

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
)

func TestMapErr(t *testing.T) {
	require.NoError(t, mapErr(nil))
	require.ErrorIs(t, mapErr(pgx.ErrNoRows), repository.ErrNotFound)
	require.ErrorIs(t, mapErr(fmt.Errorf("wrap: %w", pgx.ErrNoRows)), repository.ErrNotFound)
	require.ErrorIs(t, mapErr(&pgconn.PgError{Code: pgUniqueViolation}), repository.ErrConflict)
	require.ErrorIs(t, mapErr(&pgconn.PgError{Code: pgForeignKeyViolation}), repository.ErrInvalidInput)
	require.ErrorIs(t, mapErr(&pgconn.PgError{Code: pgInvalidTextRepr}), repository.ErrNotFound)

	other := errors.New("conn reset")
	require.Equal(t, other, mapErr(other))
}

func TestWhereClause(t *testing.T) {
	unsub := false
	where, args := whereClause("w-1", repository.ContactFilter{
		Gender:       "female",
		Country:      "AR",
		Search:       "ana_",
		Unsubscribed: &unsub,
	})
	assert.Equal(t,
		"website_id = $1 AND gender = $2 AND lower(country) = lower($3) AND unsubscribed = $4 AND "+
			"(first_name ILIKE $5 OR last_name ILIKE $5 OR email ILIKE $5)",
		where)
	assert.Equal(t, []any{"w-1", "female", "AR", false, `%ana\_%`}, args)

	where, args = whereClause("w-1", repository.ContactFilter{})
	assert.Equal(t, "website_id = $1", where)
	assert.Len(t, args, 1)
}

func TestTruncateUTF8(t *testing.T) {
	assert.Equal(t, "short", truncateUTF8("short", maxReasonBytes))

	// 999 bytes ASCII + "ñ" (2 bytes): el corte en 1000 caería en medio de la runa
	long := strings.Repeat("a", 999) + "ñ" + "tail"
	got := truncateUTF8(long, maxReasonBytes)
	assert.True(t, utf8.ValidString(got))
	assert.Len(t, got, 999)

	got = truncateUTF8(strings.Repeat("€", 400), maxReasonBytes)
	assert.True(t, utf8.ValidString(got))
	assert.Len(t, got, 999)
}
