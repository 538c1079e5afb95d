package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestIsSerializationFailure(t *testing.T) {
	serialization := &pgconn.PgError{Code: "40001", Message: "could not serialize access due to concurrent update"}
	require.True(t, IsSerializationFailure(serialization))
	require.True(t, IsSerializationFailure(fmt.Errorf("platform/db: commit tx: %w", serialization)))

	require.False(t, IsSerializationFailure(nil))
	require.False(t, IsSerializationFailure(errors.New("connection reset")))
	require.False(t, IsSerializationFailure(&pgconn.PgError{Code: "23505"}))
}
