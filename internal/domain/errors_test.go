package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", ErrValidation("sql query is required"), "ValidationError"},
		{"parse", ErrParse("mysql", "parse SQL: %s", "boom"), "ParseError"},
		{"conflict", ErrConflict("token %q already exists", "abc"), "ConflictError"},
		{"store", ErrStore("insert", cause), "StoreError"},
		{"wrapped store", fmt.Errorf("hash: %w", ErrStore("lookup", cause)), "StoreError"},
		{"plain", cause, "Error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ErrorKind(tc.err))
		})
	}
}

func TestStoreError_Unwrap(t *testing.T) {
	cause := errors.New("database is locked")
	err := ErrStore("insert", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "mapping store insert: database is locked", err.Error())
}

func TestParseError_Message(t *testing.T) {
	assert.Equal(t, "parse SQL: bad (dialect mysql)", ErrParse("mysql", "parse SQL: bad").Error())
	assert.Equal(t, "parse SQL: bad", ErrParse("", "parse SQL: bad").Error())
}

func TestTokens(t *testing.T) {
	records := []HashRecord{{Token: "t1", ColumnName: "id"}, {Token: "t2", ColumnName: "id"}}
	assert.Equal(t, []string{"t1", "t2"}, Tokens(records))
	assert.Empty(t, Tokens(nil))
}
