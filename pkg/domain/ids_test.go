package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "archiva/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs".
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseCommunityID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseCommunityID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseCommunityID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseCommunityID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, CommunityID(validUUID), id)
	})
}

func TestParseRecordID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid pid", "a1b2c-3d4e5", false},
		{"plain alnum", "xk9f2", false},
		{"empty", "", true},
		{"uppercase", "A1B2C-3D4E5", true},
		{"leading dash", "-a1b2c", true},
		{"trailing dash", "a1b2c-", true},
		{"whitespace", "a1b2c 3d4e5", true},
		{"path traversal", "../../../etc/passwd", true},
		{"SQL injection attempt", "'; DROP TABLE records;--", true},
		{"oversized input", strings.Repeat("a", 1000), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecordID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, RecordID(tt.input), got)
		})
	}
}

// TestTypeDistinction verifies the compiler enforces type safety.
// This is a compile-time check - if this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	userID := UserID(uuid.New())
	communityID := CommunityID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ UserID = communityID   // compile error
	// var _ CommunityID = userID   // compile error

	assert.NotEqual(t, uuid.UUID(userID), uuid.UUID(communityID))
}
