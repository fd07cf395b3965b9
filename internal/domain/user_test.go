package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("Alice", "Alice@Example.com", "secret1")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@example.com", user.Email, "email should be normalized")
	assert.Equal(t, SubscriptionFree, user.Subscription)
	assert.True(t, user.Active)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(u *User)
		wantErr error
	}{
		{
			name:    "valid user",
			modify:  func(u *User) {},
			wantErr: nil,
		},
		{
			name:    "empty id",
			modify:  func(u *User) { u.ID = uuid.Nil },
			wantErr: ErrEmptyUserID,
		},
		{
			name:    "empty name",
			modify:  func(u *User) { u.Name = "" },
			wantErr: ErrEmptyName,
		},
		{
			name: "name too long",
			modify: func(u *User) {
				for len(u.Name) <= 50 {
					u.Name += "x"
				}
			},
			wantErr: ErrNameTooLong,
		},
		{
			name:    "empty email",
			modify:  func(u *User) { u.Email = "" },
			wantErr: ErrEmptyEmail,
		},
		{
			name:    "password too short",
			modify:  func(u *User) { u.Password = "12345" },
			wantErr: ErrPasswordTooShort,
		},
		{
			name: "no password but hash present",
			modify: func(u *User) {
				u.Password = ""
				u.HashedPassword = "$2a$12$somehash"
			},
			wantErr: nil,
		},
		{
			name: "no password and no hash",
			modify: func(u *User) {
				u.Password = ""
				u.HashedPassword = ""
			},
			wantErr: ErrEmptyPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := NewUser("Bob", "bob@example.com", "secret1")
			require.NoError(t, err)

			tt.modify(user)
			err = user.Validate()

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserEmailFormat(t *testing.T) {
	t.Parallel()

	valid := []string{
		"a@x.com",
		"first.last@example.com",
		"first-last@sub.example.org",
		"user123@mail.co",
	}
	invalid := []string{
		"plainaddress",
		"@example.com",
		"user@",
		"user@example",
		"user@@example.com",
		"user@example.c",
	}

	for _, email := range valid {
		_, err := NewUser("Test", email, "secret1")
		assert.NoError(t, err, "expected %q to be valid", email)
	}
	for _, email := range invalid {
		_, err := NewUser("Test", email, "secret1")
		assert.ErrorIs(t, err, ErrInvalidEmail, "expected %q to be invalid", email)
	}
}

func TestUserJSONNeverContainsPasswordFields(t *testing.T) {
	t.Parallel()

	user, err := NewUser("Carol", "carol@example.com", "secret1")
	require.NoError(t, err)
	user.HashedPassword = "$2a$12$notarealhashnotarealhash"

	data, err := json.Marshal(user)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "secret1")
	assert.NotContains(t, string(data), user.HashedPassword)
	assert.NotContains(t, string(data), "password")
}
