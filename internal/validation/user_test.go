package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Short Seed Password", "abcd", false},
		{"Exactly Max Bytes", strings.Repeat("p", 72), false},
		{"Too Long", strings.Repeat("p", 73), true},
		{"Empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	// 254 chars total: 64 local + @ + 185 domain label + ".com" (4)
	emailAt254 := strings.Repeat("a", 64) + "@" + strings.Repeat("b", 185) + ".com"
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "test@example.com", false},
		{"Exactly 254 Characters", emailAt254, false},
		{"Too Long", "x" + emailAt254, true},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
		{"Multiple At Symbols", "user@@example.com", true},
		{"Space In Local Part", "user @example.com", true},
		{"Trailing Dot In Domain", "user@example.com.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAgeAdvisory(t *testing.T) {
	t.Parallel()

	_, flagged := AgeAdvisory(18)
	assert.False(t, flagged)
	_, flagged = AgeAdvisory(99)
	assert.False(t, flagged)

	msg, flagged := AgeAdvisory(7)
	assert.True(t, flagged)
	assert.Contains(t, msg, "18-99")
	_, flagged = AgeAdvisory(120)
	assert.True(t, flagged)
}

func TestDecodeUser_SignUp(t *testing.T) {
	t.Parallel()

	in, err := DecodeUser([]byte(`{"mode":"signUp","fullName":"Ada Lovelace","password":"pass","age":36,"email":"ada@example.com"}`))
	require.NoError(t, err)
	signUp, ok := in.(SignUp)
	require.True(t, ok, "expected SignUp, got %T", in)
	assert.Equal(t, "Ada Lovelace", signUp.FullName)
	assert.Equal(t, 36, signUp.Age)

	t.Run("age outside advisory range still passes", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeUser([]byte(`{"mode":"signUp","fullName":"Kid","password":"pass","age":9,"email":"kid@example.com"}`))
		assert.NoError(t, err)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeUser([]byte(`{"mode":"signUp","fullName":"x"}`))
		requireFieldError(t, err, "password")
		requireFieldError(t, err, "age")
		requireFieldError(t, err, "email")
	})

	t.Run("bad email", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeUser([]byte(`{"mode":"signUp","fullName":"x","password":"p","age":20,"email":"nope"}`))
		requireFieldError(t, err, "email")
	})
}

func TestDecodeUser_Update(t *testing.T) {
	t.Parallel()

	in, err := DecodeUser([]byte(`{"mode":"update","id":4,"fullName":"New Name","age":40,"password":"ignored","email":"ignored"}`))
	require.NoError(t, err)
	upd, ok := in.(UpdateProfile)
	require.True(t, ok)
	assert.Equal(t, UpdateProfile{ID: 4, FullName: "New Name", Age: 40}, upd)

	_, err = DecodeUser([]byte(`{"mode":"update","fullName":"x","age":1}`))
	requireFieldError(t, err, "id")

	_, err = DecodeUser([]byte(`{"mode":"update","id":4,"fullName":"","age":-1}`))
	requireFieldError(t, err, "fullName")
	requireFieldError(t, err, "age")
}

func TestDecodeUser_UnknownMode(t *testing.T) {
	t.Parallel()

	_, err := DecodeUser([]byte(`{"mode":"create","fullName":"x"}`))
	fe := requireFieldError(t, err, "mode")
	assert.Contains(t, fe.Message, `"signUp"`)
	assert.Contains(t, fe.Message, `"update"`)
}

func TestDecodeUser_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		`{"mode":"signUp","fullName":"Ada","password":"pw","age":36,"email":"ada@example.com"}`,
		`{"mode":"update","id":2,"fullName":"Grace","age":45}`,
	} {
		first, err := DecodeUser([]byte(raw))
		require.NoError(t, err)
		encoded, err := json.Marshal(first)
		require.NoError(t, err)
		second, err := DecodeUser(encoded)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}
