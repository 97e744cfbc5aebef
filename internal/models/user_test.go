package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ID
	}{
		{"integer id", `{"id": 42}`, "42"},
		{"uuid id", `{"id": "6f1c2a8e-0b7d-4d8e-9a51-2f4f3c0d9b11"}`, "6f1c2a8e-0b7d-4d8e-9a51-2f4f3c0d9b11"},
		{"null id", `{"id": null}`, ""},
		{"missing id", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var user User
			require.NoError(t, json.Unmarshal([]byte(tt.input), &user))
			assert.Equal(t, tt.expected, user.ID)
		})
	}
}

func TestID_UnmarshalJSON_Invalid(t *testing.T) {
	var user User
	assert.Error(t, json.Unmarshal([]byte(`{"id": true}`), &user))
}

func TestUser_GetName(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		expected string
	}{
		{"full name", User{FirstName: "Ada", LastName: "Lovelace", Username: "ada"}, "Ada Lovelace"},
		{"first name only", User{FirstName: "Ada"}, "Ada"},
		{"username fallback", User{Username: "ada", Email: "ada@example.com"}, "ada"},
		{"email fallback", User{Email: "ada@example.com"}, "ada@example.com"},
		{"unknown", User{}, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.user.GetName())
		})
	}
}

func TestAuthResponse_Decode(t *testing.T) {
	body := `{"access":"tok123","refresh":"r1","user":{"id":7,"email":"resident@example.com","role":"resident"}}`

	var auth AuthResponse
	require.NoError(t, json.Unmarshal([]byte(body), &auth))

	assert.Equal(t, "tok123", auth.Access)
	assert.Equal(t, "r1", auth.Refresh)
	assert.Equal(t, ID("7"), auth.User.ID)
	assert.Equal(t, RoleResident, auth.User.Role)
}
