package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Account types the backend distinguishes between.
const (
	RoleResident = "resident"
	RoleInvestor = "investor"
	RoleOfficial = "official"
)

type User struct {
	ID         ID     `json:"id,omitempty"`
	Email      string `json:"email"`
	Username   string `json:"username,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Role       string `json:"role,omitempty"`
	IsVerified *bool  `json:"is_verified,omitempty"`
}

func (u *User) GetName() string {
	fullName := strings.TrimSpace(strings.Join([]string{u.FirstName, u.LastName}, " "))
	if len(fullName) > 0 {
		return fullName
	} else if len(u.Username) > 0 {
		return u.Username
	} else if len(u.Email) > 0 {
		return u.Email
	}
	return "Unknown"
}

// ID holds a backend identifier that may arrive as a JSON number or a
// string (integer primary keys and UUIDs are both in use).
type ID string

func (i *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*i = ID(n.String())
	return nil
}

func (i ID) String() string {
	return string(i)
}
