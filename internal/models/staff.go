package models

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleAgent  = "agent"
	RoleViewer = "viewer"
)

type StaffUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *StaffUser) Validate() error {
	if len(strings.TrimSpace(u.Username)) < 3 { return errors.New("username too short") }
	switch u.Role {
	case RoleAdmin, RoleAgent, RoleViewer:
	case "":
		u.Role = RoleViewer
	default:
		return errors.New("unknown role: " + u.Role)
	}
	return nil
}
