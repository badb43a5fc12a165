package domain

import (
	"time"
)

type Role string

const (
	RoleStaff         Role = "员工"
	RoleRosterManager Role = "排班管理员"
	RoleAdmin         Role = "系统管理员"
)

type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	OrganizationID int64     `json:"organizationID"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	Version        int32     `json:"-"`
}
