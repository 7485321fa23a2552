package domain

import (
	"time"
)

type Role string

const (
	RoleSoldier  Role = "soldier"
	RoleClerk    Role = "clerk"
	RoleAdjutant Role = "adjutant"
)

// ValidRole reports whether r is one of the three known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleSoldier, RoleClerk, RoleAdjutant:
		return true
	}
	return false
}

type FitnessStatus string

const (
	StatusFit   FitnessStatus = "Fit"
	StatusUnfit FitnessStatus = "Unfit"
)

func ValidFitnessStatus(s FitnessStatus) bool {
	return s == StatusFit || s == StatusUnfit
}

type User struct {
	ID            string         `json:"id"`
	Email         string         `json:"email"`
	PasswordHash  string         `json:"-"`
	FullName      string         `json:"fullName"`
	UserType      Role           `json:"userType"`
	ServiceNo     *string        `json:"serviceNo,omitempty"`
	FitnessStatus *FitnessStatus `json:"fitnessStatus,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// PublicUser is the shape of a user returned by the auth endpoints.
// The password hash never leaves the server.
type PublicUser struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FullName  string  `json:"fullName"`
	UserType  Role    `json:"userType"`
	ServiceNo *string `json:"serviceNo,omitempty"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		UserType:  u.UserType,
		ServiceNo: u.ServiceNo,
	}
}

// UserFitnessStatus is the per-user projection used by the fitness overview.
type UserFitnessStatus struct {
	UserID string
	Status *FitnessStatus
}
