package domain

import (
	"errors"
	"strings"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func ToRole(s string) (Role, error) {
	switch role := Role(strings.ToLower(strings.TrimSpace(s))); role {
	case RoleCustomer, RoleAdmin:
		return role, nil
	}
	return "", errors.New("invalid role")
}

// Actor is the already-authenticated caller of an operation.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("actor id is empty")
	}
	if _, err := ToRole(string(a.Role)); err != nil {
		return err
	}
	return nil
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Owns is true for a customer acting on their own resource.
func (a Actor) Owns(ownerID string) bool {
	return a.Role == RoleCustomer && a.ID == ownerID
}

// SystemActor runs background work with admin rights.
func SystemActor(name string) Actor {
	return Actor{ID: "system:" + name, Role: RoleAdmin}
}
