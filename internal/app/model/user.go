package model

import (
	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID `json:"-"`
	Name          string    `json:"name"`
	Email         string    `json:"-"`
	PasswordHash  string    `json:"-"`
	CreditBalance int64     `json:"creditBalance"`
}
