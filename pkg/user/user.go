package user

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors an account of the identity provider. Id is the token subject.
type User struct {
	Id          uuid.UUID
	Email       string
	DisplayName string
	CreatedAt   time.Time
}
