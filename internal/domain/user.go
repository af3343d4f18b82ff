package domain

import "github.com/google/uuid"

// User is the authenticated caller identity extracted from an access token.
// Token issuance and account management live outside this service.
type User struct {
	ID    uuid.UUID
	Email string
}
