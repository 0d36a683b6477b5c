package domain

import "time"

// Identity is a registered user of the service. Identities are seeded at
// startup and never mutated while the process runs.
type Identity struct {
	ID           string
	Login        string
	PasswordHash string // argon2id PHC string
	CreatedAt    time.Time
}

// Seed is a plaintext seed entry used to populate the identity store on
// startup. The password is hashed before it reaches any store.
type Seed struct {
	ID       string `koanf:"id"       validate:"required"`
	Login    string `koanf:"login"    validate:"required"`
	Password string `koanf:"password" validate:"required"`
}
