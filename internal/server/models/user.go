// Package models holds the canonical data types shared by the server-side
// services and repositories.
package models

import "time"

// User is the canonical identity record. ID is immutable once assigned and
// is the sole join key used in token claims: uuid for locally-registered
// users, provider-supplied for federated ones.
type User struct {
	ID            string
	FirstName     string
	LastName      string
	Email         string
	Prefix        string
	Phone         string
	Avatar        string
	Gender        string
	BirthDate     time.Time
	PassengerRate float64
	DriverRate    float64
	IsDriver      bool
	Vehicles      []string
	CreatedAt     time.Time
}

// Credential is the local-auth record attached to a user. Only the salted
// argon2id derivation of the password is ever persisted.
type Credential struct {
	UserID   string
	Username string
	Salt     []byte
	Hash     []byte
}

// ExternalIdentity is an already-verified assertion from a federated
// provider: a stable id plus optional display fields. Empty fields are left
// untouched on upsert.
type ExternalIdentity struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Prefix    string
	Phone     string
	Avatar    string
}
