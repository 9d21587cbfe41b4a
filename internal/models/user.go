package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User captures application-facing fields for an authenticated identity.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Bio          string    `json:"bio"`
	Skills       []string  `json:"skills"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfilePatch lists the profile fields a user may overwrite. Unset fields
// keep their stored value.
type ProfilePatch struct {
	Name   Optional[string]   `json:"name,omitzero"`
	Bio    Optional[string]   `json:"bio,omitzero"`
	Skills Optional[[]string] `json:"skills,omitzero"`
}

// Empty reports whether the patch carries no fields at all.
func (p ProfilePatch) Empty() bool {
	return !p.Name.Set && !p.Bio.Set && !p.Skills.Set
}

// NormalizeSkills trims each entry and drops blanks. The result is never nil.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParseSkills splits comma-separated input into normalized skills.
func ParseSkills(raw string) []string {
	return NormalizeSkills(strings.Split(raw, ","))
}
