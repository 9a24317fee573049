package gitlib

import "time"

// Signature represents a git signature (author/committer).
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// String renders the signature as "Name <email>", or just the name when no email is recorded.
func (s Signature) String() string {
	if s.Email == "" {
		return s.Name
	}

	return s.Name + " <" + s.Email + ">"
}
