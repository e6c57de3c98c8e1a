package models

// Identity is the verified caller identity attached to every request by the
// auth layer. The core trusts it fully and never re-validates it.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// IsZero reports whether no identity is present.
func (id Identity) IsZero() bool {
	return id.ID == ""
}
