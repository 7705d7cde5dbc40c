package services

// Identity is the {userId, username} pair resolved from a verified token.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

func requireIdentity(id *Identity) error {
	if id == nil || id.UserID == "" {
		return ErrUnauthenticated
	}
	return nil
}

// owns reports whether id is the stored author.
func (id *Identity) owns(author string) bool {
	return id.UserID == author
}
