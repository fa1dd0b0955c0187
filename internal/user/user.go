package user

// User is a site account. Handle is the solved.ac handle recommendations
// are computed for; it defaults to the account id.
type User struct {
	ID        string `json:"id"`
	Password  string `json:"password,omitempty"`
	Handle    string `json:"handle"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// SolvedHandle returns the handle used against solved.ac.
func (u User) SolvedHandle() string {
	if u.Handle != "" {
		return u.Handle
	}
	return u.ID
}
