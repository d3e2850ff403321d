package model

// Actor identifies the authenticated caller behind a form session.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
