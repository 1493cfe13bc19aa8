package models

// Me is the current session's user as the auth endpoint reports it.
type Me struct {
	IsAuthenticated bool    `json:"is_authenticated"`
	Email           string  `json:"email"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Phone           string  `json:"phone"`
	AvatarURL       *string `json:"avatar_url"`
}

// Registration is the body of the register endpoint.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}
