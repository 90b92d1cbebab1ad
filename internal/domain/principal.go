package domain

// Principal captures the verified caller identity attached to a request.
type Principal struct {
	ID      string
	Subject string
	Issuer  string
	Email   string
	Name    string
	Roles   []string
}
