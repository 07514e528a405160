package models

// Session is the authenticated identity returned by the DreamLift auth endpoints.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
