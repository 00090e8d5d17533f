package domain

// Profile is the public projection of a user for a given viewer.
// Following reflects whether the viewer follows the user; it is always false
// for anonymous viewers.
type Profile struct {
	Username  string `json:"username"`
	Bio       string `json:"bio,omitempty"`
	Image     string `json:"image,omitempty"`
	Following bool   `json:"following"`
}

// NewProfile projects a user for a viewer. It is a pure function: the
// viewer-dependent flag is passed in rather than looked up, so callers decide
// where the relation check happens.
func NewProfile(u *User, viewerFollows bool) Profile {
	return Profile{
		Username:  u.Username,
		Bio:       u.Bio,
		Image:     u.Image,
		Following: viewerFollows,
	}
}
