package models

// User is the profile kept in session storage under the "user" key.
type User struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Mobile    string   `json:"mobile"`
	Avatar    string   `json:"avatar,omitempty"`
	Favorites []string `json:"favorites"`
}

// UserPatch carries the optional fields of a profile update.
type UserPatch struct {
	Name      *string  `json:"name,omitempty"`
	Email     *string  `json:"email,omitempty"`
	Mobile    *string  `json:"mobile,omitempty"`
	Avatar    *string  `json:"avatar,omitempty"`
	Favorites []string `json:"favorites,omitempty"`
}

// HasFavorite reports whether doctorID is in the user's favorites.
func (u *User) HasFavorite(doctorID string) bool {
	for _, id := range u.Favorites {
		if id == doctorID {
			return true
		}
	}
	return false
}
