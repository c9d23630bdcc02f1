package domain

// LinkedBank is a stored connection between a user and one provider access
// credential. It is created by the linking flow and only read here.
type LinkedBank struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	ShareableID string `json:"shareableId"`

	// AccessToken is the provider credential, never serialised.
	AccessToken string `json:"-"`
}

// Institution is display metadata for a financial institution.
type Institution struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
	URL  string `json:"url,omitempty"`
}
