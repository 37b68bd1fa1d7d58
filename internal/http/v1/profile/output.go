package profile

// ProfileCreateOutput for POST /profile (201 Created)
type ProfileCreateOutput struct {
	Location string `header:"Location" doc:"URL of the created profile"`
	Body     Profile
}

// ProfileOutput returns a full profile.
type ProfileOutput struct {
	Body Profile
}

// LinkCreateOutput for POST /profile/links (201 Created)
type LinkCreateOutput struct {
	Location string `header:"Location" doc:"URL of the created link"`
	Body     Profile
}

// LinksOutput lists links in insertion order.
type LinksOutput struct {
	Body struct {
		Links []Link `json:"links" doc:"Links in insertion order"`
	}
}

// InfoOutput for GET /profiles/{owner}/info
type InfoOutput struct {
	Body Info
}

// LimitsOutput for GET /limits
type LimitsOutput struct {
	Body Limits
}
