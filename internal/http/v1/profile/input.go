package profile

// ProfileCreateInput for POST /profile
type ProfileCreateInput struct {
	Body struct {
		Title       string  `json:"title"               doc:"Profile title, 3-20 bytes"        example:"Awesome title"`
		Description string  `json:"description"         doc:"Profile description, 3-200 bytes" example:"The perfect description"`
		ImageURI    *string `json:"imageUri,omitempty"  doc:"Content hash of the profile image, 46 bytes"`
		Published   *bool   `json:"published,omitempty" doc:"Visibility, defaults to true"          example:"true"`
	}
}

// ProfileUpdateInput for PATCH /profile. Omitting imageUri keeps the current image.
type ProfileUpdateInput struct {
	Body struct {
		Title       string  `json:"title"              doc:"Profile title, 3-20 bytes"        example:"Awesome title"`
		Description string  `json:"description"        doc:"Profile description, 3-200 bytes" example:"The perfect description"`
		ImageURI    *string `json:"imageUri,omitempty" doc:"Content hash of the profile image, 46 bytes"`
	}
}

// PublishedInput for PUT /profile/published
type PublishedInput struct {
	Body struct {
		Published bool `json:"published" doc:"Whether anonymous readers can see the profile" example:"false"`
	}
}

// LinkBody carries every link field; updates replace the whole link.
type LinkBody struct {
	URI         string  `json:"uri"                   doc:"Link target"      example:"https://example.com"`
	Title       string  `json:"title"                 doc:"Link title"       example:"My blog"`
	Description string  `json:"description,omitempty" doc:"Link description" example:"Things I write"`
	ImageURI    *string `json:"imageUri,omitempty"    doc:"Content hash of the link image"`
}

// LinkCreateInput for POST /profile/links
type LinkCreateInput struct {
	Body LinkBody
}

// LinkUpdateInput for PUT /profile/links/{id}
type LinkUpdateInput struct {
	ID   uint64 `path:"id" doc:"Link identifier" example:"1"`
	Body LinkBody
}

// LinkDeleteInput for DELETE /profile/links/{id}
type LinkDeleteInput struct {
	ID uint64 `path:"id" doc:"Link identifier" example:"1"`
}

// OwnerInput selects a profile by owner identity.
type OwnerInput struct {
	Owner string `path:"owner" minLength:"1" maxLength:"128" doc:"Owner identity" example:"alice-uid"`
}
