package profile

// Field bounds, measured in bytes of the UTF-8 encoding.
const (
	TitleMinLength       = 3
	TitleMaxLength       = 20
	DescriptionMinLength = 3
	DescriptionMaxLength = 200
	// ImageURILength is the length of an IPFS CIDv0 content hash.
	ImageURILength = 46
)

// ValidateTitle checks a profile title.
func ValidateTitle(title string) error {
	n := len(title)
	switch {
	case n == 0:
		return &FieldError{Field: "title", Message: "title cannot be empty"}
	case n < TitleMinLength:
		return &FieldError{Field: "title", Message: "title too short"}
	case n > TitleMaxLength:
		return &FieldError{Field: "title", Message: "title too long"}
	}
	return nil
}

// ValidateDescription checks a profile description.
func ValidateDescription(description string) error {
	n := len(description)
	switch {
	case n == 0:
		return &FieldError{Field: "description", Message: "description cannot be empty"}
	case n < DescriptionMinLength:
		return &FieldError{Field: "description", Message: "description too short"}
	case n > DescriptionMaxLength:
		return &FieldError{Field: "description", Message: "description too long"}
	}
	return nil
}

// ValidateImageURI checks an image content hash.
func ValidateImageURI(imageURI string) error {
	n := len(imageURI)
	switch {
	case n == 0:
		return &FieldError{Field: "imageUri", Message: "image uri cannot be empty"}
	case n != ImageURILength:
		return &FieldError{Field: "imageUri", Message: "image uri must be a valid content hash"}
	}
	return nil
}
