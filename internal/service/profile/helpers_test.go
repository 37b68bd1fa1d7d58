package profile

import (
	"strings"
	"time"
)

// testImageURI is a 46 character IPFS CIDv0 hash.
const testImageURI = "QmUtLVS6EiS93sAFPpPXX8hEM4Gw1T3FTr7YWb2hMM7uhz"

const (
	testOwner    = "alice-uid"
	testNonOwner = "robert-uid"
)

var testTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func strPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}

func newTestProfile(owner string) *Profile {
	return NewProfile(owner, CreateParams{
		Title:       "Awesome title",
		Description: "The perfect description",
		ImageURI:    strPtr(testImageURI),
	}, testTime)
}

func testLinkParams(n string) LinkParams {
	return LinkParams{
		URI:         "https://example.com/" + n,
		Title:       "Link " + n,
		Description: "Description " + n,
	}
}

func linkIDs(links []Link) []uint64 {
	ids := make([]uint64, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.ID)
	}
	return ids
}

func repeat(n int) string {
	return strings.Repeat("a", n)
}
