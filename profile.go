package enrichment

import "encoding/json"

// Profile is the opaque JSON document returned by the userinfo endpoint.
// The library does not interpret it beyond verifying it is valid JSON;
// callers decode the fields they care about.
type Profile json.RawMessage

// Decode unmarshals the profile document into v.
func (p Profile) Decode(v any) error {
	return json.Unmarshal(p, v)
}

// String returns the raw JSON document.
func (p Profile) String() string {
	return string(p)
}

// MarshalJSON passes the raw document through unchanged.
func (p Profile) MarshalJSON() ([]byte, error) {
	return json.RawMessage(p).MarshalJSON()
}

// UnmarshalJSON stores the raw document unchanged.
func (p *Profile) UnmarshalJSON(data []byte) error {
	return (*json.RawMessage)(p).UnmarshalJSON(data)
}
