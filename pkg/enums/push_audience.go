package enums

import "fmt"

// PushAudience selects who receives an outbound push notification.
type PushAudience string

const (
	PushAudienceAll    PushAudience = "all"
	PushAudienceTagged PushAudience = "tagged"
)

var validPushAudiences = []PushAudience{
	PushAudienceAll,
	PushAudienceTagged,
}

// String implements fmt.Stringer.
func (a PushAudience) String() string {
	return string(a)
}

// IsValid reports whether the value is a known PushAudience.
func (a PushAudience) IsValid() bool {
	for _, candidate := range validPushAudiences {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParsePushAudience converts raw input into a PushAudience.
func ParsePushAudience(value string) (PushAudience, error) {
	for _, candidate := range validPushAudiences {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid push audience %q", value)
}
