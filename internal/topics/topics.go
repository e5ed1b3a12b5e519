package topics

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

const (
	KindVenue     = "venue"
	KindUser      = "user"
	KindAnalytics = "analytics"
)

// Venue returns the topic carrying public activity for a venue.
func Venue(venueID snowflake.ID) string {
	return fmt.Sprintf("venue:%s", venueID)
}

// User returns the per-user notification topic.
func User(userID snowflake.ID) string {
	return fmt.Sprintf("user:%s", userID)
}

// Analytics returns the manager-only analytics topic for a venue.
func Analytics(venueID snowflake.ID) string {
	return fmt.Sprintf("analytics:%s", venueID)
}

// Kind returns the topic kind prefix, or empty for malformed names.
func Kind(topic string) string {
	kind, _, ok := strings.Cut(topic, ":")
	if !ok {
		return ""
	}
	switch kind {
	case KindVenue, KindUser, KindAnalytics:
		return kind
	default:
		return ""
	}
}
