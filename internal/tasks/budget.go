package tasks

import "math"

// DefaultSearchCount is the number of songs requested per contact when contacts are plentiful.
const DefaultSearchCount = 20

// SearchCountFor returns how many songs to request for each contact.
//
// When the target is large relative to the contact pool (at least half of defaultCount
// songs per contact) each contact is asked for twice its share, otherwise defaultCount.
// A non-positive defaultCount selects [DefaultSearchCount].
func SearchCountFor(targetSongs, contactCount, defaultCount int) int {
	if defaultCount <= 0 {
		defaultCount = DefaultSearchCount
	}
	if contactCount <= 0 {
		return defaultCount
	}

	ratio := float64(targetSongs) / float64(contactCount)
	if ratio >= float64(defaultCount)/2 {
		return int(math.Round(ratio)) * 2
	}
	return defaultCount
}

// MaxSongSearches is the total number of contact searches a build may resolve,
// slightly more than the target to absorb contacts that yield nothing.
func MaxSongSearches(targetSongs int) int {
	return targetSongs + ((targetSongs-5)/9 + 5)
}

// ErrorThreshold is the number of failed searches at which a build gives up.
func ErrorThreshold(eligibleContacts, maxSearches int) int {
	return min(eligibleContacts, max(5, maxSearches/3))
}
