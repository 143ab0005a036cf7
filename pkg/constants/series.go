// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Occurrence expansion limits
const (
	// DefaultOccurrenceLimit is the number of occurrences expanded when the
	// caller does not ask for a specific count
	DefaultOccurrenceLimit = 50

	// MaxOccurrenceLimit caps how many occurrences a single preview request
	// may ask for
	MaxOccurrenceLimit = 300

	// OccurrenceSafetyCap bounds expansion of unbounded series so that a
	// never-ending pattern cannot run away
	OccurrenceSafetyCap = 1000

	// MaxMaterializeWindowDays caps the span of a materialization window
	// accepted over the wire
	MaxMaterializeWindowDays = 731
)
