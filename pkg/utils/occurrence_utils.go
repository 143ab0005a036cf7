// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package utils

import (
	"fmt"
	"strings"
)

// OccurrenceRef builds the stable reference for a single occurrence of a
// series, combining the template UID with the occurrence ID.
// e.g. templateUID=7cad5a8d-19d0-41a4-81a6-043453daf9ee, occurrenceID=1735730100
// -> 7cad5a8d-19d0-41a4-81a6-043453daf9ee_1735730100
func OccurrenceRef(templateUID string, occurrenceID string) string {
	if occurrenceID == "" {
		return templateUID
	}
	return fmt.Sprintf("%s_%s", templateUID, occurrenceID)
}

// ParseOccurrenceRef splits an occurrence reference into its template UID and
// occurrence ID. A reference without a separator refers to the whole series.
// The template UID itself contains hyphens, so the separator is an underscore
// and only the last one counts.
func ParseOccurrenceRef(ref string) (templateUID string, occurrenceID string) {
	idx := strings.LastIndex(ref, "_")
	if idx < 0 {
		return ref, ""
	}
	return ref[:idx], ref[idx+1:]
}
