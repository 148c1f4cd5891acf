// Package calibration anchors monitoring-point ids to scene positions. A small
// set of calibrated viewpoints (anchors) is loaded from the collaborator API and
// every other point id is placed by interpolating or extrapolating along the
// anchors' ordinal axis.
package calibration

import (
	"fmt"
	"strconv"
)

// ParseOrdinal extracts the numeric suffix of a point id, e.g. "S12" -> 12.
// Ids without a numeric suffix have no place on the interpolation axis and
// cannot be resolved.
func ParseOrdinal(id string) (int, error) {
	start := len(id)
	for start > 0 {
		c := id[start-1]
		if c < '0' || c > '9' {
			break
		}
		start--
	}
	if start == len(id) {
		return 0, fmt.Errorf("point id %q has no numeric suffix", id)
	}
	n, err := strconv.Atoi(id[start:])
	if err != nil {
		return 0, fmt.Errorf("point id %q: %w", id, err)
	}
	return n, nil
}
