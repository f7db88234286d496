package assoc

import (
	"fmt"
	"regexp"
	"strconv"
)

// A MARKER_ID looks like 1:12345_A/G. Alleles are drawn from A, C, T, G, -,
// . and *.
var markerIDRegex = regexp.MustCompile(`^([^:]+):([0-9]+)_([-ATCG.*]+)/([-ATCG.*]+)$`)

// ParseMarkerID decodes a MARKER_ID into its chromosome, position, ref and
// alt.
func ParseMarkerID(markerID string) (chrom string, pos int, ref, alt string, err error) {
	match := markerIDRegex.FindStringSubmatch(markerID)
	if match == nil {
		return "", 0, "", "", fmt.Errorf("MARKER_ID didn't match the pattern <chrom>:<pos>_<ref>/<alt>: %q", markerID)
	}

	pos, err = strconv.Atoi(match[2])
	if err != nil {
		return "", 0, "", "", fmt.Errorf("MARKER_ID %q: %w", markerID, err)
	}

	return match[1], pos, match[3], match[4], nil
}

// FormatMarkerID is the inverse of ParseMarkerID.
func FormatMarkerID(chrom string, pos int, ref, alt string) string {
	return fmt.Sprintf("%s:%d_%s/%s", chrom, pos, ref, alt)
}
