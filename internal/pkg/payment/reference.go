package payment

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ReferencePrefix starts every transaction reference we mint.
const ReferencePrefix = "PTP"

// FormatReference builds "PTP-<submission>-<package>-<unix>".
func FormatReference(submissionID, packageID uint, at time.Time) string {
	return fmt.Sprintf("%s-%d-%d-%d", ReferencePrefix, submissionID, packageID, at.Unix())
}

// ParseReference extracts the submission and package ids from a reference.
// The prefix and timestamp fields are not interpreted.
func ParseReference(ref string) (submissionID, packageID uint, err error) {
	parts := strings.Split(strings.TrimSpace(ref), "-")
	if len(parts) < 4 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedReference, ref)
	}

	submissionID, err = parseID(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: submission id in %q", ErrMalformedReference, ref)
	}
	packageID, err = parseID(parts[2])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: package id in %q", ErrMalformedReference, ref)
	}
	return submissionID, packageID, nil
}

func parseID(raw string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, strconv.IntSize)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, strconv.ErrRange
	}
	return uint(v), nil
}
