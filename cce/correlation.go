package cce

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// CorrelationIDFunc generates a tracking id for a new request
type CorrelationIDFunc func(now time.Time) string

// DateCorrelationIDs produces ids like 2021-06-01-123456
func DateCorrelationIDs(now time.Time) string {
	return fmt.Sprintf("%s-%06d", now.Format("2006-01-02"), 100000+rand.IntN(900000))
}

// UUIDCorrelationIDs produces random UUIDs
func UUIDCorrelationIDs(time.Time) string {
	return uuid.NewString()
}

// CorrelationIDsByName maps a configured generator name to its function.
func CorrelationIDsByName(name string) (CorrelationIDFunc, error) {
	switch name {
	case "", "date":
		return DateCorrelationIDs, nil
	case "uuid":
		return UUIDCorrelationIDs, nil
	default:
		return nil, fmt.Errorf("unknown tracking id generator %q", name)
	}
}
