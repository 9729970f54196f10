package service

import (
	"math"
	"time"
)

// Bucket is the shelf-life classification of an expiration date
type Bucket string

const (
	BucketExpired     Bucket = "EXPIRED"
	BucketAttention   Bucket = "ATTENTION"
	BucketThreeToSix  Bucket = "THREE_TO_SIX_MONTHS"
	BucketSixToTwelve Bucket = "SIX_TO_TWELVE_MONTHS"
	BucketSafe        Bucket = "SAFE"
)

// DaysUntil returns the number of days remaining until expiration, partial
// days rounded up. A batch expiring later today reports 0, yesterday -1.
func DaysUntil(expiration, today time.Time) int {
	return int(math.Ceil(expiration.Sub(today).Hours() / 24))
}

// Classify maps an expiration date to its shelf-life bucket relative to
// today. The range bounds are inclusive: day 90 is still ATTENTION, day 91
// is THREE_TO_SIX_MONTHS, day 365 is SIX_TO_TWELVE_MONTHS.
func Classify(expiration, today time.Time) Bucket {
	d := DaysUntil(expiration, today)
	switch {
	case d < 0:
		return BucketExpired
	case d <= 90:
		return BucketAttention
	case d <= 180:
		return BucketThreeToSix
	case d <= 365:
		return BucketSixToTwelve
	default:
		return BucketSafe
	}
}
