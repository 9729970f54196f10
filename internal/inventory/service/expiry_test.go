package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/isabelayared/pharmastock-system/internal/inventory/service"
)

func TestClassify_BucketBoundaries(t *testing.T) {
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		days int
		want service.Bucket
	}{
		{"expired yesterday", -1, service.BucketExpired},
		{"long expired", -200, service.BucketExpired},
		{"expires today", 0, service.BucketAttention},
		{"last attention day", 90, service.BucketAttention},
		{"first three-to-six day", 91, service.BucketThreeToSix},
		{"last three-to-six day", 180, service.BucketThreeToSix},
		{"first six-to-twelve day", 181, service.BucketSixToTwelve},
		{"last six-to-twelve day", 365, service.BucketSixToTwelve},
		{"first safe day", 366, service.BucketSafe},
		{"far future", 1000, service.BucketSafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expiration := today.AddDate(0, 0, tt.days)
			assert.Equal(t, tt.want, service.Classify(expiration, today))
		})
	}
}

func TestDaysUntil_RoundsPartialDaysUp(t *testing.T) {
	today := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// 12 hours ahead rounds up to a full day remaining
	halfDay := today.Add(12 * time.Hour)
	assert.Equal(t, 1, service.DaysUntil(halfDay, today))

	// Same instant is exactly 0
	assert.Equal(t, 0, service.DaysUntil(today, today))

	// 6 hours ago rounds up to 0, so a batch expiring earlier today is not
	// yet EXPIRED
	earlier := today.Add(-6 * time.Hour)
	assert.Equal(t, 0, service.DaysUntil(earlier, today))
	assert.Equal(t, service.BucketAttention, service.Classify(earlier, today))

	// A full day ago is -1
	yesterday := today.Add(-24 * time.Hour)
	assert.Equal(t, -1, service.DaysUntil(yesterday, today))
	assert.Equal(t, service.BucketExpired, service.Classify(yesterday, today))
}
