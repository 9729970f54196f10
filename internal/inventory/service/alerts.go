package service

import (
	"time"

	"github.com/isabelayared/pharmastock-system/internal/inventory/repository"
)

// DefaultAlertHorizonDays is the default window for expiry alerts
const DefaultAlertHorizonDays = 30

// Alert flags one batch expiring within the alert horizon
type Alert struct {
	ProductName   string `json:"product"`
	BatchID       string `json:"batchId"`
	DaysRemaining int    `json:"daysRemaining"`
}

// Stats are the dashboard counters. Each product is classified by its
// nearest-expiry batch; Total counts every product, batches or not.
type Stats struct {
	Total     int `json:"total"`
	Expired   int `json:"expired"`
	Attention int `json:"attention"`
	ThreeMo   int `json:"threeMo"`
	SixMo     int `json:"sixMo"`
	Safe      int `json:"safe"`
}

// ComputeAlerts scans every batch of every product and returns one alert
// per batch with 0 <= days remaining <= horizonDays, in product-then-batch
// order. Already-expired batches are not alerts; they surface in Stats.
func ComputeAlerts(products []*repository.Product, today time.Time, horizonDays int) []Alert {
	alerts := []Alert{}
	for _, product := range products {
		for _, batch := range product.Batches {
			d := DaysUntil(batch.ExpirationDate, today)
			if d >= 0 && d <= horizonDays {
				alerts = append(alerts, Alert{
					ProductName:   product.Name,
					BatchID:       batch.ID,
					DaysRemaining: d,
				})
			}
		}
	}
	return alerts
}

// ComputeStats classifies each product by its nearest-expiry batch and
// counts products per bucket. Products without batches only count toward
// Total.
func ComputeStats(products []*repository.Product, today time.Time) *Stats {
	stats := &Stats{Total: len(products)}

	for _, product := range products {
		nearest := nearestBatch(product.Batches)
		if nearest == nil {
			continue
		}

		switch Classify(nearest.ExpirationDate, today) {
		case BucketExpired:
			stats.Expired++
		case BucketAttention:
			stats.Attention++
		case BucketThreeToSix:
			stats.ThreeMo++
		case BucketSixToTwelve:
			stats.SixMo++
		default:
			stats.Safe++
		}
	}

	return stats
}

// nearestBatch returns the batch with the minimum expiration date, the
// earlier-inserted batch winning ties
func nearestBatch(batches []*repository.Batch) *repository.Batch {
	var nearest *repository.Batch
	for _, b := range batches {
		if nearest == nil || b.ExpirationDate.Before(nearest.ExpirationDate) {
			nearest = b
		}
	}
	return nearest
}
