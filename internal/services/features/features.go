package features

import (
	"math"

	"DemandCast/internal/domain/models"
)

// Thresholds for history-derived features. Series at or below a
// threshold lack enough depth for the corresponding lag window.
const (
	shortWindow = 7
	longWindow  = 30
)

// Engineer derives calendar and history features from a daily series.
type Engineer struct{}

// NewEngineer creates a feature engineer.
func NewEngineer() *Engineer {
	return &Engineer{}
}

// Enrich maps every series point to a feature row. Calendar features are
// always present. Lag and rolling features require the series to be
// strictly longer than their window and are nil otherwise; rolling
// windows shorter than their nominal width still produce a value over
// the rows available so far.
func (e *Engineer) Enrich(series models.TrainingSeries) []models.FeatureRow {
	n := len(series.Points)
	rows := make([]models.FeatureRow, n)

	for i, p := range series.Points {
		dow := int(p.Date.Weekday())
		_, week := p.Date.ISOWeek()
		rows[i] = models.FeatureRow{
			Date:       p.Date,
			Quantity:   p.Quantity,
			DayOfWeek:  dow,
			IsWeekend:  dow == 0 || dow == 6,
			Month:      int(p.Date.Month()),
			Quarter:    (int(p.Date.Month())-1)/3 + 1,
			DayOfMonth: p.Date.Day(),
			WeekOfYear: week,
		}
	}

	if n > shortWindow {
		for i := range rows {
			if i >= shortWindow {
				v := series.Points[i-shortWindow].Quantity
				rows[i].Lag7 = &v
			}
			mean, std := rollingStats(series.Points, i, shortWindow)
			rows[i].RollMean7 = &mean
			rows[i].RollStd7 = std
		}
	}

	if n > longWindow {
		for i := range rows {
			if i >= longWindow {
				v := series.Points[i-longWindow].Quantity
				rows[i].Lag30 = &v
			}
			mean, _ := rollingStats(series.Points, i, longWindow)
			rows[i].RollMean30 = &mean
		}
	}

	return rows
}

// rollingStats computes mean and sample standard deviation over the
// window ending at index i, inclusive. The std is nil for a single-row
// window where a sample deviation is undefined.
func rollingStats(points []models.SeriesPoint, i, window int) (float64, *float64) {
	lo := i - window + 1
	if lo < 0 {
		lo = 0
	}
	n := i - lo + 1

	var sum float64
	for j := lo; j <= i; j++ {
		sum += points[j].Quantity
	}
	mean := sum / float64(n)

	if n < 2 {
		return mean, nil
	}
	var sq float64
	for j := lo; j <= i; j++ {
		d := points[j].Quantity - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(n-1))
	return mean, &std
}
