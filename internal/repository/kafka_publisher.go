package repository

import (
	"context"
	"fmt"

	"DemandCast/internal/domain/models"
	pkgkafka "DemandCast/pkg/kafka"
	"DemandCast/pkg/util"
)

// KafkaPublisher emits forecast lifecycle events.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

type forecastGeneratedEvent struct {
	PlaceID     int64          `json:"place_id"`
	ItemID      *int64         `json:"item_id,omitempty"`
	ModelID     int64          `json:"model_id"`
	Strategy    string         `json:"strategy"`
	Status      string         `json:"status"`
	DataPoints  int            `json:"data_points"`
	RangeStart  string         `json:"range_start"`
	RangeEnd    string         `json:"range_end"`
	PointsSaved int            `json:"points_saved"`
	Metrics     models.Metrics `json:"metrics"`
}

// PublishForecastGenerated announces a persisted forecast, keyed by
// place so per-place ordering holds for consumers.
func (p *KafkaPublisher) PublishForecastGenerated(ctx context.Context, result models.TrainResult) error {
	event := forecastGeneratedEvent{
		PlaceID:     result.Scope.PlaceID,
		ItemID:      result.Scope.ItemID,
		ModelID:     result.ModelID,
		Strategy:    result.Strategy,
		Status:      result.Status,
		DataPoints:  result.DataPoints,
		RangeStart:  result.RangeStart.Format(util.DateOnly),
		RangeEnd:    result.RangeEnd.Format(util.DateOnly),
		PointsSaved: result.PointsSaved,
		Metrics:     result.Metrics,
	}
	key := fmt.Sprintf("%d", result.Scope.PlaceID)
	return p.producer.Publish(ctx, p.topic, []byte(key), event)
}
