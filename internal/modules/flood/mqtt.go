package flood

import (
	"context"
	"log/slog"

	"floodsentinel/internal/modules/flood/repository"
	"floodsentinel/internal/modules/flood/types"
	"floodsentinel/internal/mqtt"
)

type MQTTSubscriber interface {
	SetMessageHandler(handler mqtt.ReadingHandler)
}

// registerMQTTHandler stores every reading message as a Reading.
func registerMQTTHandler(subscriber MQTTSubscriber, repo repository.FloodRepository, logger *slog.Logger) {
	subscriber.SetMessageHandler(func(ctx context.Context, msg mqtt.ReadingMessage) error {
		logger.Debug("processing reading message",
			"sensor_id", msg.SensorID,
			"timestamp", msg.Timestamp,
		)

		ts := msg.Timestamp
		reading, err := repo.CreateReading(ctx, types.ReadingCreate{
			SensorID:  &msg.SensorID,
			Timestamp: &ts,
			Value:     msg.Value,
		})
		if err != nil {
			logger.Error("failed to store reading",
				"sensor_id", msg.SensorID,
				"error", err,
			)
			return err
		}

		logger.Debug("stored reading", "id", reading.ID, "sensor_id", reading.SensorID)
		return nil
	})
}
