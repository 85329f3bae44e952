// Package simulator publishes synthetic water level readings so the ingest
// path can be exercised without field hardware.
package simulator

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"floodsentinel/internal/mqtt"
)

type ReadingPublisher interface {
	PublishReading(msg mqtt.ReadingMessage) error
}

// Walker keeps one random-walk level per sensor.
type Walker struct {
	rnd     *rand.Rand
	maxStep float64
	levels  map[int64]float64
}

func NewWalker(sensorIDs []int64, base, maxStep float64, seed uint64) *Walker {
	w := &Walker{
		rnd:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		maxStep: maxStep,
		levels:  make(map[int64]float64, len(sensorIDs)),
	}
	for _, id := range sensorIDs {
		w.levels[id] = base
	}
	return w
}

// Next moves the sensor's level by at most maxStep in either direction.
// Levels never go below zero and are rounded to centimetres.
func (w *Walker) Next(sensorID int64) float64 {
	level := w.levels[sensorID] + (w.rnd.Float64()*2-1)*w.maxStep
	level = math.Max(0, math.Round(level*100)/100)
	w.levels[sensorID] = level
	return level
}

type Simulator struct {
	pub       ReadingPublisher
	walker    *Walker
	sensorIDs []int64
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func New(pub ReadingPublisher, walker *Walker, sensorIDs []int64, interval time.Duration, logger *slog.Logger) *Simulator {
	return &Simulator{
		pub:       pub,
		walker:    walker,
		sensorIDs: sensorIDs,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// Run publishes one reading per sensor right away and then on every tick,
// until ctx is done. Publish failures are logged and the loop continues.
func (s *Simulator) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.tick()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Simulator) tick() {
	ts := s.now().UTC()
	for _, id := range s.sensorIDs {
		v := s.walker.Next(id)
		err := s.pub.PublishReading(mqtt.ReadingMessage{SensorID: id, Timestamp: ts, Value: &v})
		if err != nil {
			s.logger.Warn("publish reading failed", "sensor_id", id, "error", err)
			continue
		}
		s.logger.Info("reading published", "sensor_id", id, "value", v)
	}
}
