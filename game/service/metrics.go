package service

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
)

// MeterName is the instrumentation scope of the service counters
const MeterName = "github.com/wricardo/mcp-training/rubertaxi/game/service"

type serviceMetrics struct {
	ticks    metric.Int64Counter
	jobs     metric.Int64Counter
	earned   metric.Float64Counter
	fuel     metric.Float64Counter
	sessions metric.Int64Counter
}

func newServiceMetrics(meter metric.Meter, logger zerolog.Logger) *serviceMetrics {
	m := &serviceMetrics{}
	var err error

	if m.ticks, err = meter.Int64Counter("rubertaxi.ticks",
		metric.WithDescription("Simulation ticks executed"),
		metric.WithUnit("{tick}")); err != nil {
		logger.Warn().Err(err).Msg("ticks counter unavailable")
		m.ticks = noop.Int64Counter{}
	}
	if m.jobs, err = meter.Int64Counter("rubertaxi.jobs.completed",
		metric.WithDescription("Fares delivered"),
		metric.WithUnit("{job}")); err != nil {
		logger.Warn().Err(err).Msg("jobs counter unavailable")
		m.jobs = noop.Int64Counter{}
	}
	if m.earned, err = meter.Float64Counter("rubertaxi.money.earned",
		metric.WithDescription("Fare money credited"),
		metric.WithUnit("{dollar}")); err != nil {
		logger.Warn().Err(err).Msg("earnings counter unavailable")
		m.earned = noop.Float64Counter{}
	}
	if m.fuel, err = meter.Float64Counter("rubertaxi.fuel.purchased",
		metric.WithDescription("Fuel units bought at pumps")); err != nil {
		logger.Warn().Err(err).Msg("fuel counter unavailable")
		m.fuel = noop.Float64Counter{}
	}
	if m.sessions, err = meter.Int64Counter("rubertaxi.sessions.created",
		metric.WithDescription("Game sessions created"),
		metric.WithUnit("{session}")); err != nil {
		logger.Warn().Err(err).Msg("sessions counter unavailable")
		m.sessions = noop.Int64Counter{}
	}

	return m
}

func (m *serviceMetrics) observe(ctx context.Context, configID string, ticks int, events []engine.Event) {
	attrs := metric.WithAttributes(attribute.String("config", configID))

	if ticks > 0 {
		m.ticks.Add(ctx, int64(ticks), attrs)
	}
	for _, ev := range events {
		switch ev.Type {
		case engine.EventJobCompleted:
			m.jobs.Add(ctx, 1, attrs)
		case engine.EventMoneyEarned:
			m.earned.Add(ctx, ev.Amount, attrs)
		case engine.EventFuelPurchased:
			m.fuel.Add(ctx, ev.Amount, attrs)
		}
	}
}

func (m *serviceMetrics) sessionCreated(ctx context.Context, configID string) {
	m.sessions.Add(ctx, 1, metric.WithAttributes(attribute.String("config", configID)))
}
