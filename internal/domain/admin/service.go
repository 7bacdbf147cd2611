package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/caredesk/caredesk/internal/platform/cache"
)

// topMedicinesLimit bounds the most-prescribed list on the dashboard.
const topMedicinesLimit = 10

type Service struct {
	repo  StatsRepository
	cache cache.Store
	ttl   time.Duration
	log   zerolog.Logger
}

func NewService(repo StatsRepository, store cache.Store, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{repo: repo, cache: store, ttl: ttl, log: log}
}

// Dashboard returns the cached aggregates, recomputing on miss. Unlike the
// per-patient report path, a query fault here is surfaced: an admin staring
// at silently-zero numbers is worse than an error.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	key := cache.Key("admin_dashboard")

	var cached Dashboard
	if hit, err := cache.GetJSON(ctx, s.cache, key, &cached); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if hit {
		return &cached, nil
	}

	d := &Dashboard{GeneratedAt: time.Now()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.PatientCount, err = s.repo.PatientCount(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.DoctorCount, err = s.repo.DoctorCount(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.AppointmentsByStatus, err = s.repo.AppointmentsByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.RiskLevels, err = s.repo.RiskLevelDistribution(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.TopMedicines, err = s.repo.TopMedicines(gctx, topMedicinesLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard aggregates: %w", err)
	}

	for _, count := range d.AppointmentsByStatus {
		d.AppointmentCount += count
	}
	if d.TopMedicines == nil {
		d.TopMedicines = []MedicineCount{}
	}

	if err := cache.SetJSON(ctx, s.cache, key, d, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return d, nil
}
