package worker

import (
	"context"
	"fmt"

	"omgplace/internal/app/marketplace/repository"
	"omgplace/internal/app/marketplace/service"
	"omgplace/pkg/logger"
	"omgplace/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// RatingReconciler периодически пересчитывает рейтинг всех активных товаров.
// Пересчет идемпотентен, поэтому воркер чинит любой дрифт между
// сохраненным рейтингом и актуальными отзывами.
type RatingReconciler struct {
	cron         *cron.Cron
	productRepo  repository.ProductRepository
	ratingPusher service.RatingPusher
}

func NewRatingReconciler(productRepo repository.ProductRepository, ratingPusher service.RatingPusher) *RatingReconciler {
	return &RatingReconciler{
		cron:         cron.New(),
		productRepo:  productRepo,
		ratingPusher: ratingPusher,
	}
}

// Start регистрирует задачу по расписанию и сразу выполняет первый проход
func (r *RatingReconciler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting rating reconciler")

	_, err := r.cron.AddFunc(schedule, func() {
		if err := r.Reconcile(ctx); err != nil {
			logger.Error().Err(err).Msg("Rating reconciliation pass failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule rating reconciler: %w", err)
	}

	r.cron.Start()

	if err := r.Reconcile(ctx); err != nil {
		logger.Warn().Err(err).Msg("Initial rating reconciliation failed")
	}

	return nil
}

// Reconcile выполняет один полный проход по активным товарам
// Ошибка одного товара не прерывает проход
func (r *RatingReconciler) Reconcile(ctx context.Context) error {
	timer := metrics.NewTimer()

	ids, err := r.productRepo.GetActiveIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active products: %w", err)
	}

	var failed int
	for _, id := range ids {
		if _, err := r.ratingPusher.PushProductRating(ctx, id); err != nil {
			failed++
			metrics.WorkerRatingsReconciled.WithLabelValues("failed").Inc()
			logger.Warn().Err(err).Str("product_id", id.String()).Msg("Failed to reconcile product rating")
			continue
		}
		metrics.WorkerRatingsReconciled.WithLabelValues("success").Inc()
	}

	metrics.WorkerReconcileDuration.Observe(timer.Seconds())
	logger.Info().
		Int("total", len(ids)).
		Int("failed", failed).
		Float64("duration_seconds", timer.Seconds()).
		Msg("Rating reconciliation pass completed")

	return nil
}

// Stop останавливает планировщик и дожидается текущей задачи
func (r *RatingReconciler) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Rating reconciler stopped")
}
