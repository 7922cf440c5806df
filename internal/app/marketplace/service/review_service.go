package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"omgplace/internal/app/marketplace/entity"
	"omgplace/internal/app/marketplace/repository"
	"omgplace/internal/app/marketplace/util"
	"omgplace/pkg/logger"
	"omgplace/pkg/metrics"

	"github.com/google/uuid"
)

// ReviewService обрабатывает бизнес-логику отзывов.
// Мутация отзыва и пересчет рейтинга товара выполняются в одной
// транзакции: рейтинг никогда не расходится с множеством активных отзывов.
type ReviewService struct {
	reviewRepo   repository.ReviewRepository
	productRepo  repository.ProductRepository
	ratingPusher RatingPusher
	txManager    repository.TxManager
	publisher    util.MessagePublisher
	audit        repository.AuditRepository
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	ratingPusher RatingPusher,
	txManager repository.TxManager,
	publisher util.MessagePublisher,
	audit repository.AuditRepository,
) *ReviewService {
	return &ReviewService{
		reviewRepo:   reviewRepo,
		productRepo:  productRepo,
		ratingPusher: ratingPusher,
		txManager:    txManager,
		publisher:    publisher,
		audit:        audit,
	}
}

// CreateReview создает новый отзыв
// Порядок проверок: роль -> существование товара -> повторный отзыв.
// Вставка отзыва и пересчет рейтинга коммитятся вместе или откатываются вместе.
func (s *ReviewService) CreateReview(ctx context.Context, req *entity.CreateReviewRequest, user entity.AuthUser) (*entity.Review, error) {
	if !user.Role.CanReview() {
		return nil, ErrSellerCannotReview
	}

	if _, err := s.productRepo.GetByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	already, err := s.UserAlreadyReviewedProduct(ctx, req.ProductID, user.ID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, ErrCanReviewOnlyOnce
	}

	review := &entity.Review{
		ID:          uuid.New(),
		UserID:      user.ID,
		ProductID:   req.ProductID,
		Comment:     req.Comment,
		Grade:       req.Grade,
		CommentDate: time.Now(),
		IsActive:    true,
	}

	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.reviewRepo.Create(txCtx, review); err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}
		if _, err := s.ratingPusher.PushProductRating(txCtx, review.ProductID); err != nil {
			return fmt.Errorf("failed to push product rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ReviewsCreated.Inc()
	metrics.ReviewsRating.Observe(float64(review.Grade))
	s.publishReviewEvent(ctx, "REVIEW_CREATED", review)
	s.writeAudit(ctx, review.ID, "create", user.ID)

	return review, nil
}

// UserAlreadyReviewedProduct проверяет наличие активного отзыва
// пользователя на товар
func (s *ReviewService) UserAlreadyReviewedProduct(ctx context.Context, productID, userID uuid.UUID) (bool, error) {
	exists, err := s.reviewRepo.ExistsForUserProduct(ctx, productID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}
	return exists, nil
}

// DeleteReview мягко удаляет отзыв (только admin) и пересчитывает
// рейтинг затронутого товара в той же транзакции
func (s *ReviewService) DeleteReview(ctx context.Context, id uuid.UUID, user entity.AuthUser) error {
	if !user.Role.CanModerate() {
		return ErrAccessDenied
	}

	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to get review: %w", err)
	}

	// Защитная проверка целостности: отзыв не должен ссылаться
	// на отсутствующий товар
	if _, err := s.productRepo.GetByID(ctx, review.ProductID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to get product: %w", err)
	}

	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.reviewRepo.Delete(txCtx, id); err != nil {
			if errors.Is(err, repository.ErrReviewNotFound) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("failed to delete review: %w", err)
		}
		if _, err := s.ratingPusher.PushProductRating(txCtx, review.ProductID); err != nil {
			return fmt.Errorf("failed to push product rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishReviewEvent(ctx, "REVIEW_DELETED", review)
	s.writeAudit(ctx, id, "delete", user.ID)

	return nil
}

// GetReviews возвращает все активные отзывы без пагинации
func (s *ReviewService) GetReviews(ctx context.Context) ([]entity.Review, error) {
	reviews, err := s.reviewRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	return reviews, nil
}

// publishReviewEvent отправляет событие об отзыве в Kafka
// Отзыв уже закоммичен, проблемы с Kafka не критичны
func (s *ReviewService) publishReviewEvent(ctx context.Context, eventType string, review *entity.Review) {
	event := entity.ReviewEvent{
		EventType: eventType,
		ReviewID:  review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Grade:     review.Grade,
		Timestamp: time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal review event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, event.ReviewID.String(), eventData); err != nil {
		logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish review event")
	}
}

func (s *ReviewService) writeAudit(ctx context.Context, id uuid.UUID, action string, actorID uuid.UUID) {
	entry := &entity.AuditEntry{
		Entity:    "review",
		EntityID:  id.String(),
		Action:    action,
		ActorID:   actorID.String(),
		Timestamp: time.Now(),
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		logger.Warn().Err(err).Str("review_id", id.String()).Msg("failed to write audit entry")
	}
}
