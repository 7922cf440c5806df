package entity

import (
	"time"

	"github.com/google/uuid"
)

// Role представляет роль пользователя в маркетплейсе.
// Закрытый тип вместо сравнения "сырых" строк — опечатка в роли
// становится невалидной ролью, а не тихо проходящей проверкой.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Valid проверяет что роль входит в закрытый набор
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// CanSell - может ли роль создавать и изменять товары
func (r Role) CanSell() bool {
	return r == RoleSeller || r == RoleAdmin
}

// CanModerate - может ли роль удалять чужие отзывы
func (r Role) CanModerate() bool {
	return r == RoleAdmin
}

// CanReview - может ли роль оставлять отзывы (продавцы не могут)
func (r Role) CanReview() bool {
	return r != RoleSeller
}

// Category представляет категорию товаров
// Категории образуют дерево через ParentID (опционально)
type Category struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string     `json:"name" gorm:"not null"`
	ParentID  *uuid.UUID `json:"parent_id" gorm:"type:uuid"`
	IsActive  bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time  `json:"created_at"`
}

// Product представляет товар в каталоге
// Rating - производное поле, пересчитывается при каждом изменении отзывов
type Product struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Price       float64   `json:"price" gorm:"not null"` // Цена в базовой валюте, 2 знака
	ImageURL    string    `json:"image_url"`
	Stock       int       `json:"stock" gorm:"not null"`
	CategoryID  uuid.UUID `json:"category_id" gorm:"type:uuid;not null"`
	SellerID    uuid.UUID `json:"seller_id" gorm:"type:uuid;not null"`
	Rating      float64   `json:"rating" gorm:"not null;default:0"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
}

// Review представляет отзыв на товар
// Инвариант: один активный отзыв на пару (user, product)
type Review struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	ProductID   uuid.UUID `json:"product_id" gorm:"type:uuid;not null"`
	Comment     string    `json:"comment"`
	Grade       int       `json:"grade" gorm:"not null"` // Оценка от 1 до 5
	CommentDate time.Time `json:"comment_date"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
}

// User представляет пользователя
// Ядро читает пользователя только для проверок роли и владения
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // не возвращаем в JSON
	Role         Role      `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// AuthUser - аутентифицированный пользователь из JWT токена.
// Workflows доверяют этим значениям как есть, верификация токена
// остается на границе (middleware).
type AuthUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

// ProductEvent представляет событие изменения товара для Kafka
type ProductEvent struct {
	EventType string    `json:"event_type"` // PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_DELETED, PRODUCT_RATING_UPDATED
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Rating    float64   `json:"rating"`
	SellerID  uuid.UUID `json:"seller_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ReviewEvent представляет событие изменения отзыва для Kafka
type ReviewEvent struct {
	EventType string    `json:"event_type"` // REVIEW_CREATED, REVIEW_DELETED
	ReviewID  uuid.UUID `json:"review_id"`
	ProductID uuid.UUID `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
	Grade     int       `json:"grade"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditEntry - запись журнала изменений в MongoDB
// Пишется best-effort после каждой успешной мутации
type AuditEntry struct {
	Entity    string    `json:"entity" bson:"entity"` // category, product, review, user
	EntityID  string    `json:"entity_id" bson:"entity_id"`
	Action    string    `json:"action" bson:"action"` // create, update, delete
	ActorID   string    `json:"actor_id" bson:"actor_id"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}
