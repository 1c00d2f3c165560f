package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/app/dto"
	"github.com/nuber-eats/nuber/app/models"
	"github.com/nuber-eats/nuber/app/repositories"
	"github.com/nuber-eats/nuber/pkg/auth"
	"github.com/nuber-eats/nuber/pkg/logger"
	"github.com/nuber-eats/nuber/pkg/orm"
)

const (
	errPaymentRestaurant = "Restaurant not found."
	errPaymentNotAllowed = "You are not allowed to do this."
	errCreatePayment     = "Could not create payment."
	errLoadPayments      = "Could not load payments."
)

var (
	errNoRestaurant = errors.New(errPaymentRestaurant)
	errNotAllowed   = errors.New(errPaymentNotAllowed)
)

// PaymentService records promotion payments. A payment promotes the
// restaurant for the configured period.
type PaymentService struct {
	db       *gorm.DB
	payments *repositories.PaymentRepository
	period   time.Duration
	now      func() time.Time
}

func NewPaymentService(db *gorm.DB, period time.Duration) *PaymentService {
	return &PaymentService{
		db:       db,
		payments: repositories.NewPaymentRepository(db),
		period:   period,
		now:      time.Now,
	}
}

func (s *PaymentService) CreatePayment(ctx context.Context, owner *auth.Principal, in dto.CreatePaymentInput) dto.Output {
	err := orm.Use(s.db).Transaction(ctx, func(tx *orm.Query) error {
		catalog := repositories.NewCatalogRepository(tx.Gorm())

		rest, err := catalog.FindRestaurant(ctx, in.RestaurantID)
		if err != nil {
			return err
		}
		if rest == nil {
			return errNoRestaurant
		}
		if rest.OwnerID != owner.ID {
			return errNotAllowed
		}

		payment := &models.Payment{TransactionID: in.TransactionID, UserID: owner.ID, RestaurantID: rest.ID}
		if err := repositories.NewPaymentRepository(tx.Gorm()).Create(ctx, payment); err != nil {
			return err
		}

		return catalog.Promote(ctx, rest.ID, s.now().Add(s.period))
	})
	switch {
	case errors.Is(err, errNoRestaurant), errors.Is(err, errNotAllowed):
		return dto.Fail(err.Error())
	case err != nil:
		logger.WithCtx(ctx).Error("payments: create", "restaurant_id", in.RestaurantID, "error", err)
		return dto.Fail(errCreatePayment)
	}
	return dto.OK()
}

// GetPayments lists the caller's own payments.
func (s *PaymentService) GetPayments(ctx context.Context, owner *auth.Principal) dto.PaymentsOutput {
	list, err := s.payments.ForUser(ctx, owner.ID)
	if err != nil {
		logger.WithCtx(ctx).Error("payments: list", "user_id", owner.ID, "error", err)
		return dto.PaymentsOutput{Output: dto.Fail(errLoadPayments)}
	}
	return dto.PaymentsOutput{Output: dto.OK(), Payments: list}
}
