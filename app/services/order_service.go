package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/app/dto"
	"github.com/nuber-eats/nuber/app/models"
	"github.com/nuber-eats/nuber/app/repositories"
	"github.com/nuber-eats/nuber/pkg/auth"
	"github.com/nuber-eats/nuber/pkg/logger"
	"github.com/nuber-eats/nuber/pkg/metrics"
	"github.com/nuber-eats/nuber/pkg/orm"
	"github.com/nuber-eats/nuber/pkg/rbac"
	"github.com/nuber-eats/nuber/pkg/ws"
)

const (
	errCreateOrder   = "Could not create order"
	errOrderNotFound = "Order not found."
	errCantSeeOrder  = "You can't see that"
	errCantEditOrder = "You can't do that."
	errLoadOrder     = "Could not load order."
	errEditOrder     = "Could not edit order."
)

// Order feed event types.
const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
)

// Publisher delivers events to the live feed of a user.
type Publisher interface {
	Publish(userID uint, ev ws.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(uint, ws.Event) {}

// transitions maps a target status to the roles allowed to move an order
// into it.
var transitions = map[models.OrderStatus]*rbac.Policy{
	models.OrderCooking:   rbac.Roles(auth.RoleOwner),
	models.OrderCooked:    rbac.Roles(auth.RoleOwner),
	models.OrderPickedUp:  rbac.Roles(auth.RoleDelivery),
	models.OrderDelivered: rbac.Roles(auth.RoleDelivery),
}

type OrderService struct {
	db     *gorm.DB
	orders *repositories.OrderRepository
	events Publisher
}

// NewOrderService builds the service. A nil events disables the live feed.
func NewOrderService(db *gorm.DB, events Publisher) *OrderService {
	if events == nil {
		events = nopPublisher{}
	}
	return &OrderService{
		db:     db,
		orders: repositories.NewOrderRepository(db),
		events: events,
	}
}

// CreateOrder prices the cart against the current catalog and stores the
// order with all of its items, all in one transaction. On any failure
// nothing is written.
func (s *OrderService) CreateOrder(ctx context.Context, customer *auth.Principal, in dto.CreateOrderInput) dto.CreateOrderOutput {
	if customer == nil {
		return dto.CreateOrderOutput{Output: dto.Fail(rbac.ErrForbidden.Error())}
	}
	log := logger.WithCtx(ctx)

	var (
		order   *models.Order
		ownerID uint
	)
	err := orm.Use(s.db).Transaction(ctx, func(tx *orm.Query) error {
		catalog := repositories.NewCatalogRepository(tx.Gorm())
		priced, err := ComputeOrderTotal(ctx, catalog, in.RestaurantID, lineItems(in.Items))
		if err != nil {
			return err
		}

		customerID := customer.ID
		restaurantID := priced.Restaurant.ID
		order = &models.Order{
			CustomerID:   &customerID,
			RestaurantID: &restaurantID,
			Items:        priced.Items,
			Total:        priced.Total,
			Status:       models.OrderPending,
		}
		ownerID = priced.Restaurant.OwnerID
		return repositories.NewOrderRepository(tx.Gorm()).Create(ctx, order)
	})

	switch {
	case errors.Is(err, ErrRestaurantNotFound):
		metrics.OrdersCreated.WithLabelValues("restaurant_not_found").Inc()
		return dto.CreateOrderOutput{Output: dto.Fail(err.Error())}
	case errors.Is(err, ErrDishNotFound):
		metrics.OrdersCreated.WithLabelValues("dish_not_found").Inc()
		return dto.CreateOrderOutput{Output: dto.Fail(err.Error())}
	case err != nil:
		metrics.OrdersCreated.WithLabelValues("failed").Inc()
		log.Error("orders: create failed", "restaurant_id", in.RestaurantID, "error", err)
		return dto.CreateOrderOutput{Output: dto.Fail(errCreateOrder)}
	}

	metrics.OrdersCreated.WithLabelValues("ok").Inc()
	log.Info("orders: created", "order_id", order.ID, "total", order.Total.StringFixed(2))
	s.events.Publish(ownerID, ws.Event{Type: EventOrderCreated, Data: OrderEvent(order)})

	return dto.CreateOrderOutput{Output: dto.OK(), OrderID: order.ID}
}

func lineItems(in []dto.CreateOrderItemInput) []LineItem {
	out := make([]LineItem, len(in))
	for i, item := range in {
		opts := make([]models.OrderItemOption, len(item.Options))
		for j, o := range item.Options {
			opts[j] = models.OrderItemOption{Name: o.Name, Choice: o.Choice}
		}
		out[i] = LineItem{DishID: item.DishID, Options: opts}
	}
	return out
}

// GetOrder returns an order to its customer, its driver or the owner of its
// restaurant.
func (s *OrderService) GetOrder(ctx context.Context, p *auth.Principal, in dto.OrderIDInput) dto.OrderOutput {
	order, err := s.orders.FindByID(ctx, in.ID)
	if err != nil {
		logger.WithCtx(ctx).Error("orders: load failed", "order_id", in.ID, "error", err)
		return dto.OrderOutput{Output: dto.Fail(errLoadOrder)}
	}
	if order == nil {
		return dto.OrderOutput{Output: dto.Fail(errOrderNotFound)}
	}
	if !canSee(p, order) {
		return dto.OrderOutput{Output: dto.Fail(errCantSeeOrder)}
	}
	return dto.OrderOutput{Output: dto.OK(), Order: order}
}

// EditOrder moves an order one step along its lifecycle. Owners cook,
// drivers pick up and deliver. The first driver to pick an order up is
// assigned to it.
func (s *OrderService) EditOrder(ctx context.Context, p *auth.Principal, in dto.EditOrderInput) dto.Output {
	log := logger.WithCtx(ctx)

	order, err := s.orders.FindByID(ctx, in.ID)
	if err != nil {
		log.Error("orders: load failed", "order_id", in.ID, "error", err)
		return dto.Fail(errLoadOrder)
	}
	if order == nil {
		return dto.Fail(errOrderNotFound)
	}

	isDriverPickup := p != nil && p.Role == auth.RoleDelivery && in.Status == models.OrderPickedUp && order.DriverID == nil
	if !isDriverPickup && !canSee(p, order) {
		return dto.Fail(errCantSeeOrder)
	}
	if !canMove(p, order, in.Status) {
		return dto.Fail(errCantEditOrder)
	}

	from := order.Status
	claim := in.Status == models.OrderPickedUp && order.DriverID == nil
	order.Status = in.Status
	if claim {
		driverID := p.ID
		order.DriverID = &driverID
	}
	moved, err := s.orders.UpdateStatus(ctx, order, from, claim)
	if err != nil {
		log.Error("orders: update failed", "order_id", order.ID, "error", err)
		return dto.Fail(errEditOrder)
	}
	if !moved {
		return dto.Fail(errCantEditOrder)
	}

	log.Info("orders: status changed", "order_id", order.ID, "status", order.Status)
	ev := ws.Event{Type: EventOrderUpdated, Data: OrderEvent(order)}
	for _, uid := range participants(order) {
		s.events.Publish(uid, ev)
	}
	return dto.OK()
}

func canSee(p *auth.Principal, o *models.Order) bool {
	if p == nil {
		return false
	}
	switch {
	case o.CustomerID != nil && *o.CustomerID == p.ID:
		return true
	case o.DriverID != nil && *o.DriverID == p.ID:
		return true
	case o.Restaurant != nil && o.Restaurant.OwnerID == p.ID:
		return true
	}
	return false
}

func canMove(p *auth.Principal, o *models.Order, to models.OrderStatus) bool {
	policy, ok := transitions[to]
	if !ok || !o.Status.Next(to) || !rbac.Allow(policy, p) {
		return false
	}
	switch p.Role {
	case auth.RoleOwner:
		return o.Restaurant != nil && o.Restaurant.OwnerID == p.ID
	case auth.RoleDelivery:
		return o.DriverID == nil || *o.DriverID == p.ID
	}
	return false
}

func participants(o *models.Order) []uint {
	var ids []uint
	if o.CustomerID != nil {
		ids = append(ids, *o.CustomerID)
	}
	if o.DriverID != nil {
		ids = append(ids, *o.DriverID)
	}
	if o.Restaurant != nil {
		ids = append(ids, o.Restaurant.OwnerID)
	}
	return ids
}

// OrderEvent is the feed payload for an order.
func OrderEvent(o *models.Order) map[string]interface{} {
	return map[string]interface{}{
		"id":           o.ID,
		"status":       o.Status,
		"total":        o.Total.StringFixed(2),
		"restaurantId": o.RestaurantID,
		"customerId":   o.CustomerID,
		"driverId":     o.DriverID,
	}
}
