package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/app/dto"
	"github.com/nuber-eats/nuber/app/models"
	"github.com/nuber-eats/nuber/pkg/auth"
)

type orderFixture struct {
	db       *gorm.DB
	svc      *OrderService
	events   *recordingPublisher
	owner    *auth.Principal
	customer *auth.Principal
	rest     *models.Restaurant
	burger   *models.Dish
	noodles  *models.Dish
}

func newOrderFixture(t *testing.T) *orderFixture {
	db := newDB(t)
	f := &orderFixture{db: db, events: &recordingPublisher{}}
	f.svc = NewOrderService(db, f.events)
	f.owner = seedUser(t, db, "owner@nuber.test", auth.RoleOwner)
	f.customer = seedUser(t, db, "client@nuber.test", auth.RoleClient)
	f.rest = seedRestaurant(t, db, f.owner, "Burger Palace")

	burger := sizeDish()
	burger.RestaurantID = f.rest.ID
	f.burger = seedDish(t, db, burger)

	noodles := spicyDish()
	noodles.RestaurantID = f.rest.ID
	f.noodles = seedDish(t, db, noodles)
	return f
}

func (f *orderFixture) cart() dto.CreateOrderInput {
	return dto.CreateOrderInput{
		RestaurantID: f.rest.ID,
		Items: []dto.CreateOrderItemInput{
			{DishID: f.noodles.ID, Options: []dto.OrderItemOptionInput{{Name: "Spicy"}}},
			{DishID: f.burger.ID, Options: []dto.OrderItemOptionInput{{Name: "Size", Choice: strPtr("Large")}}},
		},
	}
}

func (f *orderFixture) place(t *testing.T) *models.Order {
	t.Helper()
	out := f.svc.CreateOrder(context.Background(), f.customer, f.cart())
	require.True(t, out.OK, out.Error)

	var order models.Order
	require.NoError(t, f.db.Preload("Items").Preload("Restaurant").First(&order, out.OrderID).Error)
	return &order
}

func TestCreateOrder_PersistsOrderAndItems(t *testing.T) {
	f := newOrderFixture(t)

	order := f.place(t)

	assert.Equal(t, models.OrderPending, order.Status)
	assert.True(t, money("21.50").Equal(order.Total), order.Total.String())
	assert.Equal(t, f.customer.ID, *order.CustomerID)
	assert.Equal(t, f.rest.ID, *order.RestaurantID)
	assert.Nil(t, order.DriverID)

	require.Len(t, order.Items, 2)
	assert.Equal(t, f.noodles.ID, *order.Items[0].DishID)
	assert.True(t, money("9.50").Equal(order.Items[0].Price))
	assert.Equal(t, f.burger.ID, *order.Items[1].DishID)
	assert.True(t, money("12.00").Equal(order.Items[1].Price))
	assert.Equal(t, []models.OrderItemOption{{Name: "Size", Choice: strPtr("Large")}}, order.Items[1].Options)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, f.owner.ID, f.events.events[0].userID)
	assert.Equal(t, EventOrderCreated, f.events.events[0].event.Type)
}

func TestCreateOrder_RestaurantNotFound(t *testing.T) {
	f := newOrderFixture(t)
	in := f.cart()
	in.RestaurantID = 999

	out := f.svc.CreateOrder(context.Background(), f.customer, in)

	assert.Equal(t, dto.Fail("Restaurant not found"), out.Output)
	assert.Zero(t, count(t, f.db, &models.Order{}))
	assert.Empty(t, f.events.events)
}

func TestCreateOrder_DishNotFoundWritesNothing(t *testing.T) {
	f := newOrderFixture(t)
	in := f.cart()
	in.Items = append(in.Items, dto.CreateOrderItemInput{DishID: 999})

	out := f.svc.CreateOrder(context.Background(), f.customer, in)

	assert.Equal(t, dto.Fail("Dish not found"), out.Output)
	assert.Zero(t, count(t, f.db, &models.Order{}))
	assert.Zero(t, count(t, f.db, &models.OrderItem{}))
}

func TestCreateOrder_ItemFailureRollsBackOrder(t *testing.T) {
	f := newOrderFixture(t)
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_items", func(tx *gorm.DB) {
		if tx.Statement.Table == "order_items" {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))

	out := f.svc.CreateOrder(context.Background(), f.customer, f.cart())

	assert.Equal(t, dto.Fail("Could not create order"), out.Output)
	assert.Zero(t, count(t, f.db, &models.Order{}))
	assert.Zero(t, count(t, f.db, &models.OrderItem{}))
}

func TestCreateOrder_PricesCurrentCatalog(t *testing.T) {
	f := newOrderFixture(t)
	require.NoError(t, f.db.Model(f.burger).Update("price", money("11.00")).Error)

	order := f.place(t)
	assert.True(t, money("22.50").Equal(order.Total), order.Total.String())
}

func TestGetOrder_Visibility(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t)
	stranger := seedUser(t, f.db, "stranger@nuber.test", auth.RoleClient)
	ctx := context.Background()

	for _, p := range []*auth.Principal{f.customer, f.owner} {
		out := f.svc.GetOrder(ctx, p, dto.OrderIDInput{ID: order.ID})
		require.True(t, out.OK, out.Error)
		assert.Equal(t, order.ID, out.Order.ID)
	}

	assert.Equal(t, "You can't see that", f.svc.GetOrder(ctx, stranger, dto.OrderIDInput{ID: order.ID}).Error)
	assert.Equal(t, "Order not found.", f.svc.GetOrder(ctx, f.customer, dto.OrderIDInput{ID: 999}).Error)
}

func TestEditOrder_Lifecycle(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t)
	driver := seedUser(t, f.db, "driver@nuber.test", auth.RoleDelivery)
	otherDriver := seedUser(t, f.db, "driver2@nuber.test", auth.RoleDelivery)
	ctx := context.Background()

	edit := func(p *auth.Principal, to models.OrderStatus) dto.Output {
		return f.svc.EditOrder(ctx, p, dto.EditOrderInput{ID: order.ID, Status: to})
	}

	assert.False(t, edit(f.customer, models.OrderCooking).OK, "customers don't cook")
	assert.False(t, edit(f.owner, models.OrderCooked).OK, "no skipping steps")
	require.True(t, edit(f.owner, models.OrderCooking).OK)
	require.True(t, edit(f.owner, models.OrderCooked).OK)
	assert.False(t, edit(f.owner, models.OrderPickedUp).OK, "owners don't drive")

	require.True(t, edit(driver, models.OrderPickedUp).OK)
	assert.Equal(t, "You can't see that", edit(otherDriver, models.OrderDelivered).Error)
	require.True(t, edit(driver, models.OrderDelivered).OK)

	var stored models.Order
	require.NoError(t, f.db.First(&stored, order.ID).Error)
	assert.Equal(t, models.OrderDelivered, stored.Status)
	require.NotNil(t, stored.DriverID)
	assert.Equal(t, driver.ID, *stored.DriverID)
	assert.Equal(t, int64(2), count(t, f.db, &models.OrderItem{}))

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, EventOrderUpdated, last.event.Type)
}

func TestEditOrder_OnlyOwningRestaurantCooks(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t)
	rival := seedUser(t, f.db, "rival@nuber.test", auth.RoleOwner)

	out := f.svc.EditOrder(context.Background(), rival, dto.EditOrderInput{ID: order.ID, Status: models.OrderCooking})
	assert.Equal(t, "You can't see that", out.Error)
}

func TestEditOrder_SecondDriverLosesPickupRace(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t)
	first := seedUser(t, f.db, "driver@nuber.test", auth.RoleDelivery)
	second := seedUser(t, f.db, "driver2@nuber.test", auth.RoleDelivery)
	ctx := context.Background()
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", models.OrderCooked).Error)

	// The first driver claims the order right after the second one read it.
	var fired bool
	require.NoError(t, f.db.Callback().Query().After("gorm:query").Register("test:claim_after_read", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "orders" {
			return
		}
		fired = true
		require.NoError(t, f.db.Exec("UPDATE orders SET status = ?, driver_id = ? WHERE id = ?", models.OrderPickedUp, first.ID, order.ID).Error)
	}))

	out := f.svc.EditOrder(ctx, second, dto.EditOrderInput{ID: order.ID, Status: models.OrderPickedUp})
	require.True(t, fired)
	assert.Equal(t, "You can't do that.", out.Error)

	var stored models.Order
	require.NoError(t, f.db.First(&stored, order.ID).Error)
	require.NotNil(t, stored.DriverID)
	assert.Equal(t, first.ID, *stored.DriverID)
}
