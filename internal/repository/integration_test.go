package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/go-shop-services/internal/model"
)

func strPtr(s string) *string { return &s }

func TestProductRepo_CRUD(t *testing.T) {
	cleanupTable(t, "products")

	repo := NewProductRepository(testPool)
	ctx := context.Background()

	product := &model.Product{
		Name: "Test", Description: strPtr("Desc"),
		Price: decimal.NewFromFloat(29.99), Stock: 100,
	}
	require.NoError(t, repo.Create(ctx, product))
	assert.NotZero(t, product.ID)
	assert.False(t, product.CreatedAt.IsZero())

	found, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Test", found.Name)
	assert.True(t, product.Price.Equal(found.Price))
	assert.Nil(t, found.Category)

	stock := 42
	updated, err := repo.Update(ctx, product.ID, model.ProductPatch{Name: strPtr("Updated"), Stock: &stock})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Updated", updated.Name)
	assert.Equal(t, 42, updated.Stock)
	assert.Equal(t, "Desc", *updated.Description)

	products, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, repo.Delete(ctx, product.ID))
	found, err = repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
	assert.ErrorIs(t, repo.Delete(ctx, product.ID), pgx.ErrNoRows)

	missing, err := repo.Update(ctx, product.ID, model.ProductPatch{Stock: &stock})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCartRepo_AddIsAdditive(t *testing.T) {
	cleanupTable(t, "cart_items")

	repo := NewCartRepository(testPool)
	ctx := context.Background()

	first := &model.CartItem{UserID: "u1", ProductID: 7, Quantity: 2}
	require.NoError(t, repo.AddItem(ctx, first))
	second := &model.CartItem{UserID: "u1", ProductID: 7, Quantity: 3}
	require.NoError(t, repo.AddItem(ctx, second))

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	items, err := repo.ListItems(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestCartRepo_RemoveAndClear(t *testing.T) {
	cleanupTable(t, "cart_items")

	repo := NewCartRepository(testPool)
	ctx := context.Background()

	assert.ErrorIs(t, repo.DeleteItem(ctx, "u2", 1), pgx.ErrNoRows)
	assert.ErrorIs(t, repo.UpdateQuantity(ctx, "u2", 1, 4), pgx.ErrNoRows)
	require.NoError(t, repo.ClearCart(ctx, "u2"))

	require.NoError(t, repo.AddItem(ctx, &model.CartItem{UserID: "u2", ProductID: 1, Quantity: 1}))
	require.NoError(t, repo.AddItem(ctx, &model.CartItem{UserID: "u2", ProductID: 2, Quantity: 1}))
	require.NoError(t, repo.UpdateQuantity(ctx, "u2", 1, 4))
	require.NoError(t, repo.DeleteItem(ctx, "u2", 2))

	items, err := repo.ListItems(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)

	require.NoError(t, repo.ClearCart(ctx, "u2"))
	items, err = repo.ListItems(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOrderRepo_CreateAndPay(t *testing.T) {
	cleanupTable(t, "orders")

	repo := NewOrderRepository(testPool)
	ctx := context.Background()

	order := &model.Order{
		UserID: "u1", Status: model.OrderStatusPending,
		TotalAmount: decimal.NewFromInt(30),
		Items: []model.OrderItem{
			{ProductID: 1, ProductName: "Laptop", Quantity: 3, Price: decimal.NewFromInt(10)},
		},
	}
	require.NoError(t, repo.Create(ctx, order))
	assert.NotZero(t, order.ID)

	found, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, model.OrderStatusPending, found.Status)
	assert.Nil(t, found.PaymentID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Laptop", found.Items[0].ProductName)
	assert.True(t, decimal.NewFromInt(10).Equal(found.Items[0].Price))

	paymentID := uuid.NewString()
	require.NoError(t, repo.MarkPaid(ctx, order.ID, paymentID))
	found, err = repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, found.Status)
	require.NotNil(t, found.PaymentID)
	assert.Equal(t, paymentID, *found.PaymentID)

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, model.OrderStatusShipped))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, order.ID+1000, model.OrderStatusShipped), pgx.ErrNoRows)

	byUser, err := repo.ListByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	all, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPaymentRepo_LatestForOrder(t *testing.T) {
	cleanupTable(t, "payments")

	repo := NewPaymentRepository(testPool)
	ctx := context.Background()

	first := &model.Payment{ID: uuid.NewString(), OrderID: 9, Amount: decimal.NewFromInt(30), Status: model.PaymentStatusFailed}
	require.NoError(t, repo.Create(ctx, first))
	second := &model.Payment{ID: uuid.NewString(), OrderID: 9, Amount: decimal.NewFromInt(30), Status: model.PaymentStatusSuccess}
	require.NoError(t, repo.Create(ctx, second))

	latest, err := repo.GetLatestByOrderID(ctx, 9)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.PaymentStatusFailed, got.Status)

	none, err := repo.GetLatestByOrderID(ctx, 10)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestCreate_ReturnsStoredMoneyScale(t *testing.T) {
	cleanupTable(t, "products")
	cleanupTable(t, "payments")
	ctx := context.Background()

	product := &model.Product{Name: "Rounded", Price: decimal.RequireFromString("10.005"), Stock: 1}
	require.NoError(t, NewProductRepository(testPool).Create(ctx, product))
	assert.Equal(t, "10.01", product.Price.StringFixed(2))
	assert.True(t, product.Price.Equal(decimal.RequireFromString("10.01")))

	payment := &model.Payment{ID: uuid.NewString(), OrderID: 1, Amount: decimal.RequireFromString("19.999"), Status: model.PaymentStatusSuccess}
	require.NoError(t, NewPaymentRepository(testPool).Create(ctx, payment))
	assert.True(t, payment.Amount.Equal(decimal.RequireFromString("20")))
}
