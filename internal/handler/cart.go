package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/flicky/go-shop-services/internal/dto"
	"github.com/flicky/go-shop-services/internal/model"
)

type CartService interface {
	GetCart(ctx context.Context, userID string) (*model.Cart, error)
	AddItem(ctx context.Context, userID string, productID int64, quantity int) (*model.CartItem, error)
	RemoveItem(ctx context.Context, userID string, productID int64) error
	UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int) error
	ClearCart(ctx context.Context, userID string) error
}

type CartHandler struct {
	cartService CartService
}

func NewCartHandler(cartService CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) Register(r gin.IRouter) {
	cart := r.Group("/cart/:user_id")
	cart.GET("", h.GetCart)
	cart.DELETE("", h.ClearCart)
	cart.POST("/items", h.AddItem)
	cart.PUT("/items/:product_id", h.UpdateItem)
	cart.DELETE("/items/:product_id", h.RemoveItem)
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.cartService.GetCart(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]dto.CartItemResponse, 0, len(cart.Items))
	for i := range cart.Items {
		items = append(items, toCartItemResponse(&cart.Items[i]))
	}
	c.JSON(http.StatusOK, dto.CartResponse{UserID: cart.UserID, Items: items, Total: cart.Total})
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := h.cartService.AddItem(c.Request.Context(), c.Param("user_id"), req.ProductID, quantity)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toCartItemResponse(item))
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	productID, ok := pathID(c, "product_id")
	if !ok {
		return
	}
	quantity, err := strconv.Atoi(c.Query("quantity"))
	if err != nil {
		badRequest(c, "quantity query parameter must be an integer")
		return
	}

	if err := h.cartService.UpdateQuantity(c.Request.Context(), c.Param("user_id"), productID, quantity); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Item quantity updated"})
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := pathID(c, "product_id")
	if !ok {
		return
	}

	if err := h.cartService.RemoveItem(c.Request.Context(), c.Param("user_id"), productID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Item removed from cart"})
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.ClearCart(c.Request.Context(), c.Param("user_id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Cart cleared"})
}

func toCartItemResponse(item *model.CartItem) dto.CartItemResponse {
	return dto.CartItemResponse{
		ID:           item.ID,
		UserID:       item.UserID,
		ProductID:    item.ProductID,
		Quantity:     item.Quantity,
		ProductName:  item.ProductName,
		ProductPrice: item.ProductPrice,
		CreatedAt:    item.CreatedAt,
	}
}
