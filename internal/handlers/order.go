package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/casekart/casekart/internal/logging"
	authmw "github.com/casekart/casekart/internal/middleware/auth"
	"github.com/casekart/casekart/internal/models"
	"github.com/casekart/casekart/internal/mykafka"
)

type OrderHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["userID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

type placeOrderItem struct {
	ProductID uint    `json:"productId"`
	Quantity  uint    `json:"quantity"`
	Price     float64 `json:"price"`
}

type placeOrderRequest struct {
	Items           []placeOrderItem       `json:"items"`
	TotalAmount     float64                `json:"totalAmount"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

// Place runs the whole checkout as one transaction: snapshot prices, create
// the order with its items, clear the cart, then apply the simulated payment
// transition. A failure at any step rolls everything back, so the cart is
// never emptied for an order that did not materialize.
func (h *OrderHandler) Place(c echo.Context) error {
	user, ok := authmw.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Please authenticate"})
	}

	var req placeOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "items required"})
	}
	for _, it := range req.Items {
		if it.ProductID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "productId is required"})
		}
	}

	var order models.Order

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var total float64
		items := make([]models.OrderItem, 0, len(req.Items))

		for _, it := range req.Items {
			qty := it.Quantity
			if qty < 1 {
				qty = 1
			}

			// The unit price is snapshotted from the catalog, not taken from
			// the client. Only when the product row is gone does the
			// submitted price stand in.
			unitPrice := it.Price
			var product models.Product
			err := tx.First(&product, it.ProductID).Error
			switch {
			case err == nil:
				unitPrice = product.EffectivePrice()
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}

			lineTotal := float64(qty) * unitPrice
			total += lineTotal
			items = append(items, models.OrderItem{
				ProductID: it.ProductID,
				Quantity:  qty,
				UnitPrice: unitPrice,
				LineTotal: lineTotal,
			})
		}

		order = models.Order{
			Number:          uuid.NewString(),
			UserID:          user.ID,
			Items:           items,
			TotalAmount:     total,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   models.PaymentPending,
			OrderStatus:     models.OrderProcessing,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		// Simulated payment gateway: the order is immediately confirmed.
		order.PaymentStatus = models.PaymentPaid
		order.OrderStatus = models.OrderConfirmed
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]any{
			"payment_status": order.PaymentStatus,
			"order_status":   order.OrderStatus,
		}).Error
	})
	if txErr != nil {
		logging.FromContext(c.Request().Context()).Error("order creation failed", "error", txErr, "user_id", user.ID)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error creating order"})
	}

	h.publish(c, map[string]any{
		"type":    "order_created",
		"userID":  user.ID,
		"orderID": order.Number,
		"total":   order.TotalAmount,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Order placed successfully",
		"orderId": order.Number,
	})
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	user, ok := authmw.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Please authenticate"})
	}

	var orders []models.Order
	if err := h.DB.Preload("Items").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error fetching orders"})
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) AdminList(c echo.Context) error {
	var orders []models.Order
	if err := h.DB.Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error fetching all orders"})
	}

	return c.JSON(http.StatusOK, orders)
}

// AdminSetStatus overwrites the order status unconditionally; there is no
// transition validation between statuses.
func (h *OrderHandler) AdminSetStatus(c echo.Context) error {
	number := c.Param("orderId")

	var req struct {
		OrderStatus string `json:"orderStatus"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.OrderStatus == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "orderStatus is required"})
	}

	var order models.Order
	if err := h.DB.Where("number = ?", number).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error updating order status"})
	}

	if err := h.DB.Model(&order).Update("order_status", req.OrderStatus).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error updating order status"})
	}
	order.OrderStatus = req.OrderStatus

	if err := h.DB.Preload("Items").First(&order, order.ID).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error updating order status"})
	}

	h.publish(c, map[string]any{
		"type":    "order_status_changed",
		"userID":  order.UserID,
		"orderID": order.Number,
		"status":  order.OrderStatus,
	})

	return c.JSON(http.StatusOK, order)
}
