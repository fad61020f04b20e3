package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/casekart/casekart/internal/logging"
	authmw "github.com/casekart/casekart/internal/middleware/auth"
	"github.com/casekart/casekart/internal/models"
	"github.com/casekart/casekart/internal/mykafka"
)

type CartHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

type cartLine struct {
	ProductID uint            `json:"productId"`
	Quantity  uint            `json:"quantity"`
	Product   *models.Product `json:"product,omitempty"`
}

type cartResponse struct {
	UserID uint       `json:"userId"`
	Items  []cartLine `json:"items"`
}

func (h *CartHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "cart_events", fmt.Sprint(event["userID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

// resolveCartUser enforces cart ownership: the target user must be the
// authenticated caller, unless the caller is an admin.
func resolveCartUser(c echo.Context, target uint) (uint, error) {
	user, ok := authmw.CurrentUser(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "Please authenticate")
	}
	if target == 0 {
		return user.ID, nil
	}
	if target != user.ID && user.Role != models.RoleAdmin {
		return 0, echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}
	return target, nil
}

func cartUserParam(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("userId"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return uint(id), nil
}

// buildCart joins product records onto the user's cart lines. A user with no
// lines gets an empty cart, never a not-found.
func (h *CartHandler) buildCart(userID uint) (*cartResponse, error) {
	var items []models.CartItem
	if err := h.DB.Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}

	resp := &cartResponse{UserID: userID, Items: make([]cartLine, 0, len(items))}
	if len(items) == 0 {
		return resp, nil
	}

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	var products []models.Product
	if err := h.DB.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for _, it := range items {
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		resp.Items = append(resp.Items, cartLine{
			ProductID: it.ProductID,
			Quantity:  qty,
			Product:   byID[it.ProductID],
		})
	}
	return resp, nil
}

func (h *CartHandler) respondCart(c echo.Context, userID uint) error {
	cart, err := h.buildCart(userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": err.Error()})
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) Add(c echo.Context) error {
	var req struct {
		UserID    uint `json:"userId"`
		ProductID uint `json:"productId"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "productId is required"})
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	userID, err := resolveCartUser(c, req.UserID)
	if err != nil {
		return err
	}

	// Merge-on-add is an atomic in-place increment so two concurrent adds
	// for the same line cannot lose an update.
	res := h.DB.Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, req.ProductID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", req.Quantity))
	if res.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": res.Error.Error()})
	}
	if res.RowsAffected == 0 {
		item := models.CartItem{UserID: userID, ProductID: req.ProductID, Quantity: req.Quantity}
		if err := h.DB.Create(&item).Error; err != nil {
			// Lost the insert race against a concurrent add: fall back to
			// the increment, which now has a row to hit.
			retry := h.DB.Model(&models.CartItem{}).
				Where("user_id = ? AND product_id = ?", userID, req.ProductID).
				UpdateColumn("quantity", gorm.Expr("quantity + ?", req.Quantity))
			if retry.Error != nil || retry.RowsAffected == 0 {
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": err.Error()})
			}
		}
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": req.ProductID,
		"quantity":  req.Quantity,
	})

	return h.respondCart(c, userID)
}

func (h *CartHandler) Get(c echo.Context) error {
	target, err := cartUserParam(c)
	if err != nil {
		return err
	}
	userID, err := resolveCartUser(c, target)
	if err != nil {
		return err
	}
	return h.respondCart(c, userID)
}

func (h *CartHandler) SetQuantity(c echo.Context) error {
	target, err := cartUserParam(c)
	if err != nil {
		return err
	}
	userID, err := resolveCartUser(c, target)
	if err != nil {
		return err
	}

	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil || productID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid product id"})
	}

	var req struct {
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}

	var item models.CartItem
	tx := h.DB.Where("user_id = ? AND product_id = ?", userID, productID).First(&item)
	switch {
	case tx.Error == nil:
		item.Quantity = req.Quantity
		if err := h.DB.Save(&item).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": err.Error()})
		}
	case errors.Is(tx.Error, gorm.ErrRecordNotFound):
		item = models.CartItem{UserID: userID, ProductID: uint(productID), Quantity: req.Quantity}
		if err := h.DB.Create(&item).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": err.Error()})
		}
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": tx.Error.Error()})
	}

	h.publish(c, map[string]any{
		"type":      "cart_quantity_set",
		"userID":    userID,
		"productID": productID,
		"quantity":  req.Quantity,
	})

	return h.respondCart(c, userID)
}

func (h *CartHandler) Remove(c echo.Context) error {
	target, err := cartUserParam(c)
	if err != nil {
		return err
	}
	userID, err := resolveCartUser(c, target)
	if err != nil {
		return err
	}

	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil || productID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid product id"})
	}

	var count int64
	if err := h.DB.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": err.Error()})
	}
	if count == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Cart not found"})
	}

	// Removing a line that is not there is a no-op.
	if err := h.DB.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{}).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": err.Error()})
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_removed",
		"userID":    userID,
		"productID": productID,
	})

	return h.respondCart(c, userID)
}
