package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/casekart/casekart/internal/es"
	"github.com/casekart/casekart/internal/logging"
	"github.com/casekart/casekart/internal/models"
	"github.com/casekart/casekart/internal/mykafka"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func (h *ProductHandler) index(c echo.Context, p models.Product) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := es.IndexProduct(ctx, h.ES, p); err != nil {
		logging.FromContext(c.Request().Context()).Error("product index failed", "error", err, "product_id", p.ID)
	}
}

func (h *ProductHandler) GetAll(c echo.Context) error {
	var products []models.Product
	if err := h.DB.Order("id ASC").Find(&products).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetByCategory(c echo.Context) error {
	category := c.Param("category")

	q := h.DB.Order("id ASC")
	if category != "all" {
		q = q.Where("category = ?", category)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": err.Error()})
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetDetail(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid product id"})
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": err.Error()})
	}

	return c.JSON(http.StatusOK, product)
}

type productRequest struct {
	Name          string  `json:"name"`
	Model         string  `json:"model"`
	Image         string  `json:"image"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	DiscountPrice float64 `json:"discountPrice"`
	Category      string  `json:"category"`
	// pointer so an absent field can default to in-stock
	InStock *bool `json:"inStock"`
}

func (r productRequest) inStock() bool {
	if r.InStock == nil {
		return true
	}
	return *r.InStock
}

func (h *ProductHandler) Create(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" || req.Price < 0 || req.DiscountPrice < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required, prices must be >= 0"})
	}

	product := models.Product{
		Name:          req.Name,
		Model:         req.Model,
		Image:         req.Image,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Category:      req.Category,
		InStock:       req.inStock(),
		Rating:        4.5,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"name":      product.Name,
	})
	h.index(c, product)

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Product added successfully",
		"product": product,
	})
}

func (h *ProductHandler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	product.Name = req.Name
	product.Model = req.Model
	product.Image = req.Image
	product.Description = req.Description
	product.Price = req.Price
	product.DiscountPrice = req.DiscountPrice
	product.Category = req.Category
	product.InStock = req.inStock()

	if err := h.DB.Save(&product).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
		"name":      product.Name,
	})
	h.index(c, product)

	return c.JSON(http.StatusOK, product)
}
