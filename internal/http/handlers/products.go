package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"catalogo/internal/domain"
	"catalogo/internal/sqlinline"
)

type productCreateRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	IsDigital   bool    `json:"isDigital"`
	Image       string  `json:"image"`
}

func (req *productCreateRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if req.Price <= 0 {
		return fmt.Errorf("price must be greater than zero")
	}
	if req.Stock < 0 {
		return fmt.Errorf("stock cannot be negative")
	}
	return nil
}

// ProductsCreate persists a catalog product. The image field carries the
// resolved submission path from the client, or is absent when the product has
// no image. Digital products always store zero stock.
func (a *App) ProductsCreate(w http.ResponseWriter, r *http.Request) {
	var req productCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	if err := req.validate(); err != nil {
		a.error(w, r, http.StatusBadRequest, "invalid_product", err)
		return
	}
	if req.IsDigital {
		req.Stock = 0
	}

	product := domain.Product{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Stock:       req.Stock,
		IsDigital:   req.IsDigital,
		ImagePath:   req.Image,
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertProduct,
		product.ID, product.Name, product.Description, product.Price, product.Stock, product.IsDigital, product.ImagePath)
	if err := row.Scan(&product.CreatedAt); err != nil {
		a.error(w, r, http.StatusInternalServerError, "create_failed", err)
		return
	}

	a.json(w, http.StatusCreated, product)
}

// ProductsList returns recent products, newest first.
func (a *App) ProductsList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	rows, err := a.SQL.Query(r.Context(), sqlinline.QListProducts, limit, offset)
	if err != nil {
		a.error(w, r, http.StatusInternalServerError, "internal", err)
		return
	}
	defer rows.Close()

	items := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		var createdAt time.Time
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.IsDigital, &p.ImagePath, &createdAt); err != nil {
			a.error(w, r, http.StatusInternalServerError, "internal", err)
			return
		}
		p.CreatedAt = createdAt
		items = append(items, p)
	}

	a.json(w, http.StatusOK, map[string]any{"items": items})
}
