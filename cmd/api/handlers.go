package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"menuflow/pkg/cart"
	"menuflow/pkg/catalog"
	"menuflow/pkg/order"
	"menuflow/pkg/otel"
)

// loginRequest carries the credentials for session creation. Email is
// optional and only used for order receipts.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// loginHandler handles user login and session creation.
// @Summary Login
// @Description Authenticates user and sets session cookie
// @Accept json
// @Produce json
// @Param creds body loginRequest true "Credentials"
// @Success 200
// @Router /login [post]
func loginHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "loginHandler")
	defer span.End()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		http.Error(w, "invalid credentials", http.StatusBadRequest)
		return
	}
	sid := uuid.NewString()
	data, err := json.Marshal(session{UserID: req.Username, Email: req.Email})
	if err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	if err := redisClient.Set(ctx, "session:"+sid, data, sessionTTL).Err(); err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "session_id", Value: sid, Path: "/", Expires: time.Now().Add(sessionTTL), HttpOnly: true})
	w.WriteHeader(http.StatusOK)
}

// listCategoriesHandler lists menu categories.
// @Summary List categories
// @Produce json
// @Success 200 {array} catalog.Category
// @Router /menu/categories [get]
func listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listCategoriesHandler")
	defer span.End()

	cats, err := catalogRepo.ListCategories(ctx)
	if err != nil {
		log.Error(ctx, "list categories", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// listProductsHandler lists products, optionally filtered by category.
// @Summary List products
// @Produce json
// @Param category query string false "Category ID"
// @Success 200 {array} catalog.Product
// @Router /menu/products [get]
func listProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listProductsHandler")
	defer span.End()

	var (
		products []catalog.Product
		err      error
	)
	if categoryID := r.URL.Query().Get("category"); categoryID != "" {
		products, err = catalogRepo.ListProductsByCategory(ctx, categoryID)
	} else {
		products, err = catalogRepo.ListProducts(ctx)
	}
	if err != nil {
		log.Error(ctx, "list products", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// productDetail is a product together with its ingredient list.
type productDetail struct {
	catalog.Product
	Ingredients []catalog.Ingredient `json:"ingredients,omitempty"`
}

// getProductHandler retrieves a product and its ingredients.
// @Summary Get product
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} productDetail
// @Router /menu/products/{id} [get]
func getProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getProductHandler")
	defer span.End()

	id := mux.Vars(r)["id"]
	p, err := catalogRepo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error(ctx, "get product", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	ingredients, err := catalogRepo.ListIngredientsForProduct(ctx, id)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		log.Error(ctx, "list ingredients", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, productDetail{Product: p, Ingredients: ingredients})
}

// getCartHandler returns the session's cart.
// @Summary Get cart
// @Produce json
// @Success 200 {object} cart.Cart
// @Security ApiKeyAuth
// @Router /cart [get]
func getCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getCartHandler")
	defer span.End()

	_, sid := sessionFrom(ctx)
	c, err := cartStore.Load(ctx, sid)
	if err != nil {
		log.Error(ctx, "load cart", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// cartItemRequest is the body for cart mutations.
type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// addCartItemHandler adds a product to the session's cart.
// @Summary Add item to cart
// @Accept json
// @Produce json
// @Param item body cartItemRequest true "Item"
// @Success 200 {object} cart.Cart
// @Security ApiKeyAuth
// @Router /cart/items [post]
func addCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "addCartItemHandler")
	defer span.End()

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		http.Error(w, "invalid item", http.StatusBadRequest)
		return
	}
	if _, err := catalogRepo.GetProduct(ctx, req.ProductID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error(ctx, "get product", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	_, sid := sessionFrom(ctx)
	c, err := cartStore.Load(ctx, sid)
	if err != nil {
		log.Error(ctx, "load cart", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := c.Add(req.ProductID, req.Quantity); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := cartStore.Save(ctx, sid, c); err != nil {
		log.Error(ctx, "save cart", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// quantityRequest is the body for quantity updates.
type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// setCartItemHandler sets a cart line's quantity. Zero removes the line.
// @Summary Set item quantity
// @Accept json
// @Produce json
// @Param productID path string true "Product ID"
// @Param quantity body quantityRequest true "Quantity"
// @Success 200 {object} cart.Cart
// @Security ApiKeyAuth
// @Router /cart/items/{productID} [put]
func setCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "setCartItemHandler")
	defer span.End()

	productID := mux.Vars(r)["productID"]
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid quantity", http.StatusBadRequest)
		return
	}

	_, sid := sessionFrom(ctx)
	c, err := cartStore.Load(ctx, sid)
	if err != nil {
		log.Error(ctx, "load cart", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := c.SetQuantity(productID, req.Quantity); err != nil {
		if errors.Is(err, cart.ErrNotInCart) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := cartStore.Save(ctx, sid, c); err != nil {
		log.Error(ctx, "save cart", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// removeCartItemHandler removes a product from the session's cart.
// @Summary Remove item from cart
// @Param productID path string true "Product ID"
// @Success 204
// @Security ApiKeyAuth
// @Router /cart/items/{productID} [delete]
func removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "removeCartItemHandler")
	defer span.End()

	productID := mux.Vars(r)["productID"]
	_, sid := sessionFrom(ctx)
	c, err := cartStore.Load(ctx, sid)
	if err != nil {
		log.Error(ctx, "load cart", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	c.Remove(productID)
	if err := cartStore.Save(ctx, sid, c); err != nil {
		log.Error(ctx, "save cart", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// clearCartHandler discards the session's cart.
// @Summary Clear cart
// @Success 204
// @Security ApiKeyAuth
// @Router /cart [delete]
func clearCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "clearCartHandler")
	defer span.End()

	_, sid := sessionFrom(ctx)
	if err := cartStore.Delete(ctx, sid); err != nil {
		log.Error(ctx, "clear cart", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// checkoutHandler places an order from the session's cart.
// @Summary Place order from cart
// @Produce json
// @Success 201 {object} order.Order
// @Failure 400 {string} string "empty cart"
// @Failure 409 {string} string "insufficient stock"
// @Security ApiKeyAuth
// @Router /checkout [post]
func checkoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "checkoutHandler")
	defer span.End()

	s, sid := sessionFrom(ctx)
	o, err := finalizer.PlaceOrder(ctx, s.UserID, sid)
	if err != nil {
		var stockErr *order.InsufficientStockError
		switch {
		case errors.Is(err, order.ErrEmptyCart):
			http.Error(w, "cart is empty", http.StatusBadRequest)
		case errors.As(err, &stockErr):
			http.Error(w, stockErr.Error(), http.StatusConflict)
		case errors.Is(err, order.ErrNotFound):
			// A cart line pointed at a product that no longer exists.
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			log.Error(ctx, "place order", "error", err)
			http.Error(w, "checkout failed", http.StatusInternalServerError)
		}
		return
	}

	if mailer != nil && s.Email != "" {
		go func(email string, o order.Order) {
			if err := mailer.SendReceipt(email, o); err != nil {
				log.Error(context.Background(), "send receipt", "order_id", o.ID, "error", err)
			}
		}(s.Email, o)
	}

	writeJSON(w, http.StatusCreated, o)
}

// listOrdersHandler lists the user's orders, most recent first.
// @Summary List own orders
// @Produce json
// @Success 200 {array} order.Order
// @Security ApiKeyAuth
// @Router /orders [get]
func listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listOrdersHandler")
	defer span.End()

	s, _ := sessionFrom(ctx)
	orders, err := orderRepo.ListByUser(ctx, s.UserID)
	if err != nil {
		log.Error(ctx, "list orders", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// getOrderHandler retrieves one of the user's orders with its items.
// @Summary Get own order
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} order.Order
// @Security ApiKeyAuth
// @Router /orders/{id} [get]
func getOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getOrderHandler")
	defer span.End()

	s, _ := sessionFrom(ctx)
	id := mux.Vars(r)["id"]
	o, err := orderRepo.GetForUser(ctx, id, s.UserID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error(ctx, "get order", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
