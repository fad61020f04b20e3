package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/casekart/casekart/internal/models"
)

type cartBody struct {
	UserID uint `json:"userId"`
	Items  []struct {
		ProductID uint            `json:"productId"`
		Quantity  uint            `json:"quantity"`
		Product   *models.Product `json:"product"`
	} `json:"items"`
}

func (env *testEnv) addToCart(token string, productID, qty uint) cartBody {
	env.T.Helper()
	rec, c := env.do(http.MethodPost, "/api/cart/add", map[string]uint{
		"productId": productID,
		"quantity":  qty,
	}, token)
	env.invoke(env.Guard.RequireUser(env.Cart.Add), c)
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())

	var cart cartBody
	decode(env.T, rec, &cart)
	return cart
}

func (env *testEnv) getCart(token string, userID uint) (int, cartBody) {
	env.T.Helper()
	rec, c := env.do(http.MethodGet, fmt.Sprintf("/api/cart/%d", userID), nil, token)
	c.SetParamNames("userId")
	c.SetParamValues(fmt.Sprint(userID))
	env.invoke(env.Guard.RequireUser(env.Cart.Get), c)

	var cart cartBody
	if rec.Code == http.StatusOK {
		decode(env.T, rec, &cart)
	}
	return rec.Code, cart
}

func TestAddToCartMergesLines(t *testing.T) {
	env := newTestEnv(t)

	userID, token := env.signUp("Alice", "a@x.com", "Passw0rd!")
	p := env.createProduct(models.Product{Name: "Case", Price: 50})

	env.addToCart(token, p.ID, 2)
	cart := env.addToCart(token, p.ID, 3)

	require.Equal(t, userID, cart.UserID)
	require.Len(t, cart.Items, 1)
	require.Equal(t, p.ID, cart.Items[0].ProductID)
	require.Equal(t, uint(5), cart.Items[0].Quantity)
	require.NotNil(t, cart.Items[0].Product)
	require.Equal(t, "Case", cart.Items[0].Product.Name)
}

func TestGetCartSynthesizesEmptyCart(t *testing.T) {
	env := newTestEnv(t)

	userID, token := env.signUp("Alice", "a@x.com", "Passw0rd!")

	code, cart := env.getCart(token, userID)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, userID, cart.UserID)
	require.NotNil(t, cart.Items)
	require.Empty(t, cart.Items)
}

func TestCartOwnership(t *testing.T) {
	env := newTestEnv(t)

	aliceID, _ := env.signUp("Alice", "a@x.com", "Passw0rd!")
	_, bobToken := env.signUp("Bob", "b@x.com", "Passw0rd!")
	_, adminToken := env.signUp("Root", testAdminEmail, "Passw0rd!")

	code, _ := env.getCart(bobToken, aliceID)
	require.Equal(t, http.StatusForbidden, code)

	code, _ = env.getCart(adminToken, aliceID)
	require.Equal(t, http.StatusOK, code)
}

func TestSetQuantityUpserts(t *testing.T) {
	env := newTestEnv(t)

	userID, token := env.signUp("Alice", "a@x.com", "Passw0rd!")
	p := env.createProduct(models.Product{Name: "Case", Price: 50})

	env.addToCart(token, p.ID, 2)

	rec, c := env.do(http.MethodPatch,
		fmt.Sprintf("/api/cart/%d/item/%d", userID, p.ID),
		map[string]uint{"quantity": 7}, token)
	c.SetParamNames("userId", "productId")
	c.SetParamValues(fmt.Sprint(userID), fmt.Sprint(p.ID))
	env.invoke(env.Guard.RequireUser(env.Cart.SetQuantity), c)
	require.Equal(t, http.StatusOK, rec.Code)

	var cart cartBody
	decode(t, rec, &cart)
	require.Len(t, cart.Items, 1)
	require.Equal(t, uint(7), cart.Items[0].Quantity)

	// Upsert path: a product that was never added gets a fresh line.
	p2 := env.createProduct(models.Product{Name: "Other", Price: 30})
	rec2, c2 := env.do(http.MethodPatch,
		fmt.Sprintf("/api/cart/%d/item/%d", userID, p2.ID),
		map[string]uint{"quantity": 1}, token)
	c2.SetParamNames("userId", "productId")
	c2.SetParamValues(fmt.Sprint(userID), fmt.Sprint(p2.ID))
	env.invoke(env.Guard.RequireUser(env.Cart.SetQuantity), c2)
	require.Equal(t, http.StatusOK, rec2.Code)

	decode(t, rec2, &cart)
	require.Len(t, cart.Items, 2)
}

func TestRemoveCartItem(t *testing.T) {
	env := newTestEnv(t)

	userID, token := env.signUp("Alice", "a@x.com", "Passw0rd!")
	p := env.createProduct(models.Product{Name: "Case", Price: 50})

	env.addToCart(token, p.ID, 2)

	remove := func(productID uint) (int, cartBody) {
		rec, c := env.do(http.MethodDelete,
			fmt.Sprintf("/api/cart/%d/item/%d", userID, productID), nil, token)
		c.SetParamNames("userId", "productId")
		c.SetParamValues(fmt.Sprint(userID), fmt.Sprint(productID))
		env.invoke(env.Guard.RequireUser(env.Cart.Remove), c)
		var cart cartBody
		if rec.Code == http.StatusOK {
			decode(env.T, rec, &cart)
		}
		return rec.Code, cart
	}

	// Removing a line that never existed leaves the cart unchanged.
	code, cart := remove(9999)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, cart.Items, 1)
	require.Equal(t, uint(2), cart.Items[0].Quantity)

	code, cart = remove(p.ID)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, cart.Items)

	// The cart is now gone entirely.
	code, _ = remove(p.ID)
	require.Equal(t, http.StatusNotFound, code)
}
