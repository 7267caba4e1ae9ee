package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoi-aqua/aquabot-backend/internal/config"
	"github.com/zoi-aqua/aquabot-backend/internal/models"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *BackendService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewBackendService(&config.Config{
		BackendURL:          server.URL + "/",
		ConfirmPaymentToken: "secret-token",
	})
}

func TestListAvailableProducts(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/productos/disponibles/", r.URL.Path)
		json.NewEncoder(w).Encode([]models.Product{
			{ID: 1, Nombre: "Paquete de agua 625ml", PrecioUnitario: 10, Estado: "activo"},
		})
	})

	products, err := backend.ListAvailableProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Paquete de agua 625ml", products[0].Nombre)
	assert.Equal(t, 10.0, products[0].PrecioUnitario)
}

func TestCheckStockSendsSpanishPayload(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/productos/check-stock/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, 2.0, payload["producto_id"])
		assert.Equal(t, 6.0, payload["cantidad"])

		json.NewEncoder(w).Encode(models.StockResult{
			Disponible:     true,
			PrecioUnitario: 12,
			Total:          72,
		})
	})

	stock, err := backend.CheckStock(context.Background(), 2, 6)
	require.NoError(t, err)
	assert.True(t, stock.Disponible)
	assert.Equal(t, 72.0, stock.Total)
}

func TestCreateCustomerReturnsID(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/clientes/", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Jo", payload["nombre"])
		assert.Equal(t, "Pérez", payload["apellido_paterno"])
		assert.Equal(t, "12345678", payload["dni"])

		json.NewEncoder(w).Encode(map[string]int{"id": 41})
	})

	id, err := backend.CreateCustomer(context.Background(), &models.Customer{
		Nombre:          "Jo",
		ApellidoPaterno: "Pérez",
		DNI:             "12345678",
		Telefono:        "+51900000001",
	})
	require.NoError(t, err)
	assert.Equal(t, 41, id)
}

func TestCreateTempOrderUnwrapsPedido(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pedidos/create-temp/", r.URL.Path)

		var payload struct {
			ClienteID int                `json:"cliente_id"`
			Items     []models.OrderItem `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, 41, payload.ClienteID)
		require.Len(t, payload.Items, 1)
		assert.Equal(t, 3, payload.Items[0].Cantidad)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"pedido": map[string]int{"id": 77},
		})
	})

	orderID, err := backend.CreateTempOrder(context.Background(), 41, []models.OrderItem{
		{ProductoID: 1, Cantidad: 3, PrecioUnitario: 12, Subtotal: 36},
	})
	require.NoError(t, err)
	assert.Equal(t, 77, orderID)
}

func TestConfirmPaymentSendsBearerToken(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pedidos/77/confirm-payment/", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, backend.ConfirmPayment(context.Background(), 77))
}

func TestGetDistributionTakesFirstResult(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/distribuciones/", r.URL.Path)
		assert.Equal(t, "77", r.URL.Query().Get("pedido"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []models.Distribution{
				{FechaSalida: "2025-01-10", FechaEntrega: "2025-01-11"},
				{FechaSalida: "2025-02-01", FechaEntrega: "2025-02-02"},
			},
		})
	})

	dist, err := backend.GetDistribution(context.Background(), 77)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", dist.FechaSalida)
}

func TestGetDistributionEmptyPage(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"results": []models.Distribution{}})
	})

	dist, err := backend.GetDistribution(context.Background(), 77)
	require.NoError(t, err)
	assert.Empty(t, dist.FechaSalida)
}

func TestBackendErrorStatusSurfaces(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"stock agotado"}`, http.StatusBadRequest)
	})

	_, err := backend.CheckStock(context.Background(), 1, 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "stock agotado")
}
