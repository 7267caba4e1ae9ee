package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zoi-aqua/aquabot-backend/internal/config"
	"github.com/zoi-aqua/aquabot-backend/internal/models"
)

// BackendService is the REST client for the order/inventory backend. Every
// call takes a context and the underlying HTTP client is bounded by a
// seconds-scale timeout so a stalled backend never starves a session.
type BackendService struct {
	baseURL             string
	confirmPaymentToken string
	client              *http.Client
}

// NewBackendService creates a backend client from the configuration.
func NewBackendService(cfg *config.Config) *BackendService {
	return &BackendService{
		baseURL:             strings.TrimRight(cfg.BackendURL, "/"),
		confirmPaymentToken: cfg.ConfirmPaymentToken,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (b *BackendService) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend %s %s returned %d: %s", method, path, resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend %s %s returned invalid JSON: %w", method, path, err)
	}
	return nil
}

// ListAvailableProducts fetches the catalog of products in stock.
func (b *BackendService) ListAvailableProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := b.doJSON(ctx, http.MethodGet, "/productos/disponibles/", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CheckStock asks the backend whether the requested quantity is available and
// what it costs.
func (b *BackendService) CheckStock(ctx context.Context, productID, quantity int) (*models.StockResult, error) {
	payload := map[string]interface{}{
		"producto_id": productID,
		"cantidad":    quantity,
	}
	var result models.StockResult
	if err := b.doJSON(ctx, http.MethodPost, "/productos/check-stock/", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateCustomer registers the customer and returns their backend ID.
func (b *BackendService) CreateCustomer(ctx context.Context, customer *models.Customer) (int, error) {
	var created struct {
		ID int `json:"id"`
	}
	if err := b.doJSON(ctx, http.MethodPost, "/clientes/", customer, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// CreateTempOrder creates a temporary order for the customer's cart and
// returns the order ID.
func (b *BackendService) CreateTempOrder(ctx context.Context, customerID int, items []models.OrderItem) (int, error) {
	payload := map[string]interface{}{
		"cliente_id": customerID,
		"items":      items,
	}
	var created struct {
		Pedido struct {
			ID int `json:"id"`
		} `json:"pedido"`
	}
	if err := b.doJSON(ctx, http.MethodPost, "/pedidos/create-temp/", payload, &created); err != nil {
		return 0, err
	}
	return created.Pedido.ID, nil
}

// ConfirmPayment confirms the order's payment. The auth token, when
// configured, goes out as a bearer header.
func (b *BackendService) ConfirmPayment(ctx context.Context, orderID int) error {
	path := fmt.Sprintf("/pedidos/%d/confirm-payment/", orderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader([]byte("{}")))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if b.confirmPaymentToken != "" {
		req.Header.Set("Authorization", "Bearer "+b.confirmPaymentToken)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend confirm-payment failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend confirm-payment returned %d: %s", resp.StatusCode, string(data))
	}
	return nil
}

// GetOrder fetches the detail of a confirmed order.
func (b *BackendService) GetOrder(ctx context.Context, orderID int) (*models.OrderDetail, error) {
	var detail models.OrderDetail
	if err := b.doJSON(ctx, http.MethodGet, fmt.Sprintf("/pedidos/%d", orderID), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetDistribution fetches the dispatch and delivery dates for an order. The
// backend returns a paginated list; the first result wins.
func (b *BackendService) GetDistribution(ctx context.Context, orderID int) (*models.Distribution, error) {
	path := "/distribuciones/?" + url.Values{"pedido": {fmt.Sprint(orderID)}}.Encode()

	var page struct {
		Results []models.Distribution `json:"results"`
	}
	if err := b.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	if len(page.Results) == 0 {
		return &models.Distribution{}, nil
	}
	return &page.Results[0], nil
}
