// Package botflows declares the conversational flows of the Zoi Aqua sales
// assistant and registers them into the flow registry.
package botflows

import (
	"context"
	"encoding/json"

	"github.com/zoi-aqua/aquabot-backend/internal/flow"
	"github.com/zoi-aqua/aquabot-backend/internal/models"
)

// Flow names.
const (
	FlowHello   = "hello"
	FlowWelcome = "welcome"
	FlowOrder   = "order"
)

// Capture keys of the welcome flow.
const (
	capName     = "name"
	capLastName = "last_name"
	capProduct  = "product"
	capQuantity = "quantity"
	capMore     = "more"
	capDelivery = "delivery"
	capAddress  = "address"
	capPayment  = "payment"
	capDNI      = "dni"
)

// Scratch-state keys.
const (
	keyCustomerName     = "customer_name"
	keyCustomerLastName = "customer_last_name"
	keyDNI              = "dni"
	keyItems            = "items"
	keyProducts         = "productos_disponibles"
	keySelectedProduct  = "producto_seleccionado"
	keyDeliveryMethod   = "metodo_entrega"
	keyAddress          = "direccion"
	keyOrderID          = "pedido_id"
	keyOrderPending     = "pedido_pendiente"
	keyDetectedIntent   = "detected_intent"
)

// OrderBackend is the order/inventory collaborator the flows call. All
// methods are synchronous request/response; failures surface as errors the
// step bodies recover from locally.
type OrderBackend interface {
	ListAvailableProducts(ctx context.Context) ([]models.Product, error)
	CheckStock(ctx context.Context, productID, quantity int) (*models.StockResult, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) (int, error)
	CreateTempOrder(ctx context.Context, customerID int, items []models.OrderItem) (int, error)
	ConfirmPayment(ctx context.Context, orderID int) error
	GetOrder(ctx context.Context, orderID int) (*models.OrderDetail, error)
	GetDistribution(ctx context.Context, orderID int) (*models.Distribution, error)
}

// TextGenerator is the generative-text collaborator.
type TextGenerator interface {
	Run(ctx context.Context, name, lastName, question string, history []models.HistoryTurn) (string, error)
	Determine(ctx context.Context, history []models.HistoryTurn) (string, error)
}

// Deps bundles the collaborators and settings the flows need.
type Deps struct {
	Backend      OrderBackend
	Gen          TextGenerator
	StoreAddress string
	PaymentQRURL string
}

// Register adds every flow to the registry. Registration order is the keyword
// tie-break, matching the original flow list.
func Register(r *flow.Registry, d Deps) {
	r.Register(Hello())
	r.Register(Welcome(d))
	r.Register(Order(d))
}

// decodeScratch re-marshals a scratch value and decodes it into out. Values
// read back from the database store arrive as generic JSON (maps and
// []interface{}), not the typed structs the flows put in, so a plain type
// assertion is not enough.
func decodeScratch(value interface{}, out interface{}) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func getItems(c *flow.Ctx) []models.OrderItem {
	value, ok := c.Get(keyItems)
	if !ok || value == nil {
		return nil
	}
	if items, ok := value.([]models.OrderItem); ok {
		return items
	}
	var items []models.OrderItem
	if !decodeScratch(value, &items) {
		return nil
	}
	return items
}

func getProducts(c *flow.Ctx) []models.Product {
	value, ok := c.Get(keyProducts)
	if !ok || value == nil {
		return nil
	}
	if products, ok := value.([]models.Product); ok {
		return products
	}
	var products []models.Product
	if !decodeScratch(value, &products) {
		return nil
	}
	return products
}

func getSelectedProduct(c *flow.Ctx) (models.Product, bool) {
	value, ok := c.Get(keySelectedProduct)
	if !ok || value == nil {
		return models.Product{}, false
	}
	if product, ok := value.(models.Product); ok {
		return product, true
	}
	var product models.Product
	if !decodeScratch(value, &product) || product.ID == 0 {
		return models.Product{}, false
	}
	return product, true
}
