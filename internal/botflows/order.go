package botflows

import (
	"fmt"
	"log"

	"github.com/zoi-aqua/aquabot-backend/internal/flow"
	"github.com/zoi-aqua/aquabot-backend/internal/models"
)

// Order confirms the purchase against the backend: registers the customer,
// creates the temporary order, confirms payment and emits the receipt. It is
// only reachable by transfer from the welcome flow, which guarantees the cart
// and identity are already in scratch state.
func Order(d Deps) *flow.Flow {
	return flow.New(FlowOrder).
		AddAction(confirmOrder(d))
}

func confirmOrder(d Deps) flow.ActionFunc {
	return func(c *flow.Ctx) error {
		items := getItems(c)
		if len(items) == 0 {
			c.Say("No has seleccionado productos. Por favor, vuelve a seleccionar productos antes de pagar.")
			return nil
		}

		name := c.GetString(keyCustomerName)
		lastName := c.GetString(keyCustomerLastName)
		dni := c.GetString(keyDNI)

		customer := &models.Customer{
			Nombre:          name,
			ApellidoPaterno: lastName,
			DNI:             dni,
			Telefono:        c.SessionID,
			Direccion:       c.GetString(keyAddress),
			Ciudad:          "",
		}

		ctx := c.Context()

		customerID, err := d.Backend.CreateCustomer(ctx, customer)
		if err != nil {
			return orderFailed(c, err)
		}

		orderID, err := d.Backend.CreateTempOrder(ctx, customerID, items)
		if err != nil {
			return orderFailed(c, err)
		}
		c.Set(map[string]interface{}{keyOrderID: orderID})

		if err := d.Backend.ConfirmPayment(ctx, orderID); err != nil {
			return orderFailed(c, err)
		}

		detail, err := d.Backend.GetOrder(ctx, orderID)
		if err != nil {
			return orderFailed(c, err)
		}

		dist, err := d.Backend.GetDistribution(ctx, orderID)
		if err != nil {
			return orderFailed(c, err)
		}

		receipt := fmt.Sprintf("BOLETA DE PAGO\nCliente: %s %s\nDNI: %s\nPedido ID: %d\nTotal: S/%s\nFecha salida: %s\nFecha entrega: %s",
			name, lastName, dni, orderID, soles(detail.TotalPedido), dist.FechaSalida, dist.FechaEntrega)

		c.Say(receipt)
		c.Say("¡Gracias por tu compra!")
		return nil
	}
}

// orderFailed logs the backend error and leaves the session with an apology.
// The session stays alive; the user can confirm again later.
func orderFailed(c *flow.Ctx, err error) error {
	log.Printf("❌ Error al confirmar pedido: %v", err)
	c.Say("Ocurrió un error al procesar tu pedido. Intenta más tarde.")
	return nil
}
