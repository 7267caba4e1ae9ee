package botflows

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/zoi-aqua/aquabot-backend/internal/flow"
	"github.com/zoi-aqua/aquabot-backend/internal/models"
)

const systemRole = "Eres un asistente de ventas para una tienda de agua mineral. " +
	"Ayuda a los clientes a comprar agua, mostrar catálogo y procesar pedidos."

var dniPattern = regexp.MustCompile(`^\d{8}$`)

// Welcome is the main sales flow, fired once per session with no prior
// history. It collects the customer identity, walks product selection with
// stock checks, chooses the delivery method, presents the payment QR and
// finally branches to the order flow once the DNI is captured.
func Welcome(d Deps) *flow.Flow {
	return flow.New(FlowWelcome).
		OnWelcome().
		AddAction(welcomeEntry(d)).
		AddCapture(capName, minLength(2, "Necesito un nombre válido, inténtalo nuevamente."), captureName()).
		AddCapture(capLastName, minLength(2, "Necesito un apellido paterno válido, inténtalo nuevamente."), captureLastName(d)).
		AddCapture(capProduct, integerOption("Opción inválida. Por favor, elige una opción válida según el número mostrado."), captureProduct(d)).
		AddCapture(capQuantity, positiveInteger("Por favor, introduce una cantidad válida (un número entero mayor que 0)."), captureQuantity(d)).
		AddCapture(capMore, yesNoOption(`Respuesta inválida. Responde "1" para sí o "2" para no.`), captureMore(d)).
		AddCapture(capDelivery, deliveryOption(), captureDelivery(d)).
		AddCapture(capAddress, minLength(5, "La dirección es muy corta, necesito más detalles."), captureAddress(d)).
		AddCapture(capPayment, paidOption(), capturePayment()).
		AddCapture(capDNI, dniOption(), captureDNI())
}

func welcomeEntry(d Deps) flow.ActionFunc {
	return func(c *flow.Ctx) error {
		if len(c.History()) == 0 {
			c.AppendHistory("system", systemRole)
		}
		text := strings.TrimSpace(c.Text)
		if text == "" {
			text = "Iniciar conversación"
		}
		c.AppendHistory("user", text)

		intent, err := d.Gen.Determine(c.Context(), c.History())
		if err != nil {
			log.Printf("⚠️  Intent detection failed: %v", err)
		}
		log.Printf("[INTENT DETECTADO]: %s", intent)
		c.Set(map[string]interface{}{keyDetectedIntent: intent})

		name := c.GetString(keyCustomerName)
		lastName := c.GetString(keyCustomerLastName)

		if name == "" {
			c.Say("Para comenzar, ¿podrías proporcionarme tu nombre?")
			c.Await(capName)
			return nil
		}
		if lastName == "" {
			c.Say(fmt.Sprintf("Genial %s, ahora necesito tu apellido paterno:", name))
			c.Await(capLastName)
			return nil
		}

		answer, err := d.Gen.Run(c.Context(), name, lastName, text, c.History())
		if err != nil {
			log.Printf("⚠️  Answer generation failed: %v", err)
			c.Say("Disculpa, tuve un inconveniente preparando la respuesta. Aquí tienes nuestro catálogo:")
		} else {
			c.AppendHistory("assistant", answer)
			for _, chunk := range splitChunks(answer) {
				c.Say(chunk)
			}
		}

		showCatalog(c, d)
		c.Await(capProduct)
		return nil
	}
}

func captureName() flow.CaptureFunc {
	return func(c *flow.Ctx, value string) error {
		c.Set(map[string]interface{}{keyCustomerName: value})
		c.Say(fmt.Sprintf("Genial %s, ahora necesito tu apellido paterno:", value))
		c.Await(capLastName)
		return nil
	}
}

func captureLastName(d Deps) flow.CaptureFunc {
	return func(c *flow.Ctx, value string) error {
		name := c.GetString(keyCustomerName)
		c.Set(map[string]interface{}{keyCustomerLastName: value})

		c.Say(fmt.Sprintf("Perfecto %s %s, ahora te mostraré nuestros productos disponibles.", name, value))
		showCatalog(c, d)
		c.Await(capProduct)
		return nil
	}
}

func captureProduct(d Deps) flow.CaptureFunc {
	return func(c *flow.Ctx, value string) error {
		products := getProducts(c)
		if len(products) == 0 {
			fetched, err := d.Backend.ListAvailableProducts(c.Context())
			if err != nil {
				log.Printf("❌ Failed to fetch catalog: %v", err)
				c.Say("Lo siento, no pude consultar el catálogo en este momento. Intenta nuevamente.")
				c.Await(capProduct)
				return nil
			}
			products = fetched
			c.Set(map[string]interface{}{keyProducts: products})
		}

		index, _ := strconv.Atoi(value)
		index--
		if index < 0 || index >= len(products) {
			c.Say("Opción inválida. Por favor, elige una opción válida según el número mostrado.")
			c.Await(capProduct)
			return nil
		}

		selected := products[index]
		c.Set(map[string]interface{}{keySelectedProduct: selected})
		c.Say(fmt.Sprintf("Has seleccionado: %s. Ahora ingresa la cantidad que deseas:", selected.Nombre))
		c.Await(capQuantity)
		return nil
	}
}

func captureQuantity(d Deps) flow.CaptureFunc {
	return func(c *flow.Ctx, value string) error {
		quantity, _ := strconv.Atoi(value)

		selected, ok := getSelectedProduct(c)
		if !ok {
			c.Say("No se ha seleccionado ningún producto. Vuelve a elegir uno.")
			showCatalog(c, d)
			c.Await(capProduct)
			return nil
		}

		stock, err := d.Backend.CheckStock(c.Context(), selected.ID, quantity)
		if err != nil {
			log.Printf("❌ Stock check failed: %v", err)
			c.Say("Hubo un error al verificar el stock. Por favor, intenta nuevamente.")
			showCatalog(c, d)
			c.Await(capProduct)
			return nil
		}

		if !stock.Disponible {
			c.Say(fmt.Sprintf("Lo siento, no hay suficiente stock para la cantidad solicitada. %s", stock.Mensaje))
			showCatalog(c, d)
			c.Await(capProduct)
			return nil
		}

		items := append(getItems(c), models.OrderItem{
			ProductoID:     selected.ID,
			Cantidad:       quantity,
			PrecioUnitario: stock.PrecioUnitario,
			Subtotal:       stock.Total,
		})
		c.Set(map[string]interface{}{
			keyItems:           items,
			keySelectedProduct: nil,
		})

		c.Say(fmt.Sprintf("Cantidad confirmada: %d de %s. Subtotal: S/%s. ¿Deseas agregar otro producto?\n1. Sí\n2. No",
			quantity, selected.Nombre, soles(stock.Total)))
		c.Await(capMore)
		return nil
	}
}

func captureMore(d Deps) flow.CaptureFunc {
	return func(c *flow.Ctx, value string) error {
		if value == "si" {
			c.Say("De acuerdo, elige otro producto del catálogo:")
			showCatalog(c, d)
			c.Await(capProduct)
			return nil
		}

		total := models.CartTotal(getItems(c))
		c.Say(fmt.Sprintf("El total a pagar por tu pedido es S/%s. ¿Deseas recoger en tienda o delivery?\n1. Tienda\n2. Delivery",
			soles(total)))
		c.Await(capDelivery)
		return nil
	}
}

func captureDelivery(d Deps) flow.CaptureFunc {
	return func(c *flow.Ctx, value string) error {
		if value == "tienda" {
			c.Set(map[string]interface{}{
				keyDeliveryMethod: "tienda",
				keyAddress:        d.StoreAddress,
			})
			askPayment(c, d)
			return nil
		}

		c.Set(map[string]interface{}{keyDeliveryMethod: "delivery"})
		c.Say("Ingresa tu dirección completa (dirección, ciudad):")
		c.Await(capAddress)
		return nil
	}
}

func captureAddress(d Deps) flow.CaptureFunc {
	return func(c *flow.Ctx, value string) error {
		c.Set(map[string]interface{}{keyAddress: value})
		askPayment(c, d)
		return nil
	}
}

func capturePayment() flow.CaptureFunc {
	return func(c *flow.Ctx, value string) error {
		if value == "si" {
			c.Say("Perfecto, por favor dame tu DNI para emitir la boleta.")
			c.Await(capDNI)
			return nil
		}

		c.Say(`Entiendo, puedes pagar más tarde. Si deseas cancelar, escribe "cancelar".`)
		c.Set(map[string]interface{}{keyOrderPending: true})
		c.Await(capPayment)
		return nil
	}
}

func captureDNI() flow.CaptureFunc {
	return func(c *flow.Ctx, value string) error {
		c.Set(map[string]interface{}{keyDNI: value})
		c.Goto(FlowOrder)
		return nil
	}
}

// askPayment presents the payment QR and awaits the confirmation reply.
func askPayment(c *flow.Ctx, d Deps) {
	c.SayMedia("Escanea el QR", d.PaymentQRURL)
	c.Say(`Una vez pagues, responde con "Sí" para continuar.`)
	c.Await(capPayment)
}

// showCatalog fetches the catalog, caches it in scratch state and lists it.
func showCatalog(c *flow.Ctx, d Deps) {
	products, err := d.Backend.ListAvailableProducts(c.Context())
	if err != nil {
		log.Printf("❌ Failed to fetch catalog: %v", err)
		c.Say("Lo siento, no pude consultar el catálogo en este momento. Intenta nuevamente.")
		return
	}
	c.Set(map[string]interface{}{keyProducts: products})

	var sb strings.Builder
	sb.WriteString("Productos disponibles:\n")
	for i, p := range products {
		fmt.Fprintf(&sb, "%d. %s - Precio: S/%s\n", i+1, p.Nombre, soles(p.PrecioUnitario))
	}
	c.Say(sb.String())
}

// Validators

func minLength(n int, reason string) flow.ValidateFunc {
	return func(raw string) (string, error) {
		value := strings.TrimSpace(raw)
		if len([]rune(value)) < n {
			return "", errors.New(reason)
		}
		return value, nil
	}
}

func integerOption(reason string) flow.ValidateFunc {
	return func(raw string) (string, error) {
		value := strings.ToLower(strings.TrimSpace(raw))
		if _, err := strconv.Atoi(value); err != nil {
			return "", errors.New(reason)
		}
		return value, nil
	}
}

func positiveInteger(reason string) flow.ValidateFunc {
	return func(raw string) (string, error) {
		value := strings.TrimSpace(raw)
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return "", errors.New(reason)
		}
		return value, nil
	}
}

func yesNoOption(reason string) flow.ValidateFunc {
	return func(raw string) (string, error) {
		value := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case strings.Contains(value, "1"), strings.Contains(value, "si"), strings.Contains(value, "sí"):
			return "si", nil
		case strings.Contains(value, "2"), strings.Contains(value, "no"):
			return "no", nil
		default:
			return "", errors.New(reason)
		}
	}
}

func deliveryOption() flow.ValidateFunc {
	return func(raw string) (string, error) {
		value := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case strings.Contains(value, "1"), strings.Contains(value, "tienda"):
			return "tienda", nil
		case strings.Contains(value, "2"), strings.Contains(value, "delivery"):
			return "delivery", nil
		default:
			return "", errors.New(`Opción inválida, elige "1" tienda o "2" delivery`)
		}
	}
}

func paidOption() flow.ValidateFunc {
	return func(raw string) (string, error) {
		value := strings.ToLower(strings.TrimSpace(raw))
		switch value {
		case "sí", "si":
			return "si", nil
		case "no":
			return "no", nil
		default:
			return "", errors.New(`No te he entendido, responde "Sí" si pagaste o "No" si todavía no.`)
		}
	}
}

func dniOption() flow.ValidateFunc {
	return func(raw string) (string, error) {
		value := strings.TrimSpace(raw)
		if !dniPattern.MatchString(value) {
			return "", errors.New("El DNI debe contener 8 dígitos numéricos, intenta nuevamente.")
		}
		return value, nil
	}
}

// soles renders an amount the way the store writes prices: no trailing zeros.
func soles(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// splitChunks breaks a generated answer into sentence chunks, splitting on a
// period followed by whitespace unless the period ends a number (e.g. "S/1.5").
func splitChunks(text string) []string {
	var chunks []string
	start := 0
	for i := 0; i+1 < len(text); i++ {
		if text[i] != '.' {
			continue
		}
		next := text[i+1]
		if next != ' ' && next != '\n' && next != '\t' {
			continue
		}
		if i > 0 && text[i-1] >= '0' && text[i-1] <= '9' {
			continue
		}
		if chunk := strings.TrimSpace(text[start:i]); chunk != "" {
			chunks = append(chunks, chunk)
		}
		start = i + 1
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		chunks = append(chunks, rest)
	}
	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}
