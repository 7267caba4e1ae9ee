package botflows

import "github.com/zoi-aqua/aquabot-backend/internal/flow"

// Hello greets users that open with a salutation keyword.
func Hello() *flow.Flow {
	return flow.New(FlowHello).
		On("hola", "buenas").
		AddAction(func(c *flow.Ctx) error {
			c.Say("Bienvenido a la tienda *Zoi Aqua*. ¿En qué puedo ayudarte 😀?")
			return nil
		})
}
