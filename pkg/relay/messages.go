package relay

import (
	"fmt"

	"github.com/balcaohq/balcao/pkg/menu"
	"github.com/balcaohq/balcao/pkg/order"
)

// Fixed pt-BR notices. The oracle produces the conversational wording; these
// are the operational messages the gateway itself must get right.
const (
	waitingForPaymentNotice = "Enviei o link de pagamento por SMS. Por favor, finalize o pagamento e aguarde a confirmação."

	paymentFailureApology = "Desculpe, houve um problema ao processar o pagamento. Por favor, ligue novamente."

	oracleFailureApology = "Desculpe, não entendi. Pode repetir, por favor?"
)

// paymentConfirmedMessage is what the watcher speaks once the payment lands.
func paymentConfirmedMessage(s *order.Session, r menu.Restaurant) string {
	address := r.Address
	if address == "" {
		address = "nosso restaurante"
	}
	return fmt.Sprintf(
		"Pagamento confirmado! Muito obrigada. "+
			"Seu número de pedido é %s e ficará pronto em aproximadamente %d minutos. "+
			"Você pode retirar em %s. "+
			"Gostaria que eu repetisse o endereço?",
		s.OrderID, r.PrepTimeMinutes, address,
	)
}
