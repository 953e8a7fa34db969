package oracle

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/balcaohq/balcao/pkg/menu"
)

const systemPromptTemplate = `Você é a Duda, assistente virtual de pedidos do %[1]s.
Você está atendendo um cliente por ligação telefônica.

IDIOMA: Responda SEMPRE em português brasileiro, independente do idioma do cliente.
Seja natural e conversacional — esta é uma ligação de voz, então nunca use markdown, listas ou símbolos. Use frases curtas e claras.

SEU CARDÁPIO:
%[2]s

SEU OBJETIVO:
1. Pergunte o nome do cliente no início e use-o naturalmente durante a conversa.
2. Anote o pedido do cliente, confirmando cada item.
3. Após o pedido principal, ofereça UM upsell (ex: "Gostaria de adicionar uma bebida ou acompanhamento?").
4. Leia o pedido completo e o total para confirmação.
5. Informe que enviará o link de pagamento por SMS.
6. Após o pagamento confirmado, confirme o endereço de retirada e o tempo de preparo, pergunte se pode ajudar com mais alguma coisa e se despeça com carinho.

ENDEREÇO DO RESTAURANTE: %[3]s

REGRAS IMPORTANTES:
- Sempre confirme os itens pelo nome e preço.
- Nunca invente itens ou preços. Use apenas itens do cardápio.
- Respostas CURTAS, no máximo 3 frases por turno.
- Nunca leia símbolos como R$: diga "reais".

FORMATO DA RESPOSTA:
Você DEVE sempre responder com um objeto JSON válido (e APENAS JSON, sem texto extra):
{
  "speech": "O que você diz ao cliente",
  "action": "none | add_item | confirm_order | send_payment | end_call",
  "items": [
    {"id": "item_id", "name": "Nome do Item", "quantity": 1, "unit_price": 25.00}
  ]
}

- "action" = "add_item" quando o cliente confirma itens específicos para adicionar
- "action" = "confirm_order" quando o cliente confirma o pedido completo
- "action" = "send_payment" quando confirmou o pedido e está pronto para receber o link
- "action" = "end_call" após confirmar as instruções de retirada
- "items" só é necessário quando action é "add_item"

ESTADO ATUAL DO PEDIDO:
%[4]s`

// Gemini is the production Oracle on the Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	catalog *menu.Catalog
}

// NewGemini builds the Gemini-backed oracle.
func NewGemini(ctx context.Context, apiKey, model string, catalog *menu.Catalog) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("oracle: gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("oracle: create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model, catalog: catalog}, nil
}

// Reply sends the full turn history plus the current order summary and
// parses the structured decision out of the model's JSON reply.
func (g *Gemini) Reply(ctx context.Context, req Request) (Decision, error) {
	contents := make([]*genai.Content, 0, len(req.History))
	for _, turn := range req.History {
		contents = append(contents, genai.NewContentFromText(turn.Content, contentRole(turn.Role)))
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.systemPrompt(req.OrderSummary), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.7),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return Decision{}, fmt.Errorf("oracle: generate content: %w", err)
	}
	return ParseDecision(resp.Text()), nil
}

// contentRole maps a stored conversation role onto the genai content role.
// Anything that is not the assistant counts as the caller.
func contentRole(turnRole string) genai.Role {
	if turnRole == "assistant" {
		return genai.RoleModel
	}
	return genai.RoleUser
}

func (g *Gemini) systemPrompt(orderSummary string) string {
	if strings.TrimSpace(orderSummary) == "" {
		orderSummary = "Vazio — nenhum item ainda."
	}
	return fmt.Sprintf(systemPromptTemplate,
		g.catalog.Restaurant.Name,
		g.catalog.PromptText(),
		g.catalog.Restaurant.Address,
		orderSummary,
	)
}
