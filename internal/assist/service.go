package assist

import (
	"context"
	"fmt"
	"strings"

	"github.com/scontainr/quotecenter/internal/ledger"
	"github.com/scontainr/quotecenter/internal/money"
	"github.com/scontainr/quotecenter/internal/project"
	"github.com/scontainr/quotecenter/internal/quote"
)

const systemPrompt = "Eres analista financiero y operativo de Scontainr. " +
	"Responde en español, concreto y accionable. " +
	"Si te piden costos de mercado, indica supuestos y nivel de confianza. " +
	"Usa el contexto del proyecto como fuente principal."

const maxHistory = 8

// Service builds the chat input and delegates to the API client.
type Service struct {
	client *Client
}

func NewService(client *Client) *Service {
	return &Service{client: client}
}

// Request is a chat question with optional prior turns.
type Request struct {
	Question   string    `json:"question" validate:"required"`
	Context    string    `json:"context"`
	History    []Message `json:"history"`
	IncludeWeb bool      `json:"includeWeb"`
}

// Ask forwards the question with the system prompt, the project context and
// the last turns of history.
func (s *Service) Ask(ctx context.Context, req Request) (string, error) {
	history := req.History
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	projCtx := req.Context
	if projCtx == "" {
		projCtx = "Sin contexto."
	}

	input := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "system", Content: "Contexto del cotizador:\n" + projCtx},
	}
	for _, m := range history {
		if m.Content == "" {
			continue
		}
		role := "user"
		if m.Role == "assistant" {
			role = "assistant"
		}
		input = append(input, Message{Role: role, Content: m.Content})
	}
	input = append(input, Message{Role: "user", Content: req.Question})

	return s.client.Respond(ctx, input, req.IncludeWeb)
}

// BuildContext summarizes the active project and the won-project roll-up the
// way the chat expects it.
func BuildContext(p project.Project, totals quote.Totals, landedCostUSD float64, cc ledger.ControlCenter) string {
	orEmpty := func(v, fallback string) string {
		if strings.TrimSpace(v) == "" {
			return fallback
		}
		return v
	}
	lines := []string{
		"Proyecto: " + orEmpty(p.Meta.Name, "Sin nombre"),
		"Contacto: " + orEmpty(p.Meta.Contact, "Sin contacto"),
		"Ubicación: " + orEmpty(p.Meta.Location, "Sin ubicación"),
		fmt.Sprintf("Ganado: %s", yesNo(p.State.Won)),
		"Estatus proyecto: " + project.StatusLabel(p.State.Status),
		fmt.Sprintf("Unidades totales: %d", p.State.TotalUnits()),
		fmt.Sprintf("Líneas de producto: %d", len(p.State.Lines)),
		fmt.Sprintf("Costo estimado USD: %.2f", money.Round2(landedCostUSD)),
		fmt.Sprintf("Venta total USD: %.2f", totals.PriceUSD),
		fmt.Sprintf("Utilidad neta USD: %.2f", totals.NetProfitUSD),
		fmt.Sprintf("Por pagar (ganados) USD: %.2f", cc.PendingCharges.USD),
		fmt.Sprintf("Por recibir (ganados) USD: %.2f", cc.PendingCredits.USD),
		fmt.Sprintf("Flujo real (ganados) MXN: %.2f", cc.Realized.Balance.MXN),
		fmt.Sprintf("Movimientos registrados: %d", len(p.State.Movements)),
	}
	return strings.Join(lines, "\n")
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}
