// Package planner asks a language model to translate a free-form
// question into an expense search plan. The model's output is strict
// JSON naming one tool from a closed set; anything else is rejected so
// the caller can fall back to the deterministic analyzer.
package planner

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"despesas/internal/core"
)

const DefaultModel = "gemini-2.5-flash"

// Planner plans expense searches with a generative model.
type Planner struct {
	client *genai.Client
	model  string
}

func NewPlanner(client *genai.Client, model string) *Planner {
	if model == "" {
		model = DefaultModel
	}
	return &Planner{client: client, model: model}
}

// Plan sends the question to the model and parses the returned plan.
func (p *Planner) Plan(ctx context.Context, question string, today core.Date, catalog []core.Category) (Plan, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildPrompt(question, today, catalog)},
			},
		},
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return Plan{}, fmt.Errorf("generate plan: %w", err)
	}
	raw := resp.Text()
	if raw == "" {
		return Plan{}, fmt.Errorf("%w: empty model response", ErrBadPlannerOutput)
	}
	return ParsePlan(raw)
}

func buildPrompt(question string, today core.Date, catalog []core.Category) string {
	var b strings.Builder
	b.WriteString("Você traduz perguntas sobre gastos de uma empresa em chamadas de ferramenta.\n\n")
	b.WriteString("Data de hoje: " + today.String() + "\n\n")
	b.WriteString("Ferramenta disponível:\n")
	b.WriteString("- \"buscar_despesas\": busca contas a pagar por período e descrição.\n")
	b.WriteString("  Argumentos:\n")
	b.WriteString("  - \"data_de\": string, formato \"YYYY-MM-DD\"\n")
	b.WriteString("  - \"data_ate\": string, formato \"YYYY-MM-DD\"\n")
	b.WriteString("  - \"descricao\": string, filtro de texto livre (pode ficar vazia)\n\n")

	if len(catalog) > 0 {
		b.WriteString("Categorias de despesa conhecidas (use o nome exato na descrição quando a pergunta citar uma delas):\n")
		for _, c := range catalog {
			b.WriteString("- " + c.Name + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Regras:\n")
	b.WriteString("- Responda SOMENTE com JSON válido, sem comentários e sem texto extra.\n")
	b.WriteString("- NÃO use cercas de código Markdown (```).\n")
	b.WriteString("- O JSON deve ter os campos \"ferramenta\" e \"argumentos\".\n")
	b.WriteString("- Sem período explícito na pergunta, use os últimos 30 dias.\n\n")

	b.WriteString("Pergunta: " + question + "\n")
	return b.String()
}
