package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"despesas/internal/core"
	"despesas/internal/ledger"
)

// ToolKind names a tool the model may plan. The set is closed: anything
// else in the model output is rejected.
type ToolKind string

const ToolSearchExpenses ToolKind = "buscar_despesas"

// ErrBadPlannerOutput reports model output that could not be turned into
// a plan. Callers fall back to the deterministic analyzer.
var ErrBadPlannerOutput = errors.New("planner output not usable")

// SearchExpensesArgs are the arguments the model fills in for the
// expense search tool.
type SearchExpensesArgs struct {
	DataDe    string `json:"data_de"`
	DataAte   string `json:"data_ate"`
	Descricao string `json:"descricao"`
}

// Plan is one parsed tool invocation.
type Plan struct {
	Tool ToolKind           `json:"ferramenta"`
	Args SearchExpensesArgs `json:"argumentos"`
}

// ParsePlan decodes raw model output into a validated Plan. Markdown
// code fences around the JSON are tolerated.
func ParsePlan(raw string) (Plan, error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return Plan{}, fmt.Errorf("%w: empty output", ErrBadPlannerOutput)
	}

	var p Plan
	if err := json.Unmarshal([]byte(clean), &p); err != nil {
		return Plan{}, fmt.Errorf("%w: decode: %v", ErrBadPlannerOutput, err)
	}
	if p.Tool != ToolSearchExpenses {
		return Plan{}, fmt.Errorf("%w: unknown tool %q", ErrBadPlannerOutput, p.Tool)
	}
	if _, err := parsePlanDate(p.Args.DataDe); err != nil {
		return Plan{}, fmt.Errorf("%w: data_de: %v", ErrBadPlannerOutput, err)
	}
	if _, err := parsePlanDate(p.Args.DataAte); err != nil {
		return Plan{}, fmt.Errorf("%w: data_ate: %v", ErrBadPlannerOutput, err)
	}
	return p, nil
}

// QueryFromPlan maps a validated plan onto ledger search filters.
func QueryFromPlan(p Plan) (ledger.SearchQuery, error) {
	from, err := parsePlanDate(p.Args.DataDe)
	if err != nil {
		return ledger.SearchQuery{}, fmt.Errorf("%w: data_de: %v", ErrBadPlannerOutput, err)
	}
	to, err := parsePlanDate(p.Args.DataAte)
	if err != nil {
		return ledger.SearchQuery{}, fmt.Errorf("%w: data_ate: %v", ErrBadPlannerOutput, err)
	}
	period := core.Period{From: from, To: to}
	if err := period.Validate(); err != nil {
		return ledger.SearchQuery{}, fmt.Errorf("%w: %v", ErrBadPlannerOutput, err)
	}
	return ledger.SearchQuery{
		Period:      period,
		Description: strings.TrimSpace(p.Args.Descricao),
		Page:        1,
		PageSize:    ledger.SearchPageSize,
	}, nil
}

func parsePlanDate(s string) (core.Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return core.Date{}, err
	}
	return core.DateOf(t), nil
}

// cleanModelJSON strips Markdown code fences the model sometimes adds
// despite being told not to.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
