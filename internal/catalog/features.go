package catalog

import "fmt"

// Plan tiers, ordered from smallest to largest.
const (
	TierFree = "free"
	TierSeed = "seed"
	TierGrow = "grow"
	TierPro  = "pro"
)

var tierFeatures = map[string][]string{
	TierFree: {
		"Suporte por email",
	},
	TierSeed: {
		"Suporte por email",
		"Relatórios básicos",
	},
	TierGrow: {
		"Suporte prioritário",
		"Relatórios avançados",
		"Exportação de dados",
	},
	TierPro: {
		"Suporte prioritário 24/7",
		"Relatórios avançados",
		"Exportação de dados",
		"API de integração",
		"Gerente de conta dedicado",
	},
}

var moduleFeatures = map[string][]string{
	"cultivation": {
		"Controle de plantio e colheita",
		"Rastreabilidade de lotes",
		"Registro de insumos",
	},
	"production": {
		"Ordens de produção",
		"Controle de estoque",
		"Etiquetagem de produtos",
	},
	"medical": {
		"Prontuário de pacientes",
		"Prescrições e dispensação",
		"Agenda de consultas",
	},
	"financial": {
		"Contas a pagar e receber",
		"Faturamento",
		"Conciliação bancária",
	},
	"compliance": {
		"Documentação regulatória",
		"Alertas de vencimento de licenças",
		"Trilha de auditoria",
	},
}

// PlanFeatures derives the feature strings shown for a plan: the record
// quota line plus the tier's bundled features.
func PlanFeatures(tier string, maxRecords int) []string {
	features := []string{fmt.Sprintf("Até %d cadastros", maxRecords)}
	features = append(features, tierFeatures[tier]...)
	return features
}

// ModuleFeatures returns the static feature list for a module type.
// Unknown types get an empty list rather than nil so they serialize as [].
func ModuleFeatures(moduleType string) []string {
	if f, ok := moduleFeatures[moduleType]; ok {
		out := make([]string, len(f))
		copy(out, f)
		return out
	}
	return []string{}
}
