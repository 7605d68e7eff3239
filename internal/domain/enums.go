package domain

// POAType classifies an annual operating plan. Each type carries its own
// fixed activity catalog and selects one position of a budget line's
// three-part classifier.
type POAType string

const (
	POAOperational POAType = "operational"
	POAInvestment  POAType = "investment"
	POAResearch    POAType = "research"
)

// ValidPOATypes is the canonical set of accepted POA type strings.
var ValidPOATypes = map[string]bool{
	"operational": true, "investment": true, "research": true,
}

// ClassifierIndex returns which of the three semicolon-separated sub-codes
// of a budget line classifier applies to this POA type. Unknown types fall
// back to the last position.
func (t POAType) ClassifierIndex() int {
	switch t {
	case POAOperational:
		return 0
	case POAInvestment:
		return 1
	default:
		return 2
	}
}

type PlanStatus string

const (
	PlanDraft     PlanStatus = "draft"
	PlanSubmitted PlanStatus = "submitted"
	PlanPartial   PlanStatus = "partial"
	PlanFailed    PlanStatus = "failed"
)

// ActivityTemplate is one entry of a POA type's fixed activity catalog.
type ActivityTemplate struct {
	Ordinal     int
	Description string
}

var activityCatalogs = map[POAType][]ActivityTemplate{
	POAOperational: {
		{1, "Administrative and financial management"},
		{2, "Institutional services delivery"},
		{3, "Infrastructure and equipment maintenance"},
		{4, "Monitoring and internal evaluation"},
	},
	POAInvestment: {
		{1, "Procurement and contracting"},
		{2, "Works and installations execution"},
		{3, "Technical supervision and handover"},
	},
	POAResearch: {
		{1, "Research design and protocols"},
		{2, "Field and laboratory work"},
		{3, "Analysis, publication and transfer"},
	},
}

// ActivityCatalog returns the ordered activity templates for a POA type.
// The returned slice is a copy; callers may mutate descriptions freely.
func ActivityCatalog(t POAType) []ActivityTemplate {
	src := activityCatalogs[t]
	out := make([]ActivityTemplate, len(src))
	copy(out, src)
	return out
}
