package dashboard

// Field names a typed attribute a predicate may reference. Each entity
// kind accepts its own subset; the stats repository rejects predicates
// that reference a field the entity does not expose.
type Field string

const (
	FieldStatus            Field = "status"
	FieldPaymentStatus     Field = "payment_status"
	FieldCreatedAt         Field = "created_at"
	FieldIsActive          Field = "is_active"
	FieldAvailableQuantity Field = "available_quantity"
	FieldRole              Field = "role"
	FieldVendorApproved    Field = "vendor_approved"
)

// Condition is a composable filter expression applied to a count or
// aggregation. The variant set is closed: Equals, In, Range, And.
// A nil Condition matches everything.
type Condition interface {
	isCondition()
}

// Equals matches records whose field equals the value exactly.
type Equals struct {
	Field Field
	Value any
}

func (Equals) isCondition() {}

// In matches records whose field equals any of the values.
type In struct {
	Field  Field
	Values []any
}

func (In) isCondition() {}

// Range matches records whose field falls within [Min, Max]. A nil
// bound leaves that end open.
type Range struct {
	Field Field
	Min   any
	Max   any
}

func (Range) isCondition() {}

// And is the conjunction of its conditions.
type And struct {
	Conds []Condition
}

func (And) isCondition() {}

// AllOf builds a conjunction, skipping nils. It returns nil when no
// conditions remain and the single condition unwrapped when only one
// does.
func AllOf(conds ...Condition) Condition {
	kept := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if c != nil {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return And{Conds: kept}
}
