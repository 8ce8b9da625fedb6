// Package availability classifies on-hand quantities into display labels
// using ordered threshold rules.
package availability

import "go-commerce-core/internal/model"

// Matches reports whether quantity satisfies "quantity <op> threshold".
// Unknown operators never match.
func Matches(op string, quantity, threshold int) bool {
	switch op {
	case ">":
		return quantity > threshold
	case "<":
		return quantity < threshold
	case "=":
		return quantity == threshold
	case ">=":
		return quantity >= threshold
	case "<=":
		return quantity <= threshold
	default:
		return false
	}
}

// Classify returns the first rule matching quantity, or nil. When supplierID
// is given, rules scoped to that supplier are scanned before global rules;
// rules scoped to other suppliers are never considered. Within each pass the
// list order decides.
func Classify(quantity int, rules []model.AvailabilityRule, supplierID *uint) *model.AvailabilityRule {
	if supplierID != nil {
		for i := range rules {
			r := &rules[i]
			if r.SupplierID != nil && *r.SupplierID == *supplierID && Matches(r.Operator, quantity, r.Threshold) {
				return r
			}
		}
	}
	for i := range rules {
		r := &rules[i]
		if r.SupplierID == nil && Matches(r.Operator, quantity, r.Threshold) {
			return r
		}
	}
	return nil
}

// Classifier is a rule set bound for the lifetime of one call.
type Classifier struct {
	rules []model.AvailabilityRule
}

func NewClassifier(rules []model.AvailabilityRule) *Classifier {
	return &Classifier{rules: rules}
}

func (c *Classifier) Classify(quantity int, supplierID *uint) *model.AvailabilityRule {
	return Classify(quantity, c.rules, supplierID)
}

// Label is Classify reduced to the display label; "" when nothing matches.
func (c *Classifier) Label(quantity int, supplierID *uint) string {
	if r := c.Classify(quantity, supplierID); r != nil {
		return r.Label
	}
	return ""
}
