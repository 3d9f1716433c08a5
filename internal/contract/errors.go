package contract

import "errors"

// RuleViolation is the rejection result of validating a candidate transition.
// It names the violated rule so every independently validating party reports
// the identical reason. It is never retried automatically; the caller must
// correct its inputs.
type RuleViolation struct {
	Rule string
}

func (e *RuleViolation) Error() string {
	return e.Rule
}

func reject(rule string) error {
	return &RuleViolation{Rule: rule}
}

// IsRuleViolation reports whether err is a rejection, and if so which rule.
func IsRuleViolation(err error) (string, bool) {
	var violation *RuleViolation
	if errors.As(err, &violation) {
		return violation.Rule, true
	}
	return "", false
}
