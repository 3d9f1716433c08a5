package handlers

import (
	"errors"
	"net/http"

	"insurance-ledger/internal/apiutil"
	"insurance-ledger/internal/contract"
	"insurance-ledger/internal/ledger"
	"insurance-ledger/internal/oracle"
	"insurance-ledger/internal/services"

	"github.com/gofiber/fiber/v3"
)

// respondError maps the domain error taxonomy onto HTTP statuses. Rule
// violations always surface the specific rule name that failed.
func respondError(c fiber.Ctx, err error) error {
	if rule, ok := contract.IsRuleViolation(err); ok {
		return c.Status(http.StatusUnprocessableEntity).JSON(
			apiutil.CreateErrorResponse("RULE_VIOLATION", rule))
	}
	if ledger.IsNotFound(err) {
		return c.Status(http.StatusNotFound).JSON(
			apiutil.CreateErrorResponse("NOT_FOUND", err.Error()))
	}
	if ledger.IsConsumed(err) || errors.Is(err, ledger.ErrDuplicate) {
		return c.Status(http.StatusConflict).JSON(
			apiutil.CreateErrorResponse("CONFLICT", err.Error()))
	}

	var unavailable *oracle.UnavailableError
	if errors.As(err, &unavailable) {
		return c.Status(http.StatusServiceUnavailable).JSON(
			apiutil.CreateErrorResponse("ORACLE_UNAVAILABLE", err.Error()))
	}
	if errors.Is(err, services.ErrOracleMismatch) {
		return c.Status(http.StatusConflict).JSON(
			apiutil.CreateErrorResponse("ORACLE_MISMATCH", err.Error()))
	}

	return c.Status(http.StatusInternalServerError).JSON(
		apiutil.CreateErrorResponse("INTERNAL_ERROR", "Request could not be processed"))
}
