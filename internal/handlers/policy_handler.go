package handlers

import (
	"log/slog"
	"net/http"

	"insurance-ledger/internal/apiutil"
	"insurance-ledger/internal/models"
	"insurance-ledger/internal/services"

	"github.com/gofiber/fiber/v3"
)

type PolicyHandler struct {
	policyService    *services.PolicyService
	autoClaimService *services.AutoClaimService
}

func NewPolicyHandler(policyService *services.PolicyService, autoClaimService *services.AutoClaimService) *PolicyHandler {
	return &PolicyHandler{
		policyService:    policyService,
		autoClaimService: autoClaimService,
	}
}

func (h *PolicyHandler) Register(app *fiber.App) {
	api := app.Group("/ledger/api/v1")

	api.Post("/policies", h.CreatePolicy)
	api.Get("/policies", h.ListPolicies)
	api.Get("/policies/:id", h.GetPolicy)
	api.Get("/policies/:id/history", h.GetPolicyHistory)
	api.Get("/farmers/:farmer_id/policies", h.ListFarmerPolicies)

	api.Post("/policies/:id/manual-claim", h.FileManualClaim)
	api.Post("/policies/:id/evaluate", h.RunAutoClaim)
}

// CreatePolicy sells a policy under an active product.
func (h *PolicyHandler) CreatePolicy(c fiber.Ctx) error {
	var req models.CreatePolicyRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_BODY", "Invalid policy payload"))
	}

	policy, err := h.policyService.CreatePolicy(c.Context(), req)
	if err != nil {
		slog.Error("failed to create policy", "product_id", req.ProductID, "farmer_id", req.FarmerID, "error", err)
		return respondError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(apiutil.CreateSuccessResponse(policy))
}

// FileManualClaim files a damage claim against the latest policy version.
func (h *PolicyHandler) FileManualClaim(c fiber.Ctx) error {
	policyID := c.Params("id")

	var req models.ManualClaimRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_BODY", "Invalid claim payload"))
	}

	policy, err := h.policyService.FileManualClaim(c.Context(), policyID, req)
	if err != nil {
		slog.Error("failed to file manual claim", "policy_id", policyID, "error", err)
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(apiutil.CreateSuccessResponse(policy))
}

// RunAutoClaim triggers one automatic evaluation immediately instead of
// waiting for the scheduler's tick.
func (h *PolicyHandler) RunAutoClaim(c fiber.Ctx) error {
	policyID := c.Params("id")

	if err := h.autoClaimService.RunAutoClaim(c.Context(), policyID); err != nil {
		slog.Error("failed to run automatic claim", "policy_id", policyID, "error", err)
		return respondError(c, err)
	}

	policy, err := h.policyService.GetPolicy(c.Context(), policyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(apiutil.CreateSuccessResponse(policy))
}

func (h *PolicyHandler) GetPolicy(c fiber.Ctx) error {
	policy, err := h.policyService.GetPolicy(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(apiutil.CreateSuccessResponse(policy))
}

func (h *PolicyHandler) GetPolicyHistory(c fiber.Ctx) error {
	history, err := h.policyService.GetPolicyHistory(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(apiutil.CreateSuccessResponse(map[string]any{
		"versions": history,
		"count":    len(history),
	}))
}

func (h *PolicyHandler) ListPolicies(c fiber.Ctx) error {
	policies, err := h.policyService.ListPolicies(c.Context())
	if err != nil {
		slog.Error("failed to list policies", "error", err)
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(apiutil.CreateSuccessResponse(map[string]any{
		"policies": policies,
		"count":    len(policies),
	}))
}

func (h *PolicyHandler) ListFarmerPolicies(c fiber.Ctx) error {
	farmerID := c.Params("farmer_id")
	policies, err := h.policyService.ListPoliciesByFarmer(c.Context(), farmerID)
	if err != nil {
		slog.Error("failed to list farmer policies", "farmer_id", farmerID, "error", err)
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(apiutil.CreateSuccessResponse(map[string]any{
		"policies":  policies,
		"count":     len(policies),
		"farmer_id": farmerID,
	}))
}
