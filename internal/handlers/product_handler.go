package handlers

import (
	"log/slog"
	"net/http"

	"insurance-ledger/internal/apiutil"
	"insurance-ledger/internal/models"
	"insurance-ledger/internal/services"

	"github.com/gofiber/fiber/v3"
)

type ProductHandler struct {
	productService  *services.ProductService
	documentService *services.DocumentService
}

func NewProductHandler(productService *services.ProductService, documentService *services.DocumentService) *ProductHandler {
	return &ProductHandler{
		productService:  productService,
		documentService: documentService,
	}
}

func (h *ProductHandler) Register(app *fiber.App) {
	api := app.Group("/ledger/api/v1")

	// Provider routes
	api.Post("/product-documents", h.UploadProductDocument)
	api.Post("/proposals", h.ProposeProduct)
	api.Get("/proposals", h.ListProposals)

	// Regulator routes
	api.Post("/products/approve/:proposal_id", h.ApproveProduct)

	api.Get("/products", h.ListProducts)
	api.Get("/products/:id", h.GetProduct)
}

// UploadProductDocument stores a product document and returns the hash a
// subsequent proposal must carry.
func (h *ProductHandler) UploadProductDocument(c fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("EMPTY_DOCUMENT", "Request body must contain the document"))
	}

	hash, err := h.documentService.StoreProductDocument(c.Context(), c.Get("Content-Type"), body)
	if err != nil {
		slog.Error("failed to store product document", "error", err)
		return respondError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(apiutil.CreateSuccessResponse(map[string]any{
		"product_doc_hash": hash,
	}))
}

// ProposeProduct submits a provider's product offer.
func (h *ProductHandler) ProposeProduct(c fiber.Ctx) error {
	var req models.ProposeProductRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_BODY", "Invalid proposal payload"))
	}

	proposal, err := h.productService.ProposeProduct(c.Context(), req)
	if err != nil {
		slog.Error("failed to propose product", "provider", req.ProviderName, "error", err)
		return respondError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(apiutil.CreateSuccessResponse(proposal))
}

// ApproveProduct turns a proposal into a sellable product.
func (h *ProductHandler) ApproveProduct(c fiber.Ctx) error {
	proposalID := c.Params("proposal_id")

	product, err := h.productService.ApproveProduct(c.Context(), proposalID)
	if err != nil {
		slog.Error("failed to approve product", "proposal_id", proposalID, "error", err)
		return respondError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(apiutil.CreateSuccessResponse(product))
}

func (h *ProductHandler) GetProduct(c fiber.Ctx) error {
	product, err := h.productService.GetProduct(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(apiutil.CreateSuccessResponse(product))
}

func (h *ProductHandler) ListProducts(c fiber.Ctx) error {
	products, err := h.productService.ListProducts(c.Context())
	if err != nil {
		slog.Error("failed to list products", "error", err)
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(apiutil.CreateSuccessResponse(map[string]any{
		"products": products,
		"count":    len(products),
	}))
}

func (h *ProductHandler) ListProposals(c fiber.Ctx) error {
	status := models.ProposalStatus(c.Query("status"))
	proposals, err := h.productService.ListProposals(c.Context(), status)
	if err != nil {
		slog.Error("failed to list proposals", "error", err)
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(apiutil.CreateSuccessResponse(map[string]any{
		"proposals": proposals,
		"count":     len(proposals),
	}))
}
