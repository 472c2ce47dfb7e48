package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appdocument "github.com/erp/docflow/internal/application/document"
	"github.com/erp/docflow/internal/domain/document"
)

// DocumentService is the slice of the document application service the
// HTTP layer depends on.
type DocumentService interface {
	CreateDocument(ctx context.Context, req appdocument.CreateDocumentRequest) (*appdocument.DocumentResponse, error)
	GetDocument(ctx context.Context, ref document.DocumentRef) (*appdocument.DocumentResponse, error)
	ListDocuments(ctx context.Context, req appdocument.ListDocumentsRequest) (*appdocument.DocumentListResponse, error)
	UpdateDocument(ctx context.Context, ref document.DocumentRef, req appdocument.UpdateDocumentRequest) (*appdocument.DocumentResponse, error)
	ChangeStatus(ctx context.Context, ref document.DocumentRef, statusID int) (*appdocument.DocumentResponse, error)
	DeleteDocument(ctx context.Context, ref document.DocumentRef) error
}

// WorkflowService is the slice of the workflow service the HTTP layer
// depends on.
type WorkflowService interface {
	GenerateSuccessor(ctx context.Context, sourceRef document.DocumentRef, targetKind document.DocumentKind, quantities map[uuid.UUID]decimal.Decimal) (*appdocument.DocumentResponse, error)
	Children(ctx context.Context, ref document.DocumentRef) ([]document.TransformationEdge, error)
	Parents(ctx context.Context, ref document.DocumentRef) ([]document.TransformationEdge, error)
}

// DocumentHandler handles commercial document API endpoints
type DocumentHandler struct {
	BaseHandler
	docs     DocumentService
	workflow WorkflowService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(docs DocumentService, workflow WorkflowService) *DocumentHandler {
	return &DocumentHandler{docs: docs, workflow: workflow}
}

// RegisterRoutes registers document routes on the given group
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	docs := rg.Group("/documents")
	{
		docs.POST("", h.Create)
		docs.GET("", h.List)
		docs.GET("/:kind/:id", h.Get)
		docs.PATCH("/:kind/:id", h.Update)
		docs.DELETE("/:kind/:id", h.Delete)
		docs.POST("/:kind/:id/status", h.ChangeStatus)
		docs.POST("/:kind/:id/generate", h.Generate)
		docs.GET("/:kind/:id/children", h.Children)
		docs.GET("/:kind/:id/parents", h.Parents)
	}
}

// ChangeStatusRequest represents a request to move a document into a new status
type ChangeStatusRequest struct {
	StatusID *int `json:"status_id" binding:"required"`
}

// GenerateQuantityInput selects a partial quantity of one source line
type GenerateQuantityInput struct {
	LineID   uuid.UUID       `json:"line_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// GenerateDocumentRequest represents a request to generate a successor document
type GenerateDocumentRequest struct {
	TargetKind string                  `json:"target_kind" binding:"required,documentkind"`
	Quantities []GenerateQuantityInput `json:"quantities"`
}

// EdgeResponse represents one transformation edge in API responses
type EdgeResponse struct {
	ID         uuid.UUID `json:"id"`
	SourceKind string    `json:"source_kind"`
	SourceID   uuid.UUID `json:"source_id"`
	TargetKind string    `json:"target_kind"`
	TargetID   uuid.UUID `json:"target_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func toEdgeResponses(edges []document.TransformationEdge) []EdgeResponse {
	out := make([]EdgeResponse, 0, len(edges))
	for _, e := range edges {
		out = append(out, EdgeResponse{
			ID:         e.ID,
			SourceKind: e.SourceKind.String(),
			SourceID:   e.SourceID,
			TargetKind: e.TargetKind.String(),
			TargetID:   e.TargetID,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}

// parseKind reads and validates the :kind path parameter
func parseKind(c *gin.Context) (document.DocumentKind, bool) {
	kind := document.DocumentKind(strings.ToUpper(c.Param("kind")))
	return kind, kind.IsValid()
}

// parseRef reads the :kind/:id path parameters into a document ref
func parseRef(c *gin.Context) (document.DocumentRef, bool) {
	kind, ok := parseKind(c)
	if !ok {
		return document.DocumentRef{}, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return document.DocumentRef{}, false
	}
	return document.DocumentRef{Kind: kind, ID: id}, true
}

// Create creates a new commercial document
func (h *DocumentHandler) Create(c *gin.Context) {
	var req appdocument.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if !req.Kind.IsValid() {
		h.BadRequest(c, "Unknown document kind: "+req.Kind.String())
		return
	}

	resp, err := h.docs.CreateDocument(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns a filtered page of documents of one kind
func (h *DocumentHandler) List(c *gin.Context) {
	var req appdocument.ListDocumentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if !req.Kind.IsValid() {
		h.BadRequest(c, "Unknown document kind: "+req.Kind.String())
		return
	}

	resp, err := h.docs.ListDocuments(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, resp.Documents, resp.Total, resp.Page, resp.PageSize)
}

// Get returns one document with its lines
func (h *DocumentHandler) Get(c *gin.Context) {
	ref, ok := parseRef(c)
	if !ok {
		h.BadRequest(c, "Invalid document reference")
		return
	}

	resp, err := h.docs.GetDocument(c.Request.Context(), ref)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update applies a partial edit to a document
func (h *DocumentHandler) Update(c *gin.Context) {
	ref, ok := parseRef(c)
	if !ok {
		h.BadRequest(c, "Invalid document reference")
		return
	}

	var req appdocument.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.docs.UpdateDocument(c.Request.Context(), ref, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a document and rolls back its side effects
func (h *DocumentHandler) Delete(c *gin.Context) {
	ref, ok := parseRef(c)
	if !ok {
		h.BadRequest(c, "Invalid document reference")
		return
	}

	if err := h.docs.DeleteDocument(c.Request.Context(), ref); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// ChangeStatus moves a document into a new status
func (h *DocumentHandler) ChangeStatus(c *gin.Context) {
	ref, ok := parseRef(c)
	if !ok {
		h.BadRequest(c, "Invalid document reference")
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.docs.ChangeStatus(c.Request.Context(), ref, *req.StatusID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Generate creates a successor document from the addressed source. An
// empty quantity list takes every pending quantity of every line.
func (h *DocumentHandler) Generate(c *gin.Context) {
	ref, ok := parseRef(c)
	if !ok {
		h.BadRequest(c, "Invalid document reference")
		return
	}

	var req GenerateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	targetKind := document.DocumentKind(strings.ToUpper(req.TargetKind))

	var quantities map[uuid.UUID]decimal.Decimal
	if len(req.Quantities) > 0 {
		quantities = make(map[uuid.UUID]decimal.Decimal, len(req.Quantities))
		for _, q := range req.Quantities {
			quantities[q.LineID] = q.Quantity
		}
	}

	resp, err := h.workflow.GenerateSuccessor(c.Request.Context(), ref, targetKind, quantities)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// Children lists the transformation edges leaving a document
func (h *DocumentHandler) Children(c *gin.Context) {
	ref, ok := parseRef(c)
	if !ok {
		h.BadRequest(c, "Invalid document reference")
		return
	}

	edges, err := h.workflow.Children(c.Request.Context(), ref)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toEdgeResponses(edges))
}

// Parents lists the transformation edges arriving at a document
func (h *DocumentHandler) Parents(c *gin.Context) {
	ref, ok := parseRef(c)
	if !ok {
		h.BadRequest(c, "Invalid document reference")
		return
	}

	edges, err := h.workflow.Parents(c.Request.Context(), ref)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toEdgeResponses(edges))
}
