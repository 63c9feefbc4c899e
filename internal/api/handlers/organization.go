package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/endurancy/platform/internal/audit"
	"github.com/endurancy/platform/internal/auth"
	"github.com/endurancy/platform/internal/models"
	"github.com/endurancy/platform/internal/organization"
)

type OrganizationService interface {
	GetByID(ctx context.Context, id int64) (*models.Organization, error)
	UpdateSettings(ctx context.Context, id int64, in organization.UpdateSettingsInput) (*models.Organization, error)
	SetLogo(ctx context.Context, id int64, logoURL string) error
	PlanOverview(ctx context.Context, orgID int64) (*organization.PlanOverview, error)
}

type RequestService interface {
	RequestPlanChange(ctx context.Context, orgID, planID, requestedBy int64) (*models.Request, error)
	RequestModuleActivation(ctx context.Context, orgID, moduleID, requestedBy int64) (*models.Request, error)
}

type LogoStore interface {
	SaveLogo(contentType string, size int64, r io.Reader) (string, error)
}

type Auditor interface {
	Log(ctx context.Context, entry audit.LogEntry) error
}

type OrganizationHandler struct {
	orgs      OrganizationService
	requests  RequestService
	logos     LogoStore
	auditor   Auditor
	maxUpload int64
}

func NewOrganizationHandler(orgs OrganizationService, requests RequestService, logos LogoStore, auditor Auditor, maxUpload int64) *OrganizationHandler {
	return &OrganizationHandler{orgs: orgs, requests: requests, logos: logos, auditor: auditor, maxUpload: maxUpload}
}

func (h *OrganizationHandler) Plan(w http.ResponseWriter, r *http.Request) {
	orgID := *auth.IdentityFromContext(r.Context()).OrganizationID

	overview, err := h.orgs.PlanOverview(r.Context(), orgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *OrganizationHandler) RequestPlanChange(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	orgID := *id.OrganizationID

	var body struct {
		PlanID int64 `json:"planId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.PlanID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "planId is required"})
		return
	}

	req, err := h.requests.RequestPlanChange(r.Context(), orgID, body.PlanID, id.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.auditLog(r.Context(), "request.plan_change", "request", req.ID)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "plan change request submitted",
		"requestId": req.ID,
	})
}

func (h *OrganizationHandler) RequestModuleActivation(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	orgID := *id.OrganizationID

	var body struct {
		ModuleID int64 `json:"moduleId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ModuleID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "moduleId is required"})
		return
	}

	req, err := h.requests.RequestModuleActivation(r.Context(), orgID, body.ModuleID, id.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.auditLog(r.Context(), "request.module_activation", "request", req.ID)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "module activation request submitted",
		"requestId": req.ID,
	})
}

func (h *OrganizationHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	orgID := *auth.IdentityFromContext(r.Context()).OrganizationID

	org, err := h.orgs.GetByID(r.Context(), orgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (h *OrganizationHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	orgID := *auth.IdentityFromContext(r.Context()).OrganizationID

	var in organization.UpdateSettingsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if in.Name == "" || in.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and email are required"})
		return
	}

	org, err := h.orgs.UpdateSettings(r.Context(), orgID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.auditLog(r.Context(), "organization.settings_updated", "organization", org.ID)

	writeJSON(w, http.StatusOK, org)
}

func (h *OrganizationHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	orgID := *auth.IdentityFromContext(r.Context()).OrganizationID

	// Cap the whole form read before parsing, leaving headroom for the
	// multipart framing; the store enforces the exact logo limit.
	limit := h.maxUpload + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "logo file required"})
		return
	}
	defer file.Close()

	logoURL, err := h.logos.SaveLogo(header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.orgs.SetLogo(r.Context(), orgID, logoURL); err != nil {
		writeServiceError(w, err)
		return
	}

	h.auditLog(r.Context(), "organization.logo_uploaded", "organization", orgID)

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "logo uploaded",
		"logoUrl": logoURL,
	})
}

func (h *OrganizationHandler) auditLog(ctx context.Context, action, resourceType string, resourceID int64) {
	if h.auditor == nil {
		return
	}
	_ = h.auditor.Log(ctx, audit.LogEntry{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   &resourceID,
	})
}
