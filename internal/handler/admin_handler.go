package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
	"github.com/northpoint-auto/dealdesk-backend/internal/service"
)

// VendorHandler handles vendor admin HTTP requests
type VendorHandler struct {
	vendorService service.VendorService
	logger        *slog.Logger
}

// NewVendorHandler creates a new vendor handler
func NewVendorHandler(vendorService service.VendorService, logger *slog.Logger) *VendorHandler {
	return &VendorHandler{
		vendorService: vendorService,
		logger:        logger,
	}
}

// CreateVendor handles POST /admin/vendors
func (h *VendorHandler) CreateVendor(w http.ResponseWriter, r *http.Request) {
	var vendor models.Vendor
	if err := json.NewDecoder(r.Body).Decode(&vendor); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	created, err := h.vendorService.Create(r.Context(), &vendor)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondCreated(w, created)
}

// ListVendors handles GET /admin/vendors
func (h *VendorHandler) ListVendors(w http.ResponseWriter, r *http.Request) {
	filter := models.VendorFilter{}
	filter.OrganizationID, filter.ActiveOnly, filter.Page, filter.PageSize = adminListQuery(r)

	vendors, pagination, err := h.vendorService.List(r.Context(), filter)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, map[string]interface{}{
		"data":       vendors,
		"pagination": pagination,
	})
}

// GetVendor handles GET /admin/vendors/{id}
func (h *VendorHandler) GetVendor(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid vendor ID")
		return
	}

	vendor, err := h.vendorService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, vendor)
}

// UpdateVendor handles PUT /admin/vendors/{id}
func (h *VendorHandler) UpdateVendor(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid vendor ID")
		return
	}

	var vendor models.Vendor
	if err := json.NewDecoder(r.Body).Decode(&vendor); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}
	vendor.ID = id

	updated, err := h.vendorService.Update(r.Context(), &vendor)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, updated)
}

// DeleteVendor handles DELETE /admin/vendors/{id}
func (h *VendorHandler) DeleteVendor(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid vendor ID")
		return
	}

	if err := h.vendorService.Delete(r.Context(), id); err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondNoContent(w)
}

// ProductHandler handles product admin HTTP requests
type ProductHandler struct {
	productService service.ProductService
	logger         *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// CreateProduct handles POST /admin/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	created, err := h.productService.Create(r.Context(), &product)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondCreated(w, created)
}

// ListProducts handles GET /admin/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := models.ProductFilter{}
	filter.OrganizationID, filter.ActiveOnly, filter.Page, filter.PageSize = adminListQuery(r)

	products, pagination, err := h.productService.List(r.Context(), filter)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, map[string]interface{}{
		"data":       products,
		"pagination": pagination,
	})
}

// GetProduct handles GET /admin/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid product ID")
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, product)
}

// UpdateProduct handles PUT /admin/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid product ID")
		return
	}

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}
	product.ID = id

	updated, err := h.productService.Update(r.Context(), &product)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, updated)
}

// DeleteProduct handles DELETE /admin/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid product ID")
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondNoContent(w)
}

// StaffHandler handles staff admin HTTP requests
type StaffHandler struct {
	staffService service.StaffService
	logger       *slog.Logger
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(staffService service.StaffService, logger *slog.Logger) *StaffHandler {
	return &StaffHandler{
		staffService: staffService,
		logger:       logger,
	}
}

// CreateStaff handles POST /admin/staff
func (h *StaffHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var staff models.Staff
	if err := json.NewDecoder(r.Body).Decode(&staff); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	created, err := h.staffService.Create(r.Context(), &staff)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondCreated(w, created)
}

// ListStaff handles GET /admin/staff
func (h *StaffHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	filter := models.StaffFilter{Role: r.URL.Query().Get("role")}
	filter.OrganizationID, filter.ActiveOnly, filter.Page, filter.PageSize = adminListQuery(r)

	staff, pagination, err := h.staffService.List(r.Context(), filter)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, map[string]interface{}{
		"data":       staff,
		"pagination": pagination,
	})
}

// GetStaff handles GET /admin/staff/{id}
func (h *StaffHandler) GetStaff(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid staff ID")
		return
	}

	staff, err := h.staffService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, staff)
}

// UpdateStaff handles PUT /admin/staff/{id}
func (h *StaffHandler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid staff ID")
		return
	}

	var staff models.Staff
	if err := json.NewDecoder(r.Body).Decode(&staff); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}
	staff.ID = id

	updated, err := h.staffService.Update(r.Context(), &staff)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, updated)
}

// DeleteStaff handles DELETE /admin/staff/{id}
func (h *StaffHandler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid staff ID")
		return
	}

	if err := h.staffService.Delete(r.Context(), id); err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondNoContent(w)
}

// adminListQuery parses the filter parameters shared by the admin list
// endpoints
func adminListQuery(r *http.Request) (orgID int64, activeOnly bool, page, pageSize int) {
	query := r.URL.Query()
	orgID, _ = strconv.ParseInt(query.Get("organization_id"), 10, 64)
	activeOnly = query.Get("active_only") == "true"
	page, _ = strconv.Atoi(query.Get("page"))
	pageSize, _ = strconv.Atoi(query.Get("page_size"))
	return orgID, activeOnly, page, pageSize
}
