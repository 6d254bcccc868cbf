package handler

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/apperror"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/response"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/service"
	"github.com/go-chi/chi/v5"
)

const (
	multipartDataField  = "data"
	multipartImageField = "images"
)

type createProductRequest struct {
	Name            string   `json:"name" validate:"required,max=200"`
	Description     string   `json:"description" validate:"max=5000"`
	Category        string   `json:"category" validate:"max=100"`
	Images          []string `json:"images" validate:"omitempty,dive,required"`
	BasePrice       float64  `json:"basePrice" validate:"gt=0"`
	PriceDiscount   *float64 `json:"priceDiscount" validate:"omitempty,gte=0,lt=100"`
	SellingPrice    *float64 `json:"sellingPrice" validate:"omitempty,gt=0"`
	Stock           int      `json:"stock" validate:"gte=0"`
	AllowBargaining bool     `json:"allowBargaining"`
	MinBargainPrice *float64 `json:"minBargainPrice" validate:"omitempty,gt=0"`
}

type updateProductRequest struct {
	Name            *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description     *string  `json:"description" validate:"omitempty,max=5000"`
	Category        *string  `json:"category" validate:"omitempty,max=100"`
	Images          []string `json:"images" validate:"omitempty,dive,required"`
	BasePrice       *float64 `json:"basePrice" validate:"omitempty,gt=0"`
	PriceDiscount   *float64 `json:"priceDiscount" validate:"omitempty,gte=0,lt=100"`
	SellingPrice    *float64 `json:"sellingPrice" validate:"omitempty,gt=0"`
	Stock           *int     `json:"stock" validate:"omitempty,gte=0"`
	AllowBargaining *bool    `json:"allowBargaining"`
	MinBargainPrice *float64 `json:"minBargainPrice" validate:"omitempty,gt=0"`
	ClearMinBargain bool     `json:"clearMinBargainPrice"`
}

type ProductHandler struct {
	products       service.ProductService
	out            *response.Writer
	maxUploadBytes int64
}

// NewProductHandler builds the catalog handler. maxUploadBytes bounds a whole
// multipart request.
func NewProductHandler(products service.ProductService, out *response.Writer, maxUploadBytes int64) *ProductHandler {
	return &ProductHandler{products: products, out: out, maxUploadBytes: maxUploadBytes}
}

// readProductBody accepts either a JSON body or a multipart form with a
// "data" JSON field and "images" files.
func (h *ProductHandler) readProductBody(w http.ResponseWriter, r *http.Request, dst interface{}) ([]service.ImageUpload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return nil, decodeJSON(r, dst)
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return nil, apperror.Validation("invalid multipart form: "+err.Error(), nil)
	}
	defer r.MultipartForm.RemoveAll()

	data := strings.TrimSpace(r.FormValue(multipartDataField))
	if data == "" {
		data = "{}"
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		return nil, apperror.Field(multipartDataField, "must be a JSON object")
	}
	if err := validateStruct(dst); err != nil {
		return nil, err
	}

	files := r.MultipartForm.File[multipartImageField]
	uploads := make([]service.ImageUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, apperror.Internal("failed to read uploaded file", err)
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, apperror.Internal("failed to read uploaded file", err)
		}
		uploads = append(uploads, service.ImageUpload{Filename: fh.Filename, Data: content})
	}
	return uploads, nil
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	var req createProductRequest
	uploads, err := h.readProductBody(w, r, &req)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	product, err := h.products.Create(r.Context(), actor.UserID, service.CreateProductInput{
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		Images:          req.Images,
		BasePrice:       req.BasePrice,
		PriceDiscount:   req.PriceDiscount,
		SellingPrice:    req.SellingPrice,
		Stock:           req.Stock,
		AllowBargaining: req.AllowBargaining,
		MinBargainPrice: req.MinBargainPrice,
	}, uploads)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusCreated, "product created", product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	var req updateProductRequest
	uploads, err := h.readProductBody(w, r, &req)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	product, err := h.products.Update(r.Context(), actor.UserID, chi.URLParam(r, "id"), service.UpdateProductInput{
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		Images:          req.Images,
		BasePrice:       req.BasePrice,
		PriceDiscount:   req.PriceDiscount,
		SellingPrice:    req.SellingPrice,
		Stock:           req.Stock,
		AllowBargaining: req.AllowBargaining,
		MinBargainPrice: req.MinBargainPrice,
		ClearMinBargain: req.ClearMinBargain,
	}, uploads)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "product updated", product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	if err := h.products.Delete(r.Context(), actor.UserID, chi.URLParam(r, "id")); err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "product deleted", nil)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "", product)
}

func listProductsParams(r *http.Request) (repository.ListProductsParams, error) {
	page, limit, err := pagination(r)
	if err != nil {
		return repository.ListProductsParams{}, err
	}
	minPrice, err := parseFloatQueryParam(r, "minPrice")
	if err != nil {
		return repository.ListProductsParams{}, err
	}
	maxPrice, err := parseFloatQueryParam(r, "maxPrice")
	if err != nil {
		return repository.ListProductsParams{}, err
	}
	bargaining, err := parseBoolQueryParam(r, "allowBargaining")
	if err != nil {
		return repository.ListProductsParams{}, err
	}
	sortBy, sortOrder := sortParam(r)
	q := r.URL.Query()
	return repository.ListProductsParams{
		SellerID:        q.Get("sellerId"),
		Category:        q.Get("category"),
		Search:          q.Get("search"),
		MinPrice:        minPrice,
		MaxPrice:        maxPrice,
		AllowBargaining: bargaining,
		SortBy:          sortBy,
		SortOrder:       sortOrder,
		Page:            page,
		PageSize:        limit,
	}, nil
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := listProductsParams(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	result, err := h.products.List(r.Context(), params)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.Page(w, result.Products, response.NewMeta(result.CurrentPage, result.PageSize, result.TotalCount))
}

func (h *ProductHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	params, err := listProductsParams(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	result, err := h.products.ListMine(r.Context(), actor.UserID, params)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.Page(w, result.Products, response.NewMeta(result.CurrentPage, result.PageSize, result.TotalCount))
}
