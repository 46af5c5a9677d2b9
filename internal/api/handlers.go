package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/romangod6/sitemap-downloader/internal/models"
	"github.com/romangod6/sitemap-downloader/internal/storage"
)

type Handler struct {
	store storage.Store
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PaginationResponse struct {
	Data  interface{} `json:"data"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func NewHandler(store storage.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) ListDownloads(c *gin.Context) {
	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	downloads, err := h.store.ListDownloads(c.Request.Context(), c.Query("domain"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch downloads"})
		return
	}

	if downloads == nil {
		downloads = []*models.Download{}
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  downloads,
		Page:  page,
		Limit: limit,
	})
}

func (h *Handler) GetDownload(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid download ID"})
		return
	}

	download, err := h.store.GetDownload(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch download"})
		return
	}

	if download == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Download not found"})
		return
	}

	c.JSON(http.StatusOK, download)
}

func (h *Handler) ListDomains(c *gin.Context) {
	domains, err := h.store.ListDomains(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch domains"})
		return
	}

	if domains == nil {
		domains = []*models.DomainSummary{}
	}

	c.JSON(http.StatusOK, domains)
}

// Utility functions
func getPaginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	return page, limit
}
