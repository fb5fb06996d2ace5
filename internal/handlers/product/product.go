package product

import (
	"fmt"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"dermodazzle_back_end/internal/catalog"
	"dermodazzle_back_end/internal/utils"
)

type Handler struct {
	catalog *catalog.Service
}

func NewHandler(catalog *catalog.Service) *Handler {
	return &Handler{catalog: catalog}
}

// GET /api/product/list
func (h *Handler) List(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, gin.H{"products": products})
}

// POST /api/product/single
func (h *Handler) Single(c *gin.Context) {
	var input struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "productId requis")
		return
	}
	p, err := h.catalog.Get(c.Request.Context(), input.ProductID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, gin.H{"product": p})
}

// GET /api/product/search?q=
func (h *Handler) Search(c *gin.Context) {
	products, err := h.catalog.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, gin.H{"products": products})
}

// POST /api/product/add (admin, multipart image1..image4)
func (h *Handler) Add(c *gin.Context) {
	var input catalog.Input
	if err := c.ShouldBind(&input); err != nil {
		utils.BadRequest(c, "Nom et prix positif requis")
		return
	}

	var images []catalog.Image
	for i := 1; i <= catalog.MaxImages; i++ {
		header, err := c.FormFile(fmt.Sprintf("image%d", i))
		if err != nil {
			continue
		}
		img, closeFn, err := openImage(header)
		if err != nil {
			utils.BadRequest(c, "Image illisible")
			return
		}
		defer closeFn()
		images = append(images, img)
	}

	p, err := h.catalog.Add(c.Request.Context(), input, images)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	log.Printf("🛍️ Produit ajouté: %s (%d images)", p.Name, len(images))
	utils.OK(c, http.StatusCreated, gin.H{"message": "Produit ajouté", "product": p})
}

func openImage(header *multipart.FileHeader) (catalog.Image, func(), error) {
	f, err := header.Open()
	if err != nil {
		return catalog.Image{}, nil, err
	}
	return catalog.Image{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

// POST /api/product/remove (admin)
func (h *Handler) Remove(c *gin.Context) {
	var input struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "id requis")
		return
	}
	if err := h.catalog.Remove(c.Request.Context(), input.ID); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, gin.H{"message": "Produit supprimé"})
}
