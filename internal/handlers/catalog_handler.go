package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/catalog"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/freelancer"
)

type CatalogHandler struct {
	Gigs        *catalog.GigService
	Freelancers *freelancer.FreelancerService
}

func NewCatalogHandler(gigs *catalog.GigService, freelancers *freelancer.FreelancerService) *CatalogHandler {
	return &CatalogHandler{Gigs: gigs, Freelancers: freelancers}
}

func (h *CatalogHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.Gigs.Categories(c.UserContext())
	if err != nil {
		return fail500(c, "Gagal mengambil kategori")
	}
	return ok(c, "", categories)
}

func (h *CatalogHandler) ListGigs(c *fiber.Ctx) error {
	page, err := h.Gigs.ListPublished(c.UserContext(), catalog.GigFilter{
		Search:   c.Query("q"),
		Category: c.Query("cat"),
		MinPrice: int64(c.QueryInt("min", 0)),
		MaxPrice: int64(c.QueryInt("max", 0)),
		Sort:     c.Query("sort"),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 20),
	})
	if err != nil {
		return fail500(c, "Gagal mengambil gig")
	}
	return ok(c, "", page)
}

// ProfileMe returns the header data of the signed-in freelancer.
func (h *CatalogHandler) ProfileMe(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}

	profile, err := h.Freelancers.Profile(c.UserContext(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Profil tidak ditemukan",
		})
	}
	if err != nil {
		return fail500(c, "Gagal mengambil profil")
	}

	return ok(c, "", fiber.Map{
		"system_name":     profile.SystemName,
		"photo_url":       profile.PhotoURL,
		"freelancer_type": profile.FreelancerType,
		"availability":    profile.Availability,
		"working_hours":   profile.WorkingHours,
		"portfolio_link":  profile.PortfolioLink,
	})
}
