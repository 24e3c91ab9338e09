package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/models"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/utils"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret string
	Expires   int
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, expiresMin int) *AuthHandler {
	return &AuthHandler{DB: db, JWTSecret: jwtSecret, Expires: expiresMin}
}

// Routes mounts the public auth endpoints. They must be registered before any
// group that installs the JWT middleware on the same prefix.
func (h *AuthHandler) Routes(r fiber.Router) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)
}

type RegisterReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func userPayload(u models.User) fiber.Map {
	return fiber.Map{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"phone": u.Phone,
		"role":  u.Role,
	}
}

// Register always creates a client; the freelancer role is only granted by
// finishing onboarding.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid body",
		})
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	phone := strings.TrimSpace(req.Phone)
	password := strings.TrimSpace(req.Password)

	errs := FieldErrors{}
	if name == "" {
		errs.Add("name", "Nama wajib diisi")
	}
	if email == "" {
		errs.Add("email", "Email wajib diisi")
	} else if !strings.Contains(email, "@") {
		errs.Add("email", "Format email tidak valid")
	}
	if password == "" {
		errs.Add("password", "Password wajib diisi")
	} else if len(password) < 6 {
		errs.Add("password", "Password minimal 6 karakter")
	}
	if phone != "" && len(phone) < 8 {
		errs.Add("phone", "No. HP tidak valid")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	var existing models.User
	if err := h.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		errs.Add("email", "Email sudah terdaftar")
		return validationFail(c, errs)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fail500(c, "Terjadi kesalahan server")
	}

	var phonePtr *string
	if phone != "" {
		var byPhone models.User
		if err := h.DB.Where("phone = ?", phone).First(&byPhone).Error; err == nil {
			errs.Add("phone", "No. HP sudah terdaftar")
			return validationFail(c, errs)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fail500(c, "Terjadi kesalahan server")
		}
		phonePtr = &phone
	}

	pw, err := utils.HashPassword(password)
	if err != nil {
		return fail500(c, "Gagal memproses password")
	}

	u := models.User{
		Name:     name,
		Email:    email,
		Phone:    phonePtr,
		Password: pw,
		Role:     models.RoleClient,
		IsActive: true,
	}
	if err := h.DB.Create(&u).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Gagal register",
		})
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return fail500(c, "Gagal membuat token")
	}
	setAuthCookie(c, token, h.Expires)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Register berhasil",
		"data":    fiber.Map{"user": userPayload(u)},
	})
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := c.BodyParser(&req); err != nil {
		return fail200(c, "Invalid body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)

	errs := FieldErrors{}
	if email == "" {
		errs.Add("email", "Email wajib diisi")
	}
	if password == "" {
		errs.Add("password", "Password wajib diisi")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	var u models.User
	if err := h.DB.Where("email = ?", email).First(&u).Error; err != nil {
		// 200 so the frontend shows the message instead of an error page
		return fail200(c, "Email atau password salah")
	}
	if !u.IsActive {
		return fail200(c, "Akun tidak aktif")
	}
	if !utils.CheckPassword(u.Password, password) {
		return fail200(c, "Email atau password salah")
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return fail200(c, "Gagal membuat token")
	}
	setAuthCookie(c, token, h.Expires)

	return ok(c, "Login berhasil", fiber.Map{"user": userPayload(u)})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	clearAuthCookie(c)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logout berhasil",
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}

	var u models.User
	if err := h.DB.First(&u, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "User tidak ditemukan",
		})
	}
	return ok(c, "", userPayload(u))
}
