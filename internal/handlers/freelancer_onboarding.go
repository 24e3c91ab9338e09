package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/realtime"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/onboarding"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/utils"
)

// Notifier pushes a message to the user's open browser tabs.
type Notifier interface {
	Notify(userID uuid.UUID, kind string, data any)
}

type FreelancerOnboardingHandler struct {
	Wizards       *onboarding.Manager
	Notifier      Notifier
	JWTSecret     string
	ExpiresMin    int
	SubmitTimeout time.Duration
	DefaultLocale string
	FrontendURL   string
}

func NewFreelancerOnboardingHandler(
	wizards *onboarding.Manager,
	notifier Notifier,
	jwtSecret string,
	expiresMin int,
	submitTimeout time.Duration,
	defaultLocale string,
	frontendURL string,
) *FreelancerOnboardingHandler {
	if submitTimeout <= 0 {
		submitTimeout = 15 * time.Second
	}
	return &FreelancerOnboardingHandler{
		Wizards:       wizards,
		Notifier:      notifier,
		JWTSecret:     jwtSecret,
		ExpiresMin:    expiresMin,
		SubmitTimeout: submitTimeout,
		DefaultLocale: defaultLocale,
		FrontendURL:   frontendURL,
	}
}

// Routes mounts the wizard API. r must already carry the JWT middleware.
func (h *FreelancerOnboardingHandler) Routes(r fiber.Router, roleMiddleware fiber.Handler) {
	g := r.Group("/freelancer/onboarding", roleMiddleware)
	g.Get("/", h.Get)
	g.Patch("/fields", h.SetFields)
	g.Get("/skills", h.Skills)
	g.Post("/advance", h.Advance)
	g.Post("/retreat", h.Retreat)
	g.Get("/summary", h.Summary)
	g.Post("/submit", h.Submit)
	g.Delete("/", h.Discard)
}

func (h *FreelancerOnboardingHandler) localizer(c *fiber.Ctx) *onboarding.Localizer {
	return onboarding.NewLocalizer(c.Get(fiber.HeaderAcceptLanguage), h.DefaultLocale)
}

func (h *FreelancerOnboardingHandler) mount(c *fiber.Ctx) (*onboarding.Wizard, error) {
	userID, err := getAuth(c)
	if err != nil {
		return nil, err
	}
	id := onboarding.Identity{UserID: userID, Role: getRole(c)}
	return h.Wizards.Mount(c.UserContext(), id), nil
}

// ========= Handlers =========

// Page is the browser entry point of the wizard. Anonymous visitors are sent
// to login by the route's middleware; everyone else lands on the frontend.
func (h *FreelancerOnboardingHandler) Page(c *fiber.Ctx) error {
	return c.Redirect(h.FrontendURL+"/freelancer/onboarding", fiber.StatusFound)
}

func (h *FreelancerOnboardingHandler) Get(c *fiber.Ctx) error {
	w, err := h.mount(c)
	if err != nil {
		return err
	}
	h.Wizards.Persist(c.UserContext(), w)
	return ok(c, "", w.View(c.Query("q"), h.localizer(c)))
}

// SetFields applies every {name: value} pair of the body as one batch. When
// any field is bad nothing is applied and the offending field is reported.
func (h *FreelancerOnboardingHandler) SetFields(c *fiber.Ctx) error {
	w, err := h.mount(c)
	if err != nil {
		return err
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &body); err != nil || len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid body",
		})
	}

	loc := h.localizer(c)
	if err := w.SetFields(body); err != nil {
		var fieldErr *onboarding.FieldError
		switch {
		case errors.Is(err, onboarding.ErrCompleted):
			return fail200(c, loc.Text(onboarding.MsgCompleted))
		case errors.Is(err, onboarding.ErrSubmissionInFlight):
			return fail200(c, loc.Text(onboarding.MsgSubmitInFlight))
		case errors.As(err, &fieldErr):
			errs := FieldErrors{}
			errs.Add(fieldErr.Field, fieldErr.Error())
			return validationFail(c, errs)
		}
		return fail500(c, err.Error())
	}

	h.Wizards.Persist(c.UserContext(), w)
	return ok(c, "", w.View("", loc))
}

func (h *FreelancerOnboardingHandler) Skills(c *fiber.Ctx) error {
	w, err := h.mount(c)
	if err != nil {
		return err
	}
	return ok(c, "", onboarding.FilterSkills(w.Suggestions(), c.Query("q")))
}

func (h *FreelancerOnboardingHandler) Advance(c *fiber.Ctx) error {
	w, err := h.mount(c)
	if err != nil {
		return err
	}

	loc := h.localizer(c)
	_, errs, err := w.Advance()
	if errors.Is(err, onboarding.ErrCompleted) {
		return fail200(c, loc.Text(onboarding.MsgCompleted))
	}
	h.Wizards.Persist(c.UserContext(), w)

	view := w.View("", loc)
	if !errs.OK() {
		return validationFail(c, view.Errors, fiber.Map{
			"message": loc.Text(onboarding.MsgValidation),
			"data":    view,
		})
	}
	return ok(c, "", view)
}

func (h *FreelancerOnboardingHandler) Retreat(c *fiber.Ctx) error {
	w, err := h.mount(c)
	if err != nil {
		return err
	}

	loc := h.localizer(c)
	if _, err := w.Retreat(); err != nil {
		switch {
		case errors.Is(err, onboarding.ErrSubmissionInFlight):
			return fail200(c, loc.Text(onboarding.MsgSubmitInFlight))
		case errors.Is(err, onboarding.ErrCompleted):
			return fail200(c, loc.Text(onboarding.MsgCompleted))
		}
		return fail500(c, "failed to go back")
	}
	h.Wizards.Persist(c.UserContext(), w)
	return ok(c, "", w.View("", loc))
}

func (h *FreelancerOnboardingHandler) Summary(c *fiber.Ctx) error {
	w, err := h.mount(c)
	if err != nil {
		return err
	}
	return ok(c, "", onboarding.Summarize(w.Draft()))
}

// Submit runs the final submission. The gateway call is detached from the
// request context so a closed tab does not abort a half-done write.
func (h *FreelancerOnboardingHandler) Submit(c *fiber.Ctx) error {
	w, err := h.mount(c)
	if err != nil {
		return err
	}

	loc := h.localizer(c)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.UserContext()), h.SubmitTimeout)
	defer cancel()

	identity, err := h.Wizards.Submit(ctx, w)
	if err != nil {
		var verr *onboarding.ValidationError
		var serr *onboarding.SubmissionError
		switch {
		case errors.As(err, &verr):
			return validationFail(c, loc.Errors(verr.Errors), fiber.Map{
				"message": loc.Text(onboarding.MsgValidation),
				"step":    verr.Step,
			})
		case errors.As(err, &serr):
			h.Wizards.Persist(c.UserContext(), w)
			banner := loc.Text(onboarding.MsgSubmitFailed, serr.Detail())
			return fail200(c, banner, fiber.Map{"banner": banner})
		case errors.Is(err, onboarding.ErrSubmissionInFlight):
			return fail200(c, loc.Text(onboarding.MsgSubmitInFlight), fiber.Map{"submitting": true})
		case errors.Is(err, onboarding.ErrNotFinalStep):
			return fail200(c, loc.Text(onboarding.MsgNotFinalStep))
		case errors.Is(err, onboarding.ErrCompleted):
			return fail200(c, loc.Text(onboarding.MsgCompleted))
		}
		log.Printf("[Onboarding] submit for %s: %v", w.Identity().UserID, err)
		return fail500(c, "failed to submit onboarding")
	}

	token, err := utils.SignJWT(h.JWTSecret, identity.UserID.String(), identity.Role, h.ExpiresMin)
	if err != nil {
		return fail500(c, "Gagal membuat token")
	}
	setAuthCookie(c, token, h.ExpiresMin)

	if h.Notifier != nil {
		h.Notifier.Notify(identity.UserID, realtime.TypeRoleUpdated, fiber.Map{"role": identity.Role})
	}

	return ok(c, "onboarding approved, role updated to freelancer", fiber.Map{
		"user": fiber.Map{
			"id":    identity.UserID,
			"name":  identity.Name,
			"email": identity.Email,
			"role":  identity.Role,
		},
	})
}

func (h *FreelancerOnboardingHandler) Discard(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}
	if err := h.Wizards.Discard(c.UserContext(), userID); err != nil {
		if errors.Is(err, onboarding.ErrSubmissionInFlight) {
			return fail200(c, h.localizer(c).Text(onboarding.MsgSubmitInFlight))
		}
		return fail500(c, "failed to discard draft")
	}
	return c.JSON(fiber.Map{"success": true, "message": "draft discarded"})
}
