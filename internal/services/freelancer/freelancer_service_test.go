package freelancer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/models"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/onboarding"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/testkit"
)

func sampleApplication() onboarding.Application {
	return onboarding.Application{
		Skills:                  []string{"go", "sql", "docker"},
		Bio:                     "Backend engineer with eight years of Go and PostgreSQL experience.",
		Education:               []onboarding.Education{{Institution: "ITB", Degree: "S1", Field: "Informatika", Year: "2016"}},
		Certifications:          []onboarding.Certification{},
		PortfolioLink:           "https://github.com/rina",
		Availability:            onboarding.AvailabilityPartTime,
		WorkingHours:            "19:00-23:00",
		AgreeToFreelancerTerms:  true,
		AgreeToQualityStandards: true,
	}
}

func TestApplyAsFreelancerGrantsRole(t *testing.T) {
	gdb := testkit.OpenDB(t)
	u := testkit.CreateUser(t, gdb, "Rina", models.RoleClient)
	svc := NewFreelancerService(gdb, nil)
	ctx := context.Background()

	err := svc.ApplyAsFreelancer(ctx, onboarding.Identity{UserID: u.ID}, sampleApplication())
	require.NoError(t, err)

	var reloaded models.User
	require.NoError(t, gdb.First(&reloaded, "id = ?", u.ID).Error)
	assert.Equal(t, models.RoleFreelancer, reloaded.Role)

	p, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, p.OnboardingStatus)
	assert.Equal(t, models.FreelancerPartTime, p.FreelancerType)
	assert.Equal(t, "Rina", p.SystemName)
	assert.Equal(t, u.Email, p.ContactEmail)
	assert.NotNil(t, p.TermsAcceptedAt)

	var skills []string
	require.NoError(t, json.Unmarshal(p.Skills, &skills))
	assert.Equal(t, []string{"go", "sql", "docker"}, skills)

	var edu []onboarding.Education
	require.NoError(t, json.Unmarshal(p.Education, &edu))
	assert.Equal(t, "ITB", edu[0].Institution)

	id, err := svc.RefreshIdentity(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleFreelancer), id.Role)
}

func TestApplyAsFreelancerTwiceIsRejected(t *testing.T) {
	gdb := testkit.OpenDB(t)
	u := testkit.CreateUser(t, gdb, "Budi", models.RoleClient)
	svc := NewFreelancerService(gdb, nil)
	ctx := context.Background()

	require.NoError(t, svc.ApplyAsFreelancer(ctx, onboarding.Identity{UserID: u.ID}, sampleApplication()))
	err := svc.ApplyAsFreelancer(ctx, onboarding.Identity{UserID: u.ID}, sampleApplication())
	assert.ErrorIs(t, err, ErrAlreadyFreelancer)
}

func TestApplyAsFreelancerInactiveUser(t *testing.T) {
	gdb := testkit.OpenDB(t)
	u := testkit.CreateUser(t, gdb, "Sari", models.RoleClient)
	require.NoError(t, gdb.Model(&models.User{}).Where("id = ?", u.ID).Update("is_active", false).Error)

	err := NewFreelancerService(gdb, nil).ApplyAsFreelancer(context.Background(), onboarding.Identity{UserID: u.ID}, sampleApplication())
	assert.ErrorIs(t, err, ErrUserInactive)

	var count int64
	gdb.Model(&models.FreelancerProfile{}).Where("user_id = ?", u.ID).Count(&count)
	assert.Zero(t, count)
}

func TestApplyAsFreelancerUnknownUser(t *testing.T) {
	gdb := testkit.OpenDB(t)
	err := NewFreelancerService(gdb, nil).ApplyAsFreelancer(context.Background(), onboarding.Identity{UserID: uuid.New()}, sampleApplication())
	assert.Error(t, err)
}

func TestApplyAsFreelancerRefusesRejectedProfile(t *testing.T) {
	gdb := testkit.OpenDB(t)
	u := testkit.CreateUser(t, gdb, "Fajar", models.RoleClient)
	require.NoError(t, gdb.Create(&models.FreelancerProfile{
		UserID:           u.ID,
		OnboardingStatus: models.StatusRejected,
	}).Error)
	svc := NewFreelancerService(gdb, nil)

	err := svc.ApplyAsFreelancer(context.Background(), onboarding.Identity{UserID: u.ID}, sampleApplication())
	assert.ErrorIs(t, err, ErrApplicationBlocked)

	var reloaded models.User
	require.NoError(t, gdb.First(&reloaded, "id = ?", u.ID).Error)
	assert.Equal(t, models.RoleClient, reloaded.Role)
}

func TestSeedDraftUsesExistingAbout(t *testing.T) {
	gdb := testkit.OpenDB(t)
	svc := NewFreelancerService(gdb, nil)
	ctx := context.Background()

	fresh := testkit.CreateUser(t, gdb, "Dewi", models.RoleClient)
	d, err := svc.SeedDraft(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, onboarding.Draft{}, d)

	partial := testkit.CreateUser(t, gdb, "Eko", models.RoleClient)
	require.NoError(t, gdb.Create(&models.FreelancerProfile{
		UserID:           partial.ID,
		OnboardingStep:   1,
		OnboardingStatus: models.StatusDraft,
		About:            "Penulis lepas",
	}).Error)

	d, err = svc.SeedDraft(ctx, partial.ID)
	require.NoError(t, err)
	assert.Equal(t, "Penulis lepas", d.Bio)

	// an existing draft profile is completed in place
	require.NoError(t, svc.ApplyAsFreelancer(ctx, onboarding.Identity{UserID: partial.ID}, sampleApplication()))
	var count int64
	gdb.Model(&models.FreelancerProfile{}).Where("user_id = ?", partial.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}
