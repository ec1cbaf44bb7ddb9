package bootstrap

import (
	"log"

	"github.com/knowshare/knowshare-api/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Tag{},
		&model.Question{},
		&model.Answer{},
		&model.Vote{},
		&model.Badge{},
		&model.UserBadge{},
		&model.Notification{},
		&model.Report{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []model.Role{
		{Name: model.RoleAdmin, Description: "Platform administrator"},
		{Name: model.RoleMember, Description: "Community member"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&model.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func intPtr(n int) *int {
	return &n
}

// SeedBadges installs the default badge catalog. Existing badges are left
// untouched so admins can tweak thresholds without the seeder reverting them.
func SeedBadges(db *gorm.DB) error {
	defaultBadges := []model.Badge{
		{
			Name:         "First Question",
			Slug:         "first-question",
			Description:  "Asked your first question",
			Icon:         "❓",
			Color:        "#bronze",
			Type:         model.BadgeBronze,
			Requirements: model.BadgeRequirements{QuestionsCount: intPtr(1)},
		},
		{
			Name:         "Curious",
			Slug:         "curious",
			Description:  "Asked 10 questions",
			Icon:         "🤔",
			Color:        "#bronze",
			Type:         model.BadgeBronze,
			Requirements: model.BadgeRequirements{QuestionsCount: intPtr(10)},
		},
		{
			Name:         "First Answer",
			Slug:         "first-answer",
			Description:  "Posted your first answer",
			Icon:         "💬",
			Color:        "#bronze",
			Type:         model.BadgeBronze,
			Requirements: model.BadgeRequirements{AnswersCount: intPtr(1)},
		},
		{
			Name:         "Helper",
			Slug:         "helper",
			Description:  "Posted 10 answers",
			Icon:         "🤝",
			Color:        "#bronze",
			Type:         model.BadgeBronze,
			Requirements: model.BadgeRequirements{AnswersCount: intPtr(10)},
		},
		{
			Name:         "Expert",
			Slug:         "expert",
			Description:  "Posted 50 answers",
			Icon:         "👨‍🎓",
			Color:        "#silver",
			Type:         model.BadgeSilver,
			Requirements: model.BadgeRequirements{AnswersCount: intPtr(50)},
		},
		{
			Name:         "Accepted",
			Slug:         "accepted",
			Description:  "Had your first answer accepted",
			Icon:         "✅",
			Color:        "#bronze",
			Type:         model.BadgeBronze,
			Requirements: model.BadgeRequirements{AcceptedAnswersCount: intPtr(1)},
		},
		{
			Name:         "Helpful",
			Slug:         "helpful",
			Description:  "Had 10 answers accepted",
			Icon:         "🌟",
			Color:        "#silver",
			Type:         model.BadgeSilver,
			Requirements: model.BadgeRequirements{AcceptedAnswersCount: intPtr(10)},
		},
		{
			Name:         "Guru",
			Slug:         "guru",
			Description:  "Had 25 answers accepted",
			Icon:         "🏆",
			Color:        "#gold",
			Type:         model.BadgeGold,
			Requirements: model.BadgeRequirements{AcceptedAnswersCount: intPtr(25)},
		},
		{
			Name:         "Popular",
			Slug:         "popular",
			Description:  "Received 100 total upvotes",
			Icon:         "👍",
			Color:        "#silver",
			Type:         model.BadgeSilver,
			Requirements: model.BadgeRequirements{TotalVotes: intPtr(100)},
		},
		{
			Name:         "Trusted",
			Slug:         "trusted",
			Description:  "Reached 1000 reputation",
			Icon:         "🔱",
			Color:        "#gold",
			Type:         model.BadgeGold,
			Requirements: model.BadgeRequirements{Reputation: intPtr(1000)},
		},
		{
			Name:         "Veteran",
			Slug:         "veteran",
			Description:  "Member for over a year",
			Icon:         "🎖️",
			Color:        "#gold",
			Type:         model.BadgeGold,
			Requirements: model.BadgeRequirements{DaysRegistered: intPtr(365)},
		},
	}

	for _, badge := range defaultBadges {
		var count int64
		if err := db.Model(&model.Badge{}).
			Where("slug = ?", badge.Slug).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&badge).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func SeedAdminUser(db *gorm.DB) error {
	var adminRole model.Role
	if err := db.Where("name = ?", model.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", "admin@knowshare.dev").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := model.User{
		Name:         "Administrator",
		Email:        "admin@knowshare.dev",
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("Admin user seeded successfully")
	log.Println("   Email: admin@knowshare.dev")
	log.Println("   Password: admin123")

	return nil
}
