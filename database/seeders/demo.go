package seeders

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/reflaxess123/obedi/app/models"
	"github.com/reflaxess123/obedi/pkg/auth"
	"github.com/reflaxess123/obedi/pkg/logger"
)

// DemoPassword is shared by every demo account.
const DemoPassword = "password123"

func init() {
	Register("demo", SeedDemo)
}

var demoUsers = []struct{ email, name string }{
	{"demo@example.com", "Демо Пользователь"},
	{"chef@example.com", "Шеф-повар Иван"},
	{"foodie@example.com", "Гурман Анна"},
}

var demoImages = []string{
	"https://images.unsplash.com/photo-1547592166-23ac45744acd?w=800",
	"https://images.unsplash.com/photo-1565299624946-b28f40a0ae38?w=800",
	"https://images.unsplash.com/photo-1540189549336-e6e99c3679fe?w=800",
	"https://images.unsplash.com/photo-1567620905732-2d1ec7ab7445?w=800",
	"https://images.unsplash.com/photo-1565958011703-44f9829ba187?w=800",
	"https://images.unsplash.com/photo-1504674900247-0877df9cc836?w=800",
}

type demoLunch struct {
	title       string
	recipe      string
	calories    int
	proteins    float64
	fats        float64
	carbs       float64
	cookingTime int
	difficulty  models.Difficulty
	tags        []string
}

var demoLunches = []demoLunch{
	{"Борщ с пампушками", "# Борщ\n\nКлассический борщ с чесночными пампушками.", 280, 15, 12, 28, 120, models.DifficultyMedium, []string{"суп", "обед"}},
	{"Паста Карбонара", "# Карбонара\n\nИтальянская классика с беконом и пармезаном.", 520, 22, 28, 45, 30, models.DifficultyEasy, []string{"паста", "быстро"}},
	{"Цезарь с курицей", "# Салат Цезарь\n\nХрустящий салат с курицей и соусом.", 380, 32, 18, 22, 25, models.DifficultyEasy, []string{"салат", "курица"}},
	{"Том Ям", "# Том Ям\n\nОстрый тайский суп с креветками.", 220, 18, 14, 8, 35, models.DifficultyMedium, []string{"суп", "острое"}},
	{"Стейк Рибай", "# Стейк Рибай\n\nСтейк medium rare.", 650, 45, 52, 0, 20, models.DifficultyHard, []string{"мясо", "гриль"}},
	{"Греческий салат", "# Греческий салат\n\nЛёгкий средиземноморский салат.", 280, 12, 22, 10, 15, models.DifficultyEasy, []string{"салат", "вегетарианское"}},
}

// SeedDemo creates three password accounts and spreads the demo lunches
// across them. It does nothing once demo@example.com exists. Image keys
// carry the "seed-" prefix so storage cleanup never touches them.
func SeedDemo(db *gorm.DB) error {
	var existing models.User
	err := db.Where("email = ?", demoUsers[0].email).First(&existing).Error
	if err == nil {
		logger.Info("seeders: demo data already present, skipping")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		users := make([]models.User, len(demoUsers))
		for i, u := range demoUsers {
			users[i] = models.User{Email: u.email, Name: u.name, PasswordHash: &hash, Provider: models.ProviderEmail}
			if err := tx.Create(&users[i]).Error; err != nil {
				return err
			}
		}

		width, height := 800, 600
		for i, d := range demoLunches {
			difficulty := d.difficulty
			lunch := models.Lunch{
				UserID:      users[i%len(users)].ID,
				Title:       d.title,
				Recipe:      &d.recipe,
				Calories:    &d.calories,
				Proteins:    &d.proteins,
				Fats:        &d.fats,
				Carbs:       &d.carbs,
				CookingTime: &d.cookingTime,
				Difficulty:  &difficulty,
				Tags:        d.tags,
			}
			if err := tx.Omit(clause.Associations).Create(&lunch).Error; err != nil {
				return err
			}
			img := models.LunchImage{
				LunchID:  lunch.ID,
				URL:      demoImages[i%len(demoImages)],
				Key:      fmt.Sprintf("seed-image-%d", i),
				Width:    &width,
				Height:   &height,
				Position: 0,
			}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
		}
		logger.Info("seeders: demo data created", "users", len(users), "lunches", len(demoLunches))
		return nil
	})
}
