package main

import (
	"log"
	"os"
	"strings"

	"moneytransfer/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var db *gorm.DB

// defaultStatusNames are created for every new user so the bulk "mark as" actions
// have something to point at from day one. They are looked up by id afterwards,
// never by name.
var defaultStatusNames = []string{"Business", "Personal"}

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	driver := strings.ToLower(os.Getenv("DB_DRIVER"))
	switch driver {
	case "sqlite":
		if dsn == "" {
			dsn = "moneytransfer.db"
		}
		db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	case "", "postgres":
		if dsn == "" {
			log.Fatal("DB_DSN is not set. Provide a Postgres DSN in DB_DSN (or set DB_DRIVER=sqlite).")
		}
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	default:
		log.Fatalf("unsupported DB_DRIVER %q", driver)
	}
	if err != nil {
		log.Fatal("failed to connect database:", err)
	}

	// Control schema migrations with env DB_AUTO_MIGRATE (default true).
	shouldMigrate := true
	if v := strings.ToLower(os.Getenv("DB_AUTO_MIGRATE")); v == "false" || v == "0" || v == "no" {
		shouldMigrate = false
	}
	if shouldMigrate {
		migrateAll()
	}
	seedDB()
}

// migrateAll migrates models individually, parents before children, so a failure
// on one table doesn't block the others.
func migrateAll() {
	steps := []struct {
		name  string
		model any
	}{
		{"roles", &models.Role{}},
		{"users", &models.User{}},
		{"sessions", &models.Session{}},
		{"statuses", &models.Status{}},
		{"operation_types", &models.OperationType{}},
		{"categories", &models.Category{}},
		{"subcategories", &models.Subcategory{}},
		{"transfers", &models.Transfer{}},
	}
	for _, s := range steps {
		if err := db.AutoMigrate(s.model); err != nil {
			log.Printf("migration warning (%s): %v", s.name, err)
		}
	}
}

func seedDB() {
	// Ensure master roles exist
	roles := []models.Role{{Name: "administrator", Description: "full access"}, {Name: "user", Description: "regular user"}}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}

	// Seed admin user once
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count != 0 {
		return
	}
	var role models.Role
	if err := db.Where("name = ?", "administrator").First(&role).Error; err != nil {
		log.Printf("failed to find administrator role: %v", err)
		return
	}
	rid := role.ID
	admin := models.User{Username: "admin", RoleID: &rid}
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	admin.HashedPassword = hashedPassword
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("failed to seed admin user: %v", err)
		return
	}
	seedDefaultStatuses(admin.ID)
	log.Println("Seeded admin user: username=admin, password=admin123")
}

// seedDefaultStatuses creates the per-user default statuses. Idempotent.
func seedDefaultStatuses(userID uint) {
	for _, name := range defaultStatusNames {
		var cnt int64
		db.Model(&models.Status{}).Where("user_id = ? AND name = ?", userID, name).Count(&cnt)
		if cnt == 0 {
			db.Create(&models.Status{UserID: userID, Name: name})
		}
	}
}
