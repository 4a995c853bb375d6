package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"moneytransfer/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("usage: go run ./cmd/create_user <username> <password> [email]")
		os.Exit(2)
	}
	username := os.Args[1]
	password := os.Args[2]
	email := ""
	if len(os.Args) > 3 {
		email = os.Args[3]
	}

	dsn := os.Getenv("DB_DSN")
	var (
		db  *gorm.DB
		err error
	)
	switch strings.ToLower(os.Getenv("DB_DRIVER")) {
	case "sqlite":
		if dsn == "" {
			dsn = "moneytransfer.db"
		}
		db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	default:
		if strings.TrimSpace(dsn) == "" {
			log.Fatal("DB_DSN not set in environment")
		}
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	// ensure the regular role exists
	var role models.Role
	if err := db.Where("name = ?", "user").First(&role).Error; err != nil {
		role = models.Role{Name: "user", Description: "regular user"}
		db.Create(&role)
	}

	var existing models.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		fmt.Printf("user %s already exists (id=%d)\n", username, existing.ID)
		os.Exit(0)
	}

	hpw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt failed: %v", err)
	}
	rid := role.ID
	user := models.User{Username: username, Email: email, HashedPassword: hpw, RoleID: &rid}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("failed to create user: %v", err)
	}
	// give the new user the starter statuses the bulk actions rely on
	for _, name := range []string{"Business", "Personal"} {
		if err := db.Create(&models.Status{UserID: user.ID, Name: name}).Error; err != nil {
			log.Printf("warning: failed to create status %q: %v", name, err)
		}
	}
	fmt.Printf("created user %s id=%d\n", username, user.ID)
}
