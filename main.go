package main

import (
	"fmt"
	"log"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var jwtSecret []byte // loaded from env JWT_SECRET (fallback to dev default)

func main() {
	// .env values never overwrite variables already set in the environment
	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-insecure-secret-change" // development fallback
	}
	jwtSecret = []byte(secret)

	// Support a lightweight migrate command: `./moneytransfer migrate`
	// It runs AutoMigrate and seeding then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		fmt.Println("migration and seeding completed")
		return
	}

	initDB()

	r := gin.Default()
	r.LoadHTMLGlob("templates/*.html")
	if gin.Mode() != gin.ReleaseMode {
		go watchTemplates(r, "templates")
	}
	setupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	r.Run(":" + port)
}

// watchTemplates re-parses the HTML templates whenever a file under dir changes,
// so template edits show up without a restart. Development convenience only;
// release mode parses them once at startup.
func watchTemplates(r *gin.Engine, dir string) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("template watcher disabled: %v", err)
		return
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		log.Printf("template watcher disabled: %v", err)
		return
	}
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				r.LoadHTMLGlob(dir + "/*.html")
				log.Printf("templates reloaded after change to %s", ev.Name)
			}
		case werr, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("template watcher error: %v", werr)
		}
	}
}
