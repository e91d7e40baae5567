package main

import (
	"bufio"
	"fmt"
	"lessonbook_app_go/config"
	"lessonbook_app_go/db"
	"lessonbook_app_go/logger"
	"lessonbook_app_go/services"
	"log"
	"os"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/term"
)

func main() {
	// Load configuration
	cfg := config.Load()

	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	zap.ReplaceGlobals(appLogger)

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(db.Models()...); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Print(label)
		value, _ := reader.ReadString('\n')
		return strings.TrimSpace(value)
	}

	fmt.Println("=== Create New Teacher ===")
	fmt.Println()

	input := services.TeacherInput{
		Name:      prompt("Name: "),
		Email:     prompt("Email: "),
		Subdomain: prompt("Subdomain (blank to derive from name): "),
		Timezone:  prompt("Time zone (e.g. Europe/Madrid, blank for UTC): "),
	}

	if rate := prompt("Hourly rate (blank for none): "); rate != "" {
		parsed, err := decimal.NewFromString(rate)
		if err != nil {
			log.Fatalf("Hourly rate must be a number: %v", err)
		}
		input.HourlyRate = &parsed
	}

	// Get password securely
	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}
	fmt.Println() // New line after password input
	input.Password = string(passwordBytes)

	teacher, err := services.CreateTeacher(db.DB, input)
	if err != nil {
		log.Fatalf("Failed to create teacher: %v", err)
	}

	fmt.Println()
	fmt.Println("✓ Teacher created successfully!")
	fmt.Printf("  ID: %s\n", teacher.ID)
	fmt.Printf("  Name: %s\n", teacher.Name)
	fmt.Printf("  Email: %s\n", teacher.Email)
	fmt.Printf("  Booking page: https://%s.%s\n", teacher.Subdomain, cfg.BaseDomain)
	fmt.Printf("  Webhook secret: %s\n", teacher.WebhookSecret)
	fmt.Println()
	fmt.Printf("Log in with POST %s/api/auth/login\n", cfg.AppURL)
}
