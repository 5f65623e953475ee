package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"gatherly/internal/coupons"
	"gatherly/internal/events"
	"gatherly/internal/shared/config"
	"gatherly/internal/shared/database"
	"gatherly/internal/users"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Gatherly Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"transactions",
		"tickets",
		"bookings",
		"coupons",
		"events",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	adminID, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.SeedEvents(adminID); err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}

	if err := s.SeedCoupons(); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to clear Redis cache: %v", err)
	}

	return nil
}

// SeedUsers creates 1 admin and 2 regular users, returning the admin ID
func (s *Seeder) SeedUsers() (uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	// Hash password for all users (using "qwerty")
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		firstName string
		lastName  string
		email     string
		role      users.Role
	}{
		{"Admin", "User", "admin@gatherly.dev", users.RoleAdmin},
		{"Asha", "Patel", "asha@example.com", users.RoleUser},
		{"Rahul", "Verma", "rahul@example.com", users.RoleUser},
	}

	var adminID uuid.UUID
	for _, userData := range usersData {
		user := users.User{
			ID:        uuid.New(),
			FirstName: userData.firstName,
			LastName:  userData.lastName,
			Email:     userData.email,
			Password:  string(hashedPassword),
			Role:      userData.role,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return uuid.Nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		if user.Role == users.RoleAdmin {
			adminID = user.ID
		}
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return adminID, nil
}

// SeedEvents creates sample published events with pass catalogs
func (s *Seeder) SeedEvents(adminID uuid.UUID) error {
	fmt.Println("  🎪 Seeding events...")

	eventsData := []struct {
		name        string
		description string
		venue       string
		maxCapacity int
		daysFromNow int
		passes      events.PassList
	}{
		{
			name:        "Indie Music Night",
			description: "An evening of live indie performances by upcoming artists.",
			venue:       "Riverside Amphitheater",
			maxCapacity: 500,
			daysFromNow: 30,
			passes: events.PassList{
				{Type: "Stag", Price: 499, Quantity: 300},
				{Type: "Couple", Price: 799, Quantity: 100},
				{Type: "VIP", Price: 1499, Quantity: 50},
			},
		},
		{
			name:        "Tech Summit 2026",
			description: "Full-day summit on cloud infrastructure and distributed systems.",
			venue:       "Convention Center Hall A",
			maxCapacity: 1200,
			daysFromNow: 45,
			passes: events.PassList{
				{Type: "Standard", Price: 1500, Quantity: 1000},
				{Type: "Premium", Price: 3000, Quantity: 200},
			},
		},
		{
			name:        "Food & Wine Festival",
			description: "A weekend celebration of local cuisine and fine wines.",
			venue:       "Central Park Pavilion",
			maxCapacity: 800,
			daysFromNow: 60,
			passes: events.PassList{
				{Type: "Stag", Price: 1200, Quantity: 600},
				{Type: "Couple", Price: 2000, Quantity: 100},
			},
		},
	}

	for _, eventData := range eventsData {
		event := events.Event{
			ID:          uuid.New(),
			Name:        eventData.name,
			Description: eventData.description,
			Venue:       eventData.venue,
			DateTime:    time.Now().AddDate(0, 0, eventData.daysFromNow),
			MaxCapacity: eventData.maxCapacity,
			Passes:      eventData.passes,
			Status:      events.StatusPublished,
			CreatedBy:   adminID,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to create event %s: %w", event.Name, err)
		}

		fmt.Printf("    ✅ Created event: %s (capacity %d)\n", event.Name, event.MaxCapacity)
	}

	return nil
}

// SeedCoupons creates a few active discount codes
func (s *Seeder) SeedCoupons() error {
	fmt.Println("  🎟️ Seeding coupons...")

	hundredUses := 100
	nextMonth := time.Now().AddDate(0, 1, 0)

	couponsData := []coupons.Coupon{
		{
			ID:         uuid.New(),
			Code:       "SAVE20",
			Type:       coupons.DiscountTypePercentage,
			Value:      20,
			UsageLimit: &hundredUses,
			IsActive:   true,
		},
		{
			ID:       uuid.New(),
			Code:     "FLAT100",
			Type:     coupons.DiscountTypeFlatAmount,
			Value:    100,
			IsActive: true,
		},
		{
			ID:         uuid.New(),
			Code:       "EARLYBIRD",
			Type:       coupons.DiscountTypePercentage,
			Value:      10,
			ExpiryDate: &nextMonth,
			IsActive:   true,
		},
	}

	for i := range couponsData {
		if err := s.db.PostgreSQL.Create(&couponsData[i]).Error; err != nil {
			return fmt.Errorf("failed to create coupon %s: %w", couponsData[i].Code, err)
		}
		fmt.Printf("    ✅ Created coupon: %s\n", couponsData[i].Code)
	}

	return nil
}
