// Seeds the service catalog and the initial admin user. Safe to run
// repeatedly; existing rows are left alone.
package main

import (
	"log"
	"os"

	"veripay/internal/config"
	"veripay/internal/models"
	"veripay/internal/repositories"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var catalog = []models.Pricing{
	{
		ServiceName:  models.ServiceNinVerification,
		DisplayName:  "NIN Verification",
		Description:  "Verify a National Identification Number",
		CostPrice:    10000,
		SellingPrice: 15000,
		Provider:     "prembly",
		Category:     "verification",
		IsActive:     true,
	},
	{
		ServiceName:  models.ServiceBvnVerification,
		DisplayName:  "BVN Verification",
		Description:  "Verify a Bank Verification Number",
		CostPrice:    10000,
		SellingPrice: 15000,
		Provider:     "prembly",
		Category:     "verification",
		IsActive:     true,
	},
	{
		ServiceName:  models.ServiceIpeVerification,
		DisplayName:  "IPE Status Check",
		Description:  "Check NIMC IPE clearance status",
		CostPrice:    15000,
		SellingPrice: 20000,
		Provider:     "prembly",
		Category:     "verification",
		IsActive:     true,
	},
	{
		ServiceName:  models.ServiceAirtime,
		DisplayName:  "Airtime Top-up",
		Description:  "Airtime for all Nigerian networks, billed at face value",
		CostPrice:    0,
		SellingPrice: 1,
		Provider:     "husmodata",
		Category:     "vtu",
		IsActive:     true,
	},
	{
		ServiceName:  models.ServiceData,
		DisplayName:  "Data Bundles",
		Description:  "Data bundles for all Nigerian networks",
		CostPrice:    0,
		SellingPrice: 1,
		Provider:     "husmodata",
		Category:     "vtu",
		IsActive:     true,
	},
	{
		ServiceName:  models.ServicePersonalization,
		DisplayName:  "NIN Personalization",
		Description:  "NIN personalization request",
		CostPrice:    20000,
		SellingPrice: 30000,
		Provider:     "prembly",
		Category:     "verification",
		IsActive:     true,
	},
}

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if sqlDB, err := repositories.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("⚠️ Failed to close PostgreSQL connection: %v", err)
			}
		}
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				log.Printf("⚠️ Failed to close Redis connection: %v", err)
			}
		}
	}()

	seedCatalog()
	seedAdmin()
}

func seedCatalog() {
	for _, row := range catalog {
		var existing models.Pricing
		err := repositories.DB.Where("service_name = ?", row.ServiceName).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			log.Fatalf("Failed to check catalog row %s: %v", row.ServiceName, err)
		}
		if err := repositories.DB.Create(&row).Error; err != nil {
			log.Fatalf("Failed to seed catalog row %s: %v", row.ServiceName, err)
		}
		log.Printf("Seeded service %s", row.ServiceName)
	}
	log.Println("✅ Service catalog seeded")
}

func seedAdmin() {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	adminPhone := os.Getenv("ADMIN_PHONE")

	if adminEmail == "" || adminPassword == "" || adminPhone == "" {
		log.Println("ADMIN_EMAIL, ADMIN_PASSWORD and ADMIN_PHONE not set, skipping admin seed")
		return
	}

	var existingAdmin models.User
	if err := repositories.DB.Where("email = ?", adminEmail).First(&existingAdmin).Error; err == nil {
		log.Println("Admin user already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	adminUser := models.User{
		Email:    adminEmail,
		Password: string(hashedPassword),
		Phone:    adminPhone,
		Role:     "admin",
		Status:   "active",
	}

	if err := repositories.DB.Create(&adminUser).Error; err != nil {
		log.Fatal("Failed to create admin user:", err)
	}

	log.Println("✅ Admin account created successfully!")
}
