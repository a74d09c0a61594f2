package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/vukanihub/vukani-backend/config"
	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/internal/app/repository"
	"github.com/vukanihub/vukani-backend/internal/db"
	"github.com/vukanihub/vukani-backend/pkg/util"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Imports business listings from an XLSX export. Expected columns:
// name | category | city | suburb | address | latitude | longitude | phone | website
const seedOwnerEmail = "seed-imports@vukani.co.za"

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}
	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	businessRepo := repository.NewBusinessRepository(db.GetDB())
	userRepo := repository.NewUserRepository(db.GetDB())

	owner, err := ensureSeedOwner(userRepo)
	if err != nil {
		log.Fatal("Failed to prepare seed owner account:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	businesses, skipped, err := readBusinessesFromXLSX(filePath, owner.ID)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total businesses to import: %d (skipped %d rows)\n", len(businesses), skipped)

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 1000
	if err := businessRepo.BulkCreate(businesses, batchSize); err != nil {
		log.Fatal("Failed to bulk create businesses:", err)
	}

	fmt.Printf("Import completed: %d businesses\n", len(businesses))
}

// ensureSeedOwner finds or creates the supplier account that owns imported
// listings until real owners claim them through verification.
func ensureSeedOwner(userRepo repository.UserRepository) (*model.User, error) {
	owner, err := userRepo.FindByEmail(seedOwnerEmail)
	if err == nil {
		return owner, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := util.HashPassword(util.RandomString(32))
	if err != nil {
		return nil, err
	}

	owner = &model.User{
		Email:        seedOwnerEmail,
		PasswordHash: hash,
		Name:         "Vukani Imports",
		Role:         model.RoleSupplier,
	}
	if err := userRepo.Create(owner); err != nil {
		return nil, err
	}
	return owner, nil
}

func readBusinessesFromXLSX(filePath string, ownerID uint) ([]model.Business, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, 0, fmt.Errorf("no data rows found in XLSX file")
	}

	var businesses []model.Business
	seen := make(map[string]bool)
	slugCounter := make(map[string]int)
	skipped := 0

	for i, row := range rows[1:] {
		if len(row) < 3 {
			skipped++
			continue
		}

		name := strings.TrimSpace(cell(row, 0))
		category := strings.TrimSpace(cell(row, 1))
		city := strings.TrimSpace(cell(row, 2))
		if name == "" || city == "" {
			skipped++
			continue
		}

		dedupeKey := city + "|" + name
		if seen[dedupeKey] {
			skipped++
			continue
		}
		seen[dedupeKey] = true

		business := model.Business{
			UserID:   ownerID,
			Name:     name,
			Category: category,
			City:     city,
			Suburb:   strings.TrimSpace(cell(row, 3)),
			Address:  strings.TrimSpace(cell(row, 4)),
			// Imported listings go live directly; they predate the review
			// workflow and are curated at the source.
			Status:             model.BusinessStatusActive,
			VerificationStatus: model.VerificationPending,
			PhoneNumber:        strings.TrimSpace(cell(row, 7)),
			Website:            strings.TrimSpace(cell(row, 8)),
		}

		lat, latErr := strconv.ParseFloat(strings.TrimSpace(cell(row, 5)), 64)
		lng, lngErr := strconv.ParseFloat(strings.TrimSpace(cell(row, 6)), 64)
		if latErr == nil && lngErr == nil && util.ValidCoordinates(lat, lng) {
			business.Latitude = &lat
			business.Longitude = &lng
		} else if latErr == nil || lngErr == nil {
			fmt.Printf("Row %d: dropping partial coordinates for %q\n", i+2, name)
		}

		// Slugs are pre-assigned here so batch inserts cannot collide.
		slug := slugify(city + "-" + name)
		slugCounter[slug]++
		if n := slugCounter[slug]; n > 1 {
			slug = fmt.Sprintf("%s-%d", slug, n)
		}
		business.Slug = slug

		businesses = append(businesses, business)
	}

	return businesses, skipped, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

var nonSlugChars = regexp.MustCompile(`[^\p{L}\p{N}-]+`)
var dashRuns = regexp.MustCompile(`-+`)

func slugify(s string) string {
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	return strings.ToLower(strings.Trim(s, "-"))
}
