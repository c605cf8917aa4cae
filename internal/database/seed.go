package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/pinobite/storefront/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SeedSummary struct {
	Categories int
	Products   int
	HeroSlides int
	Skipped    int
}

// SeedCatalog inserts the launch catalog. Rows are matched by name, so
// running it twice only reports skips.
func (db *DB) SeedCatalog(ctx context.Context, withContent bool) (*SeedSummary, error) {
	summary := &SeedSummary{}
	tx := db.WithContext(ctx)

	if err := seedProducts(tx, summary); err != nil {
		return nil, err
	}
	if withContent {
		if err := seedHeroSlides(tx, summary); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

func seedProducts(tx *gorm.DB, summary *SeedSummary) error {
	products := []struct {
		name, category, description string
		price, originalPrice        string
		rating                      float64
		reviewCount, stock          int
		topRated                    bool
		benefits                    []string
		nutrients                   []models.Nutrient
	}{
		{
			"Super Muesli Nut & Seeds", "Muesli",
			"Premium slow-roasted nut blend with high-fiber seeds and zero refined sugar.",
			"510", "550", 4.9, 247, 120, true,
			[]string{"High Fiber", "Zero White Sugar", "Omega-3 Rich", "Vegan Friendly"},
			[]models.Nutrient{{Label: "Protein", Value: "18g"}, {Label: "Carbs", Value: "42g"}, {Label: "Healthy Fats", Value: "22g"}, {Label: "Energy", Value: "480kcal"}},
		},
		{
			"Dark Chocolate Chunky Peanut Butter", "Nut Butters",
			"Hand-picked roasted peanuts blended with premium dark cocoa and protein chunks.",
			"680", "", 4.8, 119, 85, true,
			[]string{"No Palm Oil", "Whey Protein Added", "Gluten Free", "Dark Chocolate"},
			[]models.Nutrient{{Label: "Protein", Value: "32g"}, {Label: "Carbs", Value: "12g"}, {Label: "Healthy Fats", Value: "48g"}, {Label: "Sugar", Value: "4g"}},
		},
		{
			"High Protein Rolled Oats", "Oats",
			"100% whole grain oats boosted with plant protein for a sustained morning energy.",
			"449", "520", 5.0, 489, 200, false,
			[]string{"Complex Carbs", "Slow Digestion", "Non-GMO", "No Additives"},
			[]models.Nutrient{{Label: "Protein", Value: "14g"}, {Label: "Carbs", Value: "66g"}, {Label: "Healthy Fats", Value: "7g"}, {Label: "Fiber", Value: "11g"}},
		},
		{
			"Creamy Stone-Ground Almond Butter", "Nut Butters",
			"Pure Californian almonds stone-ground into a silky smooth, heart-healthy spread.",
			"899", "", 4.7, 56, 5, false,
			[]string{"Heart Healthy", "Keto Friendly", "Vitamin E Rich", "Antioxidant Pack"},
			[]models.Nutrient{{Label: "Protein", Value: "21g"}, {Label: "Carbs", Value: "10g"}, {Label: "Healthy Fats", Value: "54g"}, {Label: "Iron", Value: "4mg"}},
		},
	}

	for _, p := range products {
		created, err := firstOrCreateCategory(tx, p.category)
		if err != nil {
			return err
		}
		if created {
			summary.Categories++
		}

		exists, err := existsByName(tx, &models.Product{}, "name", p.name)
		if err != nil {
			return err
		}
		if exists {
			summary.Skipped++
			continue
		}

		product := models.Product{
			Name:        p.name,
			Category:    p.category,
			Description: p.description,
			Price:       decimal.RequireFromString(p.price),
			Rating:      p.rating,
			ReviewCount: p.reviewCount,
			Stock:       p.stock,
			IsTopRated:  p.topRated,
			Benefits:    p.benefits,
			Nutrients:   p.nutrients,
		}
		if p.originalPrice != "" {
			original := decimal.RequireFromString(p.originalPrice)
			product.OriginalPrice = &original
		}
		if err := tx.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to seed product %q: %w", p.name, err)
		}
		summary.Products++
	}

	return nil
}

func seedHeroSlides(tx *gorm.DB, summary *SeedSummary) error {
	slides := []struct {
		category, headline, description, cta, bg, accent, blob string
	}{
		{"SUPER MUESLI", "Crunchy Coffee Madness", "Zero refined sugar. Loaded with real coffee and high protein. The ultimate fuel for your busy mornings.", "SHOP MUESLI", "bg-[#fff7ed]", "text-orange-600", "bg-orange-200"},
		{"NATURAL NUT BUTTERS", "Liquid Gold", "Stone-ground Californian almonds. 100% natural, keto-friendly, and impossibly creamy. No added oil.", "TASTE IT", "bg-[#fefce8]", "text-yellow-600", "bg-yellow-200"},
		{"PROTEIN PEANUT BUTTER", "Crunch Time", "Roasted peanuts meeting dark chocolate chunks. High protein, high energy, and absolutely delicious.", "GRAB A JAR", "bg-[#faf5ff]", "text-purple-600", "bg-purple-200"},
		{"WHOLE GRAIN OATS", "Power Breakfast", "Slow-releasing energy from 100% whole grain rolled oats. The perfect base for porridge or baking.", "START HEALTHY", "bg-[#fff1f2]", "text-rose-600", "bg-rose-200"},
		{"GIFT HAMPERS", "Share The Health", "Curated assortment boxes for your loved ones. Why choose one when you can have them all?", "VIEW BUNDLES", "bg-[#ecfdf5]", "text-emerald-600", "bg-emerald-200"},
	}

	for _, s := range slides {
		exists, err := existsByName(tx, &models.HeroSlide{}, "headline", s.headline)
		if err != nil {
			return err
		}
		if exists {
			summary.Skipped++
			continue
		}

		slide := models.HeroSlide{
			Category:    s.category,
			Headline:    s.headline,
			Description: s.description,
			CTA:         s.cta,
			BgColor:     s.bg,
			AccentColor: s.accent,
			BlobColor:   s.blob,
		}
		if err := tx.Create(&slide).Error; err != nil {
			return fmt.Errorf("failed to seed hero slide %q: %w", s.headline, err)
		}
		summary.HeroSlides++
	}

	return nil
}

func firstOrCreateCategory(tx *gorm.DB, name string) (bool, error) {
	var category models.Category
	err := tx.Where("name = ?", name).First(&category).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	category.Name = name
	if err := tx.Create(&category).Error; err != nil {
		return false, fmt.Errorf("failed to seed category %q: %w", name, err)
	}
	return true, nil
}

func existsByName(tx *gorm.DB, model any, column, value string) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(column+" = ?", value).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
