package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products on the storefront.
type Category struct {
	ID    int64  `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"size:100;not null" binding:"required,max=100"`
	Image string `json:"image" gorm:"type:text"`
}

// Nutrient is one row of a product's nutrition table.
type Nutrient struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Product struct {
	ID            int64            `json:"id" gorm:"primaryKey"`
	Name          string           `json:"name" gorm:"size:255;not null" binding:"required,max=255"`
	Price         decimal.Decimal  `json:"price" gorm:"type:decimal(10,2);not null"`
	OriginalPrice *decimal.Decimal `json:"original_price" gorm:"type:decimal(10,2)"`
	Rating        float64          `json:"rating" gorm:"not null;default:0" binding:"gte=0,lte=5"`
	ReviewCount   int              `json:"review_count" gorm:"not null;default:0" binding:"gte=0"`
	Image         string           `json:"image" gorm:"type:text"`
	Gallery       []string         `json:"gallery" gorm:"type:text;serializer:json"`
	Description   string           `json:"description" gorm:"type:text"`
	Benefits      []string         `json:"benefits" gorm:"type:text;serializer:json"`
	Nutrients     []Nutrient       `json:"nutrients" gorm:"type:text;serializer:json"`
	IsTopRated    bool             `json:"is_top_rated" gorm:"not null;default:false;index"`
	Category      string           `json:"category" gorm:"size:100;not null;index" binding:"max=100"`
	Stock         int              `json:"stock" gorm:"not null;default:0" binding:"gte=0"`
}

func (p *Product) BeforeSave(*gorm.DB) error {
	p.Gallery = emptyIfNil(p.Gallery)
	p.Benefits = emptyIfNil(p.Benefits)
	p.Nutrients = emptyIfNil(p.Nutrients)

	errs := FieldErrors{}
	if p.Price.IsNegative() {
		errs["price"] = "gte=0"
	}
	if p.OriginalPrice != nil && p.OriginalPrice.IsNegative() {
		errs["original_price"] = "gte=0"
	}
	if p.Stock < 0 {
		errs["stock"] = "gte=0"
	}
	return errs.orNil()
}

type Review struct {
	ID         int64    `json:"id" gorm:"primaryKey"`
	ProductID  *int64   `json:"product" gorm:"index"`
	Product    *Product `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ProductRef string   `json:"product_id_str" gorm:"column:product_id_str;size:50;not null;default:general" binding:"max=50"`
	UserName   string   `json:"user_name" gorm:"size:255;not null" binding:"required,max=255"`
	UserRole   string   `json:"user_role" gorm:"size:255" binding:"max=255"`
	Rating     int      `json:"rating" gorm:"not null;default:5" binding:"omitempty,min=1,max=5"`
	Comment    string   `json:"comment" gorm:"type:text" binding:"required"`
	Date       string   `json:"date" gorm:"size:50" binding:"max=50"`
	Avatar     string   `json:"avatar" gorm:"size:1000" binding:"omitempty,url,max=1000"`
}

func (r *Review) BeforeSave(*gorm.DB) error {
	if r.ProductRef == "" {
		r.ProductRef = "general"
	}
	if r.Rating == 0 {
		r.Rating = 5
	}
	return nil
}

// StorySection is one heading/paragraph block of an event write-up.
type StorySection struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

type Event struct {
	ID               int64          `json:"id" gorm:"primaryKey"`
	Title            string         `json:"title" gorm:"size:255;not null" binding:"required,max=255"`
	Location         string         `json:"location" gorm:"size:255" binding:"max=255"`
	Image            string         `json:"image" gorm:"type:text"`
	Summary          string         `json:"summary" gorm:"type:text"`
	FullStory        []StorySection `json:"full_story" gorm:"type:text;serializer:json"`
	Gallery          []string       `json:"gallery" gorm:"type:text;serializer:json"`
	FeaturedProducts []string       `json:"featured_products" gorm:"type:text;serializer:json"`
	Date             string         `json:"date" gorm:"size:50" binding:"max=50"`
}

func (e *Event) BeforeSave(*gorm.DB) error {
	e.FullStory = emptyIfNil(e.FullStory)
	e.Gallery = emptyIfNil(e.Gallery)
	e.FeaturedProducts = emptyIfNil(e.FeaturedProducts)
	return nil
}

type BlogPostType string

const (
	PostTypeRecipe    BlogPostType = "Recipe"
	PostTypeLifestyle BlogPostType = "Lifestyle"
	PostTypeNews      BlogPostType = "News"
)

type BlogPost struct {
	ID       int64        `json:"id" gorm:"primaryKey"`
	PostType BlogPostType `json:"post_type" gorm:"size:20;not null;index" binding:"required,oneof=Recipe Lifestyle News"`
	Title    string       `json:"title" gorm:"size:255;not null" binding:"required,max=255"`
	Excerpt  string       `json:"excerpt" gorm:"type:text"`
	Image    string       `json:"image" gorm:"type:text"`
	Date     string       `json:"date" gorm:"size:50" binding:"max=50"`
	ReadTime string       `json:"read_time" gorm:"size:20" binding:"max=20"`
	Author   string       `json:"author" gorm:"size:100" binding:"max=100"`
	Content  []string     `json:"content" gorm:"type:text;serializer:json"`
	Tags     []string     `json:"tags" gorm:"type:text;serializer:json"`
}

func (b *BlogPost) BeforeSave(*gorm.DB) error {
	b.Content = emptyIfNil(b.Content)
	b.Tags = emptyIfNil(b.Tags)
	return nil
}

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Story is a short image or video shown in the product story carousel.
type Story struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	MediaURL   string    `json:"media_url" gorm:"type:text;not null" binding:"required"`
	MediaType  MediaType `json:"media_type" gorm:"size:10;not null" binding:"required,oneof=image video"`
	ProductRef string    `json:"product_id" gorm:"column:product_id;size:50" binding:"max=50"`
}

type HeroSlide struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	Category    string `json:"category" gorm:"size:100" binding:"max=100"`
	Headline    string `json:"headline" gorm:"size:255;not null" binding:"required,max=255"`
	Description string `json:"description" gorm:"type:text"`
	Image       string `json:"image" gorm:"type:text"`
	CTA         string `json:"cta" gorm:"column:cta;size:50" binding:"max=50"`
	BgColor     string `json:"bg_color" gorm:"size:50" binding:"max=50"`
	AccentColor string `json:"accent_color" gorm:"size:50" binding:"max=50"`
	BlobColor   string `json:"blob_color" gorm:"size:50" binding:"max=50"`
	IsActive    *bool  `json:"is_active" gorm:"not null;default:true;index"`
}

func (h *HeroSlide) BeforeSave(*gorm.DB) error {
	if h.IsActive == nil {
		active := true
		h.IsActive = &active
	}
	return nil
}
