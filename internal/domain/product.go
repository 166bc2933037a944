package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating       = 1
	MaxRating       = 5
	MaxOfferPercent = 90
)

var (
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrInvalidProduct = errors.New("invalid product")
)

// Variant is a color option of a saree with its own gallery.
type Variant struct {
	Color  string   `bson:"color" json:"color"`
	Images []string `bson:"images" json:"images"`
}

type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name" validate:"required"`
	Description  string             `bson:"description" json:"description"`
	Category     string             `bson:"category" json:"category" validate:"required"`
	Fabric       string             `bson:"fabric,omitempty" json:"fabric,omitempty"`
	Price        float64            `bson:"price" json:"price" validate:"gte=0"`
	Stock        int                `bson:"stock" json:"stock" validate:"gte=0"`
	Rating       float64            `bson:"rating" json:"rating"`
	RatingCount  int                `bson:"ratingCount" json:"ratingCount"`
	OfferPercent int                `bson:"offerPercent,omitempty" json:"offerPercent,omitempty" validate:"gte=0,lte=90"`
	OfferLabel   string             `bson:"offerLabel,omitempty" json:"offerLabel,omitempty"`
	Images       []string           `bson:"images" json:"images"`
	Variants     []Variant          `bson:"variants,omitempty" json:"variants,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Validate checks the catalog invariants that must hold before a product is stored.
func (p *Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return errors.Join(ErrInvalidProduct, errors.New("name is required"))
	case strings.TrimSpace(p.Category) == "":
		return errors.Join(ErrInvalidProduct, errors.New("category is required"))
	case p.Price < 0:
		return errors.Join(ErrInvalidProduct, errors.New("price must not be negative"))
	case p.Stock < 0:
		return errors.Join(ErrInvalidProduct, errors.New("stock must not be negative"))
	case p.OfferPercent < 0 || p.OfferPercent > MaxOfferPercent:
		return errors.Join(ErrInvalidProduct, errors.New("offerPercent must be between 0 and 90"))
	}
	return nil
}

// ApplyRating folds a new rating into the running average.
func (p *Product) ApplyRating(rating int) error {
	avg, count, err := NextRating(p.Rating, p.RatingCount, rating)
	if err != nil {
		return err
	}
	p.Rating = avg
	p.RatingCount = count
	return nil
}

// NextRating returns the incremental mean (avg*count + rating) / (count+1) and the new count.
func NextRating(avg float64, count int, rating int) (float64, int, error) {
	if rating < MinRating || rating > MaxRating {
		return avg, count, ErrInvalidRating
	}
	if count < 0 {
		count = 0
	}
	total := avg*float64(count) + float64(rating)
	return total / float64(count+1), count + 1, nil
}

// EffectivePrice is the price after the offer discount, rounded to paise.
func (p *Product) EffectivePrice() float64 {
	if p.OfferPercent <= 0 {
		return p.Price
	}
	discount := decimal.NewFromInt(int64(100 - p.OfferPercent)).Div(decimal.NewFromInt(100))
	return decimal.NewFromFloat(p.Price).Mul(discount).Round(2).InexactFloat64()
}

// HasColor reports whether the product offers the given color. An empty color
// refers to the base product and is always valid.
func (p *Product) HasColor(color string) bool {
	if color == "" {
		return true
	}
	for _, v := range p.Variants {
		if strings.EqualFold(v.Color, color) {
			return true
		}
	}
	return false
}

// ImageFor returns the first image of the color variant, falling back to the base gallery.
func (p *Product) ImageFor(color string) string {
	for _, v := range p.Variants {
		if strings.EqualFold(v.Color, color) && len(v.Images) > 0 {
			return v.Images[0]
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortRating    ProductSort = "rating"
)

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Category string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	Sort     ProductSort
	Limit    int64
	Offset   int64
}
