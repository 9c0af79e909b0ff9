package models

import "strings"

const (
	BrandSkyline        = "Skyline Chili"
	BrandGoldStar       = "Gold Star Chili"
	BrandCampWashington = "Camp Washington Chili"
	BrandEmpress        = "Empress Chili"
	BrandDixie          = "Dixie Chili"
	BrandBlueAsh        = "Blue Ash Chili"
	BrandPriceHill      = "Price Hill Chili"
	BrandPleasantRidge  = "Pleasant Ridge Chili"
	BrandOther          = "Other"
)

// Brands lists every accepted brand. The order is the display order.
var Brands = []string{
	BrandSkyline,
	BrandGoldStar,
	BrandCampWashington,
	BrandEmpress,
	BrandDixie,
	BrandBlueAsh,
	BrandPriceHill,
	BrandPleasantRidge,
	BrandOther,
}

// ParlorBrands excludes the catch-all Other brand.
func ParlorBrands() []string {
	return Brands[:len(Brands)-1]
}

func IsBrand(name string) bool {
	for _, b := range Brands {
		if b == name {
			return true
		}
	}
	return false
}

// BrandSlug turns "Gold Star Chili" into "gold-star".
func BrandSlug(brand string) string {
	s := strings.ToLower(strings.TrimSuffix(brand, " Chili"))
	return strings.ReplaceAll(s, " ", "-")
}
