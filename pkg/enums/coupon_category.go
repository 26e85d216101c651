package enums

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CouponCategory identifies a subject coupon students can redeem points for.
type CouponCategory string

const (
	CouponCategoryMath       CouponCategory = "matematica"
	CouponCategoryPortuguese CouponCategory = "portugues"
	CouponCategoryScience    CouponCategory = "ciencias"
	CouponCategoryEnglish    CouponCategory = "ingles"
	CouponCategoryPhysicalEd CouponCategory = "ed_fisica"
	CouponCategoryArts       CouponCategory = "artes"
	CouponCategoryGeography  CouponCategory = "geografia"
	CouponCategoryHistory    CouponCategory = "historia"
)

var validCouponCategories = []CouponCategory{
	CouponCategoryMath,
	CouponCategoryPortuguese,
	CouponCategoryScience,
	CouponCategoryEnglish,
	CouponCategoryPhysicalEd,
	CouponCategoryArts,
	CouponCategoryGeography,
	CouponCategoryHistory,
}

type couponInfo struct {
	label     string
	cost      int64
	unlimited bool
}

// Costs mirror the program's published coupon table. Every current
// subject is capped at one coupon per term; unlimited stays available
// for future categories exempt from that cap.
var couponInfoByCategory = map[CouponCategory]couponInfo{
	CouponCategoryMath:       {label: "Matemática", cost: 45},
	CouponCategoryPortuguese: {label: "Português", cost: 45},
	CouponCategoryScience:    {label: "Ciências", cost: 40},
	CouponCategoryEnglish:    {label: "Inglês", cost: 40},
	CouponCategoryPhysicalEd: {label: "Ed. Física", cost: 35},
	CouponCategoryArts:       {label: "Artes", cost: 38},
	CouponCategoryGeography:  {label: "Geografia", cost: 42},
	CouponCategoryHistory:    {label: "História", cost: 48},
}

// AllCouponCategories returns the catalog in its published order.
func AllCouponCategories() []CouponCategory {
	out := make([]CouponCategory, len(validCouponCategories))
	copy(out, validCouponCategories)
	return out
}

// Label returns the display name of the subject.
func (c CouponCategory) Label() string {
	return couponInfoByCategory[c].label
}

// CouponName returns the printable coupon title.
func (c CouponCategory) CouponName() string {
	return "Cupom " + couponInfoByCategory[c].label
}

// Cost returns the point cost of a coupon in this category.
func (c CouponCategory) Cost() decimal.Decimal {
	return decimal.NewFromInt(couponInfoByCategory[c].cost)
}

// Unlimited reports whether the category is exempt from the
// one-purchase-per-term rule.
func (c CouponCategory) Unlimited() bool {
	return couponInfoByCategory[c].unlimited
}

// IsValid reports whether the value is a known CouponCategory.
func (c CouponCategory) IsValid() bool {
	for _, candidate := range validCouponCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCouponCategory converts raw input into a CouponCategory.
func ParseCouponCategory(value string) (CouponCategory, error) {
	for _, candidate := range validCouponCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon category %q", value)
}
