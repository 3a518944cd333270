package models

import (
	"fmt"
	"strings"
)

// Category - тип экстренной ситуации
type Category string

const (
	CategoryMedical Category = "Medical"
	CategorySafety  Category = "Safety"
	CategoryFire    Category = "Fire"
	CategoryOther   Category = "Other"
)

// Categories перечисляет допустимые категории в порядке отображения
var Categories = []Category{CategoryMedical, CategorySafety, CategoryFire, CategoryOther}

// Valid проверяет, входит ли категория в закрытый набор
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory разбирает категорию без учета регистра
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, known := range Categories {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown incident category %q", s)
}
