package calculator

import (
	"errors"
	"math"

	"economat/internal/model"
)

var (
	// ErrProductNotFound 产品不在目录中
	ErrProductNotFound = errors.New("product not found in catalog")
	// ErrInvalidQuantity 销售数量非法
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	// ErrNegativePrice 菜单售价为负
	ErrNegativePrice = errors.New("menu price must not be negative")
)

// ValidateSale 校验一笔待录入的销售，返回全部违反的规则
func ValidateSale(product *model.Product, quantity float64) error {
	var errs []error

	if product == nil {
		errs = append(errs, ErrProductNotFound)
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		errs = append(errs, ErrInvalidQuantity)
	}
	if product != nil && product.MenuPrice < 0 {
		errs = append(errs, ErrNegativePrice)
	}

	return errors.Join(errs...)
}
