package product

import "time"

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	NameKR        string `json:"nameKr,omitempty"`
	CategoryID    int64  `json:"categoryId"`
	CategoryName  string `json:"categoryName"`
	UnitGroupID   int64  `json:"unitGroupId"`
	UnitGroupName string `json:"unitGroupName"`
}

// Spec is one purchasable form of a product from a vendor. Decimal
// quantities travel as strings; the database holds them as NUMERIC.
type Spec struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"productId"`
	ProductName string    `json:"productName"`
	VendorID    int64     `json:"vendorId"`
	VendorName  string    `json:"vendorName"`
	UnitID      int64     `json:"unitId"`
	UnitName    string    `json:"unitName"`
	UnitAbbrev  string    `json:"unitAbbreviation"`
	Description string    `json:"description"`
	CaseSize    int       `json:"caseSize"`
	UnitSize    string    `json:"unitSize"`
	Brand       string    `json:"brand,omitempty"`
	SKU         string    `json:"sku,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
