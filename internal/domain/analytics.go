package domain

// VendorSalesReport aggregates a vendor's completed orders.
type VendorSalesReport struct {
	TotalSales     float64        `json:"total_sales"`
	TotalOrders    int            `json:"total_orders"`
	SalesByProduct []ProductSales `json:"sales_by_product"`
}

type ProductSales struct {
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	QuantitySold int     `json:"quantity_sold"`
	TotalRevenue float64 `json:"total_revenue"`
}

// CustomerPurchaseReport aggregates a customer's order history.
type CustomerPurchaseReport struct {
	TotalSpent          float64            `json:"total_spent"`
	TotalOrders         int                `json:"total_orders"`
	PurchasesByCategory []CategoryPurchase `json:"purchases_by_category"`
	PurchasesByVendor   []VendorPurchase   `json:"purchases_by_vendor"`
}

type CategoryPurchase struct {
	Category   string  `json:"category"`
	TotalSpent float64 `json:"total_spent"`
	Quantity   int     `json:"quantity"`
}

type VendorPurchase struct {
	VendorID   string  `json:"vendor_id"`
	VendorName string  `json:"vendor_name"`
	TotalSpent float64 `json:"total_spent"`
	OrderCount int     `json:"order_count"`
}
