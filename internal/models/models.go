package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User roles
const (
	RoleCustomer      = "customer"
	RoleVendor        = "vendor"
	RoleAdmin         = "admin"
	RoleDeliveryAgent = "delivery_agent"
)

// Vendor statuses
const (
	VendorStatusActive   = "active"
	VendorStatusInactive = "inactive"
)

// Order statuses
const (
	OrderStatusPending        = "pending"
	OrderStatusPicked         = "picked"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

// Payment methods
const (
	PaymentMethodUPI        = "UPI"
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodCOD        = "COD"
	PaymentMethodWallet     = "wallet"
	PaymentMethodBNPL       = "BNPL"
)

// Payment statuses
const (
	PaymentStatusPending = "pending"
)

// DefaultCommissionRate is applied to every new vendor, in percent.
var DefaultCommissionRate = decimal.NewFromInt(10)

// User is a marketplace account.
type User struct {
	ID           int64     `db:"user_id" json:"user_id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Email        string    `db:"email" json:"email"`
	PhoneNumber  *string   `db:"phone_number" json:"phone_number,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Vendor is a store profile owned by a user.
type Vendor struct {
	ID               int64           `db:"vendor_id" json:"vendor_id"`
	UserID           int64           `db:"user_id" json:"user_id"`
	StoreName        string          `db:"store_name" json:"store_name"`
	StoreDescription string          `db:"store_description" json:"store_description"`
	StoreLatitude    float64         `db:"store_latitude" json:"store_latitude"`
	StoreLongitude   float64         `db:"store_longitude" json:"store_longitude"`
	DeliveryRadius   float64         `db:"delivery_radius" json:"delivery_radius"`
	CommissionRate   decimal.Decimal `db:"commission_rate" json:"commission_rate"`
	Status           string          `db:"status" json:"status"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// VendorListing is a vendor joined with its owner's public details.
type VendorListing struct {
	Vendor
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
}

// VendorDetail adds the vendor's products to a listing.
type VendorDetail struct {
	VendorListing
	Products []Product `db:"-" json:"products"`
}

// Category groups products.
type Category struct {
	ID   int64  `db:"category_id" json:"category_id"`
	Name string `db:"category_name" json:"category_name"`
}

// Product belongs to exactly one vendor and one category.
type Product struct {
	ID          int64           `db:"product_id" json:"product_id"`
	VendorID    int64           `db:"vendor_id" json:"vendor_id"`
	CategoryID  int64           `db:"category_id" json:"category_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Description string          `db:"description" json:"description"`
	BasePrice   decimal.Decimal `db:"base_price" json:"base_price"`
	SKU         *string         `db:"sku" json:"sku,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// ProductListing is a product with its vendor and category names and nested collections.
type ProductListing struct {
	Product
	StoreName    *string   `db:"store_name" json:"store_name"`
	CategoryName *string   `db:"category_name" json:"category_name"`
	Variants     []Variant `db:"-" json:"variants"`
	Images       []Image   `db:"-" json:"images"`
}

// Variant is a purchasable SKU of a product; StockQuantity is its inventory counter.
type Variant struct {
	ID            int64           `db:"variant_id" json:"variant_id"`
	ProductID     int64           `db:"product_id" json:"product_id"`
	VariantName   string          `db:"variant_name" json:"variant_name"`
	VariantPrice  decimal.Decimal `db:"variant_price" json:"variant_price"`
	StockQuantity int             `db:"stock_quantity" json:"stock_quantity"`
	SKU           *string         `db:"sku" json:"sku,omitempty"`
}

// Image is a product picture.
type Image struct {
	ID        int64  `db:"image_id" json:"image_id"`
	ProductID int64  `db:"product_id" json:"product_id"`
	ImageURL  string `db:"image_url" json:"image_url"`
	IsPrimary bool   `db:"is_primary" json:"is_primary"`
}

// CartItem is one (user, product, variant) row of a cart.
type CartItem struct {
	ID        int64     `db:"cart_id" json:"cart_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	VariantID *int64    `db:"variant_id" json:"variant_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CartLine is a cart row joined with product, variant and primary image.
type CartLine struct {
	CartID       int64               `db:"cart_id" json:"cart_id"`
	Quantity     int                 `db:"quantity" json:"quantity"`
	ProductID    int64               `db:"product_id" json:"product_id"`
	ProductName  string              `db:"product_name" json:"product_name"`
	BasePrice    decimal.Decimal     `db:"base_price" json:"base_price"`
	VariantID    *int64              `db:"variant_id" json:"variant_id"`
	VariantName  *string             `db:"variant_name" json:"variant_name"`
	VariantPrice decimal.NullDecimal `db:"variant_price" json:"variant_price"`
	ImageURL     *string             `db:"image_url" json:"image_url"`
}

// UnitPrice is the variant price when the line has one, otherwise the product base price.
func (l CartLine) UnitPrice() decimal.Decimal {
	if l.VariantPrice.Valid {
		return l.VariantPrice.Decimal
	}
	return l.BasePrice
}

// Cart is the caller's cart with its computed total.
type Cart struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// WishlistItem is a (user, product) pair.
type WishlistItem struct {
	ID        int64     `db:"wishlist_id" json:"wishlist_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// WishlistEntry is a wishlist row joined with product, vendor and primary image.
type WishlistEntry struct {
	WishlistID  int64           `db:"wishlist_id" json:"wishlist_id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	BasePrice   decimal.Decimal `db:"base_price" json:"base_price"`
	ImageURL    *string         `db:"image_url" json:"image_url"`
	VendorName  string          `db:"vendor_name" json:"vendor_name"`
}

// Order is placed by one user with one vendor.
type Order struct {
	ID          int64           `db:"order_id" json:"order_id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	VendorID    int64           `db:"vendor_id" json:"vendor_id"`
	Status      string          `db:"order_status" json:"order_status"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
	Items       []OrderItem     `db:"-" json:"items"`
	Payment     *Payment        `db:"-" json:"payment"`
}

// OrderItem snapshots price and subtotal at purchase time.
type OrderItem struct {
	ID        int64           `db:"order_item_id" json:"order_item_id"`
	OrderID   int64           `db:"order_id" json:"order_id"`
	ProductID int64           `db:"product_id" json:"product_id"`
	VariantID *int64          `db:"variant_id" json:"variant_id"`
	Quantity  int             `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Subtotal  decimal.Decimal `db:"subtotal" json:"subtotal"`
}

// Payment is the single payment record of an order.
type Payment struct {
	ID        int64           `db:"payment_id" json:"payment_id"`
	OrderID   int64           `db:"order_id" json:"order_id"`
	Method    string          `db:"payment_method" json:"payment_method"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Status    string          `db:"payment_status" json:"payment_status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// DashboardStats are the admin dashboard aggregates.
type DashboardStats struct {
	TotalSales    decimal.Decimal `json:"totalSales"`
	ActiveVendors int64           `json:"activeVendors"`
	RecentSignups int64           `json:"recentSignups"`
	PendingOrders int64           `json:"pendingOrders"`
}

// IsValidRole reports whether role is one of the known user roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleVendor, RoleAdmin, RoleDeliveryAgent:
		return true
	}
	return false
}

// IsValidOrderStatus reports whether status is a known order status.
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusPicked, OrderStatusOutForDelivery,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsValidPaymentMethod reports whether method is an accepted payment method.
func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodUPI, PaymentMethodCreditCard, PaymentMethodCOD,
		PaymentMethodWallet, PaymentMethodBNPL:
		return true
	}
	return false
}
