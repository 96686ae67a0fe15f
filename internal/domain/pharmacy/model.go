package pharmacy

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var (
	ErrShopNotFound          = errors.New("Shop not found")
	ErrMedicineNotFound      = errors.New("Medicine not found")
	ErrPatientNotFound       = errors.New("Patient not found")
	ErrAddressRequired       = errors.New("A delivery address is required.")
	ErrInvalidUTR            = errors.New("UPI payments need a 12 character alphanumeric UTR.")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrBelowMinimumQuantity  = errors.New("quantity is below the minimum order quantity")
	ErrInvalidMedicineFields = errors.New("name and image are required, price must be positive and minimum order quantity at least 1")
)

type PaymentMethod string

const (
	PaymentUPI            PaymentMethod = "upi"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentUPI || p == PaymentCashOnDelivery
}

var utrPattern = regexp.MustCompile(`^[a-zA-Z0-9]{12}$`)

// ValidUTR reports whether s looks like a UPI transaction reference.
func ValidUTR(s string) bool {
	return utrPattern.MatchString(s)
}

type Medicine struct {
	ID               uuid.UUID `db:"id" json:"id"`
	ShopID           uuid.UUID `db:"shop_id" json:"shop_id"`
	ShopName         string    `db:"shop_name" json:"shop_name"`
	Name             string    `db:"name" json:"name"`
	Price            float64   `db:"price" json:"price"`
	MinOrderQuantity int       `db:"min_order_quantity" json:"min_order_quantity"`
	Image            string    `db:"image" json:"image"`
	DateAdded        string    `db:"date_added" json:"date_added"`
}

type Order struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	PatientID     uuid.UUID     `db:"patient_id" json:"patient_id"`
	PatientName   string        `db:"patient_name" json:"patient_name"`
	ShopID        uuid.UUID     `db:"shop_id" json:"shop_id"`
	ShopName      string        `db:"shop_name" json:"shop_name"`
	MedicineID    uuid.UUID     `db:"medicine_id" json:"medicine_id"`
	MedicineName  string        `db:"medicine_name" json:"medicine_name"`
	Quantity      int           `db:"quantity" json:"quantity"`
	TotalPrice    float64       `db:"total_price" json:"total_price"`
	Address       string        `db:"address" json:"address"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"payment_method"`
	UTR           *string       `db:"utr" json:"utr,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// MedicineFilter narrows ListMedicines. Query matches the medicine or shop
// name case-insensitively.
type MedicineFilter struct {
	ShopID *uuid.UUID
	Query  string
}

// OrderFilter selects orders by patient or shop. Empty returns all orders.
type OrderFilter struct {
	PatientID *uuid.UUID
	ShopID    *uuid.UUID
}
