package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sid145V/medical-assistant/internal/domain/identity"
	"github.com/Sid145V/medical-assistant/internal/platform/db"
	"github.com/Sid145V/medical-assistant/internal/platform/telemetry"
)

// Profiles reads and updates marketplace accounts; *identity.Service
// implements it.
type Profiles interface {
	GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error)
	SetAddress(ctx context.Context, id uuid.UUID, a identity.Address) error
}

type AddMedicineRequest struct {
	ShopID           uuid.UUID `json:"shop_id"`
	Name             string    `json:"name"`
	Price            float64   `json:"price"`
	MinOrderQuantity int       `json:"min_order_quantity"`
	Image            string    `json:"image"`
}

type PlaceOrderRequest struct {
	PatientID     uuid.UUID         `json:"patient_id"`
	MedicineID    uuid.UUID         `json:"medicine_id"`
	Quantity      int               `json:"quantity"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	UTR           *string           `json:"utr,omitempty"`
	Address       *identity.Address `json:"address,omitempty"`
}

// OrderResult carries the new order and, when the request supplied an
// address, the patient profile it was saved to.
type OrderResult struct {
	Order          *Order         `json:"order"`
	UpdatedPatient *identity.User `json:"updated_patient"`
}

type Service struct {
	medicines MedicineRepository
	orders    OrderRepository
	profiles  Profiles
	tx        db.TxRunner
	metrics   *telemetry.Metrics
	loc       *time.Location
	now       func() time.Time
}

func NewService(medicines MedicineRepository, orders OrderRepository, profiles Profiles, tx db.TxRunner) *Service {
	return &Service{medicines: medicines, orders: orders, profiles: profiles, tx: tx, loc: time.UTC, now: time.Now}
}

// SetMetrics attaches optional order counters.
func (s *Service) SetMetrics(m *telemetry.Metrics) {
	s.metrics = m
}

// SetLocation sets the zone medicine listing dates are recorded in.
func (s *Service) SetLocation(loc *time.Location) {
	if loc != nil {
		s.loc = loc
	}
}

func (s *Service) ListMedicines(ctx context.Context, f MedicineFilter, limit, offset int) ([]*Medicine, int, error) {
	return s.medicines.List(ctx, f, limit, offset)
}

func (s *Service) ListMedicinesByShop(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*Medicine, int, error) {
	return s.medicines.List(ctx, MedicineFilter{ShopID: &shopID}, limit, offset)
}

func (s *Service) shop(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	u, err := s.profiles.GetUser(ctx, id)
	if errors.Is(err, identity.ErrNotFound) || (err == nil && u.Role != identity.RoleShop) {
		return nil, ErrShopNotFound
	}
	return u, err
}

// AddMedicine lists a new medicine for a shop. An omitted minimum order
// quantity defaults to 1.
func (s *Service) AddMedicine(ctx context.Context, req *AddMedicineRequest) (*Medicine, error) {
	m, err := s.newMedicine(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.medicines.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// EnsureMedicine inserts m with its shop name resolved unless a medicine
// with the same id exists. It reports whether it was created.
func (s *Service) EnsureMedicine(ctx context.Context, id uuid.UUID, req *AddMedicineRequest, dateAdded time.Time) (bool, error) {
	m, err := s.newMedicine(ctx, req)
	if err != nil {
		return false, err
	}
	m.ID = id
	m.DateAdded = dateAdded.In(s.loc).Format("2006-01-02")
	return s.medicines.CreateIfAbsent(ctx, m)
}

func (s *Service) newMedicine(ctx context.Context, req *AddMedicineRequest) (*Medicine, error) {
	name := strings.TrimSpace(req.Name)
	image := strings.TrimSpace(req.Image)
	minQty := req.MinOrderQuantity
	if minQty == 0 {
		minQty = 1
	}
	if name == "" || image == "" || req.Price <= 0 || minQty < 1 {
		return nil, ErrInvalidMedicineFields
	}
	shop, err := s.shop(ctx, req.ShopID)
	if err != nil {
		return nil, err
	}
	return &Medicine{
		ID:               uuid.New(),
		ShopID:           shop.ID,
		ShopName:         shop.DisplayName(),
		Name:             name,
		Price:            req.Price,
		MinOrderQuantity: minQty,
		Image:            image,
		DateAdded:        s.now().In(s.loc).Format("2006-01-02"),
	}, nil
}

// PlaceOrder prices and records an order. A supplied address is saved to
// the patient profile in the same transaction as the order insert.
func (s *Service) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*OrderResult, error) {
	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	var utr *string
	if req.PaymentMethod == PaymentUPI {
		if req.UTR == nil || !ValidUTR(*req.UTR) {
			return nil, ErrInvalidUTR
		}
		utr = req.UTR
	}
	if req.Address != nil {
		if err := req.Address.Validate(); err != nil {
			return nil, err
		}
	}

	var res OrderResult
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		med, err := s.medicines.GetByID(ctx, req.MedicineID)
		if err != nil {
			return err
		}
		patient, err := s.profiles.GetUser(ctx, req.PatientID)
		if errors.Is(err, identity.ErrNotFound) || (err == nil && patient.Role != identity.RolePatient) {
			return ErrPatientNotFound
		}
		if err != nil {
			return err
		}
		if req.Quantity < med.MinOrderQuantity || req.Quantity < 1 {
			return fmt.Errorf("%w (%d)", ErrBelowMinimumQuantity, med.MinOrderQuantity)
		}

		if req.Address != nil {
			if err := s.profiles.SetAddress(ctx, patient.ID, *req.Address); err != nil {
				return err
			}
			addr := *req.Address
			patient.Address = &addr
			res.UpdatedPatient = patient
		}
		if patient.Address == nil {
			return ErrAddressRequired
		}

		order := &Order{
			ID:            uuid.New(),
			PatientID:     patient.ID,
			PatientName:   patient.DisplayName(),
			ShopID:        med.ShopID,
			ShopName:      med.ShopName,
			MedicineID:    med.ID,
			MedicineName:  med.Name,
			Quantity:      req.Quantity,
			TotalPrice:    roundCents(med.Price * float64(req.Quantity)),
			Address:       identity.FormatAddress(*patient.Address),
			PaymentMethod: req.PaymentMethod,
			UTR:           utr,
		}
		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}
		res.Order = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.OrderPlaced(string(req.PaymentMethod))
	return &res, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *Service) ListOrdersForPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Order, int, error) {
	return s.orders.List(ctx, OrderFilter{PatientID: &patientID}, limit, offset)
}

func (s *Service) ListOrdersForShop(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*Order, int, error) {
	return s.orders.List(ctx, OrderFilter{ShopID: &shopID}, limit, offset)
}

func (s *Service) ListAllOrders(ctx context.Context, limit, offset int) ([]*Order, int, error) {
	return s.orders.List(ctx, OrderFilter{}, limit, offset)
}
