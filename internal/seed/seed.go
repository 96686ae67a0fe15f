// Package seed loads the demo marketplace: an admin, a patient, twenty
// doctors around Kolar district and a pharmacy with two medicines.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Sid145V/medical-assistant/internal/domain/identity"
	"github.com/Sid145V/medical-assistant/internal/domain/pharmacy"
)

// Namespace derives the stable ids of seeded records.
var Namespace = uuid.MustParse("5b1d8c1e-3f4a-4c2b-9e7d-6a0f2c8b4d31")

// ID returns the deterministic id for a seed key such as "doc-seed-1".
func ID(key string) uuid.UUID {
	return uuid.NewSHA1(Namespace, []byte(key))
}

const doctorPassword = "Doctor@123"

// Accounts is implemented by *identity.Service.
type Accounts interface {
	EnsureAccount(ctx context.Context, u *identity.User, password string) (bool, error)
}

// Catalog is implemented by *pharmacy.Service.
type Catalog interface {
	EnsureMedicine(ctx context.Context, id uuid.UUID, req *pharmacy.AddMedicineRequest, dateAdded time.Time) (bool, error)
}

// Result counts the records a run created. Existing records are left alone.
type Result struct {
	Accounts  int
	Medicines int
}

type account struct {
	key      string
	user     identity.User
	password string
}

func str(s string) *string { return &s }
func num(n int) *int { return &n }

type doctor struct {
	key, name, email, phone, location, qualification, specialization, license, image string
	experience                                                                       int
}

var doctors = []doctor{
	{"doc-seed-1", "Dr. Arjun R Gowda", "dr.arjun.kolar@example.com", "9876543210", "Kolar", "MBBS, MD (General Medicine)", "General Physician", "ARJU2012", "https://wallpapercave.com/wp/wp2968524.jpg", 10},
	{"doc-seed-2", "Dr. Sneha N Raj", "dr.sneha.malur@example.com", "9876543211", "Malur", "MBBS, MS (Gynecology)", "Gynecologist", "SNEH2014", "https://picsum.photos/seed/sneha/200", 7},
	{"doc-seed-3", "Dr. Manoj B Patil", "dr.manoj.bangarpet@example.com", "9876543212", "Bangarpet", "MBBS, MS (Orthopedics)", "Orthopedic Surgeon", "MANO2010", "https://picsum.photos/seed/manoj/200", 12},
	{"doc-seed-4", "Dr. Kavya R Shankar", "dr.kavya.srinivaspura@example.com", "9876543213", "Srinivaspura", "MBBS, MD (Pediatrics)", "Pediatrician", "KAVY2015", "https://picsum.photos/seed/kavya/200", 8},
	{"doc-seed-5", "Dr. Rakesh M Kumar", "dr.rakesh.kolar@example.com", "9876543214", "Kolar", "MBBS, MS (ENT)", "ENT Specialist", "RAKE2013", "https://picsum.photos/seed/rakesh/200", 9},
	{"doc-seed-6", "Dr. Priya S Nair", "dr.priya.kgf@example.com", "9876543215", "KGF", "MBBS, MD (Dermatology)", "Dermatologist", "PRIY2017", "https://picsum.photos/seed/priya/200", 6},
	{"doc-seed-7", "Dr. Raghavendra P Hegde", "dr.raghavendra.mulbagilu@example.com", "9876543216", "Mulbagilu", "MBBS, MS (General Surgery)", "General Surgeon", "RAGH2009", "https://picsum.photos/seed/raghavendra/200", 14},
	{"doc-seed-8", "Dr. Harini V Reddy", "dr.harini.kolar@example.com", "9876543217", "Kolar", "MBBS, MS (Ophthalmology)", "Eye Specialist", "HARI2013", "https://picsum.photos/seed/harini/200", 9},
	{"doc-seed-9", "Dr. Naveen S R", "dr.naveen.malur@example.com", "9876543218", "Malur", "MBBS, MD (Psychiatry)", "Psychiatrist", "NAVE2012", "https://picsum.photos/seed/naveen/200", 10},
	{"doc-seed-10", "Dr. Divya K Shetty", "dr.divya.bangarpet@example.com", "9876543219", "Bangarpet", "MBBS, MD (Radiology)", "Radiologist", "DIVY2015", "https://picsum.photos/seed/divya/200", 8},
	{"doc-seed-11", "Dr. Shashank R Naik", "dr.shashank.kolar@example.com", "9876543220", "Kolar", "MBBS, MD (Cardiology)", "Cardiologist", "SHAS2011", "https://picsum.photos/seed/shashank/200", 11},
	{"doc-seed-12", "Dr. Meghana S H", "dr.meghana.srinivaspura@example.com", "9876543221", "Srinivaspura", "MBBS, MD (Neurology)", "Neurologist", "MEGH2012", "https://picsum.photos/seed/meghana/200", 10},
	{"doc-seed-13", "Dr. Vijay R Keshav", "dr.vijay.kgf@example.com", "9876543222", "KGF", "MBBS, MD (Anesthesiology)", "Anesthesiologist", "VIJA2010", "https://picsum.photos/seed/vijay/200", 13},
	{"doc-seed-14", "Dr. Lavanya P N", "dr.lavanya.malur@example.com", "9876543223", "Malur", "MBBS, MS (Gynecology)", "Gynecologist", "LAVA2014", "https://picsum.photos/seed/lavanya/200", 9},
	{"doc-seed-15", "Dr. Sandeep M Reddy", "dr.sandeep.kolar@example.com", "9876543224", "Kolar", "MBBS, MS (Orthopedics)", "Orthopedic Surgeon", "SAND2011", "https://picsum.photos/seed/sandeep/200", 11},
	{"doc-seed-16", "Dr. Nisha V Kumar", "dr.nisha.bangarpet@example.com", "9876543225", "Bangarpet", "MBBS, MD (Dermatology)", "Dermatologist", "NISH2017", "https://picsum.photos/seed/nisha/200", 6},
	{"doc-seed-17", "Dr. Goutham S R", "dr.goutham.mulbagilu@example.com", "9876543226", "Mulbagilu", "MBBS, MS (Urology)", "Urologist", "GOUT2012", "https://picsum.photos/seed/goutham/200", 10},
	{"doc-seed-18", "Dr. Aishwarya R Naidu", "dr.aishwarya.srinivaspura@example.com", "9876543227", "Srinivaspura", "MBBS, MD (Psychiatry)", "Psychiatrist", "AISH2015", "https://picsum.photos/seed/aishwarya/200", 8},
	{"doc-seed-19", "Dr. Kiran N Murthy", "dr.kiran.kgf@example.com", "9876543228", "KGF", "MBBS, MS (Cardiothoracic Surgery)", "Cardiothoracic Surgeon", "KIRA2010", "https://picsum.photos/seed/kiran/200", 12},
	{"doc-seed-20", "Dr. Ramya G Rao", "dr.ramya.malur@example.com", "9876543229", "Malur", "MBBS, MS (Ophthalmology)", "Eye Specialist", "RAMY2016", "https://picsum.photos/seed/ramya/200", 7},
}

func accounts() []account {
	out := []account{
		{key: "admin-1", password: "admin", user: identity.User{
			Role: identity.RoleAdmin, Username: str("admin"), Email: "admin@test.com", Phone: "0000000000",
		}},
		{key: "patient-1", password: "password", user: identity.User{
			Role: identity.RolePatient, FirstName: str("John"), LastName: str("Doe"), Age: num(35),
			Gender: str("male"), Location: str("Kolar"), Email: "john@test.com", Phone: "1234567890",
		}},
	}
	for _, d := range doctors {
		out = append(out, account{key: d.key, password: doctorPassword, user: identity.User{
			Role: identity.RoleDoctor, Name: str(d.name), Email: d.email, Phone: d.phone,
			Location: str(d.location), Qualification: str(d.qualification), Specialization: str(d.specialization),
			Experience: num(d.experience), License: str(d.license), Image: str(d.image),
		}})
	}
	return append(out, account{key: "shop-1", password: "password", user: identity.User{
		Role: identity.RoleShop, ShopName: str("HealthFirst Pharmacy"), OwnerName: str("Charlie Brown"),
		License: str("LIC12345"), YearsActive: num(10), Location: str("Kolar"),
		Email: "shop1@test.com", Phone: "7778889999",
	}})
}

type medicine struct {
	key      string
	req      pharmacy.AddMedicineRequest
	daysBack int
}

func medicines() []medicine {
	shop := ID("shop-1")
	return []medicine{
		{"med-1", pharmacy.AddMedicineRequest{ShopID: shop, Name: "Paracetamol 500mg", Price: 5.99, MinOrderQuantity: 1, Image: "https://picsum.photos/seed/med1/300"}, 10},
		{"med-2", pharmacy.AddMedicineRequest{ShopID: shop, Name: "Cough Syrup", Price: 12.50, MinOrderQuantity: 1, Image: "https://picsum.photos/seed/med2/300"}, 5},
	}
}

// Run seeds every demo record that is not yet present. It is safe to run
// repeatedly.
func Run(ctx context.Context, users Accounts, catalog Catalog, now time.Time, logger zerolog.Logger) (Result, error) {
	var res Result
	for _, a := range accounts() {
		u := a.user
		u.ID = ID(a.key)
		created, err := users.EnsureAccount(ctx, &u, a.password)
		if err != nil {
			return res, fmt.Errorf("seed account %s: %w", a.key, err)
		}
		if created {
			res.Accounts++
			logger.Debug().Str("key", a.key).Str("role", string(u.Role)).Msg("seeded account")
		}
	}

	for _, m := range medicines() {
		req := m.req
		created, err := catalog.EnsureMedicine(ctx, ID(m.key), &req, now.AddDate(0, 0, -m.daysBack))
		if err != nil {
			return res, fmt.Errorf("seed medicine %s: %w", m.key, err)
		}
		if created {
			res.Medicines++
		}
	}

	logger.Info().Int("accounts", res.Accounts).Int("medicines", res.Medicines).Msg("seed complete")
	return res, nil
}
