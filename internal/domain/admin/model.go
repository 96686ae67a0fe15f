package admin

// Dashboard is the admin overview of the marketplace.
type Dashboard struct {
	Patients     int            `json:"patients"`
	Doctors      int            `json:"doctors"`
	Shops        int            `json:"shops"`
	Messages     int            `json:"messages"`
	Appointments int            `json:"appointments"`
	ByStatus     map[string]int `json:"appointments_by_status"`
	Orders       int            `json:"orders"`
	OrderRevenue float64        `json:"order_revenue"`
}
