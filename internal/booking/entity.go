// AngelaMos | 2026
// entity.go

package booking

import (
	"time"
)

// ServiceOption is one bookable service. The catalog is fixed per
// category; businesses do not manage their own lists.
type ServiceOption struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Duration string `json:"duration"`
	Price    string `json:"price"`
}

// Session is one run of the booking wizard. It lives in redis for the
// configured TTL and tracks how far the user has progressed so steps
// cannot be skipped.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	BusinessID   string    `json:"business_id"`
	BusinessName string    `json:"business_name"`
	CategorySlug string    `json:"category_slug"`
	ServiceID    string    `json:"service_id,omitempty"`
	Date         string    `json:"date,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// SlotSnapshot is the availability computed once per (session, date).
// Within a session the same date always shows the same slots.
type SlotSnapshot struct {
	Date  string         `json:"date"`
	Slots map[string]bool `json:"slots"`
}

// timeSlots is the full grid offered for any date, morning through
// evening with a lunch gap.
var timeSlots = []string{
	"09:00 AM", "09:30 AM", "10:00 AM", "10:30 AM",
	"11:00 AM", "11:30 AM", "12:00 PM", "12:30 PM",
	"02:00 PM", "02:30 PM", "03:00 PM", "03:30 PM",
	"04:00 PM", "04:30 PM", "05:00 PM", "05:30 PM",
	"06:00 PM", "06:30 PM", "07:00 PM", "07:30 PM",
}

// TimeSlots returns the slot grid in display order.
func TimeSlots() []string {
	out := make([]string, len(timeSlots))
	copy(out, timeSlots)
	return out
}

var defaultCatalog = []ServiceOption{
	{ID: "consultation", Name: "Consultation", Duration: "30 min", Price: "₹500"},
	{ID: "standard", Name: "Standard Service", Duration: "45 min", Price: "₹800"},
	{ID: "premium", Name: "Premium Service", Duration: "60 min", Price: "₹1200"},
	{ID: "custom", Name: "Custom Service", Duration: "varies", Price: "On Quote"},
}

var catalogByCategory = map[string][]ServiceOption{
	"salon-spa": {
		{ID: "haircut", Name: "Haircut", Duration: "30 min", Price: "₹300"},
		{ID: "coloring", Name: "Hair Coloring", Duration: "90 min", Price: "₹1500"},
		{ID: "facial", Name: "Facial", Duration: "45 min", Price: "₹800"},
		{ID: "massage", Name: "Massage", Duration: "60 min", Price: "₹1200"},
	},
	"clinic": {
		{ID: "consultation", Name: "General Consultation", Duration: "15 min", Price: "₹500"},
		{ID: "checkup", Name: "Health Checkup", Duration: "45 min", Price: "₹2000"},
		{ID: "lab-tests", Name: "Lab Tests", Duration: "30 min", Price: "₹800"},
		{ID: "vaccination", Name: "Vaccination", Duration: "15 min", Price: "₹300"},
	},
	"yoga": {
		{ID: "class", Name: "Yoga Class", Duration: "60 min", Price: "₹400"},
		{ID: "private", Name: "Private Session", Duration: "45 min", Price: "₹1000"},
		{ID: "meditation", Name: "Meditation", Duration: "30 min", Price: "₹300"},
		{ID: "breathing", Name: "Breathing Workshop", Duration: "45 min", Price: "₹500"},
	},
	"italian": {
		{ID: "table-2", Name: "Table for 2", Duration: "90 min", Price: "Free"},
		{ID: "table-4", Name: "Table for 4", Duration: "90 min", Price: "Free"},
		{ID: "private-dining", Name: "Private Dining", Duration: "120 min", Price: "₹1000"},
		{ID: "chefs-table", Name: "Chef's Table", Duration: "150 min", Price: "₹2500"},
	},
	"repair": {
		{ID: "phone", Name: "Phone Repair", Duration: "30 min", Price: "₹500"},
		{ID: "laptop", Name: "Laptop Repair", Duration: "60 min", Price: "₹800"},
		{ID: "appliance", Name: "Home Appliance", Duration: "45 min", Price: "₹600"},
		{ID: "ac-service", Name: "AC Service", Duration: "60 min", Price: "₹1000"},
	},
}

// CatalogFor returns the service list for a category, falling back to
// the generic catalog for categories without a curated one.
func CatalogFor(categorySlug string) []ServiceOption {
	if services, ok := catalogByCategory[categorySlug]; ok {
		return services
	}
	return defaultCatalog
}

func serviceByID(categorySlug, serviceID string) (ServiceOption, bool) {
	for _, svc := range CatalogFor(categorySlug) {
		if svc.ID == serviceID {
			return svc, true
		}
	}
	return ServiceOption{}, false
}
