package ticketly

import "encoding/json"

// Entity shapes are observed, not owned: only the fields the harness asserts
// on are decoded, everything else is left to the wire.

type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	SubCategories []Category `json:"subCategories"`
}

// FirstLeafSubCategory returns the first sub-category of the first category
// that has any. Creating an event requires a leaf category.
func FirstLeafSubCategory(categories []Category) (Category, bool) {
	for _, category := range categories {
		if len(category.SubCategories) > 0 {
			return category.SubCategories[0], true
		}
	}
	return Category{}, false
}

type Event struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

type Session struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// SessionPage is the paginated envelope the query side wraps listings in.
type SessionPage struct {
	Content       []Session `json:"content"`
	TotalElements int       `json:"totalElements"`
}

type EventPage struct {
	Content       []Event `json:"content"`
	TotalElements int     `json:"totalElements"`
}

const (
	SeatAvailable = "AVAILABLE"
	SeatLocked    = "LOCKED"
	SeatBooked    = "BOOKED"

	SessionOnSale = "ON_SALE"
	SessionClosed = "CLOSED"

	EventPending  = "PENDING"
	EventApproved = "APPROVED"
)

type Seat struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	TierID string `json:"tierId,omitempty"`
	Status string `json:"status"`
}

type Row struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Seats []Seat `json:"seats"`
}

type Block struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Position *Position `json:"position,omitempty"`
	Rows     []Row     `json:"rows"`
	Capacity *int      `json:"capacity"`
	Width    *int      `json:"width"`
	Height   *int      `json:"height"`
	Seats    []Seat    `json:"seats"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Layout struct {
	Blocks []Block `json:"blocks"`
}

type SeatingMap struct {
	Layout Layout `json:"layout"`
}

// Seats flattens the block/row structure into a single list.
func (m *SeatingMap) Seats() []Seat {
	var seats []Seat
	for _, block := range m.Layout.Blocks {
		for _, row := range block.Rows {
			seats = append(seats, row.Seats...)
		}
		seats = append(seats, block.Seats...)
	}
	return seats
}

func (m *SeatingMap) FirstAvailableSeat() (Seat, bool) {
	for _, seat := range m.Seats() {
		if seat.Status == SeatAvailable {
			return seat, true
		}
	}
	return Seat{}, false
}

type Tier struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
	Color string `json:"color"`
}

type VenueDetails struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type LayoutData struct {
	Name   string `json:"name"`
	Layout Layout `json:"layout"`
}

type SessionPayload struct {
	ID             string       `json:"id"`
	StartTime      string       `json:"startTime"`
	EndTime        string       `json:"endTime"`
	SalesStartTime string       `json:"salesStartTime"`
	SessionType    string       `json:"sessionType"`
	VenueDetails   VenueDetails `json:"venueDetails"`
	LayoutData     LayoutData   `json:"layoutData"`
}

type DiscountParameters struct {
	Type        string `json:"type"`
	Percentage  int    `json:"percentage"`
	MinSpend    int    `json:"minSpend"`
	MaxDiscount *int   `json:"maxDiscount"`
}

type Discount struct {
	ID                   string             `json:"id"`
	Code                 string             `json:"code"`
	MaxUsage             *int               `json:"maxUsage"`
	CurrentUsage         int                `json:"currentUsage"`
	DiscountedTotal      int                `json:"discountedTotal"`
	Active               bool               `json:"active"`
	Public               bool               `json:"public"`
	ActiveFrom           *string            `json:"activeFrom"`
	ExpiresAt            *string            `json:"expiresAt"`
	ApplicableTierIDs    []string           `json:"applicableTierIds"`
	ApplicableSessionIDs []string           `json:"applicableSessionIds"`
	Parameters           DiscountParameters `json:"parameters"`
}

// EventPayload is the command-side create-event request body, sent as the
// "request" part of a multipart upload.
type EventPayload struct {
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Overview       string           `json:"overview"`
	OrganizationID string           `json:"organizationId"`
	CategoryID     string           `json:"categoryId"`
	CategoryName   string           `json:"categoryName,omitempty"`
	Tiers          []Tier           `json:"tiers"`
	Sessions       []SessionPayload `json:"sessions"`
	Discounts      []Discount       `json:"discounts"`
}

// Overrides enumerates the payload fields a caller may rebind before
// submission. Named keys keep protocol inputs statically checkable, unlike a
// free-form deep merge.
type Overrides struct {
	OrganizationID string
	CategoryID     string
	CategoryName   string
	Title          string
}

func (p *EventPayload) Apply(overrides Overrides) {
	if overrides.OrganizationID != "" {
		p.OrganizationID = overrides.OrganizationID
	}
	if overrides.CategoryID != "" {
		p.CategoryID = overrides.CategoryID
	}
	if overrides.CategoryName != "" {
		p.CategoryName = overrides.CategoryName
	}
	if overrides.Title != "" {
		p.Title = overrides.Title
	}
}

type OrderRequest struct {
	EventID        string   `json:"event_id"`
	SessionID      string   `json:"session_id"`
	SeatIDs        []string `json:"seat_ids"`
	OrganizationID string   `json:"organization_id,omitempty"`
	DiscountID     string   `json:"discount_id,omitempty"`
}

type OrderResponse struct {
	OrderID string `json:"order_id"`
}

// SeatValidationRequest drives the query side's internal seat and pre-order
// validation endpoints.
type SeatValidationRequest struct {
	EventID   string   `json:"event_id"`
	SessionID string   `json:"session_id"`
	SeatIDs   []string `json:"seat_ids"`
}

// Analytics payloads are opaque to the harness; they are only checked for
// retrievability.
type Analytics = json.RawMessage
