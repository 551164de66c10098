package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ticketly/system-tests/pkg/client/ticketly"
)

const (
	gridRows        = 4
	seatsPerRow     = 4
	standardPrice   = 1000
	vipPrice        = 2000
	eventDuration   = 2 * time.Hour
	salesStartDelay = 60 * time.Minute
)

// Builder constructs realistic create-event payloads. Randomness is seeded so
// tests can pin the output.
type Builder struct {
	rand *rand.Rand
	now  func() time.Time
}

func NewBuilder(seed int64) *Builder {
	return &Builder{rand: rand.New(rand.NewSource(seed)), now: time.Now}
}

// Event builds the payload for the i-th seeded event. Titles, venues and
// dates rotate deterministically with i; discounts are randomized.
func (b *Builder) Event(i int, organizationID string, category ticketly.Category) *ticketly.EventPayload {
	title := eventTitles[i%len(eventTitles)]
	venue := venues[i%len(venues)]

	// Events run one day apart starting a week out, 13:30 to 15:30 local.
	day := b.now().AddDate(0, 0, 7+i)
	startTime := time.Date(day.Year(), day.Month(), day.Day(), 13, 30, 0, 0, day.Location())
	endTime := startTime.Add(eventDuration)
	salesStartTime := b.now().Add(salesStartDelay)

	standardTier := ticketly.Tier{
		ID:    uuid.NewString(),
		Name:  "Standard",
		Price: standardPrice + i*100,
		Color: "#3B82F6",
	}
	vipTier := ticketly.Tier{
		ID:    uuid.NewString(),
		Name:  "VIP",
		Price: vipPrice + i*150,
		Color: "#EF4444",
	}

	sessionID := uuid.NewString()
	session := ticketly.SessionPayload{
		ID:             sessionID,
		StartTime:      startTime.Format(time.RFC3339),
		EndTime:        endTime.Format(time.RFC3339),
		SalesStartTime: salesStartTime.Format(time.RFC3339),
		SessionType:    "PHYSICAL",
		VenueDetails: ticketly.VenueDetails{
			Name:      venue.Name + " Event Center",
			Address:   venue.Name,
			Latitude:  venue.Latitude,
			Longitude: venue.Longitude,
		},
		LayoutData: ticketly.LayoutData{
			Name: venue.Name + " Layout",
			Layout: ticketly.Layout{
				Blocks: []ticketly.Block{
					seatingBlock(standardTier.ID, vipTier.ID),
					stageBlock(),
				},
			},
		},
	}

	return &ticketly.EventPayload{
		Title:          title,
		Description:    eventDescription(title),
		Overview:       eventOverview(title),
		OrganizationID: organizationID,
		CategoryID:     category.ID,
		CategoryName:   category.Name,
		Tiers:          []ticketly.Tier{standardTier, vipTier},
		Sessions:       []ticketly.SessionPayload{session},
		Discounts:      b.discounts(standardTier.ID, vipTier.ID, sessionID),
	}
}

// seatingBlock lays out a 4x4 grid: rows A and B sell at the standard tier,
// rows C and D at VIP.
func seatingBlock(standardTierID, vipTierID string) ticketly.Block {
	rowLabels := []string{"A", "B", "C", "D"}
	rows := make([]ticketly.Row, 0, gridRows)
	for r, label := range rowLabels {
		tierID := standardTierID
		if r >= gridRows/2 {
			tierID = vipTierID
		}
		seats := make([]ticketly.Seat, 0, seatsPerRow)
		for s := 1; s <= seatsPerRow; s++ {
			seats = append(seats, ticketly.Seat{
				ID:     uuid.NewString(),
				Label:  fmt.Sprintf("%d%s", s, label),
				TierID: tierID,
				Status: ticketly.SeatAvailable,
			})
		}
		rows = append(rows, ticketly.Row{ID: uuid.NewString(), Label: label, Seats: seats})
	}
	return ticketly.Block{
		ID:       uuid.NewString(),
		Name:     "seating",
		Type:     "seated_grid",
		Position: &ticketly.Position{X: 86.6666259765625, Y: 133.33335876464844},
		Rows:     rows,
		Seats:    []ticketly.Seat{},
	}
}

func stageBlock() ticketly.Block {
	width, height := 325, 80
	return ticketly.Block{
		ID:       uuid.NewString(),
		Name:     "stage",
		Type:     "non_sellable",
		Position: &ticketly.Position{X: 25, Y: 25},
		Rows:     []ticketly.Row{},
		Width:    &width,
		Height:   &height,
		Seats:    []ticketly.Seat{},
	}
}

// discounts attaches a percentage discount to roughly 70% of events. The code
// ranges SAVE5 through SAVE20 and applies either to the standard tier alone
// or to both tiers.
func (b *Builder) discounts(standardTierID, vipTierID, sessionID string) []ticketly.Discount {
	if b.rand.Float64() >= 0.7 {
		return []ticketly.Discount{}
	}
	percentage := b.rand.Intn(16) + 5
	tierIDs := []string{standardTierID}
	if b.rand.Float64() < 0.5 {
		tierIDs = []string{standardTierID, vipTierID}
	}
	return []ticketly.Discount{{
		ID:                   uuid.NewString(),
		Code:                 fmt.Sprintf("SAVE%d", percentage),
		Active:               true,
		Public:               true,
		ApplicableTierIDs:    tierIDs,
		ApplicableSessionIDs: []string{sessionID},
		Parameters: ticketly.DiscountParameters{
			Type:       "PERCENTAGE",
			Percentage: percentage,
			MinSpend:   b.rand.Intn(500) + 500,
		},
	}}
}
