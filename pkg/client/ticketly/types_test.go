package ticketly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstLeafSubCategory(t *testing.T) {
	categories := []Category{
		{ID: "c-1", Name: "Empty"},
		{ID: "c-2", Name: "Music", SubCategories: []Category{
			{ID: "c-2a", Name: "Jazz"},
			{ID: "c-2b", Name: "Rock"},
		}},
	}
	leaf, ok := FirstLeafSubCategory(categories)
	require.True(t, ok)
	assert.Equal(t, "c-2a", leaf.ID)

	_, ok = FirstLeafSubCategory([]Category{{ID: "c-1"}})
	assert.False(t, ok)
}

func TestSeatingMap_FirstAvailableSeat(t *testing.T) {
	m := &SeatingMap{Layout: Layout{Blocks: []Block{
		{Name: "stage", Type: "non_sellable"},
		{Name: "seating", Rows: []Row{
			{Label: "A", Seats: []Seat{
				{ID: "s-1", Status: SeatBooked},
				{ID: "s-2", Status: SeatLocked},
				{ID: "s-3", Status: SeatAvailable},
			}},
		}},
	}}}

	seat, ok := m.FirstAvailableSeat()
	require.True(t, ok)
	assert.Equal(t, "s-3", seat.ID)
	assert.Len(t, m.Seats(), 3)
}

func TestSeatingMap_NoAvailableSeat(t *testing.T) {
	m := &SeatingMap{Layout: Layout{Blocks: []Block{
		{Rows: []Row{{Seats: []Seat{{ID: "s-1", Status: SeatBooked}}}}},
	}}}
	_, ok := m.FirstAvailableSeat()
	assert.False(t, ok)
}

func TestEventPayload_Apply(t *testing.T) {
	payload := &EventPayload{
		Title:          "Original",
		OrganizationID: "org-old",
		CategoryID:     "cat-old",
		CategoryName:   "Old",
	}
	payload.Apply(Overrides{OrganizationID: "org-new", CategoryID: "cat-new", CategoryName: "New"})
	assert.Equal(t, "org-new", payload.OrganizationID)
	assert.Equal(t, "cat-new", payload.CategoryID)
	assert.Equal(t, "New", payload.CategoryName)
	// unset overrides leave fields alone
	assert.Equal(t, "Original", payload.Title)
}
