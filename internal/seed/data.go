package seed

import "fmt"

// eventTitles is cycled through when seeding more events than there are
// titles.
var eventTitles = []string{
	"Annual Tech Summit Sri Lanka",
	"Colombo Jazz Festival",
	"Sri Lankan Heritage Exhibition",
	"Kandy Esala Perahera Cultural Show",
	"Digital Marketing Conference",
	"Beach Volleyball Championship",
	"Sri Lankan Food Festival",
	"Startup Weekend Colombo",
	"International Film Festival",
	"Ayurveda & Wellness Retreat",
	"Tropical Wildlife Photography Exhibition",
	"Ceylon Tea Celebration",
	"Galle Literary Festival",
	"Sri Lankan Fashion Week",
	"EDM Night: Tropical Beats",
	"Cricket Tournament Finals",
	"Handloom & Craft Market",
	"Sacred Temple Music Concert",
	"Environmental Conservation Summit",
	"Traditional Dance Performance",
	"Buddhist Art Exhibition",
	"Entrepreneurship Masterclass",
	"South Asian Poetry Slam",
	"Colombo Night Market",
	"Gems & Jewelry Exhibition",
	"Vesak Lantern Festival",
	"Eco-Tourism Conference",
	"Jaffna Cultural Celebration",
	"International Yoga Day Event",
	"Marine Conservation Awareness Day",
}

type location struct {
	Name      string
	Latitude  float64
	Longitude float64
}

var venues = []location{
	{Name: "Colombo", Latitude: 6.9271, Longitude: 79.8612},
	{Name: "Kandy", Latitude: 7.2906, Longitude: 80.6337},
	{Name: "Galle", Latitude: 6.0535, Longitude: 80.2210},
	{Name: "Jaffna", Latitude: 9.6615, Longitude: 80.0255},
	{Name: "Negombo", Latitude: 7.2081, Longitude: 79.8371},
	{Name: "Trincomalee", Latitude: 8.5874, Longitude: 81.2152},
	{Name: "Anuradhapura", Latitude: 8.3114, Longitude: 80.4037},
	{Name: "Nuwara Eliya", Latitude: 6.9497, Longitude: 80.7891},
	{Name: "Batticaloa", Latitude: 7.7310, Longitude: 81.6747},
	{Name: "Matara", Latitude: 5.9549, Longitude: 80.5550},
	{Name: "Ella", Latitude: 6.8667, Longitude: 81.0466},
	{Name: "Sigiriya", Latitude: 7.9570, Longitude: 80.7603},
	{Name: "Hikkaduwa", Latitude: 6.1395, Longitude: 80.1063},
	{Name: "Mirissa", Latitude: 5.9483, Longitude: 80.4716},
	{Name: "Polonnaruwa", Latitude: 7.9403, Longitude: 81.0188},
	{Name: "Dambulla", Latitude: 7.8742, Longitude: 80.6511},
}

func eventDescription(title string) string {
	return fmt.Sprintf("Join us for %s - a unique experience bringing together people from "+
		"all walks of life. This event features special guests, interactive activities, and "+
		"unforgettable memories. Don't miss this opportunity to be part of something "+
		"extraordinary in beautiful Sri Lanka.", title)
}

func eventOverview(title string) string {
	return fmt.Sprintf("%s is designed to provide participants with an enriching experience "+
		"that celebrates the unique cultural and natural heritage of Sri Lanka. From engaging "+
		"activities to networking opportunities, this event offers something for everyone.", title)
}
