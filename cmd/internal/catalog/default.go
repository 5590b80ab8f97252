package catalog

var defaultItems = []ProblemStatement{
	{ID: "ps-01", Title: "Campus Mobility", Summary: "Reduce the time students spend getting between classes, hostels and transit stops."},
	{ID: "ps-02", Title: "Food Waste Tracker", Summary: "Measure and cut wasted food in mess halls and canteens."},
	{ID: "ps-03", Title: "Accessible Learning", Summary: "Make course material usable for students with visual or hearing impairments."},
	{ID: "ps-04", Title: "Local Skills Exchange", Summary: "Match people who want to learn a skill with neighbours who can teach it."},
	{ID: "ps-05", Title: "Clean Water Monitor", Summary: "Collect and publish water quality readings from community sources."},
	{ID: "ps-06", Title: "Small Vendor Payments", Summary: "Help street vendors accept and reconcile digital payments."},
	{ID: "ps-07", Title: "Mental Health Check-in", Summary: "A low-friction way for students to ask for and find support."},
	{ID: "ps-08", Title: "Open Innovation", Summary: "Bring your own problem; judged on impact and execution."},
}

// Default returns the built-in problem statement catalog.
func Default() *Catalog {
	c, err := New(defaultItems)
	if err != nil {
		panic(err)
	}
	return c
}
