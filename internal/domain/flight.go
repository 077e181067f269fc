package domain

// Flight is one row of the read-only flight catalog.
type Flight struct {
	FID        int64  `json:"fid"`
	DayOfMonth int    `json:"day_of_month"`
	CarrierID  string `json:"carrier_id"`
	FlightNum  string `json:"flight_num"`
	OriginCity string `json:"origin_city"`
	DestCity   string `json:"dest_city"`
	Duration   int    `json:"duration"`
	Capacity   int    `json:"capacity"`
	Price      int    `json:"price"`
	Canceled   bool   `json:"canceled"`
}
