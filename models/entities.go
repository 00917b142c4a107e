package models

// Client is a farmer or agribusiness company served by field staff.
type Client struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Document string `json:"document,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	City     string `json:"city,omitempty"`
}

// Property is a farm owned or operated by a client.
type Property struct {
	ID       int64   `json:"id"`
	ClientID int64   `json:"client_id"`
	Name     string  `json:"name"`
	City     string  `json:"city,omitempty"`
	AreaHa   float64 `json:"area_ha,omitempty"`
}

// Plot is a delimited area of a property.
type Plot struct {
	ID         int64   `json:"id"`
	PropertyID int64   `json:"property_id"`
	Name       string  `json:"name"`
	AreaHa     float64 `json:"area_ha,omitempty"`
}

// Planting is a culture/variety planted on a plot for a season.
type Planting struct {
	ID          int64  `json:"id"`
	PlotID      int64  `json:"plot_id"`
	CultureID   int64  `json:"culture_id"`
	VarietyID   int64  `json:"variety_id,omitempty"`
	PlantedAt   string `json:"planted_at,omitempty"`
	HarvestedAt string `json:"harvested_at,omitempty"`
}

// Visit is a field visit to a plot.
type Visit struct {
	ID         int64  `json:"id"`
	Date       string `json:"date"`
	ClientID   int64  `json:"client_id"`
	PropertyID int64  `json:"property_id"`
	PlotID     int64  `json:"plot_id"`
	PlantingID int64  `json:"planting_id,omitempty"`
	Notes      string `json:"notes,omitempty"`
	Status     string `json:"status,omitempty"`
}

// Opportunity is a sales opportunity tracked on the kanban board.
type Opportunity struct {
	ID       int64   `json:"id"`
	ClientID int64   `json:"client_id"`
	Title    string  `json:"title"`
	Stage    string  `json:"stage,omitempty"`
	Value    float64 `json:"value,omitempty"`
}

// Photo is an image attached to a visit. Data is only set for photos that
// were captured offline and still wait for upload.
type Photo struct {
	ID       int64  `json:"id"`
	VisitID  int64  `json:"visit_id"`
	Caption  string `json:"caption,omitempty"`
	URL      string `json:"url,omitempty"`
	FileName string `json:"file_name,omitempty"`
	Data     []byte `json:"data,omitempty"`
}

// Variety is a reference entry for crop varieties.
type Variety struct {
	ID        int64  `json:"id"`
	CultureID int64  `json:"culture_id,omitempty"`
	Name      string `json:"name"`
}

// Culture is a reference entry for crops.
type Culture struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
