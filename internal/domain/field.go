package domain

// Field is a cultivated plot (a farm field or a garden bed). The ID is
// never set by the caller on creation; the store assigns it and it is
// merged back into every record read.
type Field struct {
	ID     FieldID   `json:"id" firestore:"-"`
	Kind   FieldKind `json:"type" firestore:"type"`
	Name   string    `json:"name" firestore:"name"`
	Length float64   `json:"length" firestore:"length"`
	Width  float64   `json:"width" firestore:"width"`
	Unit   AreaUnit  `json:"unit" firestore:"unit"`
	Crop   string    `json:"crop" firestore:"crop"`
	Status string    `json:"status" firestore:"status"`

	// Agronomy details, all optional.
	PlantedDate     string   `json:"plantedDate,omitempty" firestore:"plantedDate,omitempty"`
	ExpectedHarvest string   `json:"expectedHarvest,omitempty" firestore:"expectedHarvest,omitempty"`
	SoilType        string   `json:"soilType,omitempty" firestore:"soilType,omitempty"`
	PH              *float64 `json:"pH,omitempty" firestore:"pH,omitempty"`
	Stoniness       string   `json:"stoniness,omitempty" firestore:"stoniness,omitempty"`
	Drainage        string   `json:"drainage,omitempty" firestore:"drainage,omitempty"`
	Irrigation      string   `json:"irrigation,omitempty" firestore:"irrigation,omitempty"`
	Notes           string   `json:"notes,omitempty" firestore:"notes,omitempty"`

	// Geolocation, all optional.
	Lat        *float64 `json:"lat,omitempty" firestore:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty" firestore:"lng,omitempty"`
	Address    string   `json:"address,omitempty" firestore:"address,omitempty"`
	Street     string   `json:"street,omitempty" firestore:"street,omitempty"`
	City       string   `json:"city,omitempty" firestore:"city,omitempty"`
	State      string   `json:"state,omitempty" firestore:"state,omitempty"`
	PostalCode string   `json:"postalCode,omitempty" firestore:"postalCode,omitempty"`
	Country    string   `json:"country,omitempty" firestore:"country,omitempty"`
}

// FieldPatch is a partial update: only non-nil entries are merged into
// the stored record, untouched fields keep their values.
type FieldPatch struct {
	Kind   *FieldKind `json:"type,omitempty"`
	Name   *string    `json:"name,omitempty"`
	Length *float64   `json:"length,omitempty"`
	Width  *float64   `json:"width,omitempty"`
	Unit   *AreaUnit  `json:"unit,omitempty"`
	Crop   *string    `json:"crop,omitempty"`
	Status *string    `json:"status,omitempty"`

	PlantedDate     *string  `json:"plantedDate,omitempty"`
	ExpectedHarvest *string  `json:"expectedHarvest,omitempty"`
	SoilType        *string  `json:"soilType,omitempty"`
	PH              *float64 `json:"pH,omitempty"`
	Stoniness       *string  `json:"stoniness,omitempty"`
	Drainage        *string  `json:"drainage,omitempty"`
	Irrigation      *string  `json:"irrigation,omitempty"`
	Notes           *string  `json:"notes,omitempty"`

	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
	Address    *string  `json:"address,omitempty"`
	Street     *string  `json:"street,omitempty"`
	City       *string  `json:"city,omitempty"`
	State      *string  `json:"state,omitempty"`
	PostalCode *string  `json:"postalCode,omitempty"`
	Country    *string  `json:"country,omitempty"`
}

// Changes flattens the patch into field-name/value pairs for the store.
func (p FieldPatch) Changes() map[string]any {
	out := make(map[string]any)

	put(out, "type", p.Kind)
	put(out, "name", p.Name)
	put(out, "length", p.Length)
	put(out, "width", p.Width)
	put(out, "unit", p.Unit)
	put(out, "crop", p.Crop)
	put(out, "status", p.Status)

	put(out, "plantedDate", p.PlantedDate)
	put(out, "expectedHarvest", p.ExpectedHarvest)
	put(out, "soilType", p.SoilType)
	put(out, "pH", p.PH)
	put(out, "stoniness", p.Stoniness)
	put(out, "drainage", p.Drainage)
	put(out, "irrigation", p.Irrigation)
	put(out, "notes", p.Notes)

	put(out, "lat", p.Lat)
	put(out, "lng", p.Lng)
	put(out, "address", p.Address)
	put(out, "street", p.Street)
	put(out, "city", p.City)
	put(out, "state", p.State)
	put(out, "postalCode", p.PostalCode)
	put(out, "country", p.Country)

	return out
}

func put[T any](m map[string]any, name string, v *T) {
	if v != nil {
		m[name] = *v
	}
}
