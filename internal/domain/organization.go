package domain

import "time"

type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}

type Facility struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organizationID"`
	Name           string    `json:"name"`
	Sectors        []Sector  `json:"sectors"`
	CreatedAt      time.Time `json:"createdAt"`
	Version        int32     `json:"-"`
}

type Sector struct {
	ID         int64  `json:"id"`
	FacilityID int64  `json:"facilityID"`
	Name       string `json:"name"`
}
