package models

import "time"

// Scope entities. These exist so entries can be filed against the
// right unit and so cell-scoped public forms can be access-gated;
// their own administration lives elsewhere.

type Sector struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name string `gorm:"not null"`
}

type Group struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name string `gorm:"not null"`
}

type Cell struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name string `gorm:"not null"`

	// AccessCode is the shared secret a public filler types to unlock
	// a cell-scoped report.
	AccessCode string `gorm:"uniqueIndex;not null"`

	LeaderID *uint
	Leader   *Member `gorm:"foreignKey:LeaderID"`

	SectorID uint
	Sector   Sector
}

type Member struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name  string `gorm:"not null"`
	Phone string

	CellID uint `gorm:"index"`
}

// Friend rows are created when a submitted entry carries a
// FRIEND_REGISTRATION field value.
type Friend struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name  string `gorm:"not null"`
	Phone string

	CellID         uint `gorm:"index"`
	RegisteredByID *uint
	RegisteredBy   *Member `gorm:"foreignKey:RegisteredByID"`
}
