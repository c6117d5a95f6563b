package specification

import "gorm.io/gorm"

// ByID matches a single primary key.
type ByID struct {
	ID int64
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// Page selects Limit rows starting at Offset. Callers bound Offset before building it.
type Page struct {
	Offset int
	Limit  int
}

func (s Page) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}
