package repository

import "gorm.io/gorm"

// Page is an offset window over a listing ordered by id.
type Page struct {
	Skip  int
	Limit int
}

func (p Page) scope(db *gorm.DB) *gorm.DB {
	db = db.Order("id")
	if p.Skip > 0 {
		db = db.Offset(p.Skip)
	}
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	return db
}
