package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID gives a row its UUID before insert. IDs are generated in Go
// rather than by the database so the schema also runs on SQLite.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error        { assignID(&u.ID); return nil }
func (p *Photo) BeforeCreate(*gorm.DB) error       { assignID(&p.ID); return nil }
func (a *Analysis) BeforeCreate(*gorm.DB) error    { assignID(&a.ID); return nil }
func (o *Opinion) BeforeCreate(*gorm.DB) error     { assignID(&o.ID); return nil }
func (c *CameraModel) BeforeCreate(*gorm.DB) error { assignID(&c.ID); return nil }
func (l *ActivityLog) BeforeCreate(*gorm.DB) error { assignID(&l.ID); return nil }
