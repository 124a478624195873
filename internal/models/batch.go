package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Batch is a named, ordered list of file codes behind one share link.
// Members may be deleted later; a dangling code is tolerated at read time.
type Batch struct {
	ID        string         `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"not null"`
	OwnerID   int64          `json:"ownerId" gorm:"index;not null"`
	Codes     datatypes.JSON `json:"codes" gorm:"not null"`
	CreatedAt time.Time      `json:"createdAt" gorm:"autoCreateTime"`
}

// CodeList decodes the stored member codes in upload order.
func (b *Batch) CodeList() ([]string, error) {
	var codes []string
	if err := json.Unmarshal(b.Codes, &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// SetCodes encodes codes preserving their order.
func (b *Batch) SetCodes(codes []string) error {
	raw, err := json.Marshal(codes)
	if err != nil {
		return err
	}
	b.Codes = raw
	return nil
}
