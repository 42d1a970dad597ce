package model

import "time"

const (
	TableNameZoneCell     = "zone_cells"
	TableNameZoneTemplate = "zone_templates"
)

type ZoneCell struct {
	ChunkX    int32     `gorm:"column:chunk_x;primaryKey" json:"chunk_x"`
	ChunkY    int32     `gorm:"column:chunk_y;primaryKey" json:"chunk_y"`
	Class     string    `gorm:"column:class;not null" json:"class"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (*ZoneCell) TableName() string {
	return TableNameZoneCell
}

type ZoneTemplate struct {
	Role      string    `gorm:"column:role;primaryKey" json:"role"`
	Position  int32     `gorm:"column:position;primaryKey" json:"position"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (*ZoneTemplate) TableName() string {
	return TableNameZoneTemplate
}
