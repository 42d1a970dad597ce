package gormrepo

import (
	"context"
	"fmt"
	"math"
	"time"

	"gallerywalk/internal/adapter/repo/gorm/model"
	"gallerywalk/internal/app/ports"
	"gallerywalk/internal/domain/world"

	"gorm.io/gorm"
)

const (
	templateRoleStandard = "standard"
	templateRoleSpecial  = "special"
)

type ZoneLayoutRepo struct {
	db *gorm.DB
}

func NewZoneLayoutRepo(db *gorm.DB) ZoneLayoutRepo {
	return ZoneLayoutRepo{db: db}
}

func (r ZoneLayoutRepo) Load(ctx context.Context) (world.Layout, error) {
	db := conn(ctx, r.db)

	var templates []model.ZoneTemplate
	if err := db.Order("role, position").Find(&templates).Error; err != nil {
		return world.Layout{}, fmt.Errorf("load zone templates: %w", err)
	}
	if len(templates) == 0 {
		return world.Layout{}, ports.ErrNotFound
	}
	var cells []model.ZoneCell
	if err := db.Order("chunk_y, chunk_x").Find(&cells).Error; err != nil {
		return world.Layout{}, fmt.Errorf("load zone cells: %w", err)
	}

	out := world.Layout{}
	for _, t := range templates {
		switch t.Role {
		case templateRoleStandard:
			out.Pool = append(out.Pool, t.Name)
		case templateRoleSpecial:
			out.SpecialTemplate = t.Name
		default:
			return world.Layout{}, fmt.Errorf("%w: unknown template role %q", world.ErrInvalidConfig, t.Role)
		}
	}
	for _, c := range cells {
		coord := world.ChunkCoord{X: int(c.ChunkX), Y: int(c.ChunkY)}
		switch world.Class(c.Class) {
		case world.ClassOffLimits:
			out.OffLimits = append(out.OffLimits, coord)
		case world.ClassSpecial:
			out.Special = append(out.Special, coord)
		default:
			return world.Layout{}, fmt.Errorf("%w: unknown zone class %q at %s", world.ErrInvalidConfig, c.Class, coord)
		}
	}
	return out, nil
}

// Replace swaps the stored layout for l. Run it inside TxManager.RunInTx
// so readers never see a half-written layout.
func (r ZoneLayoutRepo) Replace(ctx context.Context, l world.Layout) error {
	if err := checkStorable(l); err != nil {
		return err
	}
	db := conn(ctx, r.db)
	now := time.Now()

	if err := db.Where("1 = 1").Delete(&model.ZoneCell{}).Error; err != nil {
		return fmt.Errorf("clear zone cells: %w", err)
	}
	if err := db.Where("1 = 1").Delete(&model.ZoneTemplate{}).Error; err != nil {
		return fmt.Errorf("clear zone templates: %w", err)
	}

	cells := make([]model.ZoneCell, 0, len(l.OffLimits)+len(l.Special))
	for _, c := range l.OffLimits {
		cells = append(cells, model.ZoneCell{ChunkX: int32(c.X), ChunkY: int32(c.Y), Class: string(world.ClassOffLimits), UpdatedAt: now})
	}
	for _, c := range l.Special {
		cells = append(cells, model.ZoneCell{ChunkX: int32(c.X), ChunkY: int32(c.Y), Class: string(world.ClassSpecial), UpdatedAt: now})
	}
	if len(cells) > 0 {
		if err := db.Create(&cells).Error; err != nil {
			return fmt.Errorf("save zone cells: %w", err)
		}
	}

	templates := make([]model.ZoneTemplate, 0, len(l.Pool)+1)
	for i, name := range l.Pool {
		templates = append(templates, model.ZoneTemplate{Role: templateRoleStandard, Position: int32(i), Name: name, UpdatedAt: now})
	}
	if l.SpecialTemplate != "" {
		templates = append(templates, model.ZoneTemplate{Role: templateRoleSpecial, Position: 0, Name: l.SpecialTemplate, UpdatedAt: now})
	}
	if len(templates) > 0 {
		if err := db.Create(&templates).Error; err != nil {
			return fmt.Errorf("save zone templates: %w", err)
		}
	}
	return nil
}

// checkStorable rejects layouts the int4 columns cannot hold.
func checkStorable(l world.Layout) error {
	for _, set := range [][]world.ChunkCoord{l.OffLimits, l.Special} {
		for _, c := range set {
			if !fitsInt32(c.X) || !fitsInt32(c.Y) {
				return fmt.Errorf("%w: zone cell %s outside int32 range", world.ErrInvalidConfig, c)
			}
		}
	}
	if !fitsInt32(len(l.Pool)) {
		return fmt.Errorf("%w: pool has %d templates", world.ErrInvalidConfig, len(l.Pool))
	}
	return nil
}

func fitsInt32(v int) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}
