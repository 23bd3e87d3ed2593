package database

import (
	"context"
	"fmt"
	"log/slog"

	"media-migrator/internal/migrate"

	"gorm.io/gorm"
)

// Source reads the product-media link rows that make up a batch. The schema
// prefix is configurable so tests can run the same query against an
// unqualified sqlite schema.
type Source struct {
	db     *gorm.DB
	schema string
	logger *slog.Logger
}

func NewSource(db *gorm.DB, schema string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{db: db, schema: schema, logger: logger}
}

type mediaRow struct {
	ProductID       int64  `gorm:"column:ProductId"`
	SKU             string `gorm:"column:sku"`
	SystemCode      string `gorm:"column:SystemCode"`
	LinkID          int64  `gorm:"column:LinkId"`
	Order           int    `gorm:"column:Order"`
	MediaID         int64  `gorm:"column:MediaId"`
	URL             string `gorm:"column:URL"`
	ImageType       string `gorm:"column:ImageType"`
	MediaResourceID string `gorm:"column:MediaResourceId"`
	CompanyID       int64  `gorm:"column:CompanyId"`
	ContentType     string `gorm:"column:ContentType"`
}

// PendingMediaRecords returns the oldest active product-media links for the
// given media resource, capped at limit. Only top-level media (no parent)
// with all three statuses active qualify.
func (s *Source) PendingMediaRecords(ctx context.Context, mediaResourceID string, limit int) ([]migrate.Record, error) {
	s.logger.Info("fetching records from source database", "media_resource_id", mediaResourceID, "limit", limit)

	var rows []mediaRow
	err := s.db.WithContext(ctx).
		Table(s.schema+"tblProduct p").
		Select(`p.ProductId, p.sku, p.SystemCode, pm.LinkId, pm."Order", m.MediaId, m.URL, m.ImageType, m.MediaResourceId, m.CompanyId, m.ContentType`).
		Joins(fmt.Sprintf("INNER JOIN %slinkProductMedia pm ON p.ProductId = pm.ProductId", s.schema)).
		Joins(fmt.Sprintf("INNER JOIN %stblMedia m ON pm.MediaId = m.MediaId", s.schema)).
		Where("m.MediaResourceId = ? AND p.Status = 1 AND pm.Status = 1 AND m.Status = 1 AND m.ParentId IS NULL", mediaResourceID).
		Order("p.createddate ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query media records: %w", err)
	}

	records := make([]migrate.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, migrate.Record{
			ProductID:       row.ProductID,
			SKU:             row.SKU,
			SystemCode:      row.SystemCode,
			LinkID:          row.LinkID,
			Order:           row.Order,
			MediaID:         row.MediaID,
			URL:             row.URL,
			ImageType:       row.ImageType,
			MediaResourceID: row.MediaResourceID,
			CompanyID:       row.CompanyID,
			ContentType:     row.ContentType,
		})
	}

	s.logger.Info("records fetched", "count", len(records))
	return records, nil
}
