package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Thapthai/app-microservice-sub000/internal/lifecycle/domain"

	episodedomain "github.com/Thapthai/app-microservice-sub000/internal/episode/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) GetLineItemForUpdate(ctx context.Context, tx *gorm.DB, itemID snowflake.ID) (*episodedomain.LineItem, error) {
	stmt := tx.WithContext(ctx)
	// sqlite has no row locks; its writes are serialized by the driver.
	if !strings.EqualFold(tx.Dialector.Name(), "sqlite") {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var item episodedomain.LineItem
	err := stmt.Where("id = ?", itemID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) UpdateQuantities(ctx context.Context, tx *gorm.DB, itemID snowflake.ID, used, returned int64, status episodedomain.ItemStatus) error {
	result := tx.WithContext(ctx).
		Model(&episodedomain.LineItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"qty_used":     used,
			"qty_returned": returned,
			"item_status":  status,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) InsertReturnRecord(ctx context.Context, tx *gorm.DB, record *episodedomain.ReturnRecord) error {
	return tx.WithContext(ctx).Create(record).Error
}

func (r *repo) GetLineItem(ctx context.Context, itemID snowflake.ID) (*episodedomain.LineItem, error) {
	var item episodedomain.LineItem
	err := r.db.WithContext(ctx).
		Preload("Returns").
		Where("id = ?", itemID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) ListPending(ctx context.Context, filter domain.PendingFilter) ([]domain.PendingItem, int64, error) {
	build := func() *gorm.DB {
		stmt := r.db.WithContext(ctx).
			Model(&episodedomain.LineItem{}).
			Joins("JOIN usage_episodes ON usage_episodes.id = line_items.episode_id")

		if len(filter.Statuses) > 0 {
			stmt = stmt.Where("line_items.item_status IN ?", filter.Statuses)
		}
		if dept := strings.TrimSpace(filter.DepartmentCode); dept != "" {
			stmt = stmt.Where("usage_episodes.department_code = ?", dept)
		}
		if hn := strings.TrimSpace(filter.PatientHN); hn != "" {
			stmt = stmt.Where("usage_episodes.patient_hn = ?", hn)
		}
		return stmt
	}

	var total int64
	if err := build().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []domain.PendingItem
	err := build().
		Select(`line_items.*,
			usage_episodes.episode_no,
			usage_episodes.patient_hn,
			usage_episodes.patient_name,
			usage_episodes.department_code,
			usage_episodes.used_at`).
		Order("line_items.created_at desc, line_items.id desc").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	for i := range rows {
		rows[i].QtyPending = rows[i].LineItem.QtyPending()
	}
	return rows, total, nil
}

func (r *repo) ListReturns(ctx context.Context, filter domain.ReturnFilter) ([]domain.ReturnHistoryRow, int64, error) {
	build := func() *gorm.DB {
		stmt := r.db.WithContext(ctx).
			Model(&episodedomain.ReturnRecord{}).
			Joins("JOIN line_items ON line_items.id = return_records.line_item_id").
			Joins("JOIN usage_episodes ON usage_episodes.id = line_items.episode_id")

		if dept := strings.TrimSpace(filter.DepartmentCode); dept != "" {
			stmt = stmt.Where("usage_episodes.department_code = ?", dept)
		}
		if hn := strings.TrimSpace(filter.PatientHN); hn != "" {
			stmt = stmt.Where("usage_episodes.patient_hn = ?", hn)
		}
		if filter.Reason != "" {
			stmt = stmt.Where("return_records.reason = ?", filter.Reason)
		}
		if filter.DateFrom != nil {
			stmt = stmt.Where("return_records.returned_at >= ?", filter.DateFrom.UTC())
		}
		if filter.DateTo != nil {
			stmt = stmt.Where("return_records.returned_at <= ?", filter.DateTo.UTC())
		}
		return stmt
	}

	var total int64
	if err := build().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []domain.ReturnHistoryRow
	err := build().
		Select(`return_records.*,
			line_items.item_code,
			line_items.item_desc,
			line_items.unit,
			usage_episodes.episode_no,
			usage_episodes.patient_hn,
			usage_episodes.patient_name,
			usage_episodes.department_code`).
		Order("return_records.returned_at desc, return_records.id desc").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repo) SumReturnRecords(ctx context.Context, itemID snowflake.ID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&episodedomain.ReturnRecord{}).
		Where("line_item_id = ?", itemID).
		Select("COALESCE(SUM(qty), 0)").
		Scan(&sum).Error
	return sum, err
}

type totalsRow struct {
	TotalQty      int64 `gorm:"column:total_qty"`
	TotalUsed     int64 `gorm:"column:total_used"`
	TotalReturned int64 `gorm:"column:total_returned"`
}

func (r *repo) QuantityTotals(ctx context.Context, departmentCode string) (int64, int64, int64, error) {
	stmt := r.lineItemsByDepartment(ctx, departmentCode).
		Select(`COALESCE(SUM(line_items.qty), 0) AS total_qty,
			COALESCE(SUM(line_items.qty_used), 0) AS total_used,
			COALESCE(SUM(line_items.qty_returned), 0) AS total_returned`)

	var row totalsRow
	if err := stmt.Scan(&row).Error; err != nil {
		return 0, 0, 0, err
	}
	return row.TotalQty, row.TotalUsed, row.TotalReturned, nil
}

type statusCountRow struct {
	Status episodedomain.ItemStatus `gorm:"column:status"`
	Count  int64                    `gorm:"column:count"`
}

func (r *repo) CountByStatus(ctx context.Context, departmentCode string) (map[episodedomain.ItemStatus]int64, error) {
	var rows []statusCountRow
	err := r.lineItemsByDepartment(ctx, departmentCode).
		Select("line_items.item_status AS status, COUNT(*) AS count").
		Group("line_items.item_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[episodedomain.ItemStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *repo) ReasonStats(ctx context.Context, departmentCode string) ([]domain.ReasonStat, error) {
	stmt := r.db.WithContext(ctx).
		Model(&episodedomain.ReturnRecord{}).
		Joins("JOIN line_items ON line_items.id = return_records.line_item_id")
	if dept := strings.TrimSpace(departmentCode); dept != "" {
		stmt = stmt.
			Joins("JOIN usage_episodes ON usage_episodes.id = line_items.episode_id").
			Where("usage_episodes.department_code = ?", dept)
	}

	var rows []domain.ReasonStat
	err := stmt.
		Select("return_records.reason AS reason, COUNT(*) AS count, COALESCE(SUM(return_records.qty), 0) AS qty").
		Group("return_records.reason").
		Order("qty desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) AggregateUsageByItemCode(ctx context.Context, q domain.UsageAggregateQuery) ([]domain.UsageAggregate, error) {
	stmt := r.db.WithContext(ctx).
		Model(&episodedomain.LineItem{}).
		Joins("JOIN usage_episodes ON usage_episodes.id = line_items.episode_id").
		Select(`line_items.item_code,
			SUM(line_items.qty) AS total_used,
			COUNT(*) AS record_count,
			MIN(usage_episodes.used_at) AS first_used,
			MAX(usage_episodes.used_at) AS last_used`).
		Group("line_items.item_code")

	if code := strings.TrimSpace(q.ItemCode); code != "" {
		stmt = stmt.Where("line_items.item_code = ?", code)
	}
	if dept := strings.TrimSpace(q.DepartmentCode); dept != "" {
		stmt = stmt.Where("usage_episodes.department_code = ?", dept)
	}
	if q.From != nil {
		stmt = stmt.Where("usage_episodes.used_at >= ?", q.From.UTC())
	}
	if q.To != nil {
		stmt = stmt.Where("usage_episodes.used_at <= ?", q.To.UTC())
	}

	var rows []domain.UsageAggregate
	if err := stmt.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) CreateEpisode(ctx context.Context, tx *gorm.DB, episode *episodedomain.UsageEpisode) error {
	return tx.WithContext(ctx).Create(episode).Error
}

func (r *repo) GetEpisode(ctx context.Context, episodeID snowflake.ID) (*episodedomain.UsageEpisode, error) {
	var episode episodedomain.UsageEpisode
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Returns").
		Where("id = ?", episodeID).
		First(&episode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &episode, nil
}

func (r *repo) DeleteEpisode(ctx context.Context, tx *gorm.DB, episodeID snowflake.ID) error {
	// Children first; not every sqlite build enforces FK cascades.
	if err := tx.WithContext(ctx).Exec(
		`DELETE FROM return_records WHERE line_item_id IN (SELECT id FROM line_items WHERE episode_id = ?)`,
		episodeID,
	).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Where("episode_id = ?", episodeID).Delete(&episodedomain.LineItem{}).Error; err != nil {
		return err
	}

	result := tx.WithContext(ctx).Where("id = ?", episodeID).Delete(&episodedomain.UsageEpisode{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) lineItemsByDepartment(ctx context.Context, departmentCode string) *gorm.DB {
	stmt := r.db.WithContext(ctx).Model(&episodedomain.LineItem{})
	if dept := strings.TrimSpace(departmentCode); dept != "" {
		stmt = stmt.
			Joins("JOIN usage_episodes ON usage_episodes.id = line_items.episode_id").
			Where("usage_episodes.department_code = ?", dept)
	}
	return stmt
}
