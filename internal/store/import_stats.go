package store

import "fmt"

// ImportMonthStat 按月汇总的导入次数
type ImportMonthStat struct {
	Year  int `json:"year"`
	Month int `json:"month"`

	SuccessCount int `json:"successCount"`
	FailedCount  int `json:"failedCount"`
	Total        int `json:"total"`
}

// ListImportMonths 按年/月倒序统计导入日志
func (s *Store) ListImportMonths() ([]ImportMonthStat, error) {
	rows, err := s.db.Query(`
		SELECT
			CAST(strftime('%Y', started_at) AS INTEGER) AS y,
			CAST(strftime('%m', started_at) AS INTEGER) AS m,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS success_count,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS failed_count,
			COUNT(1) AS total
		FROM import_logs
		GROUP BY y, m
		ORDER BY y DESC, m DESC
	`, ImportStatusSuccess, ImportStatusFailed)
	if err != nil {
		return nil, fmt.Errorf("query import months failed: %w", err)
	}
	defer rows.Close()

	out := []ImportMonthStat{}
	for rows.Next() {
		var it ImportMonthStat
		if err := rows.Scan(&it.Year, &it.Month, &it.SuccessCount, &it.FailedCount, &it.Total); err != nil {
			return nil, fmt.Errorf("scan import months failed: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate import months failed: %w", err)
	}
	return out, nil
}
