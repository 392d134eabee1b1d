package converter

import (
	"dqdash/internal/entity/db"
	"dqdash/internal/entity/dto"
)

// MetricToOut converts a db.MetricRecord to dto.MetricRecordOut.
func MetricToOut(m *db.MetricRecord) dto.MetricRecordOut {
	if m == nil {
		return dto.MetricRecordOut{}
	}
	return dto.MetricRecordOut{
		ID:          m.ID,
		DatasetID:   m.DatasetID,
		Dimension:   m.Dimension,
		MetricName:  m.MetricName,
		MetricValue: m.MetricValue,
		RecordedAt:  m.RecordedAt.UTC(),
	}
}

// MetricsToOut converts a slice of db.MetricRecord to dto.MetricRecordOut.
func MetricsToOut(records []db.MetricRecord) []dto.MetricRecordOut {
	out := make([]dto.MetricRecordOut, len(records))
	for i := range records {
		out[i] = MetricToOut(&records[i])
	}
	return out
}
