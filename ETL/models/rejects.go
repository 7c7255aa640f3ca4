package models

// Коды причин, записываемые в реестр отказов
const (
	ReasonDefaultRateOutOfRange = "default_rate_out_of_range"
	ReasonFactGrainDuplicate    = "fact_grain_duplicate_keys"
)

// RejectRecord представляет одну отброшенную или обнуленную величину
// с кодом причины и контекстными колонками
type RejectRecord struct {
	Source     string `json:"source"`
	Reason     string `json:"reason"`
	Quarter    string `json:"quarter,omitempty"`
	Year       int    `json:"year,omitempty"`
	QuarterKey int    `json:"quarter_key,omitempty"`
	Value      string `json:"value,omitempty"`
}

// RejectLedger — реестр отказов, пополняемый стадиями конвейера.
// Только добавление; материализуется один раз в конце запуска.
type RejectLedger struct {
	Records []RejectRecord `json:"records"`
}

// Add добавляет запись в реестр
func (l *RejectLedger) Add(rec RejectRecord) {
	l.Records = append(l.Records, rec)
}

// Count возвращает общее количество записей в реестре
func (l *RejectLedger) Count() int {
	return len(l.Records)
}

// CountByReason возвращает количество записей по каждому коду причины
func (l *RejectLedger) CountByReason() map[string]int {
	counts := make(map[string]int)
	for _, rec := range l.Records {
		counts[rec.Reason]++
	}
	return counts
}
