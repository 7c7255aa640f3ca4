package load

import (
	"database/sql"
	"fmt"

	"creditdw/ETL/utils"
)

// DimensionLoader отвечает за разрешение суррогатных ключей измерений
// географии и продукта по схеме get-or-create. Поиск использует
// NULL-безопасное сравнение (<=>): NULL-компонента естественного ключа
// совпадает только с NULL, а не с чем угодно.
//
// Последовательность поиск-затем-вставка не атомарна: два одновременных
// запуска могут гонять по одному естественному ключу, поэтому защита
// лежит на уникальном ключе таблицы плюс INSERT IGNORE с повторным
// чтением при конфликте, а не на блокировке в процессе.
type DimensionLoader struct {
	logger *utils.ETLLogger
}

// NewDimensionLoader создает новый экземпляр DimensionLoader
func NewDimensionLoader(logger *utils.ETLLogger) *DimensionLoader {
	return &DimensionLoader{
		logger: logger,
	}
}

// GetOrCreateGeo возвращает суррогатный ключ географии,
// создавая строку измерения при первом наблюдении естественного ключа
func (l *DimensionLoader) GetOrCreateGeo(tx *sql.Tx, country, state, city sql.NullString) (int64, error) {
	return l.getOrCreate(tx, dimQueries{
		table:      "dim_geo",
		keyColumn:  "geo_key",
		selectSQL:  `SELECT geo_key FROM dim_geo WHERE country <=> ? AND state_province <=> ? AND city <=> ? LIMIT 1`,
		insertSQL:  `INSERT IGNORE INTO dim_geo (country, state_province, city) VALUES (?, ?, ?)`,
		naturalKey: []interface{}{country, state, city},
	})
}

// GetOrCreateProduct возвращает суррогатный ключ продукта,
// создавая строку измерения при первом наблюдении естественного ключа
func (l *DimensionLoader) GetOrCreateProduct(tx *sql.Tx, code, productType, segment sql.NullString) (int64, error) {
	return l.getOrCreate(tx, dimQueries{
		table:      "dim_product",
		keyColumn:  "product_key",
		selectSQL:  `SELECT product_key FROM dim_product WHERE product_code <=> ? AND product_type <=> ? AND segment <=> ? LIMIT 1`,
		insertSQL:  `INSERT IGNORE INTO dim_product (product_code, product_type, segment) VALUES (?, ?, ?)`,
		naturalKey: []interface{}{code, productType, segment},
	})
}

// dimQueries описывает запросы get-or-create для одного измерения
type dimQueries struct {
	table      string
	keyColumn  string
	selectSQL  string
	insertSQL  string
	naturalKey []interface{}
}

// getOrCreate выполняет поиск по естественному ключу, при отсутствии —
// конфликтоустойчивую вставку и повторное чтение
func (l *DimensionLoader) getOrCreate(tx *sql.Tx, queries dimQueries) (int64, error) {
	var key int64
	err := tx.QueryRow(queries.selectSQL, queries.naturalKey...).Scan(&key)
	if err == nil {
		return key, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("ошибка при поиске в %s: %w", queries.table, err)
	}

	result, err := tx.Exec(queries.insertSQL, queries.naturalKey...)
	if err != nil {
		return 0, fmt.Errorf("ошибка при вставке в %s: %w", queries.table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ошибка при проверке вставки в %s: %w", queries.table, err)
	}

	if affected == 1 {
		key, err = result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("ошибка при получении ключа %s: %w", queries.keyColumn, err)
		}
		l.logger.Debug("Создана строка измерения %s с ключом %d", queries.table, key)
		return key, nil
	}

	// Вставка проиграла гонку уникальному ключу — перечитываем победителя
	if err := tx.QueryRow(queries.selectSQL, queries.naturalKey...).Scan(&key); err != nil {
		return 0, fmt.Errorf("ошибка при повторном чтении из %s: %w", queries.table, err)
	}
	return key, nil
}
