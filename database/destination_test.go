package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestGetPointsOfSale(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM points_of_sale")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "legal_name", "cbu", "business_unit_id"}).
			AddRow(1, "PDV-Norte SA", "2850590940090418135201", 1).
			AddRow(2, "PDV-Sur SRL", "", 1))

	result, err := ds.GetPointsOfSale(context.Background())
	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, "PDV-Norte SA", result[1].LegalName)
	assert.Empty(t, result[2].CBU)
}

func TestGetSplitRatesGroupedByPointOfSale(t *testing.T) {
	ds, mock := newTestDatasource(t)
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	may := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM split_rates")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "point_of_sale_id", "pdv_percent", "effective_date", "status"}).
			AddRow(1, 1, "90.00", jan, "Approved").
			AddRow(2, 1, "85.00", may, "Approved").
			AddRow(3, 2, "88.00", jan, "Draft"))

	result, err := ds.GetSplitRates(context.Background())
	assert.NoError(t, err)
	assert.Len(t, result[1], 2)
	assert.Len(t, result[2], 1)
	assert.Equal(t, "90", result[1][0].PDVPercent.String())
}

func TestGetSubsidyRates(t *testing.T) {
	ds, mock := newTestDatasource(t)
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM subsidy_rates")).
		WithArgs("promo-lanzamiento").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "percent", "effective_date"}).
			AddRow(1, "promo-lanzamiento", "2.00", jan))

	result, err := ds.GetSubsidyRates(context.Background(), "promo-lanzamiento")
	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, "2", result[0].Percent.String())
}
