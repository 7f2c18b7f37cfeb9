package storage

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ErrOrderNotFound = errors.New("production order not found")

// BusinessZone is the fixed zone all work-log clock times and calendar-day
// boundaries are interpreted in, regardless of where the server runs.
var BusinessZone = time.FixedZone("UTC+8", 8*60*60)

const dateLayout = "2006-01-02"

// Date is a calendar day anchored at midnight in BusinessZone. On the wire
// it is a plain "YYYY-MM-DD" string with no time component.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, BusinessZone)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.In(BusinessZone).Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	t, err := time.ParseInLocation(`"`+dateLayout+`"`, s, BusinessZone)
	if err != nil {
		return fmt.Errorf("invalid date %s: %w", s, err)
	}
	*d = Date{t}
	return nil
}

// Value writes the business-zone local day, so DATE and DATETIME columns
// hold the same calendar day a UTC+8 user submitted.
func (d Date) Value() (driver.Value, error) {
	return d.In(BusinessZone).Format(dateLayout + " 15:04:05"), nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		// parseTime=true hands back the stored local day as a UTC instant;
		// re-anchor the same Y/M/D at business-zone midnight.
		y, m, day := v.Year(), v.Month(), v.Day()
		*d = NewDate(y, m, day)
		return nil
	case []byte:
		if len(v) < len(dateLayout) {
			return fmt.Errorf("scan date: short value %q", v)
		}
		t, err := time.ParseInLocation(dateLayout, string(v[:len(dateLayout)]), BusinessZone)
		if err != nil {
			return fmt.Errorf("scan date %q: %w", v, err)
		}
		*d = Date{t}
		return nil
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}

type ProductionOrder struct {
	ID                       string          `json:"id"`
	CustomerName             string          `json:"customerName"`
	ProductName              string          `json:"productName"`
	ProductionQuantity       int64           `json:"productionQuantity"`
	UnitWeightMg             decimal.Decimal `json:"unitWeightMg"`
	BatchTotalWeightMg       decimal.Decimal `json:"batchTotalWeightMg"`
	CompletionDate           *Date           `json:"completionDate"`
	ProcessIssues            *string         `json:"processIssues"`
	QualityNotes             *string         `json:"qualityNotes"`
	CapsuleColor             *string         `json:"capsuleColor"`
	CapsuleSize              *string         `json:"capsuleSize"`
	CapsuleType              *string         `json:"capsuleType"`
	CreatedBy                *string         `json:"createdBy"`
	CustomerService          *string         `json:"customerService"`
	ActualProductionQuantity *float64        `json:"actualProductionQuantity"`
	MaterialYieldQuantity    *float64        `json:"materialYieldQuantity"`
	CreatedAt                time.Time       `json:"createdAt"`
	UpdatedAt                time.Time       `json:"updatedAt"`
	Ingredients              []Ingredient    `json:"ingredients"`
	WorkLogs                 []WorkLog       `json:"workLogs"`
}

type Ingredient struct {
	ID                 int64           `json:"id"`
	OrderID            string          `json:"orderId"`
	MaterialName       string          `json:"materialName"`
	UnitContentMg      decimal.Decimal `json:"unitContentMg"`
	IsCustomerProvided bool            `json:"isCustomerProvided"`
	IsCustomerSupplied bool            `json:"isCustomerSupplied"`
}

type WorkLog struct {
	ID                  int64           `json:"id"`
	OrderID             string          `json:"orderId"`
	WorkDate            Date            `json:"workDate"`
	Headcount           int             `json:"headcount"`
	StartTime           string          `json:"startTime"`
	EndTime             string          `json:"endTime"`
	Notes               *string         `json:"notes"`
	EffectiveMinutes    int64           `json:"effectiveMinutes"`
	CalculatedWorkUnits decimal.Decimal `json:"calculatedWorkUnits"`
}

// WorkTotal is the summed labor of one order's work-logs.
type WorkTotal struct {
	EffectiveMinutes int64           `json:"effectiveMinutes"`
	WorkUnits        decimal.Decimal `json:"workUnits"`
}

// OrderSummary is one row of the orders list page, children omitted.
type OrderSummary struct {
	ID                 string          `json:"id"`
	CustomerName       string          `json:"customerName"`
	ProductName        string          `json:"productName"`
	ProductionQuantity int64           `json:"productionQuantity"`
	UnitWeightMg       decimal.Decimal `json:"unitWeightMg"`
	BatchTotalWeightMg decimal.Decimal `json:"batchTotalWeightMg"`
	CompletionDate     *Date           `json:"completionDate"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// OrderRequest is the client payload for create and update. Derived fields
// (weights, minutes, units) are intentionally absent: they are recomputed
// server-side on every write.
type OrderRequest struct {
	CustomerName             string             `json:"customerName"`
	ProductName              string             `json:"productName"`
	ProductionQuantity       int64              `json:"productionQuantity"`
	CompletionDate           *Date              `json:"completionDate"`
	ProcessIssues            *string            `json:"processIssues"`
	QualityNotes             *string            `json:"qualityNotes"`
	CapsuleColor             *string            `json:"capsuleColor"`
	CapsuleSize              *string            `json:"capsuleSize"`
	CapsuleType              *string            `json:"capsuleType"`
	CreatedBy                *string            `json:"createdBy"`
	CustomerService          *string            `json:"customerService"`
	ActualProductionQuantity *float64           `json:"actualProductionQuantity"`
	MaterialYieldQuantity    *float64           `json:"materialYieldQuantity"`
	Ingredients              []IngredientRequest `json:"ingredients"`
	WorkLogs                 []WorkLogRequest    `json:"worklogs"`
}

type IngredientRequest struct {
	MaterialName       string          `json:"materialName"`
	UnitContentMg      decimal.Decimal `json:"unitContentMg"`
	IsCustomerProvided *bool           `json:"isCustomerProvided"`
	IsCustomerSupplied *bool           `json:"isCustomerSupplied"`
}

type WorkLogRequest struct {
	WorkDate  Date    `json:"workDate"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Headcount int     `json:"headcount"`
	Notes     *string `json:"notes"`
}
