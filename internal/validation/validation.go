// Package validation turns untyped order and work-log payloads into
// normalized records, or fails with every violated field at once so the
// client can render the full list.
package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/service/calc"
	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage"
)

// DefaultProductName fills in when the client leaves productName blank.
const DefaultProductName = "待確認"

var CapsuleSizes = []string{"#1", "#0", "#00"}

var CapsuleTypes = []string{"明膠胃溶", "植物胃溶", "明膠腸溶", "植物腸溶"}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, format string, args ...interface{}) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

var (
	minUnitContent = decimal.RequireFromString("0.00001")
	maxUnitContent = decimal.NewFromInt(10000)
)

// ValidateOrder checks the full order payload including nested ingredients
// and work-logs, normalizing in place (trimmed names, defaulted product
// name). Returns a *ValidationError listing every violation, or nil.
func ValidateOrder(req *storage.OrderRequest) error {
	verr := &ValidationError{}

	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.CustomerName == "" {
		verr.add("customerName", "客戶名稱為必填")
	} else if len([]rune(req.CustomerName)) > 100 {
		verr.add("customerName", "客戶名稱最多 100 字")
	}

	req.ProductName = strings.TrimSpace(req.ProductName)
	if req.ProductName == "" {
		req.ProductName = DefaultProductName
	} else if len([]rune(req.ProductName)) > 100 {
		verr.add("productName", "產品名稱最多 100 字")
	}

	if req.ProductionQuantity < 1 || req.ProductionQuantity > 5000000 {
		verr.add("productionQuantity", "生產數量須為 1 至 5,000,000 的整數")
	}

	checkMaxLen(verr, "processIssues", req.ProcessIssues, 1000)
	checkMaxLen(verr, "qualityNotes", req.QualityNotes, 500)
	checkMaxLen(verr, "capsuleColor", req.CapsuleColor, 50)

	if req.CapsuleSize != nil && !contains(CapsuleSizes, *req.CapsuleSize) {
		verr.add("capsuleSize", "膠囊規格須為 %s 之一", strings.Join(CapsuleSizes, "、"))
	}
	if req.CapsuleType != nil && !contains(CapsuleTypes, *req.CapsuleType) {
		verr.add("capsuleType", "膠囊型號須為 %s 之一", strings.Join(CapsuleTypes, "、"))
	}

	if req.ActualProductionQuantity != nil && *req.ActualProductionQuantity < 0 {
		verr.add("actualProductionQuantity", "實際生產數量不可為負數")
	}
	if req.MaterialYieldQuantity != nil && *req.MaterialYieldQuantity < 0 {
		verr.add("materialYieldQuantity", "材料可做數量不可為負數")
	}

	if len(req.Ingredients) == 0 {
		verr.add("ingredients", "至少需要一項原料")
	}

	seen := make(map[string]bool, len(req.Ingredients))
	total := decimal.Zero
	for i, ing := range req.Ingredients {
		field := fmt.Sprintf("ingredients[%d]", i)

		name := strings.TrimSpace(ing.MaterialName)
		req.Ingredients[i].MaterialName = name
		switch {
		case name == "":
			verr.add(field+".materialName", "原料名稱為必填")
		case len([]rune(name)) < 2 || len([]rune(name)) > 100:
			verr.add(field+".materialName", "原料名稱須為 2 至 100 字")
		case seen[name]:
			verr.add(field+".materialName", "原料名稱重複: %s", name)
		default:
			seen[name] = true
		}

		validateUnitContent(verr, field+".unitContentMg", ing.UnitContentMg)
		total = total.Add(ing.UnitContentMg)
	}

	// Second line of defense: a non-empty list of positive contents always
	// sums positive, but the invariant is checked explicitly anyway.
	if len(req.Ingredients) > 0 && !total.IsPositive() {
		verr.add("ingredients", "原料單粒含量總和須大於 0")
	}

	for i := range req.WorkLogs {
		validateWorkLog(verr, fmt.Sprintf("worklogs[%d]", i), &req.WorkLogs[i])
	}

	return verr.orNil()
}

// ValidateWorkLog checks a standalone work-log payload.
func ValidateWorkLog(req *storage.WorkLogRequest) error {
	verr := &ValidationError{}
	validateWorkLog(verr, "", req)
	return verr.orNil()
}

func validateWorkLog(verr *ValidationError, prefix string, req *storage.WorkLogRequest) {
	field := func(name string) string {
		if prefix == "" {
			return name
		}
		return prefix + "." + name
	}

	if req.WorkDate.IsZero() {
		verr.add(field("workDate"), "工作日期為必填")
	}
	if req.Headcount < 1 {
		verr.add(field("headcount"), "工作人數須為正整數")
	}
	if _, err := calc.ParseClock(req.StartTime); err != nil {
		verr.add(field("startTime"), "開始時間格式須為 HH:MM")
	}
	if _, err := calc.ParseClock(req.EndTime); err != nil {
		verr.add(field("endTime"), "結束時間格式須為 HH:MM")
	}
	checkMaxLen(verr, field("notes"), req.Notes, 1000)
}

func validateUnitContent(verr *ValidationError, field string, v decimal.Decimal) {
	if !v.IsPositive() {
		verr.add(field, "單粒含量須為正數")
		return
	}
	if v.LessThan(minUnitContent) || v.GreaterThan(maxUnitContent) {
		verr.add(field, "單粒含量須介於 0.00001 與 10000 之間")
		return
	}
	if !v.Round(5).Equal(v) {
		verr.add(field, "單粒含量最多 5 位小數")
	}
}

func checkMaxLen(verr *ValidationError, field string, v *string, max int) {
	if v != nil && len([]rune(*v)) > max {
		verr.add(field, "最多 %d 字", max)
	}
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
