// Package orders assembles a persistable order aggregate from a validated
// request, filling every derived field from the calculators.
package orders

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/service/calc"
	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage"
)

type Service struct {
	// Minutes in one standard single-person shift, the work-unit divisor.
	unitMinutes int64
}

func New(unitMinutes int64) *Service {
	return &Service{unitMinutes: unitMinutes}
}

// FromRequest turns a validated request into a full aggregate with a fresh
// id. Weights, effective minutes and work units are always recomputed here;
// whatever the client may have sent for them never reaches the database.
func (s *Service) FromRequest(req *storage.OrderRequest) (*storage.ProductionOrder, error) {
	const op = "service.orders.FromRequest"

	order := &storage.ProductionOrder{
		ID:                       uuid.NewString(),
		CustomerName:             req.CustomerName,
		ProductName:              req.ProductName,
		ProductionQuantity:       req.ProductionQuantity,
		CompletionDate:           req.CompletionDate,
		ProcessIssues:            req.ProcessIssues,
		QualityNotes:             req.QualityNotes,
		CapsuleColor:             req.CapsuleColor,
		CapsuleSize:              req.CapsuleSize,
		CapsuleType:              req.CapsuleType,
		CreatedBy:                req.CreatedBy,
		CustomerService:          req.CustomerService,
		ActualProductionQuantity: req.ActualProductionQuantity,
		MaterialYieldQuantity:    req.MaterialYieldQuantity,
	}

	order.Ingredients = make([]storage.Ingredient, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		order.Ingredients = append(order.Ingredients, storage.Ingredient{
			MaterialName:       ing.MaterialName,
			UnitContentMg:      ing.UnitContentMg,
			IsCustomerProvided: boolOr(ing.IsCustomerProvided, true),
			IsCustomerSupplied: boolOr(ing.IsCustomerSupplied, true),
		})
	}

	order.UnitWeightMg = calc.UnitWeight(order.Ingredients)
	order.BatchTotalWeightMg = calc.BatchTotalWeight(order.UnitWeightMg, order.ProductionQuantity)

	order.WorkLogs = make([]storage.WorkLog, 0, len(req.WorkLogs))
	for _, wl := range req.WorkLogs {
		minutes, err := calc.EffectiveMinutes(wl.StartTime, wl.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		order.WorkLogs = append(order.WorkLogs, storage.WorkLog{
			WorkDate:            calc.DayStart(wl.WorkDate),
			Headcount:           wl.Headcount,
			StartTime:           wl.StartTime,
			EndTime:             wl.EndTime,
			Notes:               wl.Notes,
			EffectiveMinutes:    minutes,
			CalculatedWorkUnits: calc.WorkUnits(minutes, wl.Headcount, s.unitMinutes),
		})
	}

	return order, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
