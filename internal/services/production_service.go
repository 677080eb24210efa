package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"radiator-erp/internal/apperr"
	"radiator-erp/internal/database"
	"radiator-erp/internal/models"
	"radiator-erp/internal/repository"
)

// ProductionService handles dispatch notes between warehouse and factory and
// the reconciliation of theoretical material consumption against what was sent.
type ProductionService interface {
	CreateDispatch(ctx context.Context, req *models.DispatchRequest) (*models.DispatchNote, error)
	ListDispatches(ctx context.Context, direction string) ([]*models.DispatchRow, error)
	DispatchDetail(ctx context.Context, id int) (*models.DispatchDetail, error)
	DeleteDispatch(ctx context.Context, id int) error
	RemainingMaterials(ctx context.Context) ([]*models.RemainingMaterial, error)
	CostSummary(ctx context.Context) ([]*models.ProductCostSummary, error)
	NextDocumentNo(ctx context.Context) (string, error)
	Materials(ctx context.Context, inStockOnly bool) ([]*models.MaterialRef, error)
	Products(ctx context.Context) ([]*models.ProductRef, error)
}

type productionService struct {
	db         *database.PostgresDB
	dispatches repository.DispatchRepository
	costFiles  repository.CostFileRepository
	materials  repository.MaterialRepository
	products   repository.ProductRepository
	ledger     repository.LedgerRepository
	logger     *zap.Logger
}

func NewProductionService(db *database.PostgresDB, dispatches repository.DispatchRepository,
	costFiles repository.CostFileRepository, materials repository.MaterialRepository,
	products repository.ProductRepository, ledger repository.LedgerRepository,
	logger *zap.Logger) ProductionService {
	return &productionService{
		db:         db,
		dispatches: dispatches,
		costFiles:  costFiles,
		materials:  materials,
		products:   products,
		ledger:     ledger,
		logger:     logger,
	}
}

func (s *productionService) CreateDispatch(ctx context.Context, req *models.DispatchRequest) (*models.DispatchNote, error) {
	logger := s.logger.With(
		zap.String("operation", "create_dispatch"),
		zap.String("document_no", req.DocumentNo),
		zap.String("direction", string(req.Direction)),
		zap.Int("lines", len(req.Lines)),
	)

	if err := validateDispatchLines(req); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	st := newStockTx(tx, s.materials, s.products, s.ledger)
	dispatches := s.dispatches.WithTx(tx)
	costFiles := s.costFiles.WithTx(tx)

	exists, err := dispatches.ExistsByDocumentNo(ctx, req.DocumentNo)
	if err != nil {
		return nil, apperr.Internal("failed to check dispatch number", err)
	}
	if exists {
		return nil, apperr.Conflict("dispatch %s already exists", req.DocumentNo)
	}

	note := &models.DispatchNote{
		DocumentNo: req.DocumentNo,
		NoteDate:   req.Date,
		Direction:  req.Direction,
	}
	if req.Description != "" {
		note.Description = &req.Description
	}
	if err := dispatches.InsertNote(ctx, note); err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("dispatch %s already exists", req.DocumentNo)
		}
		return nil, apperr.Internal("failed to insert dispatch note", err)
	}

	for _, lineReq := range req.Lines {
		switch req.Direction {
		case models.DirectionOut:
			if err := s.applyOutboundLine(ctx, st, dispatches, note, &lineReq); err != nil {
				logger.Error("❌ dispatch aborted", zap.Error(err))
				return nil, err
			}
		case models.DirectionIn:
			if err := s.applyInboundLine(ctx, st, dispatches, costFiles, note, &lineReq); err != nil {
				logger.Error("❌ dispatch aborted", zap.Error(err))
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal("failed to commit transaction", err)
	}

	logger.Info("✅ dispatch created", zap.Int("dispatch_id", note.ID))
	return note, nil
}

// applyOutboundLine moves a material from warehouse to factory and records
// the OUT ledger row.
func (s *productionService) applyOutboundLine(ctx context.Context, st *stockTx,
	dispatches repository.DispatchRepository, note *models.DispatchNote,
	lineReq *models.DispatchLineRequest) error {
	if _, err := st.materialToFactory(ctx, lineReq.MaterialID, lineReq.Quantity); err != nil {
		return err
	}

	line := &models.DispatchLine{
		DispatchID: note.ID,
		ItemKind:   models.ItemMaterial,
		MaterialID: &lineReq.MaterialID,
		Quantity:   lineReq.Quantity,
		UnitPrice:  lineReq.UnitPrice,
	}
	if err := dispatches.InsertLine(ctx, line); err != nil {
		return apperr.Internal("failed to insert dispatch line", err)
	}

	err := st.ledger.Insert(ctx, &models.StockMovement{
		ItemKind:   models.ItemMaterial,
		MaterialID: &lineReq.MaterialID,
		Direction:  models.DirectionOut,
		Quantity:   lineReq.Quantity,
		UnitPrice:  lineReq.UnitPrice,
		SourceKind: models.SourceProductionOut,
		SourceID:   line.ID,
	})
	if err != nil {
		return apperr.Internal("failed to insert ledger row", err)
	}
	return nil
}

// applyInboundLine books finished products into stock, consumes the BOM
// quantities from factory stock and upserts the reconciliation evidence row
// against the most recent open outbound dispatch of each material.
func (s *productionService) applyInboundLine(ctx context.Context, st *stockTx,
	dispatches repository.DispatchRepository, costFiles repository.CostFileRepository,
	note *models.DispatchNote, lineReq *models.DispatchLineRequest) error {
	if _, err := st.productIn(ctx, lineReq.ProductID, lineReq.Quantity); err != nil {
		return err
	}

	line := &models.DispatchLine{
		DispatchID: note.ID,
		ItemKind:   models.ItemProduct,
		ProductID:  &lineReq.ProductID,
		Quantity:   lineReq.Quantity,
		UnitPrice:  lineReq.UnitPrice,
	}
	if err := dispatches.InsertLine(ctx, line); err != nil {
		return apperr.Internal("failed to insert dispatch line", err)
	}

	err := st.ledger.Insert(ctx, &models.StockMovement{
		ItemKind:   models.ItemProduct,
		ProductID:  &lineReq.ProductID,
		Direction:  models.DirectionIn,
		Quantity:   lineReq.Quantity,
		UnitPrice:  lineReq.UnitPrice,
		SourceKind: models.SourceProductionIn,
		SourceID:   line.ID,
	})
	if err != nil {
		return apperr.Internal("failed to insert ledger row", err)
	}

	bom, err := costFiles.GetByProduct(ctx, lineReq.ProductID)
	if err != nil {
		return apperr.Internal("failed to load cost file", err)
	}

	for materialID, consumed := range theoreticalConsumption(bom, lineReq.Quantity) {
		if err := st.materialFactoryConsume(ctx, materialID, consumed); err != nil {
			return err
		}

		balance, err := dispatches.LatestOpenOutbound(ctx, materialID)
		if err != nil {
			return apperr.Internal("failed to find open outbound dispatch", err)
		}
		if balance == nil {
			// Nothing was dispatched for this material, so there is no
			// outbound balance to reconcile against.
			continue
		}

		cumulative, yieldLoss := advanceReconciliation(balance.Sent, balance.Consumed, consumed)
		err = dispatches.UpsertReconciliation(ctx, &models.MaterialReconciliation{
			OutboundDispatchID: balance.DispatchID,
			InboundDispatchID:  note.ID,
			MaterialID:         materialID,
			SentQuantity:       balance.Sent,
			ConsumedQuantity:   cumulative,
			YieldLoss:          yieldLoss,
		})
		if err != nil {
			return apperr.Internal("failed to upsert reconciliation", err)
		}
	}
	return nil
}

func (s *productionService) ListDispatches(ctx context.Context, direction string) ([]*models.DispatchRow, error) {
	list, err := s.dispatches.List(ctx, direction)
	if err != nil {
		return nil, apperr.Internal("failed to list dispatches", err)
	}
	return list, nil
}

func (s *productionService) DispatchDetail(ctx context.Context, id int) (*models.DispatchDetail, error) {
	detail, err := s.dispatches.GetDetail(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to load dispatch", err)
	}
	if detail == nil {
		return nil, apperr.NotFound("dispatch %d not found", id)
	}
	return detail, nil
}

func (s *productionService) DeleteDispatch(ctx context.Context, id int) error {
	logger := s.logger.With(zap.String("operation", "delete_dispatch"), zap.Int("dispatch_id", id))

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return apperr.Internal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	st := newStockTx(tx, s.materials, s.products, s.ledger)
	dispatches := s.dispatches.WithTx(tx)
	costFiles := s.costFiles.WithTx(tx)

	note, err := dispatches.GetNoteByID(ctx, id)
	if err != nil {
		return apperr.Internal("failed to load dispatch", err)
	}
	if note == nil {
		return apperr.NotFound("dispatch %d not found", id)
	}

	lines, err := dispatches.GetLines(ctx, id)
	if err != nil {
		return apperr.Internal("failed to load dispatch lines", err)
	}

	for _, line := range lines {
		switch note.Direction {
		case models.DirectionOut:
			if err := st.materialFromFactory(ctx, *line.MaterialID, line.Quantity); err != nil {
				return err
			}
			if err := st.ledger.DeleteBySource(ctx, models.SourceProductionOut, line.ID); err != nil {
				return apperr.Internal("failed to delete ledger row", err)
			}
		case models.DirectionIn:
			if err := st.productReverse(ctx, *line.ProductID, line.Quantity.Neg()); err != nil {
				return err
			}
			if err := st.ledger.DeleteBySource(ctx, models.SourceProductionIn, line.ID); err != nil {
				return apperr.Internal("failed to delete ledger row", err)
			}

			// Give the theoretical consumption back to the factory. The
			// evidence rows naming this note go away with the cascade.
			bom, err := costFiles.GetByProduct(ctx, *line.ProductID)
			if err != nil {
				return apperr.Internal("failed to load cost file", err)
			}
			for materialID, consumed := range theoreticalConsumption(bom, line.Quantity) {
				if err := st.materialFactoryConsume(ctx, materialID, consumed.Neg()); err != nil {
					return err
				}
			}
		}
	}

	if err := dispatches.DeleteNote(ctx, id); err != nil {
		return apperr.Internal("failed to delete dispatch", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Internal("failed to commit transaction", err)
	}

	logger.Info("✅ dispatch deleted", zap.String("document_no", note.DocumentNo))
	return nil
}

func (s *productionService) RemainingMaterials(ctx context.Context) ([]*models.RemainingMaterial, error) {
	list, err := s.dispatches.RemainingMaterials(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list remaining materials", err)
	}
	return list, nil
}

func (s *productionService) CostSummary(ctx context.Context) ([]*models.ProductCostSummary, error) {
	list, err := s.dispatches.CostSummaries(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list cost summaries", err)
	}
	return list, nil
}

func (s *productionService) NextDocumentNo(ctx context.Context) (string, error) {
	prefix := dispatchDocPrefix(time.Now().Year())
	last, err := s.dispatches.LastDocumentNoForYear(ctx, prefix)
	if err != nil {
		return "", apperr.Internal("failed to generate dispatch number", err)
	}
	return nextInSequence(prefix, last, 4), nil
}

func (s *productionService) Materials(ctx context.Context, inStockOnly bool) ([]*models.MaterialRef, error) {
	refs, err := s.materials.ListRefs(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list materials", err)
	}
	if !inStockOnly {
		return refs, nil
	}
	inStock := refs[:0]
	for _, ref := range refs {
		if ref.WarehouseQty.IsPositive() {
			inStock = append(inStock, ref)
		}
	}
	return inStock, nil
}

func (s *productionService) Products(ctx context.Context) ([]*models.ProductRef, error) {
	refs, err := s.products.ListRefs(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list products", err)
	}
	return refs, nil
}

// validateDispatchLines checks direction and line shape coherence: outbound
// notes carry material lines, inbound notes carry product lines, quantities
// must be positive.
func validateDispatchLines(req *models.DispatchRequest) error {
	for i, line := range req.Lines {
		if !line.Quantity.IsPositive() {
			return apperr.Validation("line %d: quantity must be positive", i+1)
		}
		switch req.Direction {
		case models.DirectionOut:
			if line.ItemKind != models.ItemMaterial || line.MaterialID <= 0 {
				return apperr.Validation("line %d: outbound dispatches carry material lines", i+1)
			}
		case models.DirectionIn:
			if line.ItemKind != models.ItemProduct || line.ProductID <= 0 {
				return apperr.Validation("line %d: inbound dispatches carry product lines", i+1)
			}
		default:
			return apperr.Validation("direction must be OUT or IN")
		}
	}
	return nil
}

// theoreticalConsumption multiplies every cost-file line by the produced
// quantity, keyed by material.
func theoreticalConsumption(bom []*models.CostFileLineDetail, produced decimal.Decimal) map[int]decimal.Decimal {
	consumption := make(map[int]decimal.Decimal, len(bom))
	for _, line := range bom {
		if !line.QuantityPerUnit.IsPositive() {
			continue
		}
		qty := line.QuantityPerUnit.Mul(produced)
		consumption[line.MaterialID] = consumption[line.MaterialID].Add(qty)
	}
	return consumption
}

// advanceReconciliation accumulates consumption against one outbound balance
// and rederives the yield loss.
func advanceReconciliation(sent, alreadyConsumed, consumed decimal.Decimal) (cumulative, yieldLoss decimal.Decimal) {
	cumulative = alreadyConsumed.Add(consumed)
	yieldLoss = sent.Sub(cumulative)
	return cumulative, yieldLoss
}
