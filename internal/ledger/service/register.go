package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"go.uber.org/zap"
)

// indexedEntry remembers where a removed register row sat.
type indexedEntry struct {
	index int
	entry domain.StockRegisterEntry
}

// renumber rewrites slNo as the dense sequence 1..N in slice order.
func renumber(register []domain.StockRegisterEntry) {
	for i := range register {
		register[i].SlNo = i + 1
	}
}

func removeBillRegisterRows(ctx context.Context, uow domain.UnitOfWork, billID snowflake.ID) ([]indexedEntry, error) {
	register, err := uow.StockRegister(ctx)
	if err != nil {
		return nil, err
	}
	var removed []indexedEntry
	kept := make([]domain.StockRegisterEntry, 0, len(register))
	for i, entry := range register {
		if entry.BillID != nil && *entry.BillID == billID {
			removed = append(removed, indexedEntry{index: i, entry: entry})
			continue
		}
		kept = append(kept, entry)
	}
	if len(removed) == 0 {
		return nil, nil
	}
	renumber(kept)
	uow.SetStockRegister(kept)
	return removed, nil
}

// restoreRegisterRows puts rows back at their former positions, lowest
// index first, and renumbers.
func restoreRegisterRows(ctx context.Context, uow domain.UnitOfWork, rows []indexedEntry) error {
	if len(rows) == 0 {
		return nil
	}
	register, err := uow.StockRegister(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		register = insertAt(register, row.index, row.entry)
	}
	renumber(register)
	uow.SetStockRegister(register)
	return nil
}

func (s *Service) CreateStockRegisterEntry(ctx context.Context, req domain.StockRegisterRequest) (domain.StockRegisterEntry, error) {
	entry := domain.StockRegisterEntry{
		DateOfReceipt:      strings.TrimSpace(req.DateOfReceipt),
		Supplier:           strings.TrimSpace(req.Supplier),
		InsecticideName:    strings.TrimSpace(req.InsecticideName),
		BatchNo:            strings.TrimSpace(req.BatchNo),
		MnfDate:            strings.TrimSpace(req.MnfDate),
		ExpDate:            strings.TrimSpace(req.ExpDate),
		QtyReceived:        req.QtyReceived,
		QtyInHand:          req.QtyInHand,
		Total:              req.Total,
		Sold:               req.Sold,
		Balance:            req.Balance,
		BillNoDate:         strings.TrimSpace(req.BillNoDate),
		PurchaserName:      strings.TrimSpace(req.PurchaserName),
		PurchaserSignature: strings.TrimSpace(req.PurchaserSignature),
		Remarks:            strings.TrimSpace(req.Remarks),
	}
	if entry.DateOfReceipt == "" {
		entry.DateOfReceipt = s.today()
	}
	if err := validateRegisterEntry(entry); err != nil {
		return domain.StockRegisterEntry{}, err
	}
	entry.ID = s.genID.Generate()

	err := s.mutate(ctx, "create_register_entry", func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error) {
		register, err := uow.StockRegister(ctx)
		if err != nil {
			return nil, err
		}
		entry.SlNo = len(register) + 1
		uow.SetStockRegister(append(register, entry))
		id := entry.ID
		return func(ctx context.Context, uow domain.UnitOfWork) error {
			_, err := deleteRegisterEntry(ctx, uow, id)
			return err
		}, nil
	})
	if err != nil {
		return domain.StockRegisterEntry{}, err
	}

	s.log.Info("stock register entry created",
		zap.String("entry_id", entry.ID.String()),
		zap.Int("sl_no", entry.SlNo),
	)
	return entry, nil
}

func (s *Service) UpdateStockRegisterEntry(ctx context.Context, id snowflake.ID, patch domain.StockRegisterPatch) (domain.StockRegisterEntry, error) {
	var updated domain.StockRegisterEntry
	err := s.mutate(ctx, "update_register_entry", func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error) {
		register, err := uow.StockRegister(ctx)
		if err != nil {
			return nil, err
		}
		i := indexOf(register, func(e domain.StockRegisterEntry) bool { return e.ID == id })
		if i < 0 {
			return nil, domain.ErrRegisterEntryNotFound
		}
		before := register[i]
		updated = applyRegisterPatch(before, patch)
		if err := validateRegisterEntry(updated); err != nil {
			return nil, err
		}
		register[i] = updated
		uow.SetStockRegister(register)
		return func(ctx context.Context, uow domain.UnitOfWork) error {
			register, err := uow.StockRegister(ctx)
			if err != nil {
				return err
			}
			j := indexOf(register, func(e domain.StockRegisterEntry) bool { return e.ID == before.ID })
			if j < 0 {
				return domain.ErrRegisterEntryNotFound
			}
			register[j] = before
			uow.SetStockRegister(register)
			return nil
		}, nil
	})
	if err != nil {
		return domain.StockRegisterEntry{}, err
	}

	s.log.Info("stock register entry updated", zap.String("entry_id", id.String()))
	return updated, nil
}

// DeleteStockRegisterEntry removes the row and renumbers the rest.
func (s *Service) DeleteStockRegisterEntry(ctx context.Context, id snowflake.ID) (domain.StockRegisterEntry, error) {
	var removed indexedEntry
	err := s.mutate(ctx, "delete_register_entry", func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error) {
		var err error
		removed, err = deleteRegisterEntry(ctx, uow, id)
		if err != nil {
			return nil, err
		}
		row := removed
		return func(ctx context.Context, uow domain.UnitOfWork) error {
			return restoreRegisterRows(ctx, uow, []indexedEntry{row})
		}, nil
	})
	if err != nil {
		return domain.StockRegisterEntry{}, err
	}

	s.log.Info("stock register entry deleted",
		zap.String("entry_id", id.String()),
		zap.Int("sl_no", removed.entry.SlNo),
	)
	return removed.entry, nil
}

func deleteRegisterEntry(ctx context.Context, uow domain.UnitOfWork, id snowflake.ID) (indexedEntry, error) {
	register, err := uow.StockRegister(ctx)
	if err != nil {
		return indexedEntry{}, err
	}
	i := indexOf(register, func(e domain.StockRegisterEntry) bool { return e.ID == id })
	if i < 0 {
		return indexedEntry{}, domain.ErrRegisterEntryNotFound
	}
	removed := indexedEntry{index: i, entry: register[i]}
	register = removeAt(register, i)
	renumber(register)
	uow.SetStockRegister(register)
	return removed, nil
}

func (s *Service) ListStockRegister(ctx context.Context) ([]domain.StockRegisterEntry, error) {
	out := []domain.StockRegisterEntry{}
	err := s.view(ctx, "list_stock_register", func(ctx context.Context, uow domain.UnitOfWork) error {
		register, err := uow.StockRegister(ctx)
		out = append(out, register...)
		return err
	})
	return out, err
}

func validateRegisterEntry(e domain.StockRegisterEntry) error {
	if e.InsecticideName == "" {
		return domain.NewValidationError("insecticideName", domain.ErrInvalidName)
	}
	for _, d := range []struct {
		field string
		value string
	}{
		{"dateOfReceipt", e.DateOfReceipt},
		{"mnfDate", e.MnfDate},
		{"expDate", e.ExpDate},
	} {
		if !validDate(d.value) {
			return domain.NewValidationError(d.field, domain.ErrInvalidDate)
		}
	}
	for _, q := range []struct {
		field string
		value int64
	}{
		{"qtyReceived", e.QtyReceived},
		{"qtyInHand", e.QtyInHand},
		{"total", e.Total},
		{"sold", e.Sold},
		{"balance", e.Balance},
	} {
		if q.value < 0 {
			return domain.NewValidationError(q.field, domain.ErrInvalidQuantity)
		}
	}
	return nil
}

func applyRegisterPatch(e domain.StockRegisterEntry, p domain.StockRegisterPatch) domain.StockRegisterEntry {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setInt := func(dst *int64, src *int64) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&e.DateOfReceipt, p.DateOfReceipt)
	setString(&e.Supplier, p.Supplier)
	setString(&e.InsecticideName, p.InsecticideName)
	setString(&e.BatchNo, p.BatchNo)
	setString(&e.MnfDate, p.MnfDate)
	setString(&e.ExpDate, p.ExpDate)
	setInt(&e.QtyReceived, p.QtyReceived)
	setInt(&e.QtyInHand, p.QtyInHand)
	setInt(&e.Total, p.Total)
	setInt(&e.Sold, p.Sold)
	setInt(&e.Balance, p.Balance)
	setString(&e.BillNoDate, p.BillNoDate)
	setString(&e.PurchaserName, p.PurchaserName)
	setString(&e.PurchaserSignature, p.PurchaserSignature)
	setString(&e.Remarks, p.Remarks)
	return e
}
