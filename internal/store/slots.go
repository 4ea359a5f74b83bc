package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

// Slot keys.
const (
	SlotStandards        = "dqa_standards"
	SlotCategoryOrder    = "dqa_category_order"
	SlotSubcategoryOrder = "dqa_subcategory_order"
)

// Slots reads and writes the registry's JSON slots.
type Slots struct {
	kv KV
}

func NewSlots(kv KV) *Slots {
	return &Slots{kv: kv}
}

// LoadStandards returns the stored collection; ok is false when the slot is
// empty or was never written.
func (s *Slots) LoadStandards(ctx context.Context) ([]standard.Standard, bool, error) {
	var items []standard.Standard
	ok, err := s.load(ctx, SlotStandards, &items)
	if err != nil || !ok {
		return nil, false, err
	}
	return items, true, nil
}

func (s *Slots) SaveStandards(ctx context.Context, items []standard.Standard) error {
	if items == nil {
		items = []standard.Standard{}
	}
	return s.save(ctx, SlotStandards, items)
}

// LoadOrder returns a stored label sequence.
func (s *Slots) LoadOrder(ctx context.Context, slot string) ([]string, bool, error) {
	var order []string
	ok, err := s.load(ctx, slot, &order)
	if err != nil || !ok {
		return nil, false, err
	}
	return order, true, nil
}

func (s *Slots) SaveOrder(ctx context.Context, slot string, order []string) error {
	if order == nil {
		order = []string{}
	}
	return s.save(ctx, slot, order)
}

func (s *Slots) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

func (s *Slots) load(ctx context.Context, slot string, dst any) (bool, error) {
	raw, err := s.kv.Get(ctx, slot)
	if errors.Is(err, ErrNotFound) || (err == nil && raw == "") {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode slot %s: %w", slot, err)
	}
	return true, nil
}

func (s *Slots) save(ctx context.Context, slot string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", slot, err)
	}
	return s.kv.Set(ctx, slot, string(data))
}
