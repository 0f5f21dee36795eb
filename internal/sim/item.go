package sim

import (
	"sync"

	"github.com/roach88/mechanics/internal/host"
)

// Item is a simulated item stack.
type Item struct {
	mu       sync.Mutex
	defID    string
	material string
	amount   int
}

// NewItem creates a stack. defID is empty for plain items.
func NewItem(defID, material string, amount int) *Item {
	return &Item{defID: defID, material: material, amount: amount}
}

// Item implements host.Item.
func (i *Item) DefinitionID() string { return i.defID }
func (i *Item) Material() string     { return i.material }

func (i *Item) Amount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.amount
}

func (i *Item) SetAmount(n int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if n < 0 {
		n = 0
	}
	i.amount = n
}

// Inventory holds two hands and a bag of other stacks.
type Inventory struct {
	mu       sync.RWMutex
	main     *Item
	off      *Item
	contents []*Item
}

func (inv *Inventory) MainHand() host.Item {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	if inv.main == nil {
		return nil
	}
	return inv.main
}

func (inv *Inventory) OffHand() host.Item {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	if inv.off == nil {
		return nil
	}
	return inv.off
}

// SetMainHand puts it in the main hand; nil empties the hand.
func (inv *Inventory) SetMainHand(it *Item) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.main = it
}

// SetOffHand puts it in the off hand; nil empties the hand.
func (inv *Inventory) SetOffHand(it *Item) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.off = it
}

// Add puts a stack in the bag.
func (inv *Inventory) Add(it *Item) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.contents = append(inv.contents, it)
}

// Count sums the amounts of every stack of material, hands included.
func (inv *Inventory) Count(material string) int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	total := 0
	for _, it := range append([]*Item{inv.main, inv.off}, inv.contents...) {
		if it != nil && equalFold(it.Material(), material) {
			total += it.Amount()
		}
	}
	return total
}
