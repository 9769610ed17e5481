package character

const (
	SlotCount = 100
	EmptySlot = -1

	idBase       = 65536
	categoryBase = 256
)

// ItemRef identifies an item row inside one of the per-category item tables.
type ItemRef struct {
	ID       int32
	Category int32
}

// DecodeSlot unpacks a slot value into its item reference. Empty, zero and
// negative values report false.
func DecodeSlot(v int64) (ItemRef, bool) {
	if v <= 0 {
		return ItemRef{}, false
	}
	return ItemRef{
		ID:       int32(v / idBase),
		Category: int32((v % idBase) / categoryBase),
	}, true
}

var itemTables = map[int32]string{
	0:  "tbl_code_upper",
	1:  "tbl_code_lower",
	2:  "tbl_code_gauntlet",
	3:  "tbl_code_shoe",
	4:  "tbl_code_helmet",
	5:  "tbl_code_shield",
	6:  "tbl_code_weapon",
	7:  "tbl_code_cloak",
	8:  "tbl_code_ring",
	9:  "tbl_code_amulet",
	10: "tbl_code_bullet",
	14: "tbl_code_potion",
}

const miscItemTable = "tbl_code_etc"

// ItemTable maps a category code to its item table. Unknown codes fall back
// to the miscellaneous table.
func ItemTable(category int32) string {
	if t, ok := itemTables[category]; ok {
		return t
	}
	return miscItemTable
}

// ItemTables lists every table ItemTable can return.
func ItemTables() []string {
	out := make([]string, 0, len(itemTables)+1)
	for _, t := range itemTables {
		out = append(out, t)
	}
	return append(out, miscItemTable)
}

func (r ItemRef) Table() string { return ItemTable(r.Category) }

// ItemKey addresses one row of one item table. Several categories can share
// the miscellaneous table, so metadata is keyed by table rather than category.
type ItemKey struct {
	Table string
	ID    int32
}

func (r ItemRef) Key() ItemKey { return ItemKey{Table: r.Table(), ID: r.ID} }

// Slots is a 100-slot container row: packed keys, quantities and upgrades at
// matching indexes.
type Slots struct {
	Keys     [SlotCount]int64
	Counts   [SlotCount]int64
	Upgrades [SlotCount]int64
}

// OccupiedSlot is a decoded, non-empty slot waiting for its display metadata.
type OccupiedSlot struct {
	Index   int
	Ref     ItemRef
	Qty     int64
	Upgrade int64
}

func (s *Slots) Occupied() []OccupiedSlot {
	var out []OccupiedSlot
	for i := 0; i < SlotCount; i++ {
		ref, ok := DecodeSlot(s.Keys[i])
		if !ok {
			continue
		}
		out = append(out, OccupiedSlot{Index: i, Ref: ref, Qty: s.Counts[i], Upgrade: s.Upgrades[i]})
	}
	return out
}

// ItemMeta is the display metadata held in the item tables.
type ItemMeta struct {
	Name string `json:"item_name"`
	Icon string `json:"icon"`
}

const UnknownItemName = "Unknown"

type Item struct {
	Slot    int    `json:"slot"`
	ItemID  int32  `json:"item_id"`
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	Qty     int64  `json:"qty"`
	Upgrade int64  `json:"upgrade"`
}

// Resolve turns occupied slots into display items. Missing metadata yields
// UnknownItemName.
func Resolve(slots []OccupiedSlot, meta map[ItemKey]ItemMeta) []Item {
	items := make([]Item, 0, len(slots))
	for _, s := range slots {
		m, ok := meta[s.Ref.Key()]
		if !ok {
			m = ItemMeta{Name: UnknownItemName}
		}
		items = append(items, Item{
			Slot:    s.Index,
			ItemID:  s.Ref.ID,
			Name:    m.Name,
			Icon:    m.Icon,
			Qty:     s.Qty,
			Upgrade: s.Upgrade,
		})
	}
	return items
}

// GroupByTable collects the distinct item ids per item table.
func GroupByTable(refs []ItemRef) map[string][]int32 {
	seen := make(map[ItemKey]struct{}, len(refs))
	out := make(map[string][]int32)
	for _, r := range refs {
		k := r.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out[k.Table] = append(out[k.Table], k.ID)
	}
	return out
}
