package character

var equipLabels = [EquipSlots]string{"Upper", "Lower", "Gloves", "Shoes", "Head", "Shield", "Weapon", "Cloak"}

var embellishLabels = [EmbellishSlots]string{"Ring1", "Ring2", "Amulet1", "Amulet2", "Ammo1", "Ammo2"}

type EquippedItem struct {
	ItemID  int32  `json:"item_id"`
	Name    string `json:"item_name"`
	Icon    string `json:"icon"`
	Upgrade int64  `json:"upgrade"`
}

// Equipment maps a worn-slot label (Head, Weapon, Ring1, ...) to its item.
// Empty slots are absent.
type Equipment map[string]EquippedItem

// EquippedSlot is a decoded worn slot before metadata resolution.
type EquippedSlot struct {
	Label   string
	Ref     ItemRef
	Upgrade int64
}

// Equipped decodes the equipment and embellishment columns of the base row.
func (i *Info) Equipped() []EquippedSlot {
	var out []EquippedSlot
	for n, v := range i.EquipKeys {
		if ref, ok := DecodeSlot(v); ok {
			out = append(out, EquippedSlot{Label: equipLabels[n], Ref: ref, Upgrade: i.EquipUpgrades[n]})
		}
	}
	for n, v := range i.EmbellishKeys {
		if ref, ok := DecodeSlot(v); ok {
			out = append(out, EquippedSlot{Label: embellishLabels[n], Ref: ref})
		}
	}
	return out
}

func BuildEquipment(slots []EquippedSlot, meta map[ItemKey]ItemMeta) Equipment {
	eq := make(Equipment, len(slots))
	for _, s := range slots {
		m, ok := meta[s.Ref.Key()]
		if !ok {
			m = ItemMeta{Name: UnknownItemName}
		}
		eq[s.Label] = EquippedItem{ItemID: s.Ref.ID, Name: m.Name, Icon: m.Icon, Upgrade: s.Upgrade}
	}
	return eq
}
