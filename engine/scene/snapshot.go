package scene

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-pose/common"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

// HierarchyLink is one child-to-parent edge, addressed by entity label.
type HierarchyLink struct {
	Child  string `toml:"child"`
	Parent string `toml:"parent"`
}

// HierarchySnapshot is a label-addressed copy of a Hierarchy. Links are grouped by parent
// and keep each parent's children in order, so applying a snapshot restores Children order.
type HierarchySnapshot struct {
	Links []HierarchyLink `toml:"link"`
}

// SnapshotHierarchy captures the edges of h whose endpoints both have a label.
// Parents are emitted in label order.
//
// Parameters:
//   - h: the hierarchy to capture
//   - labels: entity labels; unlabeled entities are left out
//
// Returns:
//   - HierarchySnapshot: the captured edges
func SnapshotHierarchy(h *Hierarchy, labels map[uuid.UUID]string) HierarchySnapshot {
	type group struct {
		label string
		id    uuid.UUID
	}
	var parents []group
	for p := range h.children {
		if l, ok := labels[p]; ok && l != "" {
			parents = append(parents, group{label: l, id: p})
		}
	}
	slices.SortFunc(parents, func(a, b group) int { return cmp.Compare(a.label, b.label) })

	var snap HierarchySnapshot
	for _, p := range parents {
		for _, c := range h.children[p.id] {
			if l, ok := labels[c]; ok && l != "" {
				snap.Links = append(snap.Links, HierarchyLink{Child: l, Parent: p.label})
			}
		}
	}
	return snap
}

// Apply re-parents entities in h according to the snapshot. Every label is resolved and
// every link is applied to a copy first, so h is only changed when the whole snapshot
// applies cleanly.
//
// Parameters:
//   - h: the hierarchy to modify
//   - ids: entity IDs by label
//
// Returns:
//   - error: ErrUnknownLabel, or the first SetParent error; h is unchanged on error
func (s HierarchySnapshot) Apply(h *Hierarchy, ids map[string]uuid.UUID) error {
	for _, link := range s.Links {
		for _, l := range []string{link.Child, link.Parent} {
			if _, ok := ids[l]; !ok {
				return fmt.Errorf("apply hierarchy %q: %w", l, common.ErrUnknownLabel)
			}
		}
	}

	staged := h.Clone()
	for _, link := range s.Links {
		if err := staged.SetParent(ids[link.Child], ids[link.Parent]); err != nil {
			return fmt.Errorf("apply hierarchy %q -> %q: %w", link.Child, link.Parent, err)
		}
	}
	h.parents, h.children = staged.parents, staged.children
	return nil
}

// MarshalTOML encodes the snapshot as an array of [[link]] tables.
func (s HierarchySnapshot) MarshalTOML() ([]byte, error) {
	data, err := toml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal hierarchy snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalHierarchyTOML decodes a snapshot written by MarshalTOML.
func UnmarshalHierarchyTOML(data []byte) (HierarchySnapshot, error) {
	var s HierarchySnapshot
	if err := toml.Unmarshal(data, &s); err != nil {
		return HierarchySnapshot{}, fmt.Errorf("failed to unmarshal hierarchy snapshot: %w", err)
	}
	return s, nil
}
