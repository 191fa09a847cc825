// Package widget holds the interactive state of a dot ring.
//
// A [Controller] owns one widget instance: its dots, the selected index, the
// click mode, and any hover or drag in progress. Hosts feed it pointer and
// drag events through [Controller.Handle] and repaint whenever it reports a
// change:
//
//	ctrl, _ := widget.New(widget.Options{Variant: widget.VariantManaged})
//	ctrl.Handle(widget.Event{Kind: widget.EventDragOver, X: 650, Y: 195})
//	ctrl.Handle(widget.Event{Kind: widget.EventDrop, X: 650, Y: 195,
//	    Payload: &widget.DragPayload{Color: "#36A2EB"}})
//
// Events are dispatched through a table keyed by [EventKind]; [Controller.On]
// replaces or removes an entry.
//
// # Variants
//
// [VariantManaged] pairs the ring with a tools panel (add/remove mode) and a
// management panel listing every dot. [VariantToggle] selects a dot on click
// and removes dots dragged into the removal zone. Both share the same layout
// rules from package ring.
//
// A Controller is not safe for concurrent use.
package widget
