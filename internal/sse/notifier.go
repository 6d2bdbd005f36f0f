package sse

import "time"

// ChangeNotifier is the interface services use to tell admin dashboards that
// storefront data changed.
type ChangeNotifier interface {
	NotifyDealChanged(event EventType, dealID string)
	NotifyDealProductChanged(dealProductID, dealID string)
	NotifyDealsExpired(count int64)
	NotifyInvoiceSent(invoiceNumber string)
}

// HubNotifier broadcasts changes through a Hub. Nothing is encoded while no
// dashboard is connected.
type HubNotifier struct {
	hub *Hub
	now func() time.Time
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub, now: time.Now}
}

func (n *HubNotifier) NotifyDealChanged(event EventType, dealID string) {
	n.send(ChangeEvent{Event: event, EntityID: dealID, DealID: dealID})
}

func (n *HubNotifier) NotifyDealProductChanged(dealProductID, dealID string) {
	n.send(ChangeEvent{Event: EventDealProductChanged, EntityID: dealProductID, DealID: dealID})
}

func (n *HubNotifier) NotifyDealsExpired(count int64) {
	n.send(ChangeEvent{Event: EventDealsExpired, Count: count})
}

func (n *HubNotifier) NotifyInvoiceSent(invoiceNumber string) {
	n.send(ChangeEvent{Event: EventInvoiceSent, EntityID: invoiceNumber})
}

func (n *HubNotifier) send(e ChangeEvent) {
	if n.hub.ClientCount() == 0 {
		return
	}
	e.Timestamp = n.now().UTC()
	n.hub.Broadcast(e)
}

// NopNotifier discards every change.
type NopNotifier struct{}

func (NopNotifier) NotifyDealChanged(EventType, string)     {}
func (NopNotifier) NotifyDealProductChanged(string, string) {}
func (NopNotifier) NotifyDealsExpired(int64)                {}
func (NopNotifier) NotifyInvoiceSent(string)                {}
