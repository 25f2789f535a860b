package handlers

import (
	"food-delivery-engine/config"
	"food-delivery-engine/hub"
	"food-delivery-engine/orders"
	"food-delivery-engine/tracker"
	"food-delivery-engine/wallet"
)

var (
	liveHub *hub.Hub
	ledger  *wallet.Ledger
	bridge  *wallet.Bridge
	engine  *orders.Engine
	track   *tracker.Tracker
)

// Setup wires the engine singletons. Must run after config.InitDB.
func Setup() {
	liveHub = hub.New()
	ledger = wallet.NewLedger(config.DB)
	bridge = wallet.NewBridge(ledger)
	engine = orders.New(config.DB, liveHub, bridge)
	track = tracker.New(config.DB, liveHub)
}
